package textnorm

import "strings"

// 末尾から取り除く法人格の表記。長いものから順に照合する。
var corporateSuffixes = []string{
	"CORPORATION",
	"CO., LTD.",
	"CO.,LTD.",
	"CO., LTD",
	"COMPANY",
	"INCORPORATED",
	"LIMITED",
	"CORP.",
	"CORP",
	"INC.",
	"INC",
	"LTD.",
	"LTD",
	"PLC",
	"K.K.",
	"CO.",
}

// CleanDisplayName は銘柄名の末尾にある法人格（CORP, INC. など）を取り除きます。
// 取り除いた結果が空になる場合は元の名前を返します。
func CleanDisplayName(name string) string {
	cur := strings.TrimSpace(name)
	for {
		next := trimSuffixOnce(cur)
		if next == cur || next == "" {
			return cur
		}
		cur = next
	}
}

func trimSuffixOnce(s string) string {
	upper := strings.ToUpper(s)
	if len(upper) != len(s) {
		return s
	}
	for _, suf := range corporateSuffixes {
		if !strings.HasSuffix(upper, suf) {
			continue
		}
		head := s[:len(s)-len(suf)]
		// 単語の途中（"TOYOTAINC" など）では切らない
		if head != "" && !strings.HasSuffix(head, " ") && !strings.HasSuffix(head, ",") {
			continue
		}
		return strings.TrimRight(head, " ,")
	}
	return s
}
