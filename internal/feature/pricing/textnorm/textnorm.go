// Package textnorm は外部ソースから取得した文字列を数値抽出しやすい形へ正規化します。
package textnorm

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

// 全角から半角へ変換する対象文字（数字と数値表記に使われる記号のみ）
const fullwidthSymbols = "，．＋－　％"

var (
	// 3桁区切り（カンマまたは空白）付きの数値。指数表記も許容する。
	groupedNumber = regexp.MustCompile(`[+-]?(?:\d{1,3}(?:[, ]\d{3})+|\d+)(?:\.\d+)?(?:[eE][+-]?\d+)?`)
	// 区切りなしの緩いパターン（".5" のような表記も拾う）
	bareNumber = regexp.MustCompile(`[+-]?\d*\.?\d+(?:[eE][+-]?\d+)?`)
)

// isNarrowTarget は全角数字または数値記号であれば true を返します。
func isNarrowTarget(r rune) bool {
	if r >= '０' && r <= '９' {
		return true
	}
	return strings.ContainsRune(fullwidthSymbols, r)
}

// Normalize は全角数字・全角記号（，．＋－　％）を ASCII に置き換えます。
// それ以外の文字（かな・漢字・全角英字など）は変更しません。
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}
	// runes.If の Transformer は状態を持つため呼び出しごとに生成する
	t := runes.If(runes.Predicate(isNarrowTarget), width.Narrow, nil)
	out, _, err := transform.String(t, raw)
	if err != nil {
		return raw
	}
	return out
}

// ExtractNumber はテキスト中の最初の数値を取り出して decimal として返します。
// 3桁区切り付きパターンを優先し、見つからなければ緩いパターンで再試行します。
func ExtractNumber(text string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(Normalize(text), "\u00a0", " ")

	m := groupedNumber.FindString(s)
	if m == "" {
		m = bareNumber.FindString(s)
	}
	if m == "" {
		return decimal.Zero, false
	}

	m = strings.NewReplacer(",", "", " ", "").Replace(m)
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
