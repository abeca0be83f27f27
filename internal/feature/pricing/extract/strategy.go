package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/pricing/textnorm"
)

const defaultWindow = 40

// Profile はソースごとの抽出設定です。
type Profile struct {
	Fields    []string // "last", "price" など JSON 風キー名
	Labels    []string // "現在値" などのラベル
	Units     []string // 数値の直後に付く単位（"円", "yen", "USD" など）
	Prefixes  []string // 数値の直前に付く記号（"$" など）
	Selectors []string // 優先順の CSS セレクタ
	Window    int      // ラベル後に探索する文字数（0 の場合は 40）
	Bound     Bound
}

// Strategy は1つの抽出方法です。
type Strategy struct {
	Name string
	scan func(m *matcher, p *Payload) (decimal.Decimal, bool)
}

// 優先順位順の戦略一覧
var (
	FieldScan      = Strategy{Name: "field", scan: scanFields}
	LabelScan      = Strategy{Name: "label", scan: scanLabels}
	SelectorScan   = Strategy{Name: "selector", scan: scanSelectors}
	UnitScan       = Strategy{Name: "unit", scan: scanUnits}
	ScientificScan = Strategy{Name: "scientific", scan: scanScientific}
)

// DefaultStrategies は標準の優先順位です。
func DefaultStrategies() []Strategy {
	return []Strategy{FieldScan, LabelScan, SelectorScan, UnitScan, ScientificScan}
}

var (
	number     = `[+-]?\d[\d,]*(?:\.\d+)?`
	scientific = regexp.MustCompile(`[+-]?\d+(?:\.\d+)?[eE][+-]?\d+`)
)

// matcher は Profile から生成した正規表現を保持します。
type matcher struct {
	profile Profile
	field   *regexp.Regexp
	suffix  *regexp.Regexp
	prefix  *regexp.Regexp
}

func newMatcher(p Profile) *matcher {
	if p.Window <= 0 {
		p.Window = defaultWindow
	}
	m := &matcher{profile: p}
	if len(p.Fields) > 0 {
		m.field = regexp.MustCompile(`"(?:` + alternation(p.Fields) + `)"\s*:\s*"?([0-9.,Ee+\-]+)"?`)
	}
	if len(p.Units) > 0 {
		m.suffix = regexp.MustCompile(`(` + number + `)\s*(?:` + alternation(p.Units) + `)`)
	}
	if len(p.Prefixes) > 0 {
		m.prefix = regexp.MustCompile(`(?:` + alternation(p.Prefixes) + `)\s*(` + number + `)`)
	}
	return m
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

// firstAccepted は各マッチのキャプチャを数値化し、最初に範囲内だったものを返します。
func (m *matcher) firstAccepted(re *regexp.Regexp, s string) (decimal.Decimal, bool) {
	if re == nil {
		return decimal.Zero, false
	}
	for _, sm := range re.FindAllStringSubmatch(s, -1) {
		if v, ok := m.accept(sm[len(sm)-1]); ok {
			return v, true
		}
	}
	return decimal.Zero, false
}

func (m *matcher) accept(s string) (decimal.Decimal, bool) {
	v, ok := textnorm.ExtractNumber(s)
	if !ok || !m.profile.Bound.Accept(v) {
		return decimal.Zero, false
	}
	return v, true
}

func scanFields(m *matcher, p *Payload) (decimal.Decimal, bool) {
	return m.firstAccepted(m.field, p.Raw())
}

// scanLabels はラベル直後の窓から「数値+単位」または「記号+数値」を探します。単位のない数値は採用しません。
func scanLabels(m *matcher, p *Payload) (decimal.Decimal, bool) {
	if m.suffix == nil && m.prefix == nil {
		return decimal.Zero, false
	}
	text := textnorm.Normalize(p.VisibleText())
	for _, label := range m.profile.Labels {
		rest := text
		for {
			i := strings.Index(rest, label)
			if i < 0 {
				break
			}
			rest = rest[i+len(label):]
			win := window(rest, m.profile.Window)
			if v, ok := m.firstAccepted(m.suffix, win); ok {
				return v, true
			}
			if v, ok := m.firstAccepted(m.prefix, win); ok {
				return v, true
			}
		}
	}
	return decimal.Zero, false
}

// window は s の先頭 n 文字（rune 単位）を返します。
func window(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func scanSelectors(m *matcher, p *Payload) (decimal.Decimal, bool) {
	if len(m.profile.Selectors) == 0 {
		return decimal.Zero, false
	}
	doc := p.Document()
	if doc == nil {
		return decimal.Zero, false
	}
	for _, sel := range m.profile.Selectors {
		var (
			found decimal.Decimal
			ok    bool
		)
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if text == "" {
				text, _ = s.Attr("content")
			}
			found, ok = m.accept(text)
			return !ok
		})
		if ok {
			return found, true
		}
	}
	return decimal.Zero, false
}

func scanUnits(m *matcher, p *Payload) (decimal.Decimal, bool) {
	text := textnorm.Normalize(p.VisibleText())
	if v, ok := m.firstAccepted(m.suffix, text); ok {
		return v, true
	}
	return m.firstAccepted(m.prefix, text)
}

func scanScientific(m *matcher, p *Payload) (decimal.Decimal, bool) {
	for _, s := range scientific.FindAllString(p.Raw(), -1) {
		if v, ok := m.accept(s); ok {
			return v, true
		}
	}
	return decimal.Zero, false
}
