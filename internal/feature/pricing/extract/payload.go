package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Payload は1回の抽出で共有される入力です。
// 可視テキストと DOM は必要になった時点で一度だけ生成されます。
type Payload struct {
	raw string

	text     string
	textDone bool

	doc     *goquery.Document
	docDone bool
}

// NewPayload は生のレスポンス本文から Payload を作成します。
func NewPayload(raw string) *Payload {
	return &Payload{raw: raw}
}

// Raw はレスポンス本文をそのまま返します。
func (p *Payload) Raw() string { return p.raw }

// VisibleText は script/style を除いたテキストノードを空白区切りで連結した文字列を返します。
func (p *Payload) VisibleText() string {
	if p.textDone {
		return p.text
	}
	p.textDone = true
	p.text = visibleText(p.raw)
	return p.text
}

// Document は goquery のドキュメントを返します。パースに失敗した場合は nil を返します。
func (p *Payload) Document() *goquery.Document {
	if p.docDone {
		return p.doc
	}
	p.docDone = true
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.raw))
	if err == nil {
		p.doc = doc
	}
	return p.doc
}

func visibleText(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if isHiddenTag(z) {
				skip++
			}
		case html.EndTagToken:
			if isHiddenTag(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func isHiddenTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style", "noscript":
		return true
	}
	return false
}
