package extract

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// TestBound_Accept は正値・上下限・除外値の判定を検証します。
func TestBound_Accept(t *testing.T) {
	t.Parallel()

	b := Bound{Min: dec("50"), Max: dec("500000"), Exclude: []decimal.Decimal{dec("7203")}}

	tests := []struct {
		name string
		v    string
		want bool
	}{
		{name: "in range", v: "2500", want: true},
		{name: "below min", v: "49.9", want: false},
		{name: "above max", v: "500001", want: false},
		{name: "excluded code", v: "7203", want: false},
		{name: "boundary min", v: "50", want: true},
		{name: "boundary max", v: "500000", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, b.Accept(dec(tt.v)))
		})
	}

	assert.False(t, Bound{}.Accept(decimal.Zero), "zero is never accepted")
	assert.False(t, Bound{}.Accept(dec("-1")), "negative is never accepted")
	assert.True(t, Bound{}.Accept(dec("0.0001")), "unbounded accepts any positive")
}

// TestChain_StrategyPriority は上位の戦略が成功した場合にそれが採用されることを検証します。
func TestChain_StrategyPriority(t *testing.T) {
	t.Parallel()

	profile := Profile{
		Fields:    []string{"last", "price"},
		Labels:    []string{"現在値"},
		Units:     []string{"円"},
		Selectors: []string{"span.price"},
	}

	tests := []struct {
		name         string
		payload      string
		wantValue    string
		wantStrategy string
	}{
		{
			name:         "structured field wins over label",
			payload:      `<script>var q = {"last": "9,876,543.21"};</script><p>現在値 2,500円</p>`,
			wantValue:    "9876543.21",
			wantStrategy: "field",
		},
		{
			name:         "label proximity",
			payload:      `<div>前日終値 2,400円</div><div>現在値 <b>2,500</b>円</div>`,
			wantValue:    "2500",
			wantStrategy: "label",
		},
		{
			name:         "selector",
			payload:      `<div><span class="price">3,210.5</span></div>`,
			wantValue:    "3210.5",
			wantStrategy: "selector",
		},
		{
			name:         "unit suffixed anywhere",
			payload:      `<table><tr><td>売買代金</td><td>1,234円</td></tr></table>`,
			wantValue:    "1234",
			wantStrategy: "unit",
		},
		{
			name:         "scientific notation",
			payload:      `{"rate":1.2345e4}`,
			wantValue:    "12345",
			wantStrategy: "scientific",
		},
	}

	chain := NewChain(profile)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, strategy, ok := chain.Run(tt.payload)
			require.True(t, ok)
			assert.Equal(t, tt.wantStrategy, strategy)
			assert.True(t, dec(tt.wantValue).Equal(v), "got %s", v)
		})
	}
}

// TestChain_NoMatch はどの戦略も値を得られない場合に失敗を返すことを検証します。
func TestChain_NoMatch(t *testing.T) {
	t.Parallel()

	chain := NewChain(Profile{Fields: []string{"last"}, Labels: []string{"現在値"}, Units: []string{"円"}})
	_, strategy, ok := chain.Run(`<html><body><p>メンテナンス中です</p></body></html>`)

	assert.False(t, ok)
	assert.Empty(t, strategy)
}

// TestChain_BoundRejectsCode は銘柄コードと同じ値や範囲外の値を採用しないことを検証します。
func TestChain_BoundRejectsCode(t *testing.T) {
	t.Parallel()

	chain := NewChain(Profile{
		Labels: []string{"株価"},
		Units:  []string{"円"},
		Bound:  Bound{Min: dec("50"), Max: dec("500000"), Exclude: []decimal.Decimal{dec("7203")}},
	})

	payload := `<h1>トヨタ自動車【7203】</h1><p>株価 7203円 参考 株価 30円 株価 2,875円</p>`
	v, strategy, ok := chain.Run(payload)

	require.True(t, ok)
	assert.Equal(t, "label", strategy)
	assert.True(t, dec("2875").Equal(v), "got %s", v)
}

// TestChain_LabelWindow はラベルから離れすぎた数値を拾わないことを検証します。
func TestChain_LabelWindow(t *testing.T) {
	t.Parallel()

	chain := NewChain(Profile{Labels: []string{"現在値"}, Units: []string{"円"}, Window: 6}, LabelScan)
	_, _, ok := chain.Run(`<p>現在値 ------------------------------ 2500円</p>`)
	assert.False(t, ok)

	v, _, ok := chain.Run(`<p>現在値：2500円</p>`)
	require.True(t, ok)
	assert.True(t, dec("2500").Equal(v))
}

// TestChain_LabelRequiresUnit はラベルの後でも単位のない数値を採用しないことを検証します。
func TestChain_LabelRequiresUnit(t *testing.T) {
	t.Parallel()

	bare := NewChain(Profile{Labels: []string{"現在値"}}, LabelScan)
	_, _, ok := bare.Run(`<p>現在値：2500</p>`)
	assert.False(t, ok)

	withUnit := NewChain(Profile{Labels: []string{"現在値"}, Units: []string{"円"}}, LabelScan)
	_, _, ok = withUnit.Run(`<p>現在値：2500 前日比 +12</p>`)
	assert.False(t, ok)
}

// TestChain_PrefixUnit はドル記号など前置の単位を扱えることを検証します。
func TestChain_PrefixUnit(t *testing.T) {
	t.Parallel()

	chain := NewChain(Profile{
		Units:    []string{"USD", "ドル"},
		Prefixes: []string{"$"},
		Bound:    Bound{Min: dec("0.1"), Max: dec("100000")},
	}, UnitScan)

	v, _, ok := chain.Run(`<span>Last trade: $189.84</span>`)
	require.True(t, ok)
	assert.True(t, dec("189.84").Equal(v))

	v, _, ok = chain.Run(`<span>終値 201.5 ドル</span>`)
	require.True(t, ok)
	assert.True(t, dec("201.5").Equal(v))
}

// TestChain_FullwidthDigits は全角数字で書かれた価格を抽出できることを検証します。
func TestChain_FullwidthDigits(t *testing.T) {
	t.Parallel()

	chain := NewChain(Profile{Labels: []string{"現在値"}, Units: []string{"円"}})
	v, _, ok := chain.Run(`<p>現在値　２，５００．５円</p>`)

	require.True(t, ok)
	assert.True(t, dec("2500.5").Equal(v))
}

// TestPayload_VisibleText は script/style の内容が可視テキストから除外されることを検証します。
func TestPayload_VisibleText(t *testing.T) {
	t.Parallel()

	p := NewPayload(`<html><head><style>.a{}</style><script>var x = 1;</script></head>
<body><h1>Title</h1>  <p>line
one</p></body></html>`)

	assert.Equal(t, "Title line one", p.VisibleText())
	assert.NotNil(t, p.Document())
}
