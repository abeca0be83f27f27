package dto

import "github.com/shopspring/decimal"

// ChartMeta はチャートAPIレスポンスの meta オブジェクトです。
// 価格は数値・文字列・null のいずれでも受け付けます。
type ChartMeta struct {
	Symbol             string              `json:"symbol"`
	Currency           string              `json:"currency"`
	ShortName          string              `json:"shortName"`
	LongName           string              `json:"longName"`
	RegularMarketPrice decimal.NullDecimal `json:"regularMarketPrice"`
	PreviousClose      decimal.NullDecimal `json:"previousClose"`
	ChartPreviousClose decimal.NullDecimal `json:"chartPreviousClose"`
}

// Price は regularMarketPrice → previousClose → chartPreviousClose の順で最初の正の値を返します。
func (m ChartMeta) Price() (decimal.Decimal, bool) {
	for _, p := range []decimal.NullDecimal{m.RegularMarketPrice, m.PreviousClose, m.ChartPreviousClose} {
		if p.Valid && p.Decimal.IsPositive() {
			return p.Decimal, true
		}
	}
	return decimal.Zero, false
}

// Name は shortName → longName の順で空でない名前を返します。
func (m ChartMeta) Name() string {
	if m.ShortName != "" {
		return m.ShortName
	}
	return m.LongName
}
