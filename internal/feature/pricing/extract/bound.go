// Package extract は非構造なページから価格候補を取り出す抽出戦略を提供します。
//
// 戦略は優先順位つきのリストとして Chain に登録され、最初に妥当な値を返した戦略の結果が採用されます。
// 各戦略は Bound による妥当性チェックを自身で行います。
package extract

import "github.com/shopspring/decimal"

// Bound は抽出した価格の妥当性範囲です。
// Min/Max がゼロ値の場合はその側の制限を行いません（正の値であることは常に要求します）。
type Bound struct {
	Min     decimal.Decimal
	Max     decimal.Decimal
	Exclude []decimal.Decimal // 銘柄コードなど、価格と誤認しやすい値
}

// Accept は v が範囲内かつ除外値でなければ true を返します。
func (b Bound) Accept(v decimal.Decimal) bool {
	if !v.IsPositive() {
		return false
	}
	if !b.Min.IsZero() && v.LessThan(b.Min) {
		return false
	}
	if !b.Max.IsZero() && v.GreaterThan(b.Max) {
		return false
	}
	for _, ex := range b.Exclude {
		if v.Equal(ex) {
			return false
		}
	}
	return true
}
