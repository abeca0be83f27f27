package extract

import "github.com/shopspring/decimal"

// Chain は戦略を優先順に試す抽出器です。生成後は読み取り専用なので複数ゴルーチンから共有できます。
type Chain struct {
	m          *matcher
	strategies []Strategy
}

// NewChain は Profile と戦略リストから Chain を生成します。
// strategies が空の場合は DefaultStrategies を使用します。
func NewChain(p Profile, strategies ...Strategy) *Chain {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Chain{m: newMatcher(p), strategies: strategies}
}

// Run は raw に対して戦略を順に適用し、最初に得られた値と戦略名を返します。
func (c *Chain) Run(raw string) (decimal.Decimal, string, bool) {
	return c.RunPayload(NewPayload(raw))
}

// RunPayload は Run と同じですが、呼び出し側と Payload を共有できます。
func (c *Chain) RunPayload(p *Payload) (decimal.Decimal, string, bool) {
	for _, s := range c.strategies {
		if v, ok := s.scan(c.m, p); ok {
			return v, s.Name, true
		}
	}
	return decimal.Zero, "", false
}

// WithBound は妥当性範囲だけを差し替えた Chain を返します。正規表現は共有されます。
func (c *Chain) WithBound(b Bound) *Chain {
	m := *c.m
	m.profile.Bound = b
	return &Chain{m: &m, strategies: c.strategies}
}
