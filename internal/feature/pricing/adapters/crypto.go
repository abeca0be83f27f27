package adapters

import (
	"context"
	"fmt"
	"slices"
	"time"

	"portfolio_backend/internal/feature/pricing/domain"
	"portfolio_backend/internal/feature/pricing/domain/entity"
	"portfolio_backend/internal/feature/pricing/extract"
	"portfolio_backend/internal/feature/pricing/usecase"
)

var cryptoChain = extract.NewChain(extract.Profile{
	Fields: []string{"last", "price", "ltp"},
	Labels: []string{"現在値", "価格"},
	Units:  []string{"円", "JPY"},
	Selectors: []string{
		"[data-price]",
		"meta[itemprop=price]",
	},
})

// CryptoSource は暗号資産の円建て価格をペアページから取得します。
type CryptoSource struct {
	symbols     []string
	urlTemplate string
	pages       pageFetcher
	now         func() time.Time
}

var (
	_ usecase.Source          = (*CryptoSource)(nil)
	_ usecase.SymbolValidator = (*CryptoSource)(nil)
	_ usecase.SymbolLister    = (*CryptoSource)(nil)
)

// NewCryptoSource は CryptoSource を生成します。
func NewCryptoSource(cfg Config, client HTTPDoer) *CryptoSource {
	return &CryptoSource{
		symbols:     cfg.CryptoSymbols,
		urlTemplate: cfg.CryptoURLTemplate,
		pages:       pageFetcher{client: client},
		now:         time.Now,
	}
}

// Symbols は対応する暗号資産の一覧を返します。
func (s *CryptoSource) Symbols() []string { return slices.Clone(s.symbols) }

// Validate は対応外の暗号資産を拒否します。
func (s *CryptoSource) Validate(symbol string) error {
	sym := entity.CryptoPair.NormalizeSymbol(symbol)
	if !slices.Contains(s.symbols, sym) {
		return fmt.Errorf("%w: crypto %q", domain.ErrUnsupportedSymbol, symbol)
	}
	return nil
}

// Fetch は対応銘柄であればペアページを取得し、抽出戦略で価格を求めます。
// 対応外の銘柄はネットワークにアクセスせずに失敗します。
func (s *CryptoSource) Fetch(ctx context.Context, symbol string) entity.FetchOutcome {
	if err := s.Validate(symbol); err != nil {
		return entity.Failure(err)
	}
	sym := entity.CryptoPair.NormalizeSymbol(symbol)

	page, err := s.pages.get(ctx, fmt.Sprintf(s.urlTemplate, sym))
	if err != nil {
		return entity.Failure(err)
	}

	price, _, ok := cryptoChain.Run(page)
	if !ok {
		return entity.Failure(fmt.Errorf("%w: crypto %s", domain.ErrNoMatch, sym))
	}
	return entity.Success(entity.PriceQuote{DisplayName: sym, Price: price.Round(2), AsOf: s.now()})
}
