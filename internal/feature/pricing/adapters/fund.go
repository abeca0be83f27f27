package adapters

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/pricing/domain"
	"portfolio_backend/internal/feature/pricing/domain/entity"
	"portfolio_backend/internal/feature/pricing/textnorm"
	"portfolio_backend/internal/feature/pricing/usecase"
)

var navHeader = regexp.MustCompile(`^\s*基準価額\s*$`)

// FundSource は登録済み投資信託の基準価額を詳細ページから取得します。
type FundSource struct {
	urls  map[string]string
	pages pageFetcher
	now   func() time.Time
}

var (
	_ usecase.Source          = (*FundSource)(nil)
	_ usecase.SymbolValidator = (*FundSource)(nil)
	_ usecase.SymbolLister    = (*FundSource)(nil)
)

// NewFundSource は FundSource を生成します。
func NewFundSource(cfg Config, client HTTPDoer) *FundSource {
	return &FundSource{urls: maps.Clone(cfg.FundURLs), pages: pageFetcher{client: client}, now: time.Now}
}

// Symbols は登録済みの投資信託名を返します。
func (s *FundSource) Symbols() []string {
	return slices.Sorted(maps.Keys(s.urls))
}

// Validate は未登録の投資信託を拒否します。
func (s *FundSource) Validate(symbol string) error {
	if _, ok := s.urls[entity.Fund.NormalizeSymbol(symbol)]; !ok {
		return fmt.Errorf("%w: fund %q", domain.ErrUnsupportedSymbol, symbol)
	}
	return nil
}

// Fetch は「基準価額」見出しの隣のセルから価格を取り出します。
func (s *FundSource) Fetch(ctx context.Context, symbol string) entity.FetchOutcome {
	if err := s.Validate(symbol); err != nil {
		return entity.Failure(err)
	}
	name := entity.Fund.NormalizeSymbol(symbol)

	page, err := s.pages.get(ctx, s.urls[name])
	if err != nil {
		return entity.Failure(err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return entity.Failure(fmt.Errorf("%w: %v", domain.ErrParse, err))
	}

	price, ok := findNAV(doc)
	if !ok {
		return entity.Failure(fmt.Errorf("%w: fund %s", domain.ErrNoMatch, name))
	}
	return entity.Success(entity.PriceQuote{DisplayName: name, Price: price, AsOf: s.now()})
}

func findNAV(doc *goquery.Document) (decimal.Decimal, bool) {
	var (
		price decimal.Decimal
		found bool
	)
	doc.Find("th").EachWithBreak(func(_ int, th *goquery.Selection) bool {
		if !navHeader.MatchString(textnorm.Normalize(th.Text())) {
			return true
		}
		td := th.NextAllFiltered("td").First()
		if td.Length() == 0 {
			return true
		}
		price, found = textnorm.ExtractNumber(td.Text())
		return !found
	})
	return price, found
}
