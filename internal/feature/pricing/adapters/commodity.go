package adapters

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"portfolio_backend/internal/feature/pricing/domain"
	"portfolio_backend/internal/feature/pricing/domain/entity"
	"portfolio_backend/internal/feature/pricing/textnorm"
	"portfolio_backend/internal/feature/pricing/usecase"
)

const defaultCommodity = "GOLD"

var commodityNames = map[string]string{
	"GOLD":      "金 (Gold)",
	"PLATINUM":  "プラチナ (Platinum)",
	"SILVER":    "銀 (Silver)",
	"PALLADIUM": "パラジウム (Palladium)",
}

var yenAmount = regexp.MustCompile(`(?i)([0-9,]+(?:\.[0-9]+)?)\s*yen`)

// CommoditySource は貴金属の価格表ページから小売価格（円/g）を取得します。
// 1ページに全品目が載っているため、同時に走る取得は1回にまとめます。
type CommoditySource struct {
	url     string
	pages   pageFetcher
	timeout time.Duration
	sf      singleflight.Group
	now     func() time.Time
}

var (
	_ usecase.Source       = (*CommoditySource)(nil)
	_ usecase.SymbolLister = (*CommoditySource)(nil)
)

// NewCommoditySource は CommoditySource を生成します。
func NewCommoditySource(cfg Config, client HTTPDoer) *CommoditySource {
	return &CommoditySource{url: cfg.CommodityURL, pages: pageFetcher{client: client}, timeout: cfg.Timeout, now: time.Now}
}

// Symbols は表示名を持つ品目の一覧を返します。
func (s *CommoditySource) Symbols() []string {
	return []string{"GOLD", "PLATINUM", "SILVER", "PALLADIUM"}
}

// Fetch は品目名（省略時は GOLD）の行を探し、隣のセルの「NNN yen」を価格とします。
func (s *CommoditySource) Fetch(ctx context.Context, symbol string) entity.FetchOutcome {
	name := entity.Commodity.NormalizeSymbol(symbol)
	if name == "" {
		name = defaultCommodity
	}

	v, err := sharedFetch(ctx, &s.sf, s.url, s.timeout, func(ctx context.Context) (any, error) {
		return s.pages.get(ctx, s.url)
	})
	if err != nil {
		return entity.Failure(err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(v.(string)))
	if err != nil {
		return entity.Failure(fmt.Errorf("%w: %v", domain.ErrParse, err))
	}

	price, ok := findCommodityRow(doc, name)
	if !ok {
		return entity.Failure(fmt.Errorf("%w: %s row", domain.ErrNoMatch, name))
	}

	display, known := commodityNames[name]
	if !known {
		display = name
	}
	return entity.Success(entity.PriceQuote{DisplayName: display, Price: price, AsOf: s.now()})
}

func findCommodityRow(doc *goquery.Document, name string) (decimal.Decimal, bool) {
	var (
		price decimal.Decimal
		found bool
	)
	doc.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return true
		}
		if !strings.EqualFold(strings.TrimSpace(cells.First().Text()), name) {
			return true
		}
		m := yenAmount.FindStringSubmatch(textnorm.Normalize(cells.Eq(1).Text()))
		if m == nil {
			return true
		}
		if v, ok := textnorm.ExtractNumber(m[1]); ok && v.IsPositive() {
			price, found = v, true
			return false
		}
		return true
	})
	return price, found
}
