package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/pricing/domain"
	"portfolio_backend/internal/feature/pricing/domain/entity"
	"portfolio_backend/internal/feature/pricing/extract"
	"portfolio_backend/internal/feature/pricing/textnorm"
	"portfolio_backend/internal/feature/pricing/usecase"
	"portfolio_backend/internal/platform/externalapi/yahoochart/dto"
)

// ChartClient はチャートAPIからメタ情報を取得するクライアントのインターフェースです。
type ChartClient interface {
	Meta(ctx context.Context, code string) (dto.ChartMeta, error)
}

// equityMarket は国内株・外国株で異なる設定をまとめたものです。
type equityMarket struct {
	class       entity.AssetClass
	suffix      string // チャートAPI・株価ページで使うコードの接尾辞
	bound       extract.Bound
	excludeCode bool // 銘柄コードと同じ数値を価格として採用しない
	derive      bool // 最低購入代金 / 単元株数 から価格を算出する
	placeholder func(symbol string) string
	chain       *extract.Chain
}

var (
	domesticMarket = equityMarket{
		class:       entity.DomesticEquity,
		suffix:      ".T",
		bound:       extract.Bound{Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(500000)},
		excludeCode: true,
		derive:      true,
		placeholder: func(symbol string) string { return "Stock " + symbol },
		chain: extract.NewChain(extract.Profile{
			Fields:    []string{"regularMarketPrice", "price", "last"},
			Labels:    []string{"現在値", "株価"},
			Units:     []string{"円"},
			Selectors: []string{"[data-field=regularMarketPrice]", "meta[itemprop=price]"},
		}),
	}
	foreignMarket = equityMarket{
		class:       entity.ForeignEquity,
		bound:       extract.Bound{Min: decimal.RequireFromString("0.1"), Max: decimal.NewFromInt(100000)},
		placeholder: func(symbol string) string { return symbol },
		chain: extract.NewChain(extract.Profile{
			Fields:    []string{"regularMarketPrice", "price", "last"},
			Labels:    []string{"現在値", "株価", "Last"},
			Units:     []string{"USD", "ドル"},
			Prefixes:  []string{"$"},
			Selectors: []string{"[data-field=regularMarketPrice]", "meta[itemprop=price]"},
		}),
	}
)

var (
	minPurchase = regexp.MustCompile(`最低購入代金\s*([0-9,]+)`)
	unitShares  = regexp.MustCompile(`単元株数\s*([0-9,]+)`)
)

// EquitySource はチャートAPIを優先し、失敗時に株価ページの抽出にフォールバックする株式の Source です。
type EquitySource struct {
	market   equityMarket
	chart    ChartClient
	pages    pageFetcher
	pageBase string
	now      func() time.Time
}

var _ usecase.Source = (*EquitySource)(nil)

// NewDomesticEquitySource は国内株（東証）の Source を生成します。
func NewDomesticEquitySource(cfg Config, chart ChartClient, client HTTPDoer) *EquitySource {
	return newEquitySource(domesticMarket, cfg, chart, client)
}

// NewForeignEquitySource は外国株（米国株）の Source を生成します。
func NewForeignEquitySource(cfg Config, chart ChartClient, client HTTPDoer) *EquitySource {
	return newEquitySource(foreignMarket, cfg, chart, client)
}

func newEquitySource(m equityMarket, cfg Config, chart ChartClient, client HTTPDoer) *EquitySource {
	return &EquitySource{
		market:   m,
		chart:    chart,
		pages:    pageFetcher{client: client},
		pageBase: strings.TrimRight(cfg.QuotePageBaseURL, "/"),
		now:      time.Now,
	}
}

// Validate は空の銘柄コードを拒否します。
func (s *EquitySource) Validate(symbol string) error {
	if s.market.class.NormalizeSymbol(symbol) == "" {
		return fmt.Errorf("%w: empty %s symbol", domain.ErrUnsupportedSymbol, s.market.class)
	}
	return nil
}

// Fetch は銘柄の現在値と表示名を取得します。価格は小数第2位で丸めます。
func (s *EquitySource) Fetch(ctx context.Context, symbol string) entity.FetchOutcome {
	if err := s.Validate(symbol); err != nil {
		return entity.Failure(err)
	}
	symbol = s.market.class.NormalizeSymbol(symbol)
	code := symbol + s.market.suffix

	meta, err := s.chart.Meta(ctx, code)
	if err == nil {
		if price, ok := meta.Price(); ok {
			return entity.Success(entity.PriceQuote{
				DisplayName: s.displayName(meta.Name(), symbol),
				Price:       price.Round(2),
				AsOf:        s.now(),
			})
		}
		err = fmt.Errorf("%w: chart has no price for %s", domain.ErrNoMatch, code)
	}
	slog.Debug("chart lookup failed, falling back to quote page", "class", s.market.class, "symbol", symbol, "error", err)

	return s.fetchPage(ctx, symbol, code, err)
}

// fetchPage は株価ページから価格と名称を抽出します。
func (s *EquitySource) fetchPage(ctx context.Context, symbol, code string, chartErr error) entity.FetchOutcome {
	page, err := s.pages.get(ctx, s.pageBase+"/"+code)
	if err != nil {
		return entity.Failure(errors.Join(err, chartErr))
	}

	bound := s.market.bound
	if s.market.excludeCode {
		if v, err := decimal.NewFromString(symbol); err == nil {
			bound.Exclude = []decimal.Decimal{v}
		}
	}

	payload := extract.NewPayload(page)
	price, strategy, ok := s.market.chain.WithBound(bound).RunPayload(payload)
	if !ok && s.market.derive {
		price, ok = derivePrice(payload.VisibleText(), bound)
		strategy = "min_purchase"
	}
	if !ok {
		return entity.Failure(fmt.Errorf("%w: %s quote page", domain.ErrNoMatch, code))
	}
	slog.Debug("price extracted from quote page", "symbol", symbol, "strategy", strategy)

	return entity.Success(entity.PriceQuote{
		DisplayName: s.displayName(pageName(payload.VisibleText(), symbol), symbol),
		Price:       price.Round(2),
		AsOf:        s.now(),
	})
}

func (s *EquitySource) displayName(raw, symbol string) string {
	if name := textnorm.CleanDisplayName(raw); name != "" {
		return name
	}
	return s.market.placeholder(symbol)
}

// derivePrice は「最低購入代金 ÷ 単元株数」で1株あたりの価格を求めます。
func derivePrice(text string, bound extract.Bound) (decimal.Decimal, bool) {
	text = textnorm.Normalize(text)
	mp := minPurchase.FindStringSubmatch(text)
	us := unitShares.FindStringSubmatch(text)
	if mp == nil || us == nil {
		return decimal.Zero, false
	}
	total, ok1 := textnorm.ExtractNumber(mp[1])
	units, ok2 := textnorm.ExtractNumber(us[1])
	if !ok1 || !ok2 || !units.IsPositive() {
		return decimal.Zero, false
	}
	price := total.Div(units)
	if !bound.Accept(price) {
		return decimal.Zero, false
	}
	return price, true
}

// pageName は「名称【コード】」の表記から名称を取り出します。
func pageName(text, symbol string) string {
	re := regexp.MustCompile(`([^\s【】]+)\s*【` + regexp.QuoteMeta(symbol) + `】`)
	if m := re.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
