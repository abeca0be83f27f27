package adapters

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"portfolio_backend/internal/feature/pricing/domain/entity"
	"portfolio_backend/internal/feature/pricing/usecase"
)

const (
	fxChartCode   = "USDJPY=X"
	fxDisplayName = "USD/JPY"
)

// FxRateSource は USD/JPY レートを取得します。
// 取得に失敗しても既定レートで成功を返すため、呼び出し側から見て失敗しません。
type FxRateSource struct {
	chart       ChartClient
	defaultRate decimal.Decimal
	timeout     time.Duration
	sf          singleflight.Group
	now         func() time.Time
}

var _ usecase.Source = (*FxRateSource)(nil)

// NewFxRateSource は FxRateSource を生成します。
func NewFxRateSource(cfg Config, chart ChartClient) *FxRateSource {
	rate := cfg.DefaultFXRate
	if !rate.IsPositive() {
		rate = decimal.NewFromInt(150)
	}
	return &FxRateSource{chart: chart, defaultRate: rate, timeout: cfg.Timeout, now: time.Now}
}

// Fetch は symbol を無視して USD/JPY を返します。
func (s *FxRateSource) Fetch(ctx context.Context, _ string) entity.FetchOutcome {
	v, err := sharedFetch(ctx, &s.sf, fxChartCode, s.timeout, func(ctx context.Context) (any, error) {
		meta, err := s.chart.Meta(ctx, fxChartCode)
		if err != nil {
			return nil, err
		}
		if p, ok := meta.Price(); ok {
			return p, nil
		}
		return nil, nil
	})

	rate, ok := v.(decimal.Decimal)
	if err != nil || !ok {
		slog.Warn("fx rate unavailable, using default", "default", s.defaultRate, "error", err)
		rate = s.defaultRate
	}
	return entity.Success(entity.PriceQuote{DisplayName: fxDisplayName, Price: rate, AsOf: s.now()})
}
