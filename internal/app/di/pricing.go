// Package di provides dependency injection factories for creating application components.
package di

import (
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio_backend/internal/feature/pricing/adapters"
	"portfolio_backend/internal/feature/pricing/domain/entity"
	"portfolio_backend/internal/feature/pricing/usecase"
	"portfolio_backend/internal/platform/cache"
	"portfolio_backend/internal/platform/externalapi/yahoochart"
	infrahttp "portfolio_backend/internal/platform/http"
)

const (
	defaultQuoteCacheTTL = 5 * time.Minute
	// 投資信託の基準価額は夕方に更新されるため、この時刻（JST）でキャッシュを切る
	fundNAVResetHour = 19
)

// Pricing bundles the pricing usecases.
type Pricing struct {
	Quotes  *usecase.QuoteUsecase
	Refresh *usecase.RefreshUsecase
}

// NewSources creates one Source per asset class, all sharing a single HTTP client
// with the configured User-Agent and per-host rate limit.
func NewSources(cfg adapters.Config, chartCfg yahoochart.Config) usecase.Sources {
	client := infrahttp.NewHTTPClient(cfg.Timeout,
		infrahttp.WithUserAgent(cfg.UserAgent),
		infrahttp.WithHostRateLimit(cfg.MaxRequestsPerMin, time.Minute),
	)
	chart := yahoochart.NewClient(chartCfg, client)

	return usecase.Sources{
		entity.DomesticEquity: adapters.NewDomesticEquitySource(cfg, chart, client),
		entity.ForeignEquity:  adapters.NewForeignEquitySource(cfg, chart, client),
		entity.Commodity:      adapters.NewCommoditySource(cfg, client),
		entity.CryptoPair:     adapters.NewCryptoSource(cfg, client),
		entity.Fund:           adapters.NewFundSource(cfg, client),
		entity.FxRate:         adapters.NewFxRateSource(cfg, chart),
	}
}

// NewCachedSources wraps every source except FxRate with the Redis quote cache.
// FxRate falls back to a default rate on upstream failure, and that fallback must not be cached.
// If rdb is nil, the wrappers pass through to the sources.
func NewCachedSources(rdb *redis.Client, ttl time.Duration, sources usecase.Sources) usecase.Sources {
	out := make(usecase.Sources, len(sources))
	for class, src := range sources {
		if class == entity.FxRate {
			out[class] = src
			continue
		}
		c := cache.NewCachingSource(rdb, ttl, class, src, "quotes")
		if class == entity.Fund {
			c = c.WithDailyReset(fundNAVResetHour)
		}
		out[class] = c
	}
	return out
}

// QuoteCacheTTL reads QUOTE_CACHE_TTL_SEC.
func QuoteCacheTTL() time.Duration {
	if n, err := strconv.Atoi(os.Getenv("QUOTE_CACHE_TTL_SEC")); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultQuoteCacheTTL
}

// NewPricing creates the pricing usecases from environment configuration.
// Only the single-asset path goes through the cache; batch refreshes always hit the sources.
func NewPricing(rdb *redis.Client) Pricing {
	cfg := adapters.LoadConfig()
	sources := NewSources(cfg, yahoochart.LoadConfig())
	refreshCfg := usecase.LoadRefreshConfig()

	return Pricing{
		Quotes:  usecase.NewQuoteUsecase(NewCachedSources(rdb, QuoteCacheTTL(), sources), refreshCfg.FetchTimeout),
		Refresh: usecase.NewRefreshUsecase(sources, refreshCfg),
	}
}
