// Package adapters は資産クラスごとの価格取得元（Source）の実装を提供します。
package adapters

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config は Source 群の設定です。
type Config struct {
	QuotePageBaseURL  string            // 株価ページ（スクレイピング用フォールバック）
	CommodityURL      string            // 貴金属価格表
	CryptoURLTemplate string            // 暗号資産ページ。%s に通貨コードが入る
	CryptoSymbols     []string          // 対応する暗号資産
	FundURLs          map[string]string // 投資信託名 → 詳細ページ
	UserAgent         string
	Timeout           time.Duration
	MaxRequestsPerMin int // ホストごとの上限。0 は無制限
	DefaultFXRate     decimal.Decimal
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DefaultFundURLs は対応する投資信託とその詳細ページです。
var DefaultFundURLs = map[string]string{
	"S&P500": "https://www.rakuten-sec.co.jp/web/fund/detail/?ID=JP90C000GKC6",
	"オルカン":   "https://www.rakuten-sec.co.jp/web/fund/detail/?ID=JP90C000H1T1",
	"FANG+":  "https://www.rakuten-sec.co.jp/web/fund/detail/?ID=JP90C000FZD4",
}

// LoadConfig は環境変数から Source 群の設定を読み込みます。未設定の項目は既定値を使います。
func LoadConfig() Config {
	return Config{
		QuotePageBaseURL:  envOr("PRICING_QUOTE_PAGE_BASE_URL", "https://finance.yahoo.co.jp/quote"),
		CommodityURL:      envOr("PRICING_COMMODITY_URL", "https://gold.tanaka.co.jp/commodity/souba/english/index.php"),
		CryptoURLTemplate: envOr("PRICING_CRYPTO_URL_TEMPLATE", "https://cc.minkabu.jp/pair/%s_JPY"),
		CryptoSymbols:     splitList(envOr("PRICING_CRYPTO_SYMBOLS", "BTC,ETH,XRP,DOGE")),
		FundURLs:          DefaultFundURLs,
		UserAgent:         envOr("PRICING_USER_AGENT", defaultUserAgent),
		Timeout:           time.Duration(envInt("PRICING_TIMEOUT_SEC", 15)) * time.Second,
		MaxRequestsPerMin: envInt("PRICING_MAX_RPM", 0),
		DefaultFXRate:     envDecimal("PRICING_DEFAULT_FX_RATE", decimal.NewFromInt(150)),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		slog.Warn("invalid integer env, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil || !d.IsPositive() {
		slog.Warn("invalid decimal env, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
