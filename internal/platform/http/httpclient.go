package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"portfolio_backend/internal/shared/ratelimiter"
)

// Option は Transport をラップして機能を追加します。
type Option func(http.RoundTripper) http.RoundTripper

// NewHTTPClient は外部サイト呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - Dialer.KeepAlive: 再利用可能なTCP接続の維持期間
//   - MaxIdleConns / MaxIdleConnsPerHost: 同一サイトへの並列取得を想定した接続プール
//   - TLSHandshakeTimeout: HTTPSハンドシェイクの最大時間
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にカスタムクライアントを使用すること
//   - opts は指定順に外側へ重ねられる
func NewHTTPClient(timeout time.Duration, opts ...Option) *http.Client {
	var rt http.RoundTripper = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		rt = opt(rt)
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

// WithUserAgent はリクエストに固定の User-Agent を付与します。
// 一部のサイトはブラウザ以外の UA を拒否するため、既定ではブラウザ風の値を使います。
func WithUserAgent(ua string) Option {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if ua == "" || req.Header.Get("User-Agent") != "" {
				return next.RoundTrip(req)
			}
			r := req.Clone(req.Context())
			r.Header.Set("User-Agent", ua)
			return next.RoundTrip(r)
		})
	}
}

// WithHostRateLimit は接続先ホストごとに interval あたり limit 回までにリクエストを制限します。
// limit が0以下の場合は何もしません。
func WithHostRateLimit(limit int, interval time.Duration) Option {
	return func(next http.RoundTripper) http.RoundTripper {
		if limit <= 0 {
			return next
		}
		var (
			mu       sync.Mutex
			limiters = map[string]ratelimiter.RateLimiterInterface{}
		)
		limiterFor := func(host string) ratelimiter.RateLimiterInterface {
			mu.Lock()
			defer mu.Unlock()
			rl, ok := limiters[host]
			if !ok {
				rl = ratelimiter.NewRateLimiter(limit, interval)
				limiters[host] = rl
			}
			return rl
		}
		return roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if err := limiterFor(req.URL.Host).Wait(req.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(req)
		})
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }
