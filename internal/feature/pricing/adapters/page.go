package adapters

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"portfolio_backend/internal/feature/pricing/domain"
)

const (
	// 1ページあたりの読み込み上限
	maxPageBytes = 4 << 20
	// 共有取得の打ち切り時間（Config.Timeout 未設定時）
	defaultSharedTimeout = 15 * time.Second
)

// HTTPDoer は *http.Client が満たすリクエスト実行のインターフェースです。
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// pageFetcher は HTML ページを1回だけ取得します（リトライしません）。
type pageFetcher struct {
	client HTTPDoer
}

// get は url の本文を返します。通信失敗と 4xx/5xx は domain.ErrNetwork を包みます。
func (f pageFetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	req.Header.Set("Accept-Language", "ja,en;q=0.8")

	res, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return "", fmt.Errorf("%w: %s http %d", domain.ErrNetwork, url, res.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", domain.ErrNetwork, err)
	}
	return string(b), nil
}

// sharedFetch は key ごとに同時に走る取得を1回にまとめます。
// まとめた取得は最初の呼び出し元のキャンセルを引き継がず、timeout でのみ打ち切られます。
// 各呼び出し元は自分の ctx が終わった時点で待つのをやめます。
func sharedFetch(ctx context.Context, g *singleflight.Group, key string, timeout time.Duration, fn func(context.Context) (any, error)) (any, error) {
	if timeout <= 0 {
		timeout = defaultSharedTimeout
	}
	ch := g.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return fn(fctx)
	})

	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, ctx.Err())
	}
}
