package yahoochart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"portfolio_backend/internal/feature/pricing/domain"
	"portfolio_backend/internal/platform/externalapi/yahoochart/dto"
)

// meta オブジェクトの候補位置。通常のレスポンスと meta だけを返す簡易形式の両方に対応する。
var metaPaths = []string{"$.chart.result[0].meta", "$.meta"}

// Client はチャートAPIから銘柄のメタ情報（現在値・名称）を取得します。
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient は指定された設定とHTTPクライアントで Client を生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// Meta は code（"7203.T", "AAPL", "USDJPY=X" など）のメタ情報を取得します。
// 通信エラー・4xx/5xx は domain.ErrNetwork、本文の解釈失敗は domain.ErrParse を包んで返します。
func (c *Client) Meta(ctx context.Context, code string) (dto.ChartMeta, error) {
	u := fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return dto.ChartMeta{}, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return dto.ChartMeta{}, fmt.Errorf("%w: chart %s: %v", domain.ErrNetwork, code, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return dto.ChartMeta{}, fmt.Errorf("%w: chart http %d", domain.ErrNetwork, res.StatusCode)
	}

	// 数値の精度を保つため json.Number のままデコードする
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return dto.ChartMeta{}, fmt.Errorf("%w: chart %s: %v", domain.ErrParse, code, err)
	}

	return decodeMeta(body)
}

// decodeMeta は meta オブジェクトを探して dto.ChartMeta に変換します。
func decodeMeta(body any) (dto.ChartMeta, error) {
	for _, path := range metaPaths {
		v, err := jsonpath.Get(path, body)
		if err != nil {
			continue
		}
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		b, err := json.Marshal(obj)
		if err != nil {
			return dto.ChartMeta{}, fmt.Errorf("%w: %v", domain.ErrParse, err)
		}
		var meta dto.ChartMeta
		if err := json.Unmarshal(b, &meta); err != nil {
			return dto.ChartMeta{}, fmt.Errorf("%w: meta: %v", domain.ErrParse, err)
		}
		return meta, nil
	}
	return dto.ChartMeta{}, fmt.Errorf("%w: chart response has no meta", domain.ErrParse)
}
