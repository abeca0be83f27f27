package yahoochart

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/pricing/domain"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{BaseURL: baseURL, Timeout: time.Second}, &http.Client{Timeout: time.Second})
}

// TestClient_Meta_FullEnvelope は chart.result[0].meta 形式のレスポンスを解釈できることを検証します。
func TestClient_Meta_FullEnvelope(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/7203.T" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"7203.T","currency":"JPY",
			"shortName":"TOYOTA MOTOR CORP","longName":"Toyota Motor Corporation",
			"regularMarketPrice":2500.5,"previousClose":2480,"chartPreviousClose":2470}}],"error":null}}`))
	}))
	defer srv.Close()

	meta, err := newTestClient(srv.URL).Meta(context.Background(), "7203.T")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, ok := meta.Price()
	if !ok || !p.Equal(decimal.RequireFromString("2500.5")) {
		t.Errorf("price = %s (ok=%v), want 2500.5", p, ok)
	}
	if meta.Name() != "TOYOTA MOTOR CORP" {
		t.Errorf("name = %q", meta.Name())
	}
	if meta.Currency != "JPY" {
		t.Errorf("currency = %q", meta.Currency)
	}
}

// TestClient_Meta_BareEnvelope は meta のみの簡易形式とフォールバック価格を検証します。
func TestClient_Meta_BareEnvelope(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meta":{"regularMarketPrice":null,"previousClose":"0","chartPreviousClose":"189.84","longName":"Apple Inc."}}`))
	}))
	defer srv.Close()

	meta, err := newTestClient(srv.URL).Meta(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, ok := meta.Price()
	if !ok || !p.Equal(decimal.RequireFromString("189.84")) {
		t.Errorf("price = %s (ok=%v), want 189.84", p, ok)
	}
	if meta.Name() != "Apple Inc." {
		t.Errorf("name = %q, want long name fallback", meta.Name())
	}
}

// TestClient_Meta_Errors はエラー種別ごとに対応するドメインエラーが返ることを検証します。
func TestClient_Meta_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantErr: domain.ErrNetwork,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"chart":`))
			},
			wantErr: domain.ErrParse,
		},
		{
			name: "empty result",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"chart":{"result":[],"error":{"code":"Not Found"}}}`))
			},
			wantErr: domain.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(srv.URL).Meta(context.Background(), "XXXX")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestClient_Meta_Unreachable は接続できない場合に ErrNetwork を返すことを検証します。
func TestClient_Meta_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Meta(context.Background(), "7203.T")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PRICING_CHART_BASE_URL", "")
	if got := LoadConfig().BaseURL; got != defaultBaseURL {
		t.Errorf("default base url = %q", got)
	}

	t.Setenv("PRICING_CHART_BASE_URL", "http://stub")
	if got := LoadConfig().BaseURL; got != "http://stub" {
		t.Errorf("base url = %q", got)
	}
}
