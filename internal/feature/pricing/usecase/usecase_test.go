package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_backend/internal/feature/pricing/domain"
	"portfolio_backend/internal/feature/pricing/domain/entity"
)

// mockSource は Source のモック実装です。
type mockSource struct {
	FetchFunc  func(ctx context.Context, symbol string) entity.FetchOutcome
	fetchCalls atomic.Int32

	supported []string // nil の場合は検証しない
	mu        sync.Mutex
	symbols   []string
}

func (m *mockSource) Fetch(ctx context.Context, symbol string) entity.FetchOutcome {
	m.fetchCalls.Add(1)
	m.mu.Lock()
	m.symbols = append(m.symbols, symbol)
	m.mu.Unlock()
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, symbol)
	}
	return entity.Failure(errors.New("FetchFunc is not implemented"))
}

// validatingSource は対応銘柄を持つ mockSource です。
type validatingSource struct {
	*mockSource
}

func (v validatingSource) Validate(symbol string) error {
	for _, s := range v.supported {
		if s == symbol {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrUnsupportedSymbol, symbol)
}

func (v validatingSource) Symbols() []string { return v.supported }

func quote(name, price string) entity.FetchOutcome {
	return entity.Success(entity.PriceQuote{DisplayName: name, Price: decimal.RequireFromString(price), AsOf: time.Now()})
}

func TestRefreshBatch_MixedOutcomes(t *testing.T) {
	t.Parallel()

	equity := &mockSource{FetchFunc: func(ctx context.Context, symbol string) entity.FetchOutcome {
		return entity.Failure(fmt.Errorf("%w: markup changed", domain.ErrNoMatch))
	}}
	crypto := validatingSource{&mockSource{supported: []string{"BTC"}}}
	fund := &mockSource{FetchFunc: func(ctx context.Context, symbol string) entity.FetchOutcome {
		return quote(symbol, "100")
	}}

	uc := NewRefreshUsecase(Sources{
		entity.DomesticEquity: equity,
		entity.CryptoPair:     crypto,
		entity.Fund:           fund,
	}, RefreshConfig{MaxInFlight: 2, FetchTimeout: time.Second})

	res := uc.RefreshBatch(context.Background(), []entity.RefreshRequest{
		{AssetID: 1, Class: entity.DomesticEquity, Symbol: "7203"},
		{AssetID: 2, Class: entity.CryptoPair, Symbol: "notacoin"},
		{AssetID: 3, Class: entity.Fund, Symbol: "オルカン"},
	})

	assert.Equal(t, 3, res.Attempted)
	require.Len(t, res.Updated, 1)
	assert.Equal(t, uint(3), res.Updated[0].AssetID)
	assert.True(t, decimal.NewFromInt(100).Equal(res.Updated[0].Quote.Price))
	assert.Equal(t, int32(0), crypto.fetchCalls.Load(), "unsupported symbol must not be fetched")
}

func TestRefreshBatch_Empty(t *testing.T) {
	t.Parallel()

	uc := NewRefreshUsecase(Sources{}, RefreshConfig{})
	res := uc.RefreshBatch(context.Background(), nil)

	assert.Equal(t, 0, res.Attempted)
	assert.Empty(t, res.Updated)
}

func TestRefreshBatch_CoalescesDuplicates(t *testing.T) {
	t.Parallel()

	foreign := &mockSource{FetchFunc: func(ctx context.Context, symbol string) entity.FetchOutcome {
		return quote(symbol, "189.84")
	}}
	uc := NewRefreshUsecase(Sources{entity.ForeignEquity: foreign}, RefreshConfig{})

	res := uc.RefreshBatch(context.Background(), []entity.RefreshRequest{
		{AssetID: 10, Class: entity.ForeignEquity, Symbol: "aapl"},
		{AssetID: 11, Class: entity.ForeignEquity, Symbol: "AAPL"},
		{AssetID: 12, Class: entity.ForeignEquity, Symbol: " AAPL "},
	})

	assert.Equal(t, int32(1), foreign.fetchCalls.Load())
	assert.Equal(t, []string{"AAPL"}, foreign.symbols, "symbol is normalized before fetch")
	require.Len(t, res.Updated, 3)
	for i, id := range []uint{10, 11, 12} {
		assert.Equal(t, id, res.Updated[i].AssetID, "request order is preserved")
	}
}

func TestRefreshBatch_PreservesRequestOrder(t *testing.T) {
	t.Parallel()

	// 後ろのリクエストほど早く終わるようにする
	src := &mockSource{FetchFunc: func(ctx context.Context, symbol string) entity.FetchOutcome {
		switch symbol {
		case "A":
			time.Sleep(30 * time.Millisecond)
		case "B":
			time.Sleep(15 * time.Millisecond)
		}
		return quote(symbol, "1")
	}}
	uc := NewRefreshUsecase(Sources{entity.ForeignEquity: src}, RefreshConfig{MaxInFlight: 3})

	res := uc.RefreshBatch(context.Background(), []entity.RefreshRequest{
		{AssetID: 1, Class: entity.ForeignEquity, Symbol: "A"},
		{AssetID: 2, Class: entity.ForeignEquity, Symbol: "B"},
		{AssetID: 3, Class: entity.ForeignEquity, Symbol: "C"},
	})

	require.Len(t, res.Updated, 3)
	assert.Equal(t, "A", res.Updated[0].Quote.DisplayName)
	assert.Equal(t, "B", res.Updated[1].Quote.DisplayName)
	assert.Equal(t, "C", res.Updated[2].Quote.DisplayName)
}

func TestRefreshBatch_BoundsInFlight(t *testing.T) {
	t.Parallel()

	var cur, peak atomic.Int32
	src := &mockSource{FetchFunc: func(ctx context.Context, symbol string) entity.FetchOutcome {
		n := cur.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		cur.Add(-1)
		return quote(symbol, "1")
	}}
	uc := NewRefreshUsecase(Sources{entity.ForeignEquity: src}, RefreshConfig{MaxInFlight: 2})

	var reqs []entity.RefreshRequest
	for i := 0; i < 10; i++ {
		reqs = append(reqs, entity.RefreshRequest{AssetID: uint(i), Class: entity.ForeignEquity, Symbol: fmt.Sprintf("S%d", i)})
	}
	res := uc.RefreshBatch(context.Background(), reqs)

	assert.Len(t, res.Updated, 10)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRefreshBatch_IgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	src := &mockSource{FetchFunc: func(ctx context.Context, symbol string) entity.FetchOutcome {
		if err := ctx.Err(); err != nil {
			return entity.Failure(err)
		}
		return quote(symbol, "5")
	}}
	uc := NewRefreshUsecase(Sources{entity.ForeignEquity: src}, RefreshConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := uc.RefreshBatch(ctx, []entity.RefreshRequest{{AssetID: 1, Class: entity.ForeignEquity, Symbol: "MSFT"}})

	require.Len(t, res.Updated, 1)
}

func TestRefreshBatch_PerFetchTimeout(t *testing.T) {
	t.Parallel()

	src := &mockSource{FetchFunc: func(ctx context.Context, symbol string) entity.FetchOutcome {
		if symbol == "SLOW" {
			<-ctx.Done()
			return entity.Failure(fmt.Errorf("%w: %v", domain.ErrNetwork, ctx.Err()))
		}
		return quote(symbol, "42")
	}}
	uc := NewRefreshUsecase(Sources{entity.ForeignEquity: src}, RefreshConfig{FetchTimeout: 20 * time.Millisecond})

	res := uc.RefreshBatch(context.Background(), []entity.RefreshRequest{
		{AssetID: 1, Class: entity.ForeignEquity, Symbol: "SLOW"},
		{AssetID: 2, Class: entity.ForeignEquity, Symbol: "FAST"},
	})

	assert.Equal(t, 2, res.Attempted)
	require.Len(t, res.Updated, 1)
	assert.Equal(t, uint(2), res.Updated[0].AssetID)
}

// TestRefreshBatch_TimeoutZeroAndSuccess はタイムアウト・0円・成功が混在しても成功分だけが返ることを検証します。
func TestRefreshBatch_TimeoutZeroAndSuccess(t *testing.T) {
	t.Parallel()

	src := &mockSource{FetchFunc: func(ctx context.Context, symbol string) entity.FetchOutcome {
		switch symbol {
		case "SLOW":
			<-ctx.Done()
			return entity.Failure(fmt.Errorf("%w: %v", domain.ErrNetwork, ctx.Err()))
		case "ZERO":
			return entity.FetchOutcome{Quote: entity.PriceQuote{DisplayName: symbol, Price: decimal.Zero, AsOf: time.Now()}}
		default:
			return quote(symbol, "100")
		}
	}}
	uc := NewRefreshUsecase(Sources{entity.ForeignEquity: src}, RefreshConfig{MaxInFlight: 3, FetchTimeout: 20 * time.Millisecond})

	res := uc.RefreshBatch(context.Background(), []entity.RefreshRequest{
		{AssetID: 1, Class: entity.ForeignEquity, Symbol: "SLOW"},
		{AssetID: 2, Class: entity.ForeignEquity, Symbol: "ZERO"},
		{AssetID: 3, Class: entity.ForeignEquity, Symbol: "AAPL"},
	})

	assert.Equal(t, 3, res.Attempted)
	require.Len(t, res.Updated, 1)
	assert.Equal(t, uint(3), res.Updated[0].AssetID)
	assert.True(t, decimal.NewFromInt(100).Equal(res.Updated[0].Quote.Price))
}

func TestRefreshBatch_UnknownClassAndPanic(t *testing.T) {
	t.Parallel()

	src := &mockSource{FetchFunc: func(ctx context.Context, symbol string) entity.FetchOutcome {
		if symbol == "BOOM" {
			panic("parser bug")
		}
		return quote(symbol, "3")
	}}
	uc := NewRefreshUsecase(Sources{entity.ForeignEquity: src}, RefreshConfig{})

	res := uc.RefreshBatch(context.Background(), []entity.RefreshRequest{
		{AssetID: 1, Class: entity.AssetClass("bond"), Symbol: "JGB10"},
		{AssetID: 2, Class: entity.ForeignEquity, Symbol: "BOOM"},
		{AssetID: 3, Class: entity.ForeignEquity, Symbol: "IBM"},
	})

	assert.Equal(t, 3, res.Attempted)
	require.Len(t, res.Updated, 1)
	assert.Equal(t, uint(3), res.Updated[0].AssetID)
}

func TestAggregate_DropsNonPositive(t *testing.T) {
	t.Parallel()

	reqs := []entity.RefreshRequest{{AssetID: 1}, {AssetID: 2}}
	jobs := []fetchKey{{symbol: "A"}, {symbol: "B"}}
	outcomes := []entity.FetchOutcome{
		{Quote: entity.PriceQuote{Price: decimal.Zero}}, // 直接組み立てた不正な成功
		quote("B", "7"),
	}

	res := aggregate(reqs, []int{0, 1}, jobs, outcomes)

	require.Len(t, res.Updated, 1)
	assert.Equal(t, uint(2), res.Updated[0].AssetID)
}

func TestLoadRefreshConfig(t *testing.T) {
	t.Setenv("PRICING_MAX_IN_FLIGHT", "")
	t.Setenv("PRICING_TIMEOUT_SEC", "")
	cfg := LoadRefreshConfig()
	assert.Equal(t, 8, cfg.MaxInFlight)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)

	t.Setenv("PRICING_MAX_IN_FLIGHT", "3")
	t.Setenv("PRICING_TIMEOUT_SEC", "2")
	cfg = LoadRefreshConfig()
	assert.Equal(t, 3, cfg.MaxInFlight)
	assert.Equal(t, 2*time.Second, cfg.FetchTimeout)
}

func TestQuoteUsecase_FetchOne(t *testing.T) {
	t.Parallel()

	foreign := &mockSource{FetchFunc: func(ctx context.Context, symbol string) entity.FetchOutcome {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "fetch must run with a timeout")
		return quote(symbol, "420.5")
	}}
	crypto := validatingSource{&mockSource{supported: []string{"BTC"}}}
	uc := NewQuoteUsecase(Sources{entity.ForeignEquity: foreign, entity.CryptoPair: crypto}, 0)

	out := uc.FetchOne(context.Background(), entity.ForeignEquity, "msft")
	require.True(t, out.OK())
	assert.Equal(t, "MSFT", out.Quote.DisplayName)

	out = uc.FetchOne(context.Background(), entity.CryptoPair, "NOTACOIN")
	assert.ErrorIs(t, out.Err, domain.ErrUnsupportedSymbol)
	assert.Equal(t, int32(0), crypto.fetchCalls.Load())

	out = uc.FetchOne(context.Background(), entity.Fund, "オルカン")
	assert.ErrorIs(t, out.Err, domain.ErrUnknownAssetClass)
}

func TestQuoteUsecase_Validate(t *testing.T) {
	t.Parallel()

	crypto := validatingSource{&mockSource{supported: []string{"BTC", "ETH"}}}
	uc := NewQuoteUsecase(Sources{entity.CryptoPair: crypto, entity.ForeignEquity: &mockSource{}}, time.Second)

	assert.NoError(t, uc.Validate(entity.CryptoPair, "BTC"))
	assert.ErrorIs(t, uc.Validate(entity.CryptoPair, "NOTACOIN"), domain.ErrUnsupportedSymbol)
	assert.NoError(t, uc.Validate(entity.ForeignEquity, "ANY"), "sources without a validator accept any symbol")
	assert.ErrorIs(t, uc.Validate(entity.Commodity, "GOLD"), domain.ErrUnknownAssetClass)

	syms, err := uc.SupportedSymbols(entity.CryptoPair)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "ETH"}, syms)

	syms, err = uc.SupportedSymbols(entity.ForeignEquity)
	require.NoError(t, err)
	assert.Nil(t, syms)
}
