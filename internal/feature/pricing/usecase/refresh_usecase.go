package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"portfolio_backend/internal/feature/pricing/domain"
	"portfolio_backend/internal/feature/pricing/domain/entity"
)

const defaultMaxInFlight = 8

// RefreshConfig はバッチ更新の並列度とタイムアウトです。
type RefreshConfig struct {
	MaxInFlight  int           // 同時に実行する取得の上限
	FetchTimeout time.Duration // 1取得あたりのタイムアウト
}

// LoadRefreshConfig は環境変数からバッチ更新の設定を読み込みます。
func LoadRefreshConfig() RefreshConfig {
	cfg := RefreshConfig{MaxInFlight: defaultMaxInFlight, FetchTimeout: defaultFetchTimeout}
	if n, err := strconv.Atoi(os.Getenv("PRICING_MAX_IN_FLIGHT")); err == nil && n > 0 {
		cfg.MaxInFlight = n
	}
	if n, err := strconv.Atoi(os.Getenv("PRICING_TIMEOUT_SEC")); err == nil && n > 0 {
		cfg.FetchTimeout = time.Duration(n) * time.Second
	}
	return cfg
}

// RefreshUsecase は複数資産の価格を並列に取得し、成功したものだけを結果にまとめます。
type RefreshUsecase struct {
	sources Sources
	cfg     RefreshConfig
}

// NewRefreshUsecase は新しい RefreshUsecase を作成します。
func NewRefreshUsecase(sources Sources, cfg RefreshConfig) *RefreshUsecase {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = defaultMaxInFlight
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	return &RefreshUsecase{sources: sources, cfg: cfg}
}

// fetchKey は同一取得をまとめるためのキーです。
type fetchKey struct {
	class  entity.AssetClass
	symbol string
}

// RefreshBatch はリクエストごとに価格を取得し、成功したものを Updated に入れて返します。
//
//   - 同じ (class, symbol) は1回だけ取得し、結果を共有する
//   - 同時実行数は MaxInFlight まで
//   - 各取得は個別のタイムアウトを持ち、呼び出し元のキャンセルで中断されない
//   - すべての取得の完了を待ってから結果を組み立てる
//
// 1件の失敗が他の結果に影響することはありません。Attempted は常に len(requests) です。
func (uc *RefreshUsecase) RefreshBatch(ctx context.Context, requests []entity.RefreshRequest) entity.RefreshBatchResult {
	// 重複を除いたジョブを作成
	jobIndex := make([]int, len(requests))
	var jobs []fetchKey
	seen := make(map[fetchKey]int, len(requests))
	for i, r := range requests {
		k := fetchKey{class: r.Class, symbol: r.Class.NormalizeSymbol(r.Symbol)}
		j, ok := seen[k]
		if !ok {
			j = len(jobs)
			seen[k] = j
			jobs = append(jobs, k)
		}
		jobIndex[i] = j
	}

	outcomes := make([]entity.FetchOutcome, len(jobs))
	detached := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(uc.cfg.MaxInFlight)
	for j, k := range jobs {
		g.Go(func() error {
			outcomes[j] = uc.fetch(detached, k)
			return nil
		})
	}
	_ = g.Wait()

	return aggregate(requests, jobIndex, jobs, outcomes)
}

// fetch は1ジョブを実行します。Source のパニックは失敗として扱います。
func (uc *RefreshUsecase) fetch(ctx context.Context, k fetchKey) (out entity.FetchOutcome) {
	src, ok := uc.sources[k.class]
	if !ok {
		return entity.Failure(fmt.Errorf("%w: %q", domain.ErrUnsupportedSymbol, k.class))
	}
	if v, ok := src.(SymbolValidator); ok {
		if err := v.Validate(k.symbol); err != nil {
			return entity.Failure(err)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			out = entity.Failure(fmt.Errorf("source panic: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, uc.cfg.FetchTimeout)
	defer cancel()
	return src.Fetch(ctx, k.symbol)
}

// aggregate は取得結果をリクエスト順に並べ、正の価格を持つ成功だけを残します。
func aggregate(requests []entity.RefreshRequest, jobIndex []int, jobs []fetchKey, outcomes []entity.FetchOutcome) entity.RefreshBatchResult {
	res := entity.RefreshBatchResult{Attempted: len(requests), Updated: []entity.PriceUpdate{}}
	for i, r := range requests {
		out := outcomes[jobIndex[i]]
		if !out.OK() || !out.Quote.Price.IsPositive() {
			k := jobs[jobIndex[i]]
			slog.Warn("failed to refresh price", "asset_id", r.AssetID, "class", k.class, "symbol", k.symbol, "error", out.Err)
			continue
		}
		res.Updated = append(res.Updated, entity.PriceUpdate{AssetID: r.AssetID, Quote: out.Quote})
	}
	slog.Info("price refresh finished", "attempted", res.Attempted, "updated", len(res.Updated))
	return res
}
