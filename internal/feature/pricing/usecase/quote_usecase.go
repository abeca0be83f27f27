// Package usecase は価格取得のオーケストレーションを提供します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"portfolio_backend/internal/feature/pricing/domain"
	"portfolio_backend/internal/feature/pricing/domain/entity"
)

const defaultFetchTimeout = 15 * time.Second

// QuoteUsecase は単一資産の価格取得と、資産登録時の銘柄検証を行います。
type QuoteUsecase struct {
	sources Sources
	timeout time.Duration
}

// NewQuoteUsecase は新しい QuoteUsecase を作成します。timeout が0以下の場合は15秒を使います。
func NewQuoteUsecase(sources Sources, timeout time.Duration) *QuoteUsecase {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &QuoteUsecase{sources: sources, timeout: timeout}
}

// Validate は class と symbol の組み合わせが取得可能かをネットワークにアクセスせずに判定します。
// 扱えない場合は domain.ErrUnsupportedSymbol（未知のクラスは domain.ErrUnknownAssetClass）を包んだエラーを返します。
func (uc *QuoteUsecase) Validate(class entity.AssetClass, symbol string) error {
	src, ok := uc.sources[class]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownAssetClass, class)
	}
	if v, ok := src.(SymbolValidator); ok {
		return v.Validate(symbol)
	}
	return nil
}

// FetchOne は1資産の価格を取得します。検証に失敗した場合は取得を行いません。
func (uc *QuoteUsecase) FetchOne(ctx context.Context, class entity.AssetClass, symbol string) entity.FetchOutcome {
	if err := uc.Validate(class, symbol); err != nil {
		return entity.Failure(err)
	}
	symbol = class.NormalizeSymbol(symbol)

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	out := uc.sources[class].Fetch(ctx, symbol)
	if !out.OK() {
		slog.Warn("failed to fetch quote", "class", class, "symbol", symbol, "error", out.Err)
	}
	return out
}

// SupportedSymbols は対応銘柄が固定の資産クラスについて、その一覧を返します。
func (uc *QuoteUsecase) SupportedSymbols(class entity.AssetClass) ([]string, error) {
	src, ok := uc.sources[class]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAssetClass, class)
	}
	if l, ok := src.(SymbolLister); ok {
		return l.Symbols(), nil
	}
	return nil, nil
}
