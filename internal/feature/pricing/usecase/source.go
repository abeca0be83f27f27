package usecase

import (
	"context"

	"portfolio_backend/internal/feature/pricing/domain/entity"
)

// Source は1つの資産クラスの価格取得元です。
// 失敗はエラーではなく entity.FetchOutcome の Failure として返します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type Source interface {
	Fetch(ctx context.Context, symbol string) entity.FetchOutcome
}

// SymbolValidator は取得前に銘柄を検証できる Source が実装します。
// 扱えない銘柄には domain.ErrUnsupportedSymbol を包んだエラーを返します。
type SymbolValidator interface {
	Validate(symbol string) error
}

// SymbolLister は対応銘柄が固定の Source が実装します。
type SymbolLister interface {
	Symbols() []string
}

// Sources は資産クラスごとの Source の対応表です。
type Sources map[entity.AssetClass]Source
