package di

import (
	"gorm.io/gorm"

	"portfolio_backend/internal/feature/ledger/adapters"
	"portfolio_backend/internal/feature/ledger/usecase"
)

// NewLedger creates a LedgerUsecase backed by the assets table.
func NewLedger(db *gorm.DB, refresher usecase.BatchRefresher) *usecase.LedgerUsecase {
	return usecase.NewLedgerUsecase(adapters.NewAssetRepository(db), refresher)
}
