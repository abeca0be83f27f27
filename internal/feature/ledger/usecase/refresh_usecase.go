// Package usecase implements the ledger-backed price refresh.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	pricing "portfolio_backend/internal/feature/pricing/domain/entity"
)

// AssetRepository abstracts the ledger persistence needed for a refresh.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type AssetRepository interface {
	ListRefreshRequests(ctx context.Context, userID uint) ([]pricing.RefreshRequest, error)
	ListUserIDs(ctx context.Context) ([]uint, error)
	ApplyUpdates(ctx context.Context, updates []pricing.PriceUpdate) (int, error)
}

// BatchRefresher fetches prices for a batch of refresh requests.
type BatchRefresher interface {
	RefreshBatch(ctx context.Context, requests []pricing.RefreshRequest) pricing.RefreshBatchResult
}

// RefreshSummary reports the outcome of a ledger refresh.
type RefreshSummary struct {
	Users     int
	Attempted int
	Updated   int
}

// LedgerUsecase refreshes stored asset prices.
type LedgerUsecase struct {
	repo      AssetRepository
	refresher BatchRefresher
}

// NewLedgerUsecase creates a new LedgerUsecase.
func NewLedgerUsecase(repo AssetRepository, refresher BatchRefresher) *LedgerUsecase {
	return &LedgerUsecase{repo: repo, refresher: refresher}
}

// RefreshUser fetches fresh prices for every priced asset of one user
// and writes the successful ones back in a single transaction.
func (u *LedgerUsecase) RefreshUser(ctx context.Context, userID uint) (RefreshSummary, error) {
	reqs, err := u.repo.ListRefreshRequests(ctx, userID)
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("list assets of user %d: %w", userID, err)
	}
	if len(reqs) == 0 {
		return RefreshSummary{Users: 1}, nil
	}

	res := u.refresher.RefreshBatch(ctx, reqs)
	applied, err := u.repo.ApplyUpdates(ctx, res.Updated)
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("apply updates of user %d: %w", userID, err)
	}

	slog.Info("ledger refreshed", "user_id", userID, "attempted", res.Attempted, "updated", applied)
	return RefreshSummary{Users: 1, Attempted: res.Attempted, Updated: applied}, nil
}

// RefreshAll refreshes every user that holds assets.
// A failing user is logged and skipped; the joined errors are returned with the partial summary.
func (u *LedgerUsecase) RefreshAll(ctx context.Context) (RefreshSummary, error) {
	ids, err := u.repo.ListUserIDs(ctx)
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("list users: %w", err)
	}

	var (
		total RefreshSummary
		errs  []error
	)
	for _, id := range ids {
		s, err := u.RefreshUser(ctx, id)
		if err != nil {
			// 1人のユーザーで失敗しても処理を止めずに次へ
			slog.Error("failed to refresh ledger", "user_id", id, "error", err)
			errs = append(errs, err)
			continue
		}
		total.Users += s.Users
		total.Attempted += s.Attempted
		total.Updated += s.Updated
	}
	return total, errors.Join(errs...)
}
