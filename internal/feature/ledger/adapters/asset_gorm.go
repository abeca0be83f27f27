// Package adapters はledgerフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"portfolio_backend/internal/feature/ledger/domain/entity"
	"portfolio_backend/internal/feature/ledger/usecase"
	pricing "portfolio_backend/internal/feature/pricing/domain/entity"
)

// assetGorm はAssetRepositoryインターフェースのGORM実装です。
type assetGorm struct {
	db *gorm.DB
}

var _ usecase.AssetRepository = (*assetGorm)(nil)

// NewAssetRepository は指定されたDB接続でassetGormリポジトリの新しいインスタンスを生成します。
func NewAssetRepository(db *gorm.DB) *assetGorm {
	return &assetGorm{db: db}
}

// refreshRow は価格更新に必要な列だけを読み出すための射影です。
type refreshRow struct {
	ID        uint
	Symbol    string
	AssetType string
}

// ListRefreshRequests はユーザーの保有資産を価格更新リクエストに変換して返します。
// 現金など価格取得の対象外の資産は含みません。
func (r *assetGorm) ListRefreshRequests(ctx context.Context, userID uint) ([]pricing.RefreshRequest, error) {
	var rows []refreshRow
	if err := r.db.WithContext(ctx).
		Model(&entity.Asset{}).
		Select("id", "symbol", "asset_type").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	reqs := make([]pricing.RefreshRequest, 0, len(rows))
	for _, row := range rows {
		if row.AssetType == pricing.Cash {
			continue
		}
		class, err := pricing.ParseAssetClass(row.AssetType)
		if err != nil {
			slog.Warn("skipping asset with unknown type", "asset_id", row.ID, "asset_type", row.AssetType)
			continue
		}
		reqs = append(reqs, pricing.RefreshRequest{AssetID: row.ID, Class: class, Symbol: row.Symbol})
	}
	return reqs, nil
}

// ListUserIDs は資産を保有しているユーザーIDを昇順で返します。
func (r *assetGorm) ListUserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&entity.Asset{}).
		Distinct().
		Order("user_id ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ApplyUpdates は取得した価格を1トランザクションで書き込み、更新した行数を返します。
// いずれかの更新に失敗した場合は全体をロールバックします。
func (r *assetGorm) ApplyUpdates(ctx context.Context, updates []pricing.PriceUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	var applied int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied = 0
		for _, u := range updates {
			res := tx.Model(&entity.Asset{}).
				Where("id = ?", u.AssetID).
				Update("price", u.Quote.Price)
			if res.Error != nil {
				return res.Error
			}
			applied += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}
