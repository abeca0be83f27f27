// Package entity defines the domain models for the ledger feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is one holding in a user's portfolio.
// AssetType uses the same values as pricing's AssetClass, plus "cash".
type Asset struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"not null;index"`
	AssetType string          `gorm:"size:50;not null"`
	Symbol    string          `gorm:"size:50;not null"`
	Name      string          `gorm:"size:255"`
	Quantity  decimal.Decimal `gorm:"type:decimal(24,8);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(24,8);not null;default:0"`
	AvgCost   decimal.Decimal `gorm:"type:decimal(24,8);not null;default:0"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}
