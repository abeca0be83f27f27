package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefreshItem is one asset to refresh.
type RefreshItem struct {
	AssetID   uint   `json:"asset_id" binding:"required"`
	AssetType string `json:"asset_type" binding:"required"`
	Symbol    string `json:"symbol"`
}

// RefreshRequest is the body of POST /prices/refresh.
// Requests is capped at 500 items per call.
type RefreshRequest struct {
	Requests []RefreshItem `json:"requests" binding:"max=500,dive"`
}

// UpdatedItem is one successful refresh.
type UpdatedItem struct {
	AssetID     uint            `json:"asset_id"`
	DisplayName string          `json:"display_name"`
	Price       decimal.Decimal `json:"price"`
	AsOf        time.Time       `json:"as_of"`
}

// RefreshResponse reports a batch refresh.
type RefreshResponse struct {
	Attempted int           `json:"attempted"`
	Updated   []UpdatedItem `json:"updated"`
}
