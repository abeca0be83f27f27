// Package dto defines data transfer objects for the pricing HTTP API.
package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteResponse is a single normalized quote.
type QuoteResponse struct {
	Class       string          `json:"class"`
	Symbol      string          `json:"symbol"`
	DisplayName string          `json:"display_name"`
	Price       decimal.Decimal `json:"price"`
	AsOf        time.Time       `json:"as_of"`
}

// SymbolListResponse lists the symbols a registry-bound class accepts.
type SymbolListResponse struct {
	Class   string   `json:"class"`
	Symbols []string `json:"symbols"`
}
