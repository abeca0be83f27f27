// Package entity defines the domain models for the pricing feature.
package entity

import (
	"fmt"
	"strings"

	"portfolio_backend/internal/feature/pricing/domain"
)

// AssetClass identifies which source adapter prices an asset.
// The string values match the ledger's asset_type column.
type AssetClass string

const (
	DomesticEquity AssetClass = "jp_stock"
	ForeignEquity  AssetClass = "us_stock"
	Commodity      AssetClass = "gold"
	CryptoPair     AssetClass = "crypto"
	Fund           AssetClass = "investment_trust"
	FxRate         AssetClass = "usd_jpy"
)

// Cash is a ledger asset type that is never priced.
const Cash = "cash"

// AssetClasses lists every priced class.
var AssetClasses = []AssetClass{DomesticEquity, ForeignEquity, Commodity, CryptoPair, Fund, FxRate}

// ParseAssetClass converts a ledger asset type into an AssetClass.
func ParseAssetClass(s string) (AssetClass, error) {
	c := AssetClass(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AssetClasses {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownAssetClass, s)
}

// NormalizeSymbol applies the class's case folding.
// Foreign tickers and crypto symbols are upper-cased; fund names are kept as entered.
func (c AssetClass) NormalizeSymbol(symbol string) string {
	s := strings.TrimSpace(symbol)
	switch c {
	case ForeignEquity, CryptoPair, Commodity:
		return strings.ToUpper(s)
	default:
		return s
	}
}

func (c AssetClass) String() string { return string(c) }
