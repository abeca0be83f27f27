package entity

// RefreshRequest asks for a fresh price of one ledger asset.
type RefreshRequest struct {
	AssetID uint
	Class   AssetClass
	Symbol  string
}

// PriceUpdate is a successful refresh for one asset.
type PriceUpdate struct {
	AssetID uint
	Quote   PriceQuote
}

// RefreshBatchResult summarizes a batch refresh.
// Updated holds successful updates in request order.
type RefreshBatchResult struct {
	Attempted int
	Updated   []PriceUpdate
}
