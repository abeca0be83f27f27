package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/pricing/domain"
)

// PriceQuote is a normalized price observation.
type PriceQuote struct {
	DisplayName string          `json:"display_name"`
	Price       decimal.Decimal `json:"price"`
	AsOf        time.Time       `json:"as_of"`
}

// FetchOutcome is the result of one fetch: either a quote or the reason it failed.
// A successful outcome always carries a positive price.
type FetchOutcome struct {
	Quote PriceQuote
	Err   error
}

// Success builds a successful outcome. A non-positive price is downgraded to
// a failure wrapping domain.ErrImplausibleValue.
func Success(q PriceQuote) FetchOutcome {
	if !q.Price.IsPositive() {
		return Failure(fmt.Errorf("%w: price %s", domain.ErrImplausibleValue, q.Price))
	}
	return FetchOutcome{Quote: q}
}

// Failure builds a failed outcome.
func Failure(err error) FetchOutcome {
	if err == nil {
		err = domain.ErrNoMatch
	}
	return FetchOutcome{Err: err}
}

// OK reports whether the outcome is a success.
func (o FetchOutcome) OK() bool { return o.Err == nil }
