// Package dto defines data transfer objects for the ledger HTTP API.
package dto

// RefreshResponse reports how many assets were refreshed.
type RefreshResponse struct {
	Attempted int `json:"attempted"`
	Updated   int `json:"updated"`
}
