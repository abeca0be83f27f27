// Package yahoochart provides a client for the Yahoo Finance chart endpoint.
package yahoochart

import (
	"os"
	"time"
)

const defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Config holds configuration for the chart client.
type Config struct {
	BaseURL string        // e.g. "https://query1.finance.yahoo.com/v8/finance/chart"
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads chart client configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("PRICING_CHART_BASE_URL")
	if base == "" {
		base = defaultBaseURL
	}
	return Config{
		BaseURL: base,
		Timeout: 15 * time.Second,
	}
}
