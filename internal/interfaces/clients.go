// Package interfaces defines service contracts for Foregone
package interfaces

import (
	"context"
	"time"

	"github.com/foregonehq/foregone/internal/models"
)

// MarketDataClient provides access to an external market data provider.
// Resilience (rate limiting, retry, circuit breaking) lives behind this
// interface; callers see only data or an error.
type MarketDataClient interface {
	// GetDailyHistory retrieves daily adjusted-close history for a ticker
	// from a start date.
	GetDailyHistory(ctx context.Context, ticker string, from time.Time) (*models.ProviderHistory, error)

	// GetFxHistory retrieves the daily rate history for a currency pair.
	// The returned rates r convert as amountBase = amountQuote / r.
	GetFxHistory(ctx context.Context, baseCurrency, quoteCurrency string, from time.Time) (*models.ProviderHistory, error)

	// Search looks up ticker candidates for a free-text query.
	Search(ctx context.Context, query string) ([]models.SearchCandidate, error)
}
