// Package interfaces defines service contracts for Foregone
package interfaces

import (
	"context"
	"time"

	"github.com/foregonehq/foregone/internal/models"
)

// MarketService is the read-through data layer: fast tier, then durable
// tier, then the provider. The stale flag is true when the provider was
// unreachable and an expired durable copy was served instead.
type MarketService interface {
	GetHistory(ctx context.Context, ticker string, from time.Time) (data *models.MarketData, stale bool, err error)
	GetFxHistory(ctx context.Context, baseCurrency, quoteCurrency string, from time.Time) (data *models.FxData, stale bool, err error)
	Resolve(ctx context.Context, query string, limit int) ([]models.SearchCandidate, error)

	// RefreshCached re-fetches every ticker and pair already in the durable
	// store; used by the warm-cache and the nightly scheduler.
	RefreshCached(ctx context.Context) error
}

// SimulationService validates, orchestrates and caches simulations.
type SimulationService interface {
	SimulateBasket(ctx context.Context, req *models.SimulationRequest) (*models.SimulationResult, error)
	SimulateItem(ctx context.Context, item models.SpendItem, userCurrency string) (*models.SimulationResult, error)
	RenderChart(ctx context.Context, req *models.SimulationRequest) ([]byte, error)
}
