// Package interfaces defines service contracts for Foregone
package interfaces

import (
	"context"

	"github.com/foregonehq/foregone/internal/models"
)

// StorageManager coordinates the durable storage backends
type StorageManager interface {
	MarketStore() MarketStore
	ResultStore() ResultStore
	Close() error
}

// MarketStore is the durable tier for provider data.
type MarketStore interface {
	GetMarketData(ctx context.Context, ticker string) (*models.MarketData, error)
	SaveMarketData(ctx context.Context, data *models.MarketData) error
	ListTickers(ctx context.Context) ([]string, error)

	GetFxData(ctx context.Context, pair string) (*models.FxData, error)
	SaveFxData(ctx context.Context, data *models.FxData) error
}

// ResultStore is the durable tier for content-addressed simulation results.
type ResultStore interface {
	Get(ctx context.Context, key string) (*models.CachedResult, error)
	Save(ctx context.Context, result *models.CachedResult) error
}
