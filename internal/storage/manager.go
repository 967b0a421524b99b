package storage

import (
	"fmt"
	"os"

	"github.com/foregonehq/foregone/internal/common"
	"github.com/foregonehq/foregone/internal/interfaces"
)

// Manager implements interfaces.StorageManager over a single BadgerDB.
type Manager struct {
	db      *BadgerDB
	market  *marketStore
	results *resultStore
	logger  *common.Logger
}

// NewStorageManager opens the durable store under the configured data path.
func NewStorageManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	path := config.DurablePath()
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", path, err)
	}

	db, err := NewBadgerDB(logger, path)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:      db,
		market:  newMarketStore(db, logger),
		results: newResultStore(db, logger),
		logger:  logger,
	}, nil
}

// MarketStore returns the durable market data store.
func (m *Manager) MarketStore() interfaces.MarketStore {
	return m.market
}

// ResultStore returns the durable simulation result store.
func (m *Manager) ResultStore() interfaces.ResultStore {
	return m.results
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.db.Close()
}
