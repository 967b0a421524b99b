// Package storage provides BadgerDB-based persistence
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/foregonehq/foregone/internal/common"
	"github.com/foregonehq/foregone/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// BadgerDB wraps badgerhold for typed storage
type BadgerDB struct {
	store  *badgerhold.Store
	logger *common.Logger
}

// NewBadgerDB creates a new BadgerDB instance
func NewBadgerDB(logger *common.Logger, path string) (*BadgerDB, error) {
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil // Disable badger's internal logging

	store, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	logger.Debug().Str("path", path).Msg("BadgerDB opened")

	return &BadgerDB{
		store:  store,
		logger: logger,
	}, nil
}

// Close closes the database
func (db *BadgerDB) Close() error {
	if db.store != nil {
		return db.store.Close()
	}
	return nil
}

// marketStore implements interfaces.MarketStore using BadgerDB
type marketStore struct {
	db     *BadgerDB
	logger *common.Logger
}

func newMarketStore(db *BadgerDB, logger *common.Logger) *marketStore {
	return &marketStore{db: db, logger: logger}
}

func (s *marketStore) GetMarketData(ctx context.Context, ticker string) (*models.MarketData, error) {
	var data models.MarketData
	err := s.db.store.Get(ticker, &data)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("market data for '%s': %w", ticker, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get market data: %w", err)
	}
	return &data, nil
}

func (s *marketStore) SaveMarketData(ctx context.Context, data *models.MarketData) error {
	if data.LastUpdated.IsZero() {
		data.LastUpdated = time.Now()
	}
	if err := s.db.store.Upsert(data.Ticker, data); err != nil {
		return fmt.Errorf("failed to save market data: %w", err)
	}
	s.logger.Debug().Str("ticker", data.Ticker).Int("points", len(data.History)).Msg("Market data saved")
	return nil
}

func (s *marketStore) ListTickers(ctx context.Context) ([]string, error) {
	var all []models.MarketData
	if err := s.db.store.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list tickers: %w", err)
	}

	tickers := make([]string, len(all))
	for i, d := range all {
		tickers[i] = d.Ticker
	}
	return tickers, nil
}

func (s *marketStore) GetFxData(ctx context.Context, pair string) (*models.FxData, error) {
	var data models.FxData
	err := s.db.store.Get(pair, &data)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("fx data for '%s': %w", pair, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get fx data: %w", err)
	}
	return &data, nil
}

func (s *marketStore) SaveFxData(ctx context.Context, data *models.FxData) error {
	if data.LastUpdated.IsZero() {
		data.LastUpdated = time.Now()
	}
	if err := s.db.store.Upsert(data.Pair, data); err != nil {
		return fmt.Errorf("failed to save fx data: %w", err)
	}
	s.logger.Debug().Str("pair", data.Pair).Int("points", len(data.History)).Msg("FX data saved")
	return nil
}

// resultStore implements interfaces.ResultStore using BadgerDB
type resultStore struct {
	db     *BadgerDB
	logger *common.Logger
}

func newResultStore(db *BadgerDB, logger *common.Logger) *resultStore {
	return &resultStore{db: db, logger: logger}
}

func (s *resultStore) Get(ctx context.Context, key string) (*models.CachedResult, error) {
	var cached models.CachedResult
	err := s.db.store.Get(key, &cached)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("cached result '%s': %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cached result: %w", err)
	}
	return &cached, nil
}

func (s *resultStore) Save(ctx context.Context, result *models.CachedResult) error {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}
	if err := s.db.store.Upsert(result.Key, result); err != nil {
		return fmt.Errorf("failed to save cached result: %w", err)
	}
	return nil
}
