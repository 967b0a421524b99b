// Package market provides read-through access to provider data with a
// fast in-process tier and a durable tier underneath.
package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foregonehq/foregone/internal/common"
	"github.com/foregonehq/foregone/internal/interfaces"
	"github.com/foregonehq/foregone/internal/models"
	"github.com/foregonehq/foregone/internal/storage"
)

// Service implements interfaces.MarketService.
type Service struct {
	store  interfaces.MarketStore
	fast   *storage.MemCache
	client interfaces.MarketDataClient
	logger *common.Logger
}

// NewService creates a market data service.
func NewService(store interfaces.MarketStore, client interfaces.MarketDataClient, logger *common.Logger) *Service {
	return &Service{
		store:  store,
		fast:   storage.NewMemCache(),
		client: client,
		logger: logger,
	}
}

// GetHistory returns price history for a ticker covering dates from `from`
// onward. Reads fall through fast tier -> durable tier -> provider; if the
// provider fails and an expired durable copy exists, that copy is returned
// with stale=true.
func (s *Service) GetHistory(ctx context.Context, ticker string, from time.Time) (*models.MarketData, bool, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	key := "md:" + ticker

	if v, ok := s.fast.Get(key); ok {
		if data := v.(*models.MarketData); covers(data.FirstDate(), data.LastUpdated, from, common.FreshnessHistory) {
			return data, false, nil
		}
	}

	durable, derr := s.store.GetMarketData(ctx, ticker)
	if derr == nil && covers(durable.FirstDate(), durable.LastUpdated, from, common.FreshnessHistory) {
		s.fast.Set(key, durable, common.FreshnessHistory)
		return durable, false, nil
	}
	if derr != nil && !errors.Is(derr, storage.ErrNotFound) {
		return nil, false, derr
	}

	fetched, ferr := s.client.GetDailyHistory(ctx, ticker, from)
	if ferr != nil {
		if durable != nil {
			// Stale-data fallback: better an old series than none.
			s.logger.Warn().Err(ferr).Str("ticker", ticker).Msg("Provider fetch failed, serving stale market data")
			return durable, true, nil
		}
		return nil, false, fmt.Errorf("fetch history for %s: %w", ticker, ferr)
	}

	data := &models.MarketData{
		Ticker:      ticker,
		Currency:    fetched.Currency,
		Name:        fetched.ShortName,
		History:     fetched.History,
		LastUpdated: time.Now(),
	}
	if err := s.store.SaveMarketData(ctx, data); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to persist market data")
	}
	s.fast.Set(key, data, common.FreshnessHistory)

	return data, false, nil
}

// GetFxHistory returns the rate history for a currency pair, with the same
// tiering and stale fallback as GetHistory.
func (s *Service) GetFxHistory(ctx context.Context, baseCurrency, quoteCurrency string, from time.Time) (*models.FxData, bool, error) {
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))
	quote := strings.ToUpper(strings.TrimSpace(quoteCurrency))
	pair := models.PairSymbol(base, quote)
	key := "fx:" + pair

	if v, ok := s.fast.Get(key); ok {
		if data := v.(*models.FxData); fxCovers(data, from) {
			return data, false, nil
		}
	}

	durable, derr := s.store.GetFxData(ctx, pair)
	if derr == nil && fxCovers(durable, from) {
		s.fast.Set(key, durable, common.FreshnessFx)
		return durable, false, nil
	}
	if derr != nil && !errors.Is(derr, storage.ErrNotFound) {
		return nil, false, derr
	}

	fetched, ferr := s.client.GetFxHistory(ctx, base, quote, from)
	if ferr != nil {
		if durable != nil {
			s.logger.Warn().Err(ferr).Str("pair", pair).Msg("Provider fetch failed, serving stale FX data")
			return durable, true, nil
		}
		return nil, false, fmt.Errorf("fetch fx history for %s: %w", pair, ferr)
	}

	data := &models.FxData{
		Pair:        pair,
		History:     fetched.History,
		LastUpdated: time.Now(),
	}
	if err := s.store.SaveFxData(ctx, data); err != nil {
		s.logger.Warn().Err(err).Str("pair", pair).Msg("Failed to persist FX data")
	}
	s.fast.Set(key, data, common.FreshnessFx)

	return data, false, nil
}

// RefreshCached re-fetches every ticker already in the durable store.
func (s *Service) RefreshCached(ctx context.Context) error {
	tickers, err := s.store.ListTickers(ctx)
	if err != nil {
		return fmt.Errorf("list cached tickers: %w", err)
	}

	var failed int
	for _, ticker := range tickers {
		existing, err := s.store.GetMarketData(ctx, ticker)
		if err != nil {
			failed++
			continue
		}

		from := existing.FirstDate()
		fetched, err := s.client.GetDailyHistory(ctx, ticker, from)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Refresh fetch failed")
			failed++
			continue
		}

		existing.Currency = fetched.Currency
		if fetched.ShortName != "" {
			existing.Name = fetched.ShortName
		}
		existing.History = fetched.History
		existing.LastUpdated = time.Now()
		if err := s.store.SaveMarketData(ctx, existing); err != nil {
			failed++
			continue
		}
		s.fast.Set("md:"+ticker, existing, common.FreshnessHistory)
	}

	s.logger.Info().Int("tickers", len(tickers)).Int("failed", failed).Msg("Cached market data refreshed")
	if failed == len(tickers) && len(tickers) > 0 {
		return fmt.Errorf("refresh failed for all %d tickers", len(tickers))
	}
	return nil
}

// covers reports whether a cached series both reaches back to the requested
// start and is within its freshness TTL. A series whose first point is after
// `from` may simply not trade that early, so a small grace window applies.
func covers(first, updated, from time.Time, ttl time.Duration) bool {
	if !common.IsFresh(updated, ttl) {
		return false
	}
	if from.IsZero() || first.IsZero() {
		return !first.IsZero()
	}
	return !first.After(from.AddDate(0, 0, 7))
}

func fxCovers(data *models.FxData, from time.Time) bool {
	if !common.IsFresh(data.LastUpdated, common.FreshnessFx) {
		return false
	}
	if len(data.History) == 0 {
		return false
	}
	first := data.History[0].Date
	for _, p := range data.History[1:] {
		if p.Date.Before(first) {
			first = p.Date
		}
	}
	if from.IsZero() {
		return true
	}
	return !first.After(from.AddDate(0, 0, 7))
}
