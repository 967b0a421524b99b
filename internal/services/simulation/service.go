// Package simulation orchestrates the pure engine: it validates requests,
// loads price and FX series through the market service, and caches results
// by content hash.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/foregonehq/foregone/internal/common"
	"github.com/foregonehq/foregone/internal/interfaces"
	"github.com/foregonehq/foregone/internal/models"
	"github.com/foregonehq/foregone/internal/sim"
	"github.com/foregonehq/foregone/internal/storage"
)

// Validation errors surfaced to the API layer.
var (
	ErrNoItems        = errors.New("at least one item is required")
	ErrTooManyItems   = errors.New("too many items")
	ErrWindowTooLarge = errors.New("simulation window too large")
)

// Service implements interfaces.SimulationService.
type Service struct {
	market  interfaces.MarketService
	results interfaces.ResultStore
	logger  *common.Logger
	cfg     common.SimulationConfig
}

// NewService creates a simulation service.
func NewService(market interfaces.MarketService, results interfaces.ResultStore, logger *common.Logger, cfg common.SimulationConfig) *Service {
	return &Service{
		market:  market,
		results: results,
		logger:  logger,
		cfg:     cfg,
	}
}

// SimulateBasket validates, loads data for, and runs an aggregate
// simulation. Results are cached by content hash: the engine is
// deterministic, so identical (items, currency) always reproduce the
// identical result.
func (s *Service) SimulateBasket(ctx context.Context, req *models.SimulationRequest) (*models.SimulationResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	key := "basket:" + req.ContentHash()
	if cached := s.lookupCached(ctx, key); cached != nil {
		return cached, nil
	}

	result, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	s.saveCached(ctx, key, result)
	return result, nil
}

// SimulateItem runs an isolated single-item simulation.
func (s *Service) SimulateItem(ctx context.Context, item models.SpendItem, userCurrency string) (*models.SimulationResult, error) {
	req := &models.SimulationRequest{Items: []models.SpendItem{item}, Currency: userCurrency}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	item = req.Items[0] // normalized

	key := "item:" + req.ContentHash()
	if cached := s.lookupCached(ctx, key); cached != nil {
		return cached, nil
	}

	prices, fx, err := s.loadItemSeries(ctx, item, req.Currency)
	if err != nil {
		return nil, err
	}

	result := sim.SimulateItem(item, prices, req.Currency, fx, s.cfg.DownsampleTarget)
	s.saveCached(ctx, key, &result)
	return &result, nil
}

func (s *Service) validate(req *models.SimulationRequest) error {
	if len(req.Items) == 0 {
		return ErrNoItems
	}
	if s.cfg.MaxItems > 0 && len(req.Items) > s.cfg.MaxItems {
		return fmt.Errorf("%w: %d items, limit %d", ErrTooManyItems, len(req.Items), s.cfg.MaxItems)
	}

	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		return errors.New("currency is required")
	}

	earliest := time.Time{}
	for i := range req.Items {
		item := &req.Items[i]
		item.Normalize()
		if item.Cost <= 0 {
			return fmt.Errorf("item %q: cost must be positive", item.ID)
		}
		if !item.Frequency.Valid() {
			return fmt.Errorf("item %q: unknown frequency %q", item.ID, item.Frequency)
		}
		if item.Ticker == "" {
			return fmt.Errorf("item %q: ticker is required", item.ID)
		}
		if item.StartDate.IsZero() {
			return fmt.Errorf("item %q: start date is required", item.ID)
		}
		if earliest.IsZero() || item.StartDate.Before(earliest) {
			earliest = item.StartDate
		}
	}

	// The engine's cost is O(days x tickers x items) with no internal
	// ceiling; bound the window here before it runs.
	if s.cfg.MaxWindowDays > 0 {
		days := int(time.Since(earliest).Hours() / 24)
		if days > s.cfg.MaxWindowDays {
			return fmt.Errorf("%w: %d days, limit %d", ErrWindowTooLarge, days, s.cfg.MaxWindowDays)
		}
	}

	return nil
}

func (s *Service) load(ctx context.Context, req *models.SimulationRequest) (*models.SimulationResult, error) {
	started := time.Now()

	earliestByTicker := make(map[string]time.Time)
	currencies := make(map[string]bool)
	for _, item := range req.Items {
		if cur, ok := earliestByTicker[item.Ticker]; !ok || item.StartDate.Before(cur) {
			earliestByTicker[item.Ticker] = item.StartDate
		}
		if item.Currency != "" && item.Currency != req.Currency {
			currencies[item.Currency] = true
		}
	}

	tickers := make([]string, 0, len(earliestByTicker))
	for t := range earliestByTicker {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	pricesByTicker := make(map[string][]models.PricePoint, len(tickers))
	for _, ticker := range tickers {
		data, stale, err := s.market.GetHistory(ctx, ticker, earliestByTicker[ticker])
		if err != nil {
			// A ticker with no data at all still participates: its spend
			// counts, uninvested. Masking data problems is the documented
			// degrade; the log line is the only signal.
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("No price data, ticker contributes uninvested cash only")
			continue
		}
		if stale {
			s.logger.Warn().Str("ticker", ticker).Msg("Using stale price data")
		}
		pricesByTicker[ticker] = data.History
	}

	var earliest time.Time
	for _, item := range req.Items {
		if earliest.IsZero() || item.StartDate.Before(earliest) {
			earliest = item.StartDate
		}
	}

	fxByPair := make(map[string][]models.PricePoint, len(currencies))
	for itemCurrency := range currencies {
		data, stale, err := s.market.GetFxHistory(ctx, req.Currency, itemCurrency, earliest)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("pair", models.PairSymbol(req.Currency, itemCurrency)).
				Msg("No FX data, costs in this currency will not be converted")
			continue
		}
		if stale {
			s.logger.Warn().Str("pair", data.Pair).Msg("Using stale FX data")
		}
		fxByPair[data.Pair] = data.History
	}

	result := sim.SimulateBasket(req.Items, pricesByTicker, req.Currency, fxByPair, s.cfg.DownsampleTarget)

	s.logger.Info().
		Int("items", len(req.Items)).
		Int("tickers", len(tickers)).
		Int("points", len(result.GraphData)).
		Dur("elapsed", time.Since(started)).
		Msg("Simulation complete")

	return &result, nil
}

func (s *Service) loadItemSeries(ctx context.Context, item models.SpendItem, userCurrency string) ([]models.PricePoint, []models.PricePoint, error) {
	var prices, fx []models.PricePoint

	data, stale, err := s.market.GetHistory(ctx, item.Ticker, item.StartDate)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", item.Ticker).Msg("No price data, item will show uninvested cash only")
	} else {
		if stale {
			s.logger.Warn().Str("ticker", item.Ticker).Msg("Using stale price data")
		}
		prices = data.History
	}

	if item.Currency != "" && item.Currency != userCurrency {
		fxData, stale, err := s.market.GetFxHistory(ctx, userCurrency, item.Currency, item.StartDate)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("pair", models.PairSymbol(userCurrency, item.Currency)).
				Msg("No FX data, cost will not be converted")
		} else {
			if stale {
				s.logger.Warn().Str("pair", fxData.Pair).Msg("Using stale FX data")
			}
			fx = fxData.History
		}
	}

	return prices, fx, nil
}

func (s *Service) lookupCached(ctx context.Context, key string) *models.SimulationResult {
	if s.results == nil {
		return nil
	}
	cached, err := s.results.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("Result cache read failed")
		}
		return nil
	}
	if !common.IsFresh(cached.CreatedAt, common.FreshnessResult) {
		return nil
	}
	return &cached.Result
}

func (s *Service) saveCached(ctx context.Context, key string, result *models.SimulationResult) {
	if s.results == nil {
		return
	}
	err := s.results.Save(ctx, &models.CachedResult{
		Key:       key,
		Result:    *result,
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Result cache write failed")
	}
}
