package market

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foregonehq/foregone/internal/common"
	"github.com/foregonehq/foregone/internal/models"
	"github.com/foregonehq/foregone/internal/storage"
)

// fakeClient is a scriptable MarketDataClient.
type fakeClient struct {
	mu         sync.Mutex
	histories  map[string]*models.ProviderHistory
	candidates []models.SearchCandidate
	err        error
	calls      int
}

func (f *fakeClient) GetDailyHistory(ctx context.Context, ticker string, from time.Time) (*models.ProviderHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	h, ok := f.histories[ticker]
	if !ok {
		return nil, fmt.Errorf("no data for %s", ticker)
	}
	return h, nil
}

func (f *fakeClient) GetFxHistory(ctx context.Context, base, quote string, from time.Time) (*models.ProviderHistory, error) {
	return f.GetDailyHistory(ctx, base+quote+"=X", from)
}

func (f *fakeClient) Search(ctx context.Context, query string) ([]models.SearchCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

// memStore is an in-memory MarketStore.
type memStore struct {
	mu     sync.Mutex
	market map[string]*models.MarketData
	fx     map[string]*models.FxData
}

func newMemStore() *memStore {
	return &memStore{
		market: make(map[string]*models.MarketData),
		fx:     make(map[string]*models.FxData),
	}
}

func (m *memStore) GetMarketData(ctx context.Context, ticker string) (*models.MarketData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.market[ticker]
	if !ok {
		return nil, fmt.Errorf("market data for '%s': %w", ticker, storage.ErrNotFound)
	}
	return d, nil
}

func (m *memStore) SaveMarketData(ctx context.Context, data *models.MarketData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.market[data.Ticker] = data
	return nil
}

func (m *memStore) ListTickers(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.market))
	for t := range m.market {
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) GetFxData(ctx context.Context, pair string) (*models.FxData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.fx[pair]
	if !ok {
		return nil, fmt.Errorf("fx data for '%s': %w", pair, storage.ErrNotFound)
	}
	return d, nil
}

func (m *memStore) SaveFxData(ctx context.Context, data *models.FxData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fx[data.Pair] = data
	return nil
}

func historyFrom(dates ...string) []models.PricePoint {
	points := make([]models.PricePoint, len(dates))
	for i, d := range dates {
		t, _ := time.Parse("2006-01-02", d)
		points[i] = models.PricePoint{Date: t, AdjClose: float64(i + 1)}
	}
	return points
}

func TestGetHistoryFetchesAndCaches(t *testing.T) {
	client := &fakeClient{histories: map[string]*models.ProviderHistory{
		"AAA": {Currency: "USD", ShortName: "Triple A", History: historyFrom("2020-01-01", "2020-01-02")},
	}}
	store := newMemStore()
	svc := NewService(store, client, common.NewSilentLogger())

	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	data, stale, err := svc.GetHistory(context.Background(), "aaa", from)
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, "AAA", data.Ticker)
	assert.Equal(t, "USD", data.Currency)
	assert.Len(t, data.History, 2)
	assert.Equal(t, 1, client.calls)

	// Second read is served from cache, no provider call.
	_, stale, err = svc.GetHistory(context.Background(), "AAA", from)
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, 1, client.calls)

	// Durable tier was written.
	saved, err := store.GetMarketData(context.Background(), "AAA")
	require.NoError(t, err)
	assert.Equal(t, "Triple A", saved.Name)
}

func TestGetHistoryStaleFallback(t *testing.T) {
	store := newMemStore()
	old := &models.MarketData{
		Ticker:      "AAA",
		Currency:    "USD",
		History:     historyFrom("2020-01-01"),
		LastUpdated: time.Now().Add(-48 * time.Hour), // expired
	}
	require.NoError(t, store.SaveMarketData(context.Background(), old))

	client := &fakeClient{err: errors.New("provider down")}
	svc := NewService(store, client, common.NewSilentLogger())

	data, stale, err := svc.GetHistory(context.Background(), "AAA", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Len(t, data.History, 1)
}

func TestGetHistoryErrorWithoutFallback(t *testing.T) {
	client := &fakeClient{err: errors.New("provider down")}
	svc := NewService(newMemStore(), client, common.NewSilentLogger())

	_, _, err := svc.GetHistory(context.Background(), "AAA", time.Time{})
	require.Error(t, err)
}

func TestGetHistoryRefetchesWhenWindowExtendsEarlier(t *testing.T) {
	client := &fakeClient{histories: map[string]*models.ProviderHistory{
		"AAA": {Currency: "USD", History: historyFrom("2010-01-04", "2010-01-05")},
	}}
	store := newMemStore()
	// Fresh cached copy that only reaches back to 2020.
	require.NoError(t, store.SaveMarketData(context.Background(), &models.MarketData{
		Ticker:      "AAA",
		Currency:    "USD",
		History:     historyFrom("2020-01-01"),
		LastUpdated: time.Now(),
	}))
	svc := NewService(store, client, common.NewSilentLogger())

	data, stale, err := svc.GetHistory(context.Background(), "AAA", time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, 1, client.calls, "earlier window should force a provider fetch")
	assert.Len(t, data.History, 2)
}

func TestGetFxHistory(t *testing.T) {
	client := &fakeClient{histories: map[string]*models.ProviderHistory{
		"GBPUSD=X": {History: historyFrom("2020-01-01", "2020-01-02")},
	}}
	svc := NewService(newMemStore(), client, common.NewSilentLogger())

	data, stale, err := svc.GetFxHistory(context.Background(), "gbp", "usd", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, "GBPUSD", data.Pair)
	assert.Len(t, data.History, 2)
}

func TestRefreshCached(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.SaveMarketData(context.Background(), &models.MarketData{
		Ticker:      "AAA",
		History:     historyFrom("2020-01-01"),
		LastUpdated: time.Now().Add(-24 * time.Hour),
	}))

	client := &fakeClient{histories: map[string]*models.ProviderHistory{
		"AAA": {Currency: "USD", History: historyFrom("2020-01-01", "2020-01-02", "2020-01-03")},
	}}
	svc := NewService(store, client, common.NewSilentLogger())

	require.NoError(t, svc.RefreshCached(context.Background()))

	refreshed, err := store.GetMarketData(context.Background(), "AAA")
	require.NoError(t, err)
	assert.Len(t, refreshed.History, 3)
	assert.WithinDuration(t, time.Now(), refreshed.LastUpdated, time.Minute)
}
