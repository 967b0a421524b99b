package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foregonehq/foregone/internal/common"
	"github.com/foregonehq/foregone/internal/models"
)

func TestResolveRanking(t *testing.T) {
	client := &fakeClient{candidates: []models.SearchCandidate{
		{Symbol: "AAPL34.SA", Name: "Apple Inc DR", Exchange: "SAO", Type: "EQUITY", Score: 900},
		{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NMS", Type: "EQUITY", Score: 25000},
		{Symbol: "APLE", Name: "Apple Hospitality REIT", Exchange: "NYQ", Type: "EQUITY", Score: 2000},
	}}
	svc := NewService(newMemStore(), client, common.NewSilentLogger())

	got, err := svc.Resolve(context.Background(), "AAPL", 5)
	require.NoError(t, err)

	require.NotEmpty(t, got)
	assert.Equal(t, "AAPL", got[0].Symbol, "exact symbol match must rank first")
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestResolveByName(t *testing.T) {
	client := &fakeClient{candidates: []models.SearchCandidate{
		{Symbol: "NFLX", Name: "Netflix, Inc.", Type: "EQUITY", Score: 30000},
		{Symbol: "NFXS", Name: "Netflix Tracker Fund", Type: "ETF", Score: 500},
	}}
	svc := NewService(newMemStore(), client, common.NewSilentLogger())

	got, err := svc.Resolve(context.Background(), "netflix", 1)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "NFLX", got[0].Symbol)
}

func TestResolveCachesQuery(t *testing.T) {
	client := &fakeClient{candidates: []models.SearchCandidate{
		{Symbol: "NFLX", Name: "Netflix, Inc.", Type: "EQUITY", Score: 30000},
		{Symbol: "NFXS", Name: "Netflix Tracker Fund", Type: "ETF", Score: 500},
	}}
	svc := NewService(newMemStore(), client, common.NewSilentLogger())

	first, err := svc.Resolve(context.Background(), "netflix", 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Second lookup is served from the cache; a larger limit still works
	// because the full ranked list is cached.
	client.candidates = nil
	second, err := svc.Resolve(context.Background(), "NETFLIX", 5)
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Equal(t, "NFLX", second[0].Symbol)
}

func TestResolveEmptyQuery(t *testing.T) {
	svc := NewService(newMemStore(), &fakeClient{}, common.NewSilentLogger())

	_, err := svc.Resolve(context.Background(), "   ", 5)
	require.Error(t, err)
}
