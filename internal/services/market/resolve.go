package market

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/foregonehq/foregone/internal/common"
	"github.com/foregonehq/foregone/internal/models"
)

// Local score weights layered on top of the provider's relevance score.
// The provider score dominates only as a tiebreaker; structural matches
// on the query win.
const (
	scoreExactSymbol  = 100
	scoreSymbolPrefix = 40
	scoreNamePrefix   = 30
	scoreNameContains = 15
	scoreEquityType   = 10
)

// Resolve maps a free-text product or instrument name to ranked ticker
// candidates. Scoring is deterministic: ties break on symbol.
func (s *Service) Resolve(ctx context.Context, query string, limit int) ([]models.SearchCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		limit = 5
	}

	// Candidate lists barely change; cache the full ranked list per query
	// and apply the limit on read.
	key := "q:" + strings.ToLower(query)
	if v, ok := s.fast.Get(key); ok {
		return clip(v.([]models.SearchCandidate), limit), nil
	}

	raw, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	scored := make([]models.SearchCandidate, 0, len(raw))
	for _, c := range raw {
		c.Score = scoreCandidate(query, c)
		scored = append(scored, c)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Symbol < scored[j].Symbol
	})

	s.fast.Set(key, scored, common.FreshnessSearch)

	return clip(scored, limit), nil
}

func clip(candidates []models.SearchCandidate, limit int) []models.SearchCandidate {
	if len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}

func scoreCandidate(query string, c models.SearchCandidate) float64 {
	q := strings.ToLower(query)
	symbol := strings.ToLower(c.Symbol)
	name := strings.ToLower(c.Name)

	var score float64
	switch {
	case symbol == q:
		score += scoreExactSymbol
	case strings.HasPrefix(symbol, q):
		score += scoreSymbolPrefix
	}

	switch {
	case strings.HasPrefix(name, q):
		score += scoreNamePrefix
	case strings.Contains(name, q):
		score += scoreNameContains
	}

	if c.Type == "EQUITY" || c.Type == "ETF" {
		score += scoreEquityType
	}

	// Provider relevance as a small tiebreaker, never outweighing a
	// structural match.
	tiebreak := c.Score / 10000
	if tiebreak > 5 {
		tiebreak = 5
	}
	score += tiebreak

	return score
}
