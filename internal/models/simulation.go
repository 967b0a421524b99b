// Package models defines data structures for Foregone
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// GraphPoint is one day of the simulated wealth comparison.
type GraphPoint struct {
	Date  time.Time `json:"date"`
	Spent float64   `json:"spent"`
	Value float64   `json:"value"`
}

// SimulationResult is the outcome of replaying a basket of spend items
// against instrument prices. GraphData is ordered by date; its first and
// last entries are always the true first and last simulated days.
type SimulationResult struct {
	TotalSpent       float64      `json:"total_spent"`
	InvestmentValue  float64      `json:"investment_value"`
	Currency         string       `json:"currency"`
	GrowthPercentage float64      `json:"growth_percentage"`
	GraphData        []GraphPoint `json:"graph_data"`
}

// SimulationRequest is a basket simulation request: the items to replay
// and the currency to report in.
type SimulationRequest struct {
	Items    []SpendItem `json:"items"`
	Currency string      `json:"currency"`
}

// ContentHash returns a stable key for caching this request's result.
// The engine is deterministic, so identical (items, currency) inputs always
// produce the identical result; item order does not affect the outcome, so
// items are sorted before hashing.
func (r *SimulationRequest) ContentHash() string {
	items := make([]SpendItem, len(r.Items))
	copy(items, r.Items)
	sort.Slice(items, func(i, j int) bool {
		if items[i].ID != items[j].ID {
			return items[i].ID < items[j].ID
		}
		return items[i].Ticker < items[j].Ticker
	})

	payload := struct {
		Items    []SpendItem `json:"items"`
		Currency string      `json:"currency"`
	}{items, r.Currency}

	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CachedResult is a content-addressed simulation result in the durable store.
type CachedResult struct {
	Key       string           `json:"key" badgerhold:"key"`
	Result    SimulationResult `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}
