// Package models defines data structures for Foregone
package models

import "time"

// PricePoint is a single day's adjusted closing price (or FX rate).
type PricePoint struct {
	Date     time.Time `json:"date"`
	AdjClose float64   `json:"adj_close"`
}

// MarketData holds the cached price history for a ticker.
type MarketData struct {
	Ticker      string       `json:"ticker" badgerhold:"key"`
	Currency    string       `json:"currency"`
	Name        string       `json:"name"`
	History     []PricePoint `json:"history"`
	LastUpdated time.Time    `json:"last_updated"`
}

// FirstDate returns the earliest date in the history, or the zero time.
func (m *MarketData) FirstDate() time.Time {
	if len(m.History) == 0 {
		return time.Time{}
	}
	first := m.History[0].Date
	for _, p := range m.History[1:] {
		if p.Date.Before(first) {
			first = p.Date
		}
	}
	return first
}

// LastDate returns the latest date in the history, or the zero time.
func (m *MarketData) LastDate() time.Time {
	var last time.Time
	for _, p := range m.History {
		if p.Date.After(last) {
			last = p.Date
		}
	}
	return last
}

// FxData holds the cached rate history for a currency pair.
// The pair symbol concatenates base and quote currency codes; the stored
// rate r converts as amount_base = amount_quote / r.
type FxData struct {
	Pair        string       `json:"pair" badgerhold:"key"`
	History     []PricePoint `json:"history"`
	LastUpdated time.Time    `json:"last_updated"`
}

// PairSymbol builds the currency-pair key for converting amounts in
// itemCurrency into userCurrency.
func PairSymbol(userCurrency, itemCurrency string) string {
	return userCurrency + itemCurrency
}

// SearchCandidate is a scored ticker-resolution candidate for a free-text
// product or instrument name.
type SearchCandidate struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Exchange string  `json:"exchange"`
	Type     string  `json:"type"` // EQUITY, ETF, INDEX, ...
	Score    float64 `json:"score"`
}

// ProviderHistory is the raw shape returned by a market data provider
// before it is cached: instrument metadata plus an (unordered) history.
type ProviderHistory struct {
	Currency  string
	ShortName string
	History   []PricePoint
}
