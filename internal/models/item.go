// Package models defines data structures for Foregone
package models

import (
	"strings"
	"time"
)

// Frequency describes how often a spend item recurs.
type Frequency string

const (
	FrequencyOneOff   Frequency = "one-off"
	FrequencyDaily    Frequency = "daily"
	FrequencyWorkdays Frequency = "workdays"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyYearly   Frequency = "yearly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOneOff, FrequencyDaily, FrequencyWorkdays,
		FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// SpendItem is a recurring or one-off expenditure mapped to an instrument.
// Items are immutable once a simulation begins; the engine never mutates them.
type SpendItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cost      float64   `json:"cost"`
	Currency  string    `json:"currency"` // 3-letter code
	Frequency Frequency `json:"frequency"`
	StartDate time.Time `json:"start_date"`
	Ticker    string    `json:"ticker"`
}

// Normalize uppercases the currency and truncates the start date to a
// UTC calendar day.
func (i *SpendItem) Normalize() {
	i.Currency = strings.ToUpper(strings.TrimSpace(i.Currency))
	i.Ticker = strings.ToUpper(strings.TrimSpace(i.Ticker))
	i.StartDate = DateOnly(i.StartDate)
}

// DateOnly truncates t to a UTC calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
