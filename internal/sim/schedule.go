// Package sim implements the deterministic spend-vs-invest simulation:
// payment scheduling, forward-filled series replay, and downsampling.
package sim

import (
	"time"

	"github.com/foregonehq/foregone/internal/models"
)

// Fires reports whether a payment for item falls on the given calendar day.
// It is a pure predicate: no date earlier than the item's start date ever
// fires, for any frequency.
func Fires(item models.SpendItem, date time.Time) bool {
	day := models.DateOnly(date)
	start := models.DateOnly(item.StartDate)

	if day.Before(start) {
		return false
	}

	switch item.Frequency {
	case models.FrequencyOneOff:
		return day.Equal(start)

	case models.FrequencyDaily:
		return true

	case models.FrequencyWorkdays:
		wd := day.Weekday()
		return wd != time.Saturday && wd != time.Sunday

	case models.FrequencyWeekly:
		return day.Weekday() == start.Weekday()

	case models.FrequencyMonthly:
		// A start day past the end of a shorter month clamps to that month's
		// last day (31st -> 28th/29th/30th). This is a clamp, not a
		// "next valid day" roll.
		return day.Day() == clampDay(start.Day(), daysInMonth(day.Year(), day.Month()))

	case models.FrequencyYearly:
		// Feb 29 anniversaries fire on Feb 28 in non-leap years.
		if start.Month() == time.February && start.Day() == 29 && !isLeapYear(day.Year()) {
			return day.Month() == time.February && day.Day() == 28
		}
		return day.Month() == start.Month() && day.Day() == start.Day()
	}

	return false
}

func clampDay(day, max int) int {
	if day > max {
		return max
	}
	return day
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
