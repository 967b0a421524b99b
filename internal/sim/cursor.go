package sim

import (
	"sort"
	"time"

	"github.com/foregonehq/foregone/internal/models"
)

// seriesCursor is a forward-only pointer over a date-sorted series. The
// day loop drives it with non-decreasing dates, so each call does amortized
// O(1) work and a whole simulation touches each series entry exactly once.
type seriesCursor struct {
	points []models.PricePoint
	idx    int
	value  float64
	seen   bool
}

func newSeriesCursor(points []models.PricePoint) *seriesCursor {
	return &seriesCursor{points: points}
}

// advanceTo returns the series value on the greatest date <= day
// (forward-fill). The second return is false until the series has produced
// its first value.
func (c *seriesCursor) advanceTo(day time.Time) (float64, bool) {
	for c.idx < len(c.points) && !c.points[c.idx].Date.After(day) {
		c.value = c.points[c.idx].AdjClose
		c.seen = true
		c.idx++
	}
	return c.value, c.seen
}

// cloneSorted copies a series, sorts it ascending by date, and collapses
// duplicate dates keeping the later entry. The caller's slice is never
// mutated, so concurrent simulations may share cached series safely.
func cloneSorted(points []models.PricePoint) []models.PricePoint {
	if len(points) == 0 {
		return nil
	}

	sorted := make([]models.PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := sorted[:1]
	for _, p := range sorted[1:] {
		if p.Date.Equal(out[len(out)-1].Date) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
