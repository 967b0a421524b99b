package sim

import (
	"testing"
	"time"

	"github.com/foregonehq/foregone/internal/models"
)

func pp(y int, m time.Month, d int, price float64) models.PricePoint {
	return models.PricePoint{Date: day(y, m, d), AdjClose: price}
}

func TestCursorForwardFill(t *testing.T) {
	c := newSeriesCursor([]models.PricePoint{
		pp(2020, time.January, 1, 10),
		pp(2020, time.January, 3, 12),
		pp(2020, time.January, 7, 15),
	})

	cases := []struct {
		d    time.Time
		want float64
		ok   bool
	}{
		{day(2019, time.December, 31), 0, false},
		{day(2020, time.January, 1), 10, true},
		{day(2020, time.January, 2), 10, true}, // forward-filled
		{day(2020, time.January, 3), 12, true},
		{day(2020, time.January, 5), 12, true},
		{day(2020, time.January, 7), 15, true},
		{day(2020, time.March, 1), 15, true}, // past the end, last value persists
	}

	for _, tc := range cases {
		got, ok := c.advanceTo(tc.d)
		if got != tc.want || ok != tc.ok {
			t.Errorf("advanceTo(%s) = (%v, %v), want (%v, %v)",
				tc.d.Format("2006-01-02"), got, ok, tc.want, tc.ok)
		}
	}
}

func TestCursorEmptySeries(t *testing.T) {
	c := newSeriesCursor(nil)

	got, ok := c.advanceTo(day(2020, time.January, 1))
	if ok || got != 0 {
		t.Errorf("empty cursor = (%v, %v), want (0, false)", got, ok)
	}
}

func TestCloneSortedDoesNotMutateInput(t *testing.T) {
	input := []models.PricePoint{
		pp(2020, time.March, 1, 3),
		pp(2020, time.January, 1, 1),
		pp(2020, time.February, 1, 2),
	}

	sorted := cloneSorted(input)

	if !input[0].Date.Equal(day(2020, time.March, 1)) {
		t.Error("cloneSorted mutated the caller's slice")
	}
	if len(sorted) != 3 || !sorted[0].Date.Equal(day(2020, time.January, 1)) {
		t.Errorf("cloneSorted did not sort ascending: %v", sorted)
	}
}

func TestCloneSortedDeduplicates(t *testing.T) {
	input := []models.PricePoint{
		pp(2020, time.January, 1, 1),
		pp(2020, time.January, 2, 2),
		pp(2020, time.January, 2, 2.5), // duplicate date, later entry wins
		pp(2020, time.January, 3, 3),
	}

	sorted := cloneSorted(input)

	if len(sorted) != 3 {
		t.Fatalf("got %d points, want 3", len(sorted))
	}
	if sorted[1].AdjClose != 2.5 {
		t.Errorf("duplicate date kept %v, want the later entry 2.5", sorted[1].AdjClose)
	}
}

func TestCloneSortedAlreadySortedIsNoOp(t *testing.T) {
	input := []models.PricePoint{
		pp(2020, time.January, 1, 1),
		pp(2020, time.January, 2, 2),
	}

	sorted := cloneSorted(input)

	for i := range input {
		if !sorted[i].Date.Equal(input[i].Date) || sorted[i].AdjClose != input[i].AdjClose {
			t.Fatalf("sorted[%d] = %v, want %v", i, sorted[i], input[i])
		}
	}
}
