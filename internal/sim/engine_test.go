package sim

import (
	"math"
	"testing"
	"time"

	"github.com/foregonehq/foregone/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// The worked scenario: monthly 10 GBP into AAA priced 10 then 20.
func TestSimulateItemMonthlyScenario(t *testing.T) {
	it := models.SpendItem{
		ID:        "i1",
		Name:      "subscription",
		Cost:      10,
		Currency:  "GBP",
		Frequency: models.FrequencyMonthly,
		StartDate: day(2020, time.January, 1),
		Ticker:    "AAA",
	}
	prices := []models.PricePoint{
		pp(2020, time.January, 1, 10),
		pp(2020, time.February, 1, 20),
	}

	res := SimulateItem(it, prices, "GBP", nil, 0)

	if !almostEqual(res.TotalSpent, 20) {
		t.Errorf("TotalSpent = %v, want 20", res.TotalSpent)
	}
	// 1 share at 10, plus 0.5 shares at 20, valued at 20.
	if !almostEqual(res.InvestmentValue, 30) {
		t.Errorf("InvestmentValue = %v, want 30", res.InvestmentValue)
	}
	if !almostEqual(res.GrowthPercentage, 50) {
		t.Errorf("GrowthPercentage = %v, want 50", res.GrowthPercentage)
	}
	if res.Currency != "GBP" {
		t.Errorf("Currency = %q, want GBP", res.Currency)
	}

	if len(res.GraphData) == 0 {
		t.Fatal("no graph data")
	}
	first, last := res.GraphData[0], res.GraphData[len(res.GraphData)-1]
	if !first.Date.Equal(day(2020, time.January, 1)) {
		t.Errorf("first graph date = %v, want 2020-01-01", first.Date)
	}
	if !almostEqual(first.Spent, 10) || !almostEqual(first.Value, 10) {
		t.Errorf("first day = (%v spent, %v value), want (10, 10)", first.Spent, first.Value)
	}
	if !last.Date.Equal(day(2020, time.February, 1)) {
		t.Errorf("last graph date = %v, want 2020-02-01", last.Date)
	}
	if !almostEqual(last.Value, 30) {
		t.Errorf("last day value = %v, want 30", last.Value)
	}
}

func TestSimulateItemMatchesBasket(t *testing.T) {
	it := models.SpendItem{
		ID:        "i1",
		Cost:      25,
		Currency:  "USD",
		Frequency: models.FrequencyWeekly,
		StartDate: day(2020, time.January, 6),
		Ticker:    "BBB",
	}
	prices := []models.PricePoint{
		pp(2020, time.January, 2, 100),
		pp(2020, time.January, 20, 90),
		pp(2020, time.February, 14, 130),
	}

	single := SimulateItem(it, prices, "USD", nil, 0)
	basket := SimulateBasket([]models.SpendItem{it},
		map[string][]models.PricePoint{"BBB": prices}, "USD", nil, 0)

	if !almostEqual(single.TotalSpent, basket.TotalSpent) {
		t.Errorf("TotalSpent: item %v != basket %v", single.TotalSpent, basket.TotalSpent)
	}
	if !almostEqual(single.InvestmentValue, basket.InvestmentValue) {
		t.Errorf("InvestmentValue: item %v != basket %v", single.InvestmentValue, basket.InvestmentValue)
	}
	if len(single.GraphData) != len(basket.GraphData) {
		t.Fatalf("graph lengths differ: %d vs %d", len(single.GraphData), len(basket.GraphData))
	}
}

func TestSimulateDeterministic(t *testing.T) {
	items := []models.SpendItem{
		{ID: "a", Cost: 10, Currency: "USD", Frequency: models.FrequencyDaily, StartDate: day(2020, time.January, 1), Ticker: "AAA"},
		{ID: "b", Cost: 7, Currency: "EUR", Frequency: models.FrequencyWeekly, StartDate: day(2020, time.January, 3), Ticker: "BBB"},
	}
	prices := map[string][]models.PricePoint{
		"AAA": {pp(2020, time.January, 1, 10), pp(2020, time.March, 1, 12)},
		"BBB": {pp(2020, time.January, 2, 50), pp(2020, time.February, 1, 55)},
	}
	fx := map[string][]models.PricePoint{
		"USDEUR": {pp(2020, time.January, 1, 0.9)},
	}

	clone := func(m map[string][]models.PricePoint) map[string][]models.PricePoint {
		out := make(map[string][]models.PricePoint, len(m))
		for k, v := range m {
			s := make([]models.PricePoint, len(v))
			copy(s, v)
			out[k] = s
		}
		return out
	}

	r1 := SimulateBasket(items, clone(prices), "USD", clone(fx), 0)
	r2 := SimulateBasket(items, clone(prices), "USD", clone(fx), 0)

	if r1.TotalSpent != r2.TotalSpent || r1.InvestmentValue != r2.InvestmentValue ||
		r1.GrowthPercentage != r2.GrowthPercentage {
		t.Errorf("runs differ: %+v vs %+v", r1, r2)
	}
	if len(r1.GraphData) != len(r2.GraphData) {
		t.Fatalf("graph lengths differ")
	}
	for i := range r1.GraphData {
		if r1.GraphData[i] != r2.GraphData[i] {
			t.Fatalf("graph point %d differs: %+v vs %+v", i, r1.GraphData[i], r2.GraphData[i])
		}
	}
}

func TestSimulateFxConversion(t *testing.T) {
	// User reports in GBP, item costs 10 USD, rate GBPUSD = 2 (2 USD per GBP):
	// each payment adds 5 GBP.
	it := models.SpendItem{
		ID:        "i1",
		Cost:      10,
		Currency:  "USD",
		Frequency: models.FrequencyOneOff,
		StartDate: day(2020, time.January, 1),
		Ticker:    "AAA",
	}
	prices := []models.PricePoint{pp(2020, time.January, 1, 5)}
	fx := []models.PricePoint{pp(2019, time.December, 30, 2)}

	res := SimulateItem(it, prices, "GBP", fx, 0)

	if !almostEqual(res.TotalSpent, 5) {
		t.Errorf("TotalSpent = %v, want 5 (10 USD / rate 2)", res.TotalSpent)
	}
	if !almostEqual(res.InvestmentValue, 5) {
		t.Errorf("InvestmentValue = %v, want 5 (1 share at price 5)", res.InvestmentValue)
	}
}

func TestSimulateFxMissingRateFallsBack(t *testing.T) {
	it := models.SpendItem{
		ID:        "i1",
		Cost:      10,
		Currency:  "USD",
		Frequency: models.FrequencyOneOff,
		StartDate: day(2020, time.January, 1),
		Ticker:    "AAA",
	}
	prices := []models.PricePoint{pp(2020, time.January, 1, 10)}

	// No FX series at all: the cost is treated as already in user currency.
	res := SimulateItem(it, prices, "GBP", nil, 0)

	if !almostEqual(res.TotalSpent, 10) {
		t.Errorf("TotalSpent = %v, want unconverted 10", res.TotalSpent)
	}
}

func TestSimulatePreListingCashFlush(t *testing.T) {
	// Payments start before the instrument has any price; the accumulated
	// cash converts in one lump on the first priced day.
	it := models.SpendItem{
		ID:        "i1",
		Cost:      10,
		Currency:  "USD",
		Frequency: models.FrequencyDaily,
		StartDate: day(2020, time.January, 1),
		Ticker:    "NEW",
	}
	prices := []models.PricePoint{pp(2020, time.January, 4, 5)}

	res := SimulateItem(it, prices, "USD", nil, 0)

	// Jan 1-3: 30 held as cash. Jan 4: flushed to 6 shares at 5, then the
	// day's payment buys 2 more. 8 shares * 5 = 40.
	if !almostEqual(res.TotalSpent, 40) {
		t.Errorf("TotalSpent = %v, want 40", res.TotalSpent)
	}
	if !almostEqual(res.InvestmentValue, 40) {
		t.Errorf("InvestmentValue = %v, want 40", res.InvestmentValue)
	}

	// Days before the first price carry value as uninvested cash.
	if !almostEqual(res.GraphData[2].Value, 30) {
		t.Errorf("day 3 value = %v, want 30 (cash)", res.GraphData[2].Value)
	}
}

func TestSimulateTickerWithoutDataContributesCashOnly(t *testing.T) {
	items := []models.SpendItem{
		{ID: "a", Cost: 10, Currency: "USD", Frequency: models.FrequencyOneOff, StartDate: day(2020, time.January, 1), Ticker: "AAA"},
		{ID: "b", Cost: 99, Currency: "USD", Frequency: models.FrequencyOneOff, StartDate: day(2020, time.January, 1), Ticker: "GHOST"},
	}
	prices := map[string][]models.PricePoint{
		"AAA": {pp(2020, time.January, 1, 10)},
	}

	res := SimulateBasket(items, prices, "USD", nil, 0)

	if !almostEqual(res.TotalSpent, 109) {
		t.Errorf("TotalSpent = %v, want 109", res.TotalSpent)
	}
	// GHOST's spend sits as cash forever; AAA's 10 is invested flat.
	if !almostEqual(res.InvestmentValue, 109) {
		t.Errorf("InvestmentValue = %v, want 109", res.InvestmentValue)
	}
}

func TestSimulateEmptyInputs(t *testing.T) {
	res := SimulateBasket(nil, nil, "USD", nil, 0)

	if res.TotalSpent != 0 || res.InvestmentValue != 0 || res.GrowthPercentage != 0 {
		t.Errorf("empty basket produced non-zero result: %+v", res)
	}
	if len(res.GraphData) != 0 {
		t.Errorf("empty basket produced %d graph points", len(res.GraphData))
	}
}

func TestGrowthGuardZeroSpend(t *testing.T) {
	// An item starting after the price window's end never fires inside it.
	it := models.SpendItem{
		ID:        "i1",
		Cost:      10,
		Currency:  "USD",
		Frequency: models.FrequencyMonthly,
		StartDate: day(2021, time.January, 1),
		Ticker:    "AAA",
	}
	prices := []models.PricePoint{pp(2020, time.June, 1, 10)}

	res := SimulateItem(it, prices, "USD", nil, 0)

	if res.TotalSpent != 0 {
		t.Errorf("TotalSpent = %v, want 0", res.TotalSpent)
	}
	if res.GrowthPercentage != 0 {
		t.Errorf("GrowthPercentage = %v, want 0 when nothing was spent", res.GrowthPercentage)
	}
}

func TestTotalSpentMonotonic(t *testing.T) {
	it := models.SpendItem{
		ID:        "i1",
		Cost:      3,
		Currency:  "USD",
		Frequency: models.FrequencyWorkdays,
		StartDate: day(2020, time.January, 1),
		Ticker:    "AAA",
	}
	prices := []models.PricePoint{
		pp(2020, time.January, 1, 10),
		pp(2020, time.June, 30, 8),
	}

	res := SimulateItem(it, prices, "USD", nil, 0)

	prev := 0.0
	for i, p := range res.GraphData {
		if p.Spent < prev {
			t.Fatalf("spent decreased at point %d: %v -> %v", i, prev, p.Spent)
		}
		prev = p.Spent
	}
}

func TestSimulateInputSeriesNotMutated(t *testing.T) {
	prices := []models.PricePoint{
		pp(2020, time.March, 1, 3),
		pp(2020, time.January, 1, 1),
	}
	it := models.SpendItem{
		ID: "i1", Cost: 1, Currency: "USD",
		Frequency: models.FrequencyOneOff,
		StartDate: day(2020, time.January, 1), Ticker: "AAA",
	}

	SimulateItem(it, prices, "USD", nil, 0)

	if !prices[0].Date.Equal(day(2020, time.March, 1)) {
		t.Error("engine sorted the caller's series in place")
	}
}
