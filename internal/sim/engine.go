package sim

import (
	"sort"
	"time"

	"github.com/foregonehq/foregone/internal/models"
)

// DefaultDownsampleTarget is the graph size applied when callers pass 0.
const DefaultDownsampleTarget = 500

// tickerState is the per-instrument accounting state during a run.
// There is no selling in this model: shares only accumulate, and cash held
// before an instrument's first known price ("pre-listing" capital) converts
// to shares in a single lump the first day a positive price appears.
type tickerState struct {
	cursor *seriesCursor
	shares float64
	cash   float64
	price  float64 // last forward-filled price, 0 until the first one
}

// SimulateBasket replays every item's payment schedule day by day against
// the supplied price and FX series and returns the aggregate comparison.
//
// Price series are keyed by ticker. FX series are keyed by the pair symbol
// userCurrency+itemCurrency, holding rates r with
// amountUser = amountItem / r. All series may arrive unsorted; they are
// cloned before sorting and never mutated.
func SimulateBasket(
	items []models.SpendItem,
	pricesByTicker map[string][]models.PricePoint,
	userCurrency string,
	fxByPair map[string][]models.PricePoint,
	downsampleTo int,
) models.SimulationResult {
	return run(items, pricesByTicker, userCurrency, fxByPair, downsampleTo)
}

// SimulateItem replays a single item against a single price series. It is a
// thin entry point over the same core; callers use it for isolated per-item
// charts alongside the aggregate.
func SimulateItem(
	item models.SpendItem,
	prices []models.PricePoint,
	userCurrency string,
	fx []models.PricePoint,
	downsampleTo int,
) models.SimulationResult {
	pricesByTicker := map[string][]models.PricePoint{item.Ticker: prices}
	var fxByPair map[string][]models.PricePoint
	if len(fx) > 0 {
		fxByPair = map[string][]models.PricePoint{
			models.PairSymbol(userCurrency, item.Currency): fx,
		}
	}
	return run([]models.SpendItem{item}, pricesByTicker, userCurrency, fxByPair, downsampleTo)
}

func run(
	items []models.SpendItem,
	pricesByTicker map[string][]models.PricePoint,
	userCurrency string,
	fxByPair map[string][]models.PricePoint,
	downsampleTo int,
) models.SimulationResult {
	result := models.SimulationResult{Currency: userCurrency}

	if downsampleTo <= 0 {
		downsampleTo = DefaultDownsampleTarget
	}

	// Tickers are iterated in a fixed order so float accumulation is
	// deterministic across runs; map iteration order is not.
	states := make(map[string]*tickerState, len(pricesByTicker))
	order := make([]string, 0, len(pricesByTicker))
	var end time.Time
	for ticker, series := range pricesByTicker {
		sorted := cloneSorted(series)
		states[ticker] = &tickerState{cursor: newSeriesCursor(sorted)}
		order = append(order, ticker)
		if n := len(sorted); n > 0 {
			if last := models.DateOnly(sorted[n-1].Date); last.After(end) {
				end = last
			}
		}
	}
	sort.Strings(order)

	fxCursors := make(map[string]*seriesCursor, len(fxByPair))
	fxOrder := make([]string, 0, len(fxByPair))
	for pair, series := range fxByPair {
		fxCursors[pair] = newSeriesCursor(cloneSorted(series))
		fxOrder = append(fxOrder, pair)
	}
	sort.Strings(fxOrder)

	var start time.Time
	for _, item := range items {
		day := models.DateOnly(item.StartDate)
		if start.IsZero() || day.Before(start) {
			start = day
		}
	}

	// Degenerate inputs (no items, or no price data anywhere) yield a
	// zero-valued result rather than an error; validation is the caller's job.
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return result
	}

	fxRates := make(map[string]float64, len(fxCursors))

	var totalSpent float64
	graph := make([]models.GraphPoint, 0, int(end.Sub(start).Hours()/24)+1)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		// Advance every cursor, flushing pre-listing cash the first day a
		// positive price shows up.
		for _, ticker := range order {
			st := states[ticker]
			if price, ok := st.cursor.advanceTo(day); ok && price > 0 {
				st.price = price
				if st.cash > 0 {
					st.shares += st.cash / st.price
					st.cash = 0
				}
			}
		}
		for _, pair := range fxOrder {
			if rate, ok := fxCursors[pair].advanceTo(day); ok {
				fxRates[pair] = rate
			}
		}

		for _, item := range items {
			if !Fires(item, day) {
				continue
			}

			amount := item.Cost
			if item.Currency != userCurrency {
				// Missing or non-positive rates fall back to the unconverted
				// cost; the spend still counts.
				if rate, ok := fxRates[models.PairSymbol(userCurrency, item.Currency)]; ok && rate > 0 {
					amount = item.Cost / rate
				}
			}
			totalSpent += amount

			st := states[item.Ticker]
			if st == nil {
				// Ticker with no supplied series: its cash sits uninvested
				// for the whole window.
				st = &tickerState{cursor: newSeriesCursor(nil)}
				states[item.Ticker] = st
				order = append(order, item.Ticker)
			}
			if st.price > 0 {
				st.shares += amount / st.price
			} else {
				st.cash += amount
			}
		}

		var value float64
		for _, ticker := range order {
			st := states[ticker]
			value += st.shares*st.price + st.cash
		}

		graph = append(graph, models.GraphPoint{Date: day, Spent: totalSpent, Value: value})
	}

	result.TotalSpent = totalSpent
	if len(graph) > 0 {
		result.InvestmentValue = graph[len(graph)-1].Value
	}
	if totalSpent > 0 {
		result.GrowthPercentage = (result.InvestmentValue - totalSpent) / totalSpent * 100
	}
	result.GraphData = Downsample(graph, downsampleTo)

	return result
}
