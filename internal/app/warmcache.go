package app

import (
	"context"
	"os"
	"time"

	"github.com/foregonehq/foregone/internal/common"
	"github.com/foregonehq/foregone/internal/interfaces"
)

// warmCache pre-fetches configured tickers on startup so the first
// simulation does not pay the provider round-trips.
func warmCache(ctx context.Context, marketService interfaces.MarketService, tickers []string, logger *common.Logger) {
	if os.Getenv("FOREGONE_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via FOREGONE_WARM_CACHE=off")
		return
	}

	if len(tickers) == 0 {
		logger.Info().Msg("Warm cache: no warm tickers configured, skipping")
		return
	}

	start := time.Now()
	from := time.Now().AddDate(-10, 0, 0)

	warmed := 0
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			return
		}
		if _, _, err := marketService.GetHistory(ctx, ticker, from); err != nil {
			logger.Warn().Err(err).Str("ticker", ticker).Msg("Warm cache: fetch failed")
			continue
		}
		warmed++
	}

	logger.Info().
		Int("tickers", warmed).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
}
