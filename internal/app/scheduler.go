package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/foregonehq/foregone/internal/common"
	"github.com/foregonehq/foregone/internal/interfaces"
)

// refreshScheduler re-fetches all cached market data on a cron schedule,
// keeping the durable tier warm outside trading hours.
type refreshScheduler struct {
	cron   *cron.Cron
	logger *common.Logger
}

func newRefreshScheduler(marketService interfaces.MarketService, schedule string, logger *common.Logger) (*refreshScheduler, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		start := time.Now()
		logger.Info().Msg("Scheduled refresh: starting")

		if err := marketService.RefreshCached(ctx); err != nil {
			logger.Error().Err(err).Msg("Scheduled refresh: failed")
			return
		}

		logger.Info().Dur("elapsed", time.Since(start)).Msg("Scheduled refresh: complete")
	})
	if err != nil {
		return nil, fmt.Errorf("register refresh schedule %q: %w", schedule, err)
	}

	return &refreshScheduler{cron: c, logger: logger}, nil
}

func (s *refreshScheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Refresh scheduler started")
}

// Stop stops the cron loop and waits for a running refresh to finish.
func (s *refreshScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
