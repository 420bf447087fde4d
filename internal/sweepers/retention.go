// Package sweepers runs background maintenance loops for the service.
package sweepers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/listino/catalog-service/internal/jobs"
)

// RetentionSweeper periodically purges raw records past the audit window
type RetentionSweeper struct {
	logger   *zerolog.Logger
	interval time.Duration
	config   jobs.RetentionConfig
	stopChan chan struct{}
}

// NewRetentionSweeper creates a sweeper that enforces raw record retention
func NewRetentionSweeper(logger *zerolog.Logger, interval time.Duration, cfg jobs.RetentionConfig) *RetentionSweeper {
	return &RetentionSweeper{
		logger:   logger,
		interval: interval,
		config:   cfg,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic retention sweep
func (s *RetentionSweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Int("retention_days", s.config.RawRecordRetentionDays).
		Msg("Starting retention sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Retention sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Retention sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			deleted, err := jobs.CleanupRawRecords(ctx, s.config)
			if err != nil {
				s.logger.Error().Err(err).Msg("Failed to cleanup raw records")
				continue
			}
			if deleted > 0 {
				s.logger.Info().Int("deleted", deleted).Msg("Purged expired raw records")
			}
		}
	}
}

// Stop signals the sweeper to stop
func (s *RetentionSweeper) Stop() {
	close(s.stopChan)
}
