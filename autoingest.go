package tablesync

import (
	"context"
	"time"

	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoIngester = (*client)(nil)

// AutoIngester provides controls for periodic ingestion.
type AutoIngester interface {
	// AutoIngestOn starts a run every interval. Calling it again restarts the timer.
	AutoIngestOn() error

	// AutoIngestOff stops periodic runs and waits for the loop to exit.
	AutoIngestOff() error
}

// AutoIngestOn begins periodic ingestion.
func (c *client) AutoIngestOn() error {
	interval := c.interval()
	if interval <= 0 {
		return &errors.ValidationError{
			Field:   "interval",
			Value:   interval,
			Message: "ingest interval must be positive",
		}
	}

	if err := c.AutoIngestOff(); err != nil {
		return err
	}

	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.autoCancel = cancel
	c.autoDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runCtx, runCancel := context.WithTimeout(ctx, constants.IngestContextTimeout)
				summary, err := c.IngestSources(runCtx, nil)
				runCancel()

				if err != nil {
					logging.Error().Err(err).Msg("Auto-ingest failed")
					continue
				}
				logging.Info().
					Str("run_id", summary.RunID).
					Int("records", summary.Records()).
					Msg("Auto-ingest completed")
			case <-ctx.Done():
				return
			}
		}
	}()

	logging.Info().Dur("interval", interval).Msg("Auto-ingest enabled")
	return nil
}

// AutoIngestOff stops periodic ingestion.
func (c *client) AutoIngestOff() error {
	c.autoMu.Lock()
	cancel, done := c.autoCancel, c.autoDone
	c.autoCancel, c.autoDone = nil, nil
	c.autoMu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
