package tasks

import (
	"context"
	"fmt"
	"time"
)

// geocodeBackfillBatchSize bounds how many listings one backfill run
// resolves, keeping within Maps API rate limits.
const geocodeBackfillBatchSize = 50

// newGeocodeBackfillTask creates the scheduled task that resolves
// coordinates for stored listings still missing them.
func newGeocodeBackfillTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "geocode_backfill")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled geocode backfill task...")
		startTime := time.Now()

		updated, err := deps.Pipeline.GeocodeBackfill(ctx, geocodeBackfillBatchSize)
		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Geocode backfill task failed", "error", err, "duration", duration)
			return fmt.Errorf("geocode backfill failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled geocode backfill task completed",
			"updated", updated, "duration", duration)
		return nil
	}
}
