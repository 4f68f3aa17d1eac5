package tasks

import (
	"context"
	"fmt"
	"time"
)

// newDailyStatsTask creates the scheduled task that rolls up the previous
// day's downloads into the daily_stats table. Re-running it for the same day
// overwrites the row, so late or repeated runs are harmless.
func newDailyStatsTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "daily_stats")

	return func(ctx context.Context) error {
		day := time.Now().UTC().AddDate(0, 0, -1)
		log.InfoContext(ctx, "Starting daily stats rollup", "day", day.Format("2006-01-02"))
		startTime := time.Now()

		if err := deps.Store.UpdateDailyStats(ctx, day); err != nil {
			log.ErrorContext(ctx, "Daily stats rollup failed", "error", err, "duration", time.Since(startTime))
			return fmt.Errorf("daily stats rollup failed: %w", err)
		}

		log.InfoContext(ctx, "Daily stats rollup completed", "duration", time.Since(startTime))
		return nil
	}
}
