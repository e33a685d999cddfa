// Package tasks implements the scheduled background tasks of the
// ingestion service and their registration.
package tasks

import (
	"context"
	"log/slog"

	"github.com/anerudhh/Realistly-mvp/internal/database"
	"github.com/anerudhh/Realistly-mvp/internal/pipeline"
)

// ScheduledTaskFunc is the signature every scheduled task implements.
// The scheduler's context should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// TaskDeps carries the dependencies scheduled tasks draw on.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Pipeline *pipeline.Pipeline
}

// RegisterAllTasks builds the map of all known scheduled tasks. The map
// keys match the task names used in the scheduler configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		"sql_maintenance":  newSQLMaintenanceTask(deps),
		"geocode_backfill": newGeocodeBackfillTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
