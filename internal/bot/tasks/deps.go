// Package tasks implements scheduled background tasks for the bot:
// daily statistics rollups and database maintenance.
package tasks

import (
	"log/slog"

	"github.com/atheraber/saverbot/internal/config"
	"github.com/atheraber/saverbot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
