package handlers

import (
	"log/slog"

	"github.com/atheraber/saverbot/internal/analyzer"
	"github.com/atheraber/saverbot/internal/config"
	"github.com/atheraber/saverbot/internal/database"
	"github.com/atheraber/saverbot/internal/downloader"
	"github.com/atheraber/saverbot/internal/gate"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Store      database.Store
	Downloader *downloader.Downloader
	Analyzer   *analyzer.Analyzer
	Gate       *gate.Gate
}
