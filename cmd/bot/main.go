// Command bot runs the SaverBot Telegram bot: a webhook-driven service that
// downloads videos from popular platforms and analyzes GitHub repositories.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/spf13/cobra"

	"github.com/atheraber/saverbot/internal/analyzer"
	"github.com/atheraber/saverbot/internal/bot"
	"github.com/atheraber/saverbot/internal/bot/handlers"
	"github.com/atheraber/saverbot/internal/bot/tasks"
	"github.com/atheraber/saverbot/internal/config"
	"github.com/atheraber/saverbot/internal/database"
	"github.com/atheraber/saverbot/internal/downloader"
	"github.com/atheraber/saverbot/internal/gate"
	"github.com/atheraber/saverbot/internal/gemini"
	"github.com/atheraber/saverbot/internal/logger"
	"github.com/atheraber/saverbot/internal/server"
	"github.com/atheraber/saverbot/internal/telegram"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "saverbot",
		Short:         "Telegram bot that saves videos and analyzes GitHub repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yaml", "path to the configuration file")

	root.AddCommand(newServeCmd(), newSetWebhookCmd(), newWebhookInfoCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server and scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)

	log.Info("Starting SaverBot...", "log_level", cfg.Log.Level)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	if cfg.Download.Dir != "" {
		if err := os.MkdirAll(cfg.Download.Dir, 0o755); err != nil {
			return fmt.Errorf("failed to create download directory: %w", err)
		}
	}

	var summarizer analyzer.Summarizer
	if cfg.Gemini.APIKey != "" {
		gc, err := gemini.NewClient(ctx, cfg.Gemini, log)
		if err != nil {
			return fmt.Errorf("failed to create gemini client: %w", err)
		}
		summarizer = gc
	} else {
		log.Info("Gemini API key not set, report summaries disabled")
	}

	repoAnalyzer, err := analyzer.New(cfg.GitHub, summarizer, log)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	deps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Store:      store,
		Downloader: downloader.New(cfg.Download, log),
		Analyzer:   repoAnalyzer,
		Gate:       gate.New(cfg.Telegram.Channel, log),
	}

	defaultHandler := handlers.NewDownloadHandler(deps)
	if deps.Gate.Enabled() {
		defaultHandler = handlers.RequireSubscription(deps)(defaultHandler)
	}

	opts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log), handlers.TrackUser(deps)),
		tgbot.WithDefaultHandler(defaultHandler),
	}
	b, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, opts...)
	if err != nil {
		return err
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch bot identity: %w", err)
	}
	cfg.Telegram.BotInfo = me
	log.Info("Bot identity resolved", "username", me.Username, "id", me.ID)

	if err := telegram.RegisterHandlers(b, log, handlers.RegisterAllCommands(deps)); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}

	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{Logger: log, Store: store, Config: cfg})
	scheduler, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, cfg.Telegram.WebhookSecret, b, store, log)

	return bot.NewBot(log, cfg, db, store, b, scheduler, srv).Run(ctx)
}

func newSetWebhookCmd() *cobra.Command {
	var dropPending bool

	cmd := &cobra.Command{
		Use:   "set-webhook",
		Short: "Register the webhook URL with Telegram",
		Long: `Register the configured webhook URL with Telegram. Safe to run on
every deploy: re-registering the same URL is a no-op on Telegram's side.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cfg.Telegram.WebhookURL == "" {
				return fmt.Errorf("telegram.webhook_url is not configured")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			b, err := tgbot.New(cfg.Telegram.Token, tgbot.WithSkipGetMe())
			if err != nil {
				return fmt.Errorf("failed to create telegram bot: %w", err)
			}

			ok, err := b.SetWebhook(ctx, &tgbot.SetWebhookParams{
				URL:                cfg.Telegram.WebhookURL,
				SecretToken:        cfg.Telegram.WebhookSecret,
				DropPendingUpdates: dropPending,
				AllowedUpdates:     []string{"message", "callback_query"},
			})
			if err != nil {
				return fmt.Errorf("failed to set webhook: %w", err)
			}
			if !ok {
				return fmt.Errorf("telegram rejected the webhook registration")
			}

			fmt.Printf("Webhook registered: %s\n", cfg.Telegram.WebhookURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dropPending, "drop-pending", false, "drop updates queued while the bot was offline")
	return cmd
}

func newWebhookInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "webhook-info",
		Short: "Show the current webhook registration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			b, err := tgbot.New(cfg.Telegram.Token, tgbot.WithSkipGetMe())
			if err != nil {
				return fmt.Errorf("failed to create telegram bot: %w", err)
			}

			info, err := b.GetWebhookInfo(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch webhook info: %w", err)
			}

			fmt.Printf("URL: %s\n", info.URL)
			fmt.Printf("Pending updates: %d\n", info.PendingUpdateCount)
			if info.LastErrorMessage != "" {
				fmt.Printf("Last error: %s (at %s)\n", info.LastErrorMessage,
					time.Unix(int64(info.LastErrorDate), 0).Format(time.RFC3339))
			}
			if len(info.AllowedUpdates) > 0 {
				fmt.Printf("Allowed updates: %v\n", info.AllowedUpdates)
			}
			return nil
		},
	}
}
