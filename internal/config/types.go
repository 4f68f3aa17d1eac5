// Package config manages application configuration from default values,
// an optional config.yaml file, and BOT_* environment variables.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config defines the application configuration for all components of the
// bot: logging, Telegram transport, the download and analysis pipelines,
// persistence, the HTTP server, and scheduled tasks.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Download  DownloadConfig  `mapstructure:"download"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LogConfig controls log verbosity and output format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot token, webhook registration parameters, and
// the optional channel users must be subscribed to. An empty Channel
// disables the subscription gate entirely.
type TelegramConfig struct {
	Token         string `mapstructure:"token"          validate:"required"`
	WebhookURL    string `mapstructure:"webhook_url"    validate:"omitempty,url"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Channel       string `mapstructure:"channel"        validate:"omitempty,startswith=@"`

	// BotInfo is populated at startup via getMe, not from configuration.
	BotInfo *models.User `mapstructure:"-"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// DownloadConfig bounds the video download pipeline.
type DownloadConfig struct {
	Dir         string        `mapstructure:"dir"`
	MaxFileSize int64         `mapstructure:"max_file_size" validate:"required,min=1048576"`
	MaxDuration int           `mapstructure:"max_duration"  validate:"required,min=1"`
	Timeout     time.Duration `mapstructure:"timeout"       validate:"required,min=10s,max=30m"`
	Quality     string        `mapstructure:"quality"       validate:"required"`
	YTDLPPath   string        `mapstructure:"ytdlp_path"    validate:"required"`
}

// GitHubConfig configures the repository analyzer. Token is optional and
// only raises the API rate limit. BaseURL is overridable for tests.
type GitHubConfig struct {
	Token           string `mapstructure:"token"`
	BaseURL         string `mapstructure:"base_url"          validate:"omitempty,url"`
	OpenIssuesAlert int    `mapstructure:"open_issues_alert" validate:"min=0"`
}

// GeminiConfig configures the optional AI summary of analysis reports.
// An empty APIKey disables the feature.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	ModelName         string  `mapstructure:"model_name"`
	Temperature       float32 `mapstructure:"temperature"         validate:"min=0,max=2"`
	MaxRetries        int     `mapstructure:"max_retries"         validate:"min=0,max=5"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=60"`
}

// SchedulerConfig holds the configuration for scheduled background tasks.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig holds the configuration for a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds all user-facing message templates.
type MessagesConfig struct {
	Welcome            string `mapstructure:"welcome"             validate:"required"`
	Help               string `mapstructure:"help"                validate:"required"`
	Unsupported        string `mapstructure:"unsupported"         validate:"required"`
	SubscribePrompt    string `mapstructure:"subscribe_prompt"    validate:"required"`
	SubscribeConfirmed string `mapstructure:"subscribe_confirmed" validate:"required"`
	SubscribeMissing   string `mapstructure:"subscribe_missing"   validate:"required"`
	Processing         string `mapstructure:"processing"          validate:"required"`
	Uploading          string `mapstructure:"uploading"           validate:"required"`
	Analyzing          string `mapstructure:"analyzing"           validate:"required"`
	AnalyzeUsage       string `mapstructure:"analyze_usage"       validate:"required"`
	GeneralError       string `mapstructure:"general_error"       validate:"required"`
	DownloadFailedFmt  string `mapstructure:"download_failed_fmt" validate:"required"`
	AnalysisFailedFmt  string `mapstructure:"analysis_failed_fmt" validate:"required"`
	StatsEmpty         string `mapstructure:"stats_empty"         validate:"required"`
}
