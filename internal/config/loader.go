package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. The config file at configPath (optional, yaml)
// 3. BOT_* environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine, everything can come from env vars.
	if err := v.ReadInConfig(); err != nil {
		_, cfgNotFound := err.(viper.ConfigFileNotFoundError)
		if !cfgNotFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values for every optional key. Defaults are
// required for env-only keys to be visible during unmarshalling.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.webhook_url", "")
	v.SetDefault("telegram.webhook_secret", "")
	v.SetDefault("telegram.channel", "")

	v.SetDefault("server.addr", DefaultServerAddr)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("download.dir", "")
	v.SetDefault("download.max_file_size", DefaultDownloadMaxFileSize)
	v.SetDefault("download.max_duration", DefaultDownloadMaxDuration)
	v.SetDefault("download.timeout", DefaultDownloadTimeout)
	v.SetDefault("download.quality", DefaultDownloadQuality)
	v.SetDefault("download.ytdlp_path", DefaultYTDLPPath)

	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("github.open_issues_alert", DefaultGitHubOpenIssuesAlert)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", DefaultGeminiModelName)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.max_retries", DefaultGeminiMaxRetries)
	v.SetDefault("gemini.retry_delay_seconds", DefaultGeminiRetryDelaySeconds)

	for name, task := range DefaultSchedulerTasks {
		v.SetDefault("scheduler.tasks."+name+".enabled", task.Enabled)
		v.SetDefault("scheduler.tasks."+name+".schedule", task.Schedule)
	}

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.unsupported", DefaultMessages.Unsupported)
	v.SetDefault("messages.subscribe_prompt", DefaultMessages.SubscribePrompt)
	v.SetDefault("messages.subscribe_confirmed", DefaultMessages.SubscribeConfirmed)
	v.SetDefault("messages.subscribe_missing", DefaultMessages.SubscribeMissing)
	v.SetDefault("messages.processing", DefaultMessages.Processing)
	v.SetDefault("messages.uploading", DefaultMessages.Uploading)
	v.SetDefault("messages.analyzing", DefaultMessages.Analyzing)
	v.SetDefault("messages.analyze_usage", DefaultMessages.AnalyzeUsage)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.download_failed_fmt", DefaultMessages.DownloadFailedFmt)
	v.SetDefault("messages.analysis_failed_fmt", DefaultMessages.AnalysisFailedFmt)
	v.SetDefault("messages.stats_empty", DefaultMessages.StatsEmpty)
}
