package config

import "time"

// Default values for configuration
const (
	// Log defaults
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	// Server defaults
	DefaultServerAddr = ":8080"

	// Database defaults
	DefaultDBPath = "storage.db"

	// Download defaults
	DefaultDownloadMaxFileSize = 50 * 1024 * 1024 // Telegram bot API upload limit
	DefaultDownloadMaxDuration = 600              // seconds
	DefaultDownloadTimeout     = 5 * time.Minute
	DefaultDownloadQuality     = "best"
	DefaultYTDLPPath           = "yt-dlp"

	// GitHub defaults
	DefaultGitHubOpenIssuesAlert = 10

	// Gemini defaults
	DefaultGeminiModelName         = "gemini-2.0-flash"
	DefaultGeminiTemperature       = 0.3
	DefaultGeminiMaxRetries        = 2
	DefaultGeminiRetryDelaySeconds = 5
)

// Default user-facing messages
var DefaultMessages = MessagesConfig{
	Welcome: "👋 Welcome! Send me a video link from YouTube, Instagram, or Facebook and I'll download it for you.\n\n" +
		"You can also analyze a GitHub repository with /analyze <url>.",
	Help: "📖 Available commands:\n" +
		"/start - Start the bot\n" +
		"/help - Show this help\n" +
		"/stats - Show your download statistics\n" +
		"/analyze <url> - Analyze a GitHub repository\n\n" +
		"Or just send a video link from YouTube, Instagram, or Facebook.",
	Unsupported:        "❌ Unsupported link. I can download videos from YouTube, Instagram, and Facebook.",
	SubscribePrompt:    "📢 Please subscribe to our channel to use this bot.",
	SubscribeConfirmed: "✅ Subscription confirmed. You can use the bot now!",
	SubscribeMissing:   "❌ You are not subscribed yet. Join the channel and try again.",
	Processing:         "⏳ Processing your request...",
	Uploading:          "📤 Uploading video...",
	Analyzing:          "🔍 Analyzing repository...",
	AnalyzeUsage:       "ℹ️ Usage: /analyze https://github.com/owner/repo",
	GeneralError:       "❌ An error occurred. Please try again later.",
	DownloadFailedFmt:  "❌ Download failed: %s",
	AnalysisFailedFmt:  "❌ Analysis failed: %s",
	StatsEmpty:         "📊 You have no downloads yet. Send me a video link to get started!",
}

// Default scheduled task configuration. Schedules use the six-field cron
// format accepted by gocron (seconds first).
var DefaultSchedulerTasks = map[string]TaskConfig{
	"daily_stats":     {Enabled: true, Schedule: "0 5 0 * * *"},
	"sql_maintenance": {Enabled: true, Schedule: "0 30 4 * * 0"},
}
