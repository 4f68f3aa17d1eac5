package database

import "time"

// Download status values stored in the downloads table.
const (
	DownloadStatusCompleted = "completed"
	DownloadStatusFailed    = "failed"
)

// User represents a Telegram user who has interacted with the bot.
// The primary key is the Telegram user ID.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	LanguageCode string    `db:"language_code" json:"language_code"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LastActive   time.Time `db:"last_active" json:"last_active"`

	TotalDownloads int64 `db:"total_downloads" json:"total_downloads"`
	IsBlocked      bool  `db:"is_blocked" json:"is_blocked"`
}

// Download represents a single download attempt, successful or not.
type Download struct {
	ID        uint      `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	URL       string    `db:"url" json:"url"`
	Platform  string    `db:"platform" json:"platform"`
	Title     string    `db:"title" json:"title"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	Duration  int64     `db:"duration_seconds" json:"duration_seconds"`
	Status    string    `db:"status" json:"status"`
	Error     string    `db:"error_message" json:"error_message,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DailyStat is a per-day rollup of download activity. Date is stored
// as YYYY-MM-DD.
type DailyStat struct {
	Date        string `db:"date" json:"date"`
	Downloads   int64  `db:"downloads" json:"downloads"`
	Failures    int64  `db:"failures" json:"failures"`
	ActiveUsers int64  `db:"active_users" json:"active_users"`
	TotalBytes  int64  `db:"total_bytes" json:"total_bytes"`
}

// UserStats summarizes a single user's download history.
type UserStats struct {
	TotalDownloads int64 `db:"total" json:"total_downloads"`
	Completed      int64 `db:"completed" json:"completed"`
	Failed         int64 `db:"failed" json:"failed"`
}

// Overview summarizes bot-wide activity for the stats endpoint.
type Overview struct {
	TotalUsers     int64 `db:"total_users" json:"total_users"`
	TotalDownloads int64 `db:"total_downloads" json:"total_downloads"`
	Completed      int64 `db:"completed" json:"completed"`
	Failed         int64 `db:"failed" json:"failed"`
	TotalBytes     int64 `db:"total_bytes" json:"total_bytes"`
}
