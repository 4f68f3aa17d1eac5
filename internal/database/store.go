package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertUser inserts a user or refreshes its identity fields and
	// last-active timestamp.
	UpsertUser(ctx context.Context, user *User) error

	// GetUser retrieves a user by Telegram ID. Returns nil, nil if not found.
	GetUser(ctx context.Context, userID int64) (*User, error)

	// RecordDownload inserts a download record. Completed downloads also
	// increment the user's total in the same transaction.
	RecordDownload(ctx context.Context, dl *Download) error

	// GetUserStats summarizes a user's download history.
	GetUserStats(ctx context.Context, userID int64) (*UserStats, error)

	// GetRecentDownloads retrieves the most recent downloads across all users.
	GetRecentDownloads(ctx context.Context, limit int) ([]Download, error)

	// GetOverview summarizes bot-wide activity.
	GetOverview(ctx context.Context) (*Overview, error)

	// UpdateDailyStats rolls up download activity for the given day into
	// the daily_stats table. Safe to run repeatedly for the same day.
	UpdateDailyStats(ctx context.Context, day time.Time) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// UpsertUser inserts a new user row or refreshes the identity fields of an
// existing one. TotalDownloads and IsBlocked are left untouched on update.
func (s *sqlxStore) UpsertUser(ctx context.Context, user *User) error {
	if user == nil {
		return fmt.Errorf("cannot upsert nil user")
	}
	if user.ID == 0 {
		return fmt.Errorf("user must have a non-zero id")
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.LastActive = now

	query := `
        INSERT INTO users (id, username, first_name, last_name, language_code, created_at, last_active)
        VALUES (:id, :username, :first_name, :last_name, :language_code, :created_at, :last_active)
        ON CONFLICT(id) DO UPDATE SET
            username      = excluded.username,
            first_name    = excluded.first_name,
            last_name     = excluded.last_name,
            language_code = excluded.language_code,
            last_active   = excluded.last_active;
    `

	if _, err := s.db.NamedExecContext(ctx, query, user); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user", "user_id", user.ID, "error", err)
		return fmt.Errorf("failed to upsert user %d: %w", user.ID, err)
	}

	s.logger.DebugContext(ctx, "User upserted successfully", "user_id", user.ID)
	return nil
}

// GetUser retrieves a user by Telegram ID. Returns nil, nil if not found.
func (s *sqlxStore) GetUser(ctx context.Context, userID int64) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	var user User
	query := `SELECT id, username, first_name, last_name, language_code, created_at, last_active,
	                 total_downloads, is_blocked
	          FROM users WHERE id = ?`

	err := s.db.GetContext(ctx, &user, query, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No user found", "user_id", userID)
		return nil, nil

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &user, nil
}

// RecordDownload inserts a download record. Completed downloads also bump the
// user's total_downloads counter within the same transaction.
func (s *sqlxStore) RecordDownload(ctx context.Context, dl *Download) error {
	if dl == nil {
		return fmt.Errorf("cannot record nil download")
	}
	if dl.UserID == 0 {
		return fmt.Errorf("download must have a non-zero user_id")
	}
	if dl.URL == "" {
		return fmt.Errorf("download must have a non-empty url")
	}
	if dl.Status != DownloadStatusCompleted && dl.Status != DownloadStatusFailed {
		return fmt.Errorf("invalid download status %q", dl.Status)
	}

	if dl.CreatedAt.IsZero() {
		dl.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for recording download",
			"user_id", dl.UserID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	query := `
        INSERT INTO downloads (user_id, url, platform, title, file_size, duration_seconds, status, error_message, created_at)
        VALUES (:user_id, :url, :platform, :title, :file_size, :duration_seconds, :status, :error_message, :created_at);
    `

	result, err := tx.NamedExecContext(ctx, query, dl)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error recording download", "user_id", dl.UserID, "url", dl.URL, "error", err)
		return fmt.Errorf("failed to record download for user %d: %w", dl.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		dl.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after recording download",
			"user_id", dl.UserID, "error", err)
	}

	if dl.Status == DownloadStatusCompleted {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET total_downloads = total_downloads + 1 WHERE id = ?`, dl.UserID); err != nil {
			s.logger.ErrorContext(ctx, "Error incrementing user download counter",
				"user_id", dl.UserID, "error", err)
			return fmt.Errorf("failed to increment download counter for user %d: %w", dl.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"user_id", dl.UserID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	// Successfully committed, set tx to nil to avoid rollback
	tx = nil

	s.logger.DebugContext(ctx, "Download recorded successfully",
		"user_id", dl.UserID, "download_id", dl.ID, "status", dl.Status)
	return nil
}

// GetUserStats summarizes a user's download history.
func (s *sqlxStore) GetUserStats(ctx context.Context, userID int64) (*UserStats, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	var stats UserStats
	query := `
        SELECT COUNT(*) AS total,
               COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
               COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed
        FROM downloads WHERE user_id = ?;
    `

	if err := s.db.GetContext(ctx, &stats, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Error getting user stats", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get stats for user %d: %w", userID, err)
	}

	return &stats, nil
}

// GetRecentDownloads retrieves the most recent downloads across all users.
func (s *sqlxStore) GetRecentDownloads(ctx context.Context, limit int) ([]Download, error) {
	if limit <= 0 {
		limit = 10
	} else if limit > 100 {
		limit = 100
	}

	var downloads []Download
	query := `
        SELECT id, user_id, url, platform, title, file_size, duration_seconds, status, error_message, created_at
        FROM downloads
        ORDER BY created_at DESC, id DESC
        LIMIT ?;
    `

	if err := s.db.SelectContext(ctx, &downloads, query, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent downloads", "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get recent downloads: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched recent downloads", "count", len(downloads))
	return downloads, nil
}

// GetOverview summarizes bot-wide activity.
func (s *sqlxStore) GetOverview(ctx context.Context) (*Overview, error) {
	var overview Overview
	query := `
        SELECT (SELECT COUNT(*) FROM users) AS total_users,
               COUNT(*) AS total_downloads,
               COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
               COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed,
               COALESCE(SUM(CASE WHEN status = 'completed' THEN file_size ELSE 0 END), 0) AS total_bytes
        FROM downloads;
    `

	if err := s.db.GetContext(ctx, &overview, query); err != nil {
		s.logger.ErrorContext(ctx, "Error getting overview", "error", err)
		return nil, fmt.Errorf("failed to get overview: %w", err)
	}

	return &overview, nil
}

// UpdateDailyStats rolls up download activity for the given day into the
// daily_stats table. Re-running for the same day replaces the row.
func (s *sqlxStore) UpdateDailyStats(ctx context.Context, day time.Time) error {
	dayStr := day.UTC().Format("2006-01-02")
	dayStart := dayStr + " 00:00:00"
	dayEnd := day.UTC().AddDate(0, 0, 1).Format("2006-01-02") + " 00:00:00"

	var stat DailyStat
	query := `
        SELECT COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS downloads,
               COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failures,
               COUNT(DISTINCT user_id) AS active_users,
               COALESCE(SUM(CASE WHEN status = 'completed' THEN file_size ELSE 0 END), 0) AS total_bytes
        FROM downloads
        WHERE created_at >= ? AND created_at < ?;
    `

	if err := s.db.GetContext(ctx, &stat, query, dayStart, dayEnd); err != nil {
		s.logger.ErrorContext(ctx, "Error computing daily stats", "date", dayStr, "error", err)
		return fmt.Errorf("failed to compute daily stats for %s: %w", dayStr, err)
	}
	stat.Date = dayStr

	upsert := `
        INSERT INTO daily_stats (date, downloads, failures, active_users, total_bytes)
        VALUES (:date, :downloads, :failures, :active_users, :total_bytes)
        ON CONFLICT(date) DO UPDATE SET
            downloads    = excluded.downloads,
            failures     = excluded.failures,
            active_users = excluded.active_users,
            total_bytes  = excluded.total_bytes;
    `

	if _, err := s.db.NamedExecContext(ctx, upsert, &stat); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting daily stats", "date", dayStr, "error", err)
		return fmt.Errorf("failed to upsert daily stats for %s: %w", dayStr, err)
	}

	s.logger.InfoContext(ctx, "Daily stats updated", "date", dayStr,
		"downloads", stat.Downloads, "failures", stat.Failures, "active_users", stat.ActiveUsers)
	return nil
}

// RunSQLMaintenance executes VACUUM and PRAGMA optimize on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
			return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
		}
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		s.logger.WarnContext(ctx, "PRAGMA optimize failed", "error", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
