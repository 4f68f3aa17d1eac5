// Package server exposes the HTTP surface of the bot: the Telegram webhook
// endpoint plus health and statistics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/atheraber/saverbot/internal/config"
	"github.com/atheraber/saverbot/internal/database"
)

// secretTokenHeader carries the webhook secret set during registration.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

const shutdownTimeout = 10 * time.Second

// Server handles incoming webhook updates and serves health and stats.
type Server struct {
	logger    *slog.Logger
	secret    string
	bot       *tgbot.Bot
	store     database.Store
	startedAt time.Time
	httpSrv   *http.Server
}

// New creates the HTTP server. secret may be empty, in which case the
// webhook endpoint accepts requests without the secret token header.
func New(cfg config.ServerConfig, secret string, b *tgbot.Bot, store database.Store, logger *slog.Logger) *Server {
	s := &Server{
		logger:    logger.With("component", "server"),
		secret:    secret,
		bot:       b,
		store:     store,
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run starts the listener and blocks until the context is cancelled or the
// server fails. Shutdown waits for in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped gracefully.")
	return <-errCh
}

// handleWebhook accepts one Telegram update per request and processes it
// synchronously, so a 200 response means the update was handled.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.secret != "" && r.Header.Get(secretTokenHeader) != s.secret {
		s.logger.WarnContext(ctx, "Webhook request with missing or wrong secret token", "remote", r.RemoteAddr)
		s.writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		return
	}

	var update models.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.logger.WarnContext(ctx, "Failed to decode webhook update", "error", err)
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid update payload"})
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(ctx, "Panic while processing update", "update_id", update.ID, "panic", rec)
			s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
	}()

	s.bot.ProcessUpdate(ctx, &update)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Health check failed", "error", err)
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	overview, err := s.store.GetOverview(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch overview stats", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch stats"})
		return
	}

	recent, err := s.store.GetRecentDownloads(ctx, 10)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch recent downloads", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch stats"})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"overview": overview,
		"recent":   recent,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}
