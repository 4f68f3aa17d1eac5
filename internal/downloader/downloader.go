// Package downloader fetches videos by driving yt-dlp as a subprocess.
// Every request gets its own scratch directory; callers must invoke
// Result.Cleanup when they are done with the artifact.
package downloader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/atheraber/saverbot/internal/config"
)

// Failure reasons surfaced to users.
var (
	ErrTooLong     = errors.New("video is too long")
	ErrTooLarge    = errors.New("video file is too large")
	ErrPrivate     = errors.New("video is private")
	ErrUnavailable = errors.New("video is unavailable")
	ErrUnsupported = errors.New("this link is not supported")
	ErrTimeout     = errors.New("download timed out")
)

// Result describes a completed download. Path points inside a scratch
// directory that Cleanup removes.
type Result struct {
	Path     string
	Title    string
	Duration int64 // seconds
	Size     int64 // bytes

	dir    string
	logger *slog.Logger
}

// Cleanup removes the download artifact and its scratch directory.
// Safe to call multiple times.
func (r *Result) Cleanup() {
	if r.dir == "" {
		return
	}
	if err := os.RemoveAll(r.dir); err != nil {
		r.logger.Error("Failed to remove download scratch directory", "dir", r.dir, "error", err)
		return
	}
	r.dir = ""
}

// Downloader wraps yt-dlp invocations with probing and size/duration caps.
type Downloader struct {
	cfg    config.DownloadConfig
	logger *slog.Logger
}

// New creates a Downloader with the given limits.
func New(cfg config.DownloadConfig, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Downloader{
		cfg:    cfg,
		logger: logger.With("component", "downloader"),
	}
}

// probeInfo is the subset of yt-dlp's -J output the downloader cares about.
type probeInfo struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Duration       float64 `json:"duration"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
}

// Download probes the URL first and rejects videos over the duration or
// size caps before transferring anything, then downloads into a fresh
// scratch directory. On any error the scratch directory is removed before
// returning.
func (d *Downloader) Download(ctx context.Context, rawURL string) (*Result, error) {
	info, err := d.probe(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if int64(info.Duration) > int64(d.cfg.MaxDuration) {
		d.logger.InfoContext(ctx, "Rejecting video over duration cap",
			"url", rawURL, "duration", info.Duration, "max", d.cfg.MaxDuration)
		return nil, fmt.Errorf("%w (%.0fs, limit %ds)", ErrTooLong, info.Duration, d.cfg.MaxDuration)
	}

	predictedSize := info.Filesize
	if predictedSize == 0 {
		predictedSize = info.FilesizeApprox
	}
	if predictedSize > d.cfg.MaxFileSize {
		d.logger.InfoContext(ctx, "Rejecting video over size cap",
			"url", rawURL, "predicted_size", predictedSize, "max", d.cfg.MaxFileSize)
		return nil, fmt.Errorf("%w (limit %dMB)", ErrTooLarge, d.cfg.MaxFileSize/(1024*1024))
	}

	dir, err := os.MkdirTemp(d.cfg.Dir, "saverbot-dl-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	path, size, err := d.fetch(ctx, rawURL, dir)
	if err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			d.logger.ErrorContext(ctx, "Failed to remove scratch directory after error",
				"dir", dir, "error", rmErr)
		}
		return nil, err
	}

	d.logger.InfoContext(ctx, "Download completed",
		"url", rawURL, "title", info.Title, "size", size, "path", path)

	return &Result{
		Path:     path,
		Title:    info.Title,
		Duration: int64(info.Duration),
		Size:     size,
		dir:      dir,
		logger:   d.logger,
	}, nil
}

// probe runs yt-dlp in metadata-only mode.
func (d *Downloader) probe(ctx context.Context, rawURL string) (*probeInfo, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.cfg.YTDLPPath, "-J", "--no-playlist", rawURL)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	d.logger.DebugContext(ctx, "Probing URL", "url", rawURL)
	if err := cmd.Run(); err != nil {
		return nil, d.classifyExecError(ctx, err, stderr.String())
	}

	var info probeInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		d.logger.ErrorContext(ctx, "Failed to parse probe output", "url", rawURL, "error", err)
		return nil, fmt.Errorf("failed to parse video metadata: %w", err)
	}
	return &info, nil
}

// fetch runs the actual download into dir and returns the artifact path and
// its size. The artifact is re-checked against the size cap: predicted sizes
// from the probe are not always available or accurate.
func (d *Downloader) fetch(ctx context.Context, rawURL, dir string) (string, int64, error) {
	format := fmt.Sprintf("%s[filesize<%dM]", d.cfg.Quality, d.cfg.MaxFileSize/(1024*1024))
	outTemplate := filepath.Join(dir, "%(id)s.%(ext)s")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.cfg.YTDLPPath,
		"--no-playlist",
		"-f", format,
		"-o", outTemplate,
		rawURL,
	)
	cmd.Stderr = &stderr

	d.logger.DebugContext(ctx, "Starting download", "url", rawURL, "format", format)
	if err := cmd.Run(); err != nil {
		return "", 0, d.classifyExecError(ctx, err, stderr.String())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, fmt.Errorf("failed to list scratch directory: %w", err)
	}

	var path string
	var size int64
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".part") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		path = filepath.Join(dir, entry.Name())
		size = fi.Size()
		break
	}
	if path == "" {
		return "", 0, fmt.Errorf("%w: no file produced", ErrUnavailable)
	}

	if size > d.cfg.MaxFileSize {
		d.logger.InfoContext(ctx, "Downloaded artifact exceeds size cap",
			"url", rawURL, "size", size, "max", d.cfg.MaxFileSize)
		return "", 0, fmt.Errorf("%w (limit %dMB)", ErrTooLarge, d.cfg.MaxFileSize/(1024*1024))
	}

	return path, size, nil
}

// classifyExecError maps yt-dlp failures to user-facing sentinel errors.
func (d *Downloader) classifyExecError(ctx context.Context, err error, stderr string) error {
	if ctx.Err() != nil {
		return ErrTimeout
	}

	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "private video") || strings.Contains(lower, "login required"):
		return ErrPrivate
	case strings.Contains(lower, "unavailable") || strings.Contains(lower, "removed"):
		return ErrUnavailable
	case strings.Contains(lower, "unsupported url"):
		return ErrUnsupported
	}

	d.logger.ErrorContext(ctx, "yt-dlp invocation failed",
		"error", err, "stderr", firstLine(stderr))
	return fmt.Errorf("download failed: %w", err)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		return s[:idx]
	}
	return s
}
