package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, "telegram:\n  token: \"123:abc\"\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Log.Level)
	}
	if cfg.Server.Addr != DefaultServerAddr {
		t.Errorf("expected default server addr %q, got %q", DefaultServerAddr, cfg.Server.Addr)
	}
	if cfg.Download.MaxFileSize != DefaultDownloadMaxFileSize {
		t.Errorf("expected default max file size %d, got %d", int64(DefaultDownloadMaxFileSize), cfg.Download.MaxFileSize)
	}
	if cfg.Download.Timeout != DefaultDownloadTimeout {
		t.Errorf("expected default download timeout %v, got %v", DefaultDownloadTimeout, cfg.Download.Timeout)
	}
	if cfg.Messages.Welcome == "" {
		t.Error("expected default welcome message to be set")
	}
	if len(cfg.Scheduler.Tasks) == 0 {
		t.Error("expected default scheduler tasks to be set")
	}
}

func TestLoadConfigFileOverrides(t *testing.T) {
	path := writeConfigFile(t, `
log:
  level: debug
  json: false
telegram:
  token: "123:abc"
  channel: "@mychannel"
download:
  max_duration: 120
  timeout: 90s
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Log.Level)
	}
	if cfg.Log.JSON {
		t.Error("expected json logging disabled")
	}
	if cfg.Telegram.Channel != "@mychannel" {
		t.Errorf("expected channel @mychannel, got %q", cfg.Telegram.Channel)
	}
	if cfg.Download.MaxDuration != 120 {
		t.Errorf("expected max duration 120, got %d", cfg.Download.MaxDuration)
	}
	if cfg.Download.Timeout != 90*time.Second {
		t.Errorf("expected timeout 90s, got %v", cfg.Download.Timeout)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfigFile(t, "telegram:\n  token: \"123:abc\"\n")

	t.Setenv("BOT_LOG_LEVEL", "warn")
	t.Setenv("BOT_SERVER_ADDR", ":9090")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("expected env override log level warn, got %q", cfg.Log.Level)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected env override server addr :9090, got %q", cfg.Server.Addr)
	}
}

func TestLoadConfigMissingFileUsesEnv(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123:abc")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error for missing file: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("expected token from env, got %q", cfg.Telegram.Token)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing token", "log:\n  level: info\n"},
		{"bad log level", "telegram:\n  token: \"123:abc\"\nlog:\n  level: verbose\n"},
		{"channel without at sign", "telegram:\n  token: \"123:abc\"\n  channel: mychannel\n"},
		{"bad webhook url", "telegram:\n  token: \"123:abc\"\n  webhook_url: not-a-url\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
