package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"COUNTDOWN_CONFIG", "STORAGE_BACKEND", "DATABASE_URL", "DATA_DIR",
		"TELEGRAM_TOKEN", "TELEGRAM_CHAT_IDS", "HTTP_ADDR", "API_TOKEN",
		"CORS_ORIGINS", "CHECKPOINT_INTERVAL_SECONDS", "TICK_INTERVAL_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_DIR", "/tmp/countdown")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorageBackend != BackendSQLite || cfg.DatabaseURL != "countdown.db" {
		t.Errorf("storage defaults = %q %q", cfg.StorageBackend, cfg.DatabaseURL)
	}
	if cfg.CheckpointInterval != 30*time.Second || cfg.TickInterval != time.Second {
		t.Errorf("intervals = %v %v", cfg.CheckpointInterval, cfg.TickInterval)
	}
	if cfg.TelegramToken != "" || cfg.HTTPAddr != "" {
		t.Errorf("bot and http should be disabled by default")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "countdown.yaml")
	data := []byte(`
storage:
  backend: file
  data_dir: /var/lib/countdown
telegram:
  token: from-file
  chat_ids: [1, 2]
http:
  addr: ":8080"
checkpoint_interval: 10
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COUNTDOWN_CONFIG", path)
	t.Setenv("TELEGRAM_TOKEN", "from-env")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorageBackend != BackendFile || cfg.DataDir != "/var/lib/countdown" {
		t.Errorf("storage = %q %q", cfg.StorageBackend, cfg.DataDir)
	}
	if cfg.TelegramToken != "from-env" {
		t.Errorf("env should override file token, got %q", cfg.TelegramToken)
	}
	if len(cfg.TelegramChatIDs) != 2 || cfg.TelegramChatIDs[1] != 2 {
		t.Errorf("chat ids = %v", cfg.TelegramChatIDs)
	}
	if cfg.HTTPAddr != ":8080" || cfg.CheckpointInterval != 10*time.Second {
		t.Errorf("http/checkpoint = %q %v", cfg.HTTPAddr, cfg.CheckpointInterval)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STORAGE_BACKEND", "postgres"},
		{"TELEGRAM_CHAT_IDS", "12,abc"},
	}
	for _, tt := range tests {
		clearEnv(t)
		t.Setenv("DATA_DIR", "/tmp/countdown")
		t.Setenv(tt.key, tt.value)
		if _, err := Load(); err == nil {
			t.Errorf("%s=%q: expected error", tt.key, tt.value)
		}
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"0", 0},
		{"-3", 0},
		{"x", 0},
	}
	for _, tt := range tests {
		if got := parseInterval(tt.raw); got != tt.want {
			t.Errorf("parseInterval(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
