package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config keeps runtime settings for the timer daemon and CLI.
type Config struct {
	StorageBackend     string
	DatabaseURL        string
	DataDir            string
	TelegramToken      string
	TelegramChatIDs    []int64
	HTTPAddr           string
	APIToken           string
	CORSOrigins        []string
	CheckpointInterval time.Duration
	TickInterval       time.Duration
}

// fileConfig mirrors the optional YAML file named by COUNTDOWN_CONFIG.
type fileConfig struct {
	Storage struct {
		Backend     string `yaml:"backend"`
		DatabaseURL string `yaml:"database_url"`
		DataDir     string `yaml:"data_dir"`
	} `yaml:"storage"`
	Telegram struct {
		Token   string  `yaml:"token"`
		ChatIDs []int64 `yaml:"chat_ids"`
	} `yaml:"telegram"`
	HTTP struct {
		Addr        string   `yaml:"addr"`
		APIToken    string   `yaml:"api_token"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"http"`
	CheckpointInterval int `yaml:"checkpoint_interval"`
	TickInterval       int `yaml:"tick_interval"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		StorageBackend:     BackendSQLite,
		DatabaseURL:        "countdown.db",
		DataDir:            "~/.countdown",
		CORSOrigins:        []string{"http://localhost:5173"},
		CheckpointInterval: 30 * time.Second,
		TickInterval:       time.Second,
	}
}

// Load reads the optional YAML file, then lets environment variables
// override it.
func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("COUNTDOWN_CONFIG")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	dir, err := expandHome(cfg.DataDir)
	if err != nil {
		return cfg, err
	}
	cfg.DataDir = dir

	switch cfg.StorageBackend {
	case BackendSQLite, BackendFile:
	default:
		return cfg, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendFile, cfg.StorageBackend)
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.StorageBackend, strings.ToLower(fc.Storage.Backend))
	setString(&cfg.DatabaseURL, fc.Storage.DatabaseURL)
	setString(&cfg.DataDir, fc.Storage.DataDir)
	setString(&cfg.TelegramToken, fc.Telegram.Token)
	if len(fc.Telegram.ChatIDs) > 0 {
		cfg.TelegramChatIDs = fc.Telegram.ChatIDs
	}
	setString(&cfg.HTTPAddr, fc.HTTP.Addr)
	setString(&cfg.APIToken, fc.HTTP.APIToken)
	if len(fc.HTTP.CORSOrigins) > 0 {
		cfg.CORSOrigins = fc.HTTP.CORSOrigins
	}
	if fc.CheckpointInterval > 0 {
		cfg.CheckpointInterval = time.Duration(fc.CheckpointInterval) * time.Second
	}
	if fc.TickInterval > 0 {
		cfg.TickInterval = time.Duration(fc.TickInterval) * time.Second
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.StorageBackend, strings.ToLower(env("STORAGE_BACKEND")))
	setString(&cfg.DatabaseURL, env("DATABASE_URL"))
	setString(&cfg.DataDir, env("DATA_DIR"))
	setString(&cfg.TelegramToken, env("TELEGRAM_TOKEN"))
	setString(&cfg.HTTPAddr, env("HTTP_ADDR"))
	setString(&cfg.APIToken, env("API_TOKEN"))

	if raw := env("TELEGRAM_CHAT_IDS"); raw != "" {
		ids, err := parseChatIDs(raw)
		if err != nil {
			return err
		}
		cfg.TelegramChatIDs = ids
	}
	if raw := env("CORS_ORIGINS"); raw != "" {
		cfg.CORSOrigins = splitList(raw)
	}
	if d := parseInterval(env("CHECKPOINT_INTERVAL_SECONDS")); d > 0 {
		cfg.CheckpointInterval = d
	}
	if d := parseInterval(env("TICK_INTERVAL_SECONDS")); d > 0 {
		cfg.TickInterval = d
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseChatIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_IDS: invalid chat id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw + "s")
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
