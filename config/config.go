// Package config loads application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"trend-systemv1/internal/engine"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Engine carries the screening parameters (indicator windows, score
	// weights, signal bands). Zero value means "use defaults".
	Engine engine.Config `yaml:"engine"`

	Scan struct {
		Workers    int    `yaml:"workers"`
		DailyCron  string `yaml:"daily_cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"scan"`

	Source struct {
		// CSVDir holds one <symbol>.csv per instrument.
		CSVDir string `yaml:"csv_dir"`
		// IndustryFile maps symbol to industry tag, one "symbol,industry"
		// line per entry. Optional.
		IndustryFile string `yaml:"industry_file"`
	} `yaml:"source"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Gateway struct {
		Addr string `yaml:"addr"`
	} `yaml:"gateway"`

	MetricsAddr string `yaml:"metrics_addr"`

	Notify struct {
		WebhookURL       string `yaml:"webhook_url"`
		TelegramBotToken string `yaml:"telegram_bot_token"`
		TelegramChatID   string `yaml:"telegram_chat_id"`
	} `yaml:"notify"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and fills in defaults. A missing file is not an error; the
// defaults describe a runnable local setup.
func Load(path string) (*Config, error) {
	cfg := &Config{Engine: engine.DefaultConfig()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CSV_DIR"); v != "" {
		cfg.Source.CSVDir = v
	}
	if v := os.Getenv("GATEWAY_ADDR"); v != "" {
		cfg.Gateway.Addr = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Scan.DailyCron = v
	}
	if v := os.Getenv("SCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Scan.Workers = n
		}
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Notify.WebhookURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notify.TelegramBotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notify.TelegramChatID = v
	}

	// Defaults
	if cfg.Scan.Workers == 0 {
		cfg.Scan.Workers = 4
	}
	if cfg.Scan.DailyCron == "" {
		// 15:30 CST on weekdays; the scan itself skips holidays.
		cfg.Scan.DailyCron = "0 30 15 * * 1-5"
	}
	if cfg.Source.CSVDir == "" {
		cfg.Source.CSVDir = "data/bars"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/screener.db"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Gateway.Addr == "" {
		cfg.Gateway.Addr = ":8080"
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = ":9090"
	}

	return cfg, nil
}

// Validate checks the screening parameters.
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be positive")
	}
	return nil
}
