package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"StockFetcher/internal/model"
)

// envPrefix namespaces environment overrides, e.g. STOCKFETCHER_LOOKBACK_DAYS.
const envPrefix = "STOCKFETCHER"

// Supported data_source.provider values.
const (
	ProviderYahoo = "yahoo"
	ProviderREST  = "rest"
	ProviderMock  = "mock"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider string `yaml:"provider" envconfig:"PROVIDER"`
		BaseURL  string `yaml:"base_url" envconfig:"BASE_URL"`
	} `yaml:"data_source" envconfig:"DATA_SOURCE"`
	LookbackDays  int    `yaml:"lookback_days" envconfig:"LOOKBACK_DAYS"`
	DefaultTicker string `yaml:"default_ticker" envconfig:"DEFAULT_TICKER"`
	Proxy         string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
	Database      struct {
		SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	} `yaml:"database" envconfig:"DATABASE"`
	Schedule struct {
		Cron       string `yaml:"cron" envconfig:"CRON"`
		RunOnStart bool   `yaml:"run_on_start" envconfig:"RUN_ON_START"`
	} `yaml:"schedule" envconfig:"SCHEDULE"`
	Export struct {
		XLSXPath string `yaml:"xlsx_path" envconfig:"XLSX_PATH"`
	} `yaml:"export" envconfig:"EXPORT"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"CHAT_ID"`
	} `yaml:"telegram" envconfig:"TELEGRAM"`
}

// Load reads config from a YAML file, then a .env file in the working
// directory, then applies environment variable overrides and defaults.
// Missing files are not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the process environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Fields without a matching variable keep their YAML value.
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.DataSource.Provider = strings.ToLower(strings.TrimSpace(c.DataSource.Provider))
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
	}
	if c.LookbackDays == 0 {
		c.LookbackDays = 30
	}
	if c.DefaultTicker == "" {
		c.DefaultTicker = string(model.DefaultTicker)
	}
}

// TelegramEnabled reports whether both Telegram credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for provider %q", ProviderREST)
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookback_days must be positive")
	}
	if _, err := model.ParseTicker(c.DefaultTicker); err != nil {
		return fmt.Errorf("default_ticker: %w", err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
