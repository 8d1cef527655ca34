package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
data_source:
  provider: REST
  base_url: http://bars.internal:8080
lookback_days: 10
default_ticker: msft
database:
  sqlite_path: data/history.db
schedule:
  cron: "0 30 16 * * 1-5"
  run_on_start: true
export:
  xlsx_path: out/report.xlsx
telegram:
  bot_token: token
  chat_id: "42"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, ".", "config.yaml", sampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ProviderREST, cfg.DataSource.Provider)
	assert.Equal(t, "http://bars.internal:8080", cfg.DataSource.BaseURL)
	assert.Equal(t, 10, cfg.LookbackDays)
	assert.Equal(t, "msft", cfg.DefaultTicker)
	assert.Equal(t, "data/history.db", cfg.Database.SQLitePath)
	assert.Equal(t, "0 30 16 * * 1-5", cfg.Schedule.Cron)
	assert.True(t, cfg.Schedule.RunOnStart)
	assert.Equal(t, "out/report.xlsx", cfg.Export.XLSXPath)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(filepath.Join("nope", "config.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ProviderYahoo, cfg.DataSource.Provider)
	assert.Equal(t, 30, cfg.LookbackDays)
	assert.Equal(t, "AAPL", cfg.DefaultTicker)
	assert.Empty(t, cfg.Schedule.Cron)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, ".", "config.yaml", sampleYAML)
	t.Setenv("STOCKFETCHER_LOOKBACK_DAYS", "90")
	t.Setenv("STOCKFETCHER_DATA_SOURCE_PROVIDER", "mock")
	t.Setenv("STOCKFETCHER_TELEGRAM_CHAT_ID", "7")
	t.Setenv("HTTPS_PROXY", "http://proxy.local:3128")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 90, cfg.LookbackDays)
	assert.Equal(t, ProviderMock, cfg.DataSource.Provider)
	assert.Equal(t, "7", cfg.Telegram.ChatID)
	assert.Equal(t, "http://proxy.local:3128", cfg.Proxy)
	// untouched keys keep the file value
	assert.Equal(t, "msft", cfg.DefaultTicker)
}

func TestLoad_DotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, ".", ".env", "STOCKFETCHER_DEFAULT_TICKER=GOOGL\nSTOCKFETCHER_DATABASE_SQLITE_PATH=dotenv.db\n")
	t.Cleanup(func() {
		os.Unsetenv("STOCKFETCHER_DEFAULT_TICKER")
		os.Unsetenv("STOCKFETCHER_DATABASE_SQLITE_PATH")
	})

	cfg, err := Load("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "GOOGL", cfg.DefaultTicker)
	assert.Equal(t, "dotenv.db", cfg.Database.SQLitePath)
}

func TestLoad_BadYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, ".", "config.yaml", "lookback_days: [")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"rest without base url", func(c *Config) { c.DataSource.Provider = ProviderREST }, "data_source.base_url is required"},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "not supported"},
		{"negative lookback", func(c *Config) { c.LookbackDays = -1 }, "lookback_days must be positive"},
		{"bad default ticker", func(c *Config) { c.DefaultTicker = "A B" }, "default_ticker"},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "t" }, "must be set together"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
