package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no stray config file
// is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.Security.RateLimit.Enabled)

	assert.Equal(t, SourceCSV, cfg.Source.Kind)
	assert.Equal(t, DefaultCSVURL, cfg.Source.CSVURL)
	assert.Equal(t, 5*time.Minute, cfg.Source.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.Source.FetchTimeout)

	assert.Equal(t, "G", cfg.Columns.Branch)
	assert.Equal(t, "AQ", cfg.Columns.LoanAmount)
	assert.Equal(t, "BL", cfg.Columns.Grants)
	assert.Equal(t, []string{"branch", "branch_name"}, cfg.Columns.BranchNames)

	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestDefaultMatchesEnvDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PIDIM_SERVER_PORT", "9191")
	t.Setenv("PIDIM_SOURCE_CACHE_TTL", "2m")
	t.Setenv("PIDIM_COLUMNS_LOAN_AMOUNT", "AR")
	t.Setenv("PIDIM_COLUMNS_AMOUNT_NAMES", "amount,value")
	t.Setenv("PIDIM_SECURITY_RATE_LIMIT_RPS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Source.CacheTTL)
	assert.Equal(t, "AR", cfg.Columns.LoanAmount)
	assert.Equal(t, []string{"amount", "value"}, cfg.Columns.AmountNames)
	assert.Equal(t, 5.0, cfg.Security.RateLimit.RPS)
}

func TestLoadFileWithEnvPrecedence(t *testing.T) {
	dir := chdirTemp(t)
	content := `
server:
  port: 7000
  read_timeout: 20s
source:
  kind: sheets
  spreadsheet_id: abc123
  cache_ttl: 10m
columns:
  grants: BM
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	t.Setenv("PIDIM_SERVER_PORT", "7100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, SourceSheets, cfg.Source.Kind)
	assert.Equal(t, "abc123", cfg.Source.SpreadsheetID)
	assert.Equal(t, 10*time.Minute, cfg.Source.CacheTTL)
	assert.Equal(t, "BM", cfg.Columns.Grants)
	assert.Equal(t, "G", cfg.Columns.Branch, "unset keys keep defaults")
}

func TestLoadExplicitConfigFile(t *testing.T) {
	chdirTemp(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644))
	t.Setenv("PIDIM_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"bad read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "read timeout"},
		{"unknown source", func(c *Config) { c.Source.Kind = "ftp" }, "unsupported source kind"},
		{"sheets without id", func(c *Config) { c.Source.Kind = SourceSheets }, "spreadsheet_id"},
		{"csv without url", func(c *Config) { c.Source.CSVURL = "" }, "csv_url"},
		{"zero ttl", func(c *Config) { c.Source.CacheTTL = 0 }, "cache ttl"},
		{"bad letter", func(c *Config) { c.Columns.Grants = "B1" }, "invalid column letter for grants"},
		{"no amount names", func(c *Config) { c.Columns.AmountNames = nil }, "must not be empty"},
		{"cors without origins", func(c *Config) { c.Security.AllowedOrigins = nil }, "allowed origin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateLogFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.FilePath = ""
	require.NoError(t, cfg.validate())
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)

	cfg.Logging.Format = "xml"
	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
}
