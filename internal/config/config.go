package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Columns   ColumnsConfig   `yaml:"columns" envconfig:"COLUMNS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"90s"`
}

// SecurityConfig contains security-related configuration. RefreshAPIKeys
// guard POST /tasks/refresh when non-empty.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"*"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	RefreshAPIKeys []string        `yaml:"refresh_api_keys" envconfig:"REFRESH_API_KEYS"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"40"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// SourceConfig selects and configures the spreadsheet source
type SourceConfig struct {
	Kind            string        `yaml:"kind" envconfig:"KIND" default:"csv"`
	CSVURL          string        `yaml:"csv_url" envconfig:"CSV_URL"`
	SpreadsheetID   string        `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	Range           string        `yaml:"range" envconfig:"RANGE" default:"A:ZZ"`
	APIKey          string        `yaml:"api_key" envconfig:"API_KEY"`
	CredentialsFile string        `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	CacheTTL        time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL" default:"5m"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" default:"30s"`
}

// ColumnsConfig maps logical fields to sheet columns. Letters address the
// fixed reports by position; name lists address the disbursement sheet by
// header, first match wins.
type ColumnsConfig struct {
	Branch      string `yaml:"branch" envconfig:"BRANCH" default:"G"`
	LoanType    string `yaml:"loan_type" envconfig:"LOAN_TYPE" default:"AN"`
	LoanAmount  string `yaml:"loan_amount" envconfig:"LOAN_AMOUNT" default:"AQ"`
	PoultryType string `yaml:"poultry_type" envconfig:"POULTRY_TYPE" default:"T"`
	Birds       string `yaml:"birds" envconfig:"BIRDS" default:"U"`
	Grants      string `yaml:"grants" envconfig:"GRANTS" default:"BL"`

	DateNames     []string `yaml:"date_names" envconfig:"DATE_NAMES" default:"date"`
	BranchNames   []string `yaml:"branch_names" envconfig:"BRANCH_NAMES" default:"branch,branch_name"`
	AmountNames   []string `yaml:"amount_names" envconfig:"AMOUNT_NAMES" default:"disbursement,loan_disbursement,amount,disburse"`
	LoanTypeNames []string `yaml:"loan_type_names" envconfig:"LOAN_TYPE_NAMES" default:"loan_type,type,enterprise_flag,enterprise,is_enterprise,category"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName   string  `yaml:"service_name" envconfig:"SERVICE_NAME" default:"pidim-smart-reports"`
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	EnableTracing bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING" default:"false"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"stdout"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0"`
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS" default:"true"`
}

// Load loads configuration from environment variables and config file.
// Values from the environment take precedence over the file.
func Load() (*Config, error) {
	var envCfg Config
	if err := envconfig.Process(EnvPrefix, &envCfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg := envCfg
	if configFile := getConfigFilePath(); configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, envCfg)
	}

	if cfg.Source.CSVURL == "" {
		cfg.Source.CSVURL = DefaultCSVURL
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile reads a YAML file on top of the defaults
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeConfigs overlays explicitly set environment variables on the file
// config.
func mergeConfigs(fileConfig, envConfig Config) Config {
	out := fileConfig
	e := envConfig

	override(&out.Server.Port, e.Server.Port, "SERVER_PORT")
	override(&out.Server.ReadTimeout, e.Server.ReadTimeout, "SERVER_READ_TIMEOUT")
	override(&out.Server.WriteTimeout, e.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT")
	override(&out.Server.IdleTimeout, e.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT")
	override(&out.Server.MaxHeaderBytes, e.Server.MaxHeaderBytes, "SERVER_MAX_HEADER_BYTES")
	override(&out.Server.ShutdownTimeout, e.Server.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT")
	override(&out.Server.RequestTimeout, e.Server.RequestTimeout, "SERVER_REQUEST_TIMEOUT")

	override(&out.Security.AllowedOrigins, e.Security.AllowedOrigins, "SECURITY_ALLOWED_ORIGINS")
	override(&out.Security.EnableCORS, e.Security.EnableCORS, "SECURITY_ENABLE_CORS")
	override(&out.Security.RateLimit.Enabled, e.Security.RateLimit.Enabled, "SECURITY_RATE_LIMIT_ENABLED")
	override(&out.Security.RateLimit.RPS, e.Security.RateLimit.RPS, "SECURITY_RATE_LIMIT_RPS")
	override(&out.Security.RateLimit.Burst, e.Security.RateLimit.Burst, "SECURITY_RATE_LIMIT_BURST")
	override(&out.Security.RefreshAPIKeys, e.Security.RefreshAPIKeys, "SECURITY_REFRESH_API_KEYS")

	override(&out.Logging.Level, e.Logging.Level, "LOGGING_LEVEL")
	override(&out.Logging.Format, e.Logging.Format, "LOGGING_FORMAT")
	override(&out.Logging.Output, e.Logging.Output, "LOGGING_OUTPUT")
	override(&out.Logging.FilePath, e.Logging.FilePath, "LOGGING_FILE_PATH")

	override(&out.Source.Kind, e.Source.Kind, "SOURCE_KIND")
	override(&out.Source.CSVURL, e.Source.CSVURL, "SOURCE_CSV_URL")
	override(&out.Source.SpreadsheetID, e.Source.SpreadsheetID, "SOURCE_SPREADSHEET_ID")
	override(&out.Source.Range, e.Source.Range, "SOURCE_RANGE")
	override(&out.Source.APIKey, e.Source.APIKey, "SOURCE_API_KEY")
	override(&out.Source.CredentialsFile, e.Source.CredentialsFile, "SOURCE_CREDENTIALS_FILE")
	override(&out.Source.CacheTTL, e.Source.CacheTTL, "SOURCE_CACHE_TTL")
	override(&out.Source.FetchTimeout, e.Source.FetchTimeout, "SOURCE_FETCH_TIMEOUT")

	override(&out.Columns.Branch, e.Columns.Branch, "COLUMNS_BRANCH")
	override(&out.Columns.LoanType, e.Columns.LoanType, "COLUMNS_LOAN_TYPE")
	override(&out.Columns.LoanAmount, e.Columns.LoanAmount, "COLUMNS_LOAN_AMOUNT")
	override(&out.Columns.PoultryType, e.Columns.PoultryType, "COLUMNS_POULTRY_TYPE")
	override(&out.Columns.Birds, e.Columns.Birds, "COLUMNS_BIRDS")
	override(&out.Columns.Grants, e.Columns.Grants, "COLUMNS_GRANTS")
	override(&out.Columns.DateNames, e.Columns.DateNames, "COLUMNS_DATE_NAMES")
	override(&out.Columns.BranchNames, e.Columns.BranchNames, "COLUMNS_BRANCH_NAMES")
	override(&out.Columns.AmountNames, e.Columns.AmountNames, "COLUMNS_AMOUNT_NAMES")
	override(&out.Columns.LoanTypeNames, e.Columns.LoanTypeNames, "COLUMNS_LOAN_TYPE_NAMES")

	override(&out.Telemetry.ServiceName, e.Telemetry.ServiceName, "TELEMETRY_SERVICE_NAME")
	override(&out.Telemetry.Environment, e.Telemetry.Environment, "TELEMETRY_ENVIRONMENT")
	override(&out.Telemetry.EnableTracing, e.Telemetry.EnableTracing, "TELEMETRY_ENABLE_TRACING")
	override(&out.Telemetry.TraceExporter, e.Telemetry.TraceExporter, "TELEMETRY_TRACE_EXPORTER")
	override(&out.Telemetry.SampleRatio, e.Telemetry.SampleRatio, "TELEMETRY_SAMPLE_RATIO")
	override(&out.Telemetry.EnableMetrics, e.Telemetry.EnableMetrics, "TELEMETRY_ENABLE_METRICS")

	return out
}

func override[T any](dst *T, envValue T, key string) {
	if _, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		*dst = envValue
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	switch c.Source.Kind {
	case SourceCSV:
		if c.Source.CSVURL == "" {
			return fmt.Errorf("source csv_url is required for the csv source")
		}
	case SourceSheets:
		if c.Source.SpreadsheetID == "" {
			return fmt.Errorf("source spreadsheet_id is required for the sheets source")
		}
	default:
		return fmt.Errorf("unsupported source kind: %q", c.Source.Kind)
	}

	if c.Source.CacheTTL <= 0 {
		return fmt.Errorf("source cache ttl must be positive")
	}

	if c.Source.FetchTimeout <= 0 {
		return fmt.Errorf("source fetch timeout must be positive")
	}

	for field, label := range c.Columns.Letters() {
		if !isColumnLabel(label) {
			return fmt.Errorf("invalid column letter for %s: %q", field, label)
		}
	}

	if len(c.Columns.DateNames) == 0 || len(c.Columns.BranchNames) == 0 || len(c.Columns.AmountNames) == 0 {
		return fmt.Errorf("disbursement date, branch and amount column names must not be empty")
	}

	if c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// Letters returns the positional column labels keyed by field
func (c ColumnsConfig) Letters() map[string]string {
	return map[string]string{
		"branch":       c.Branch,
		"loan_type":    c.LoanType,
		"loan_amount":  c.LoanAmount,
		"poultry_type": c.PoultryType,
		"birds":        c.Birds,
		"grants":       c.Grants,
	}
}

func isColumnLabel(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  90 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"*"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Source: SourceConfig{
			Kind:         SourceCSV,
			CSVURL:       DefaultCSVURL,
			Range:        "A:ZZ",
			CacheTTL:     DefaultCacheTTL,
			FetchTimeout: DefaultFetchTimeout,
		},
		Columns: ColumnsConfig{
			Branch:        "G",
			LoanType:      "AN",
			LoanAmount:    "AQ",
			PoultryType:   "T",
			Birds:         "U",
			Grants:        "BL",
			DateNames:     []string{"date"},
			BranchNames:   []string{"branch", "branch_name"},
			AmountNames:   []string{"disbursement", "loan_disbursement", "amount", "disburse"},
			LoanTypeNames: []string{"loan_type", "type", "enterprise_flag", "enterprise", "is_enterprise", "category"},
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "pidim-smart-reports",
			Environment:   "development",
			TraceExporter: "stdout",
			SampleRatio:   1.0,
			EnableMetrics: true,
		},
	}
}
