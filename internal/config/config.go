package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. WEEKLYREPORT_SHEET_SPREADSHEET_ID.
const EnvPrefix = "WEEKLYREPORT"

// Default values for the configuration.
const (
	DefaultLocale          = "zh-TW"
	DefaultLocation        = "Local"
	DefaultWorksheet       = "週報"
	DefaultCredentialsFile = "service_account.json"
	DefaultFirstRow        = 2
	DefaultLastRow         = 14
	DefaultReadTimeout     = 30 * time.Second
	DefaultTransport       = "stdio"
	DefaultHTTPPort        = 8080
	DefaultAuthHeader      = "x-api-key"
)

// Config is the top-level configuration.
type Config struct {
	// Roster is the ordered list of members expected to submit reports.
	Roster []string `yaml:"roster" split_words:"true"`

	// Locale selects the language of rendered replies.
	Locale string `yaml:"locale" split_words:"true"`

	// Location is the zone sheet timestamps are interpreted in. "Local" uses
	// the process zone.
	Location string `yaml:"location" split_words:"true"`

	Sheet  SheetConfig  `yaml:"sheet" split_words:"true"`
	Server ServerConfig `yaml:"server" split_words:"true"`
	Notify NotifyConfig `yaml:"notify" split_words:"true"`
}

// SheetConfig identifies the worksheet holding form submissions.
type SheetConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id" split_words:"true"`
	Worksheet       string `yaml:"worksheet" split_words:"true"`
	CredentialsFile string `yaml:"credentials_file" split_words:"true"`

	// FirstRow and LastRow bound the rows read on every query (1-based, inclusive).
	FirstRow int `yaml:"first_row" split_words:"true"`
	LastRow  int `yaml:"last_row" split_words:"true"`

	// Batch fetches the whole range in one request. Per-row mode costs
	// LastRow-FirstRow+2 read requests per query, including every metrics
	// scrape, against a quota of 60 per minute.
	Batch bool `yaml:"batch" split_words:"true"`

	Timeout time.Duration `yaml:"timeout" split_words:"true"`
}

// ServerConfig controls how queries are exposed.
type ServerConfig struct {
	// Transport is one of: stdio | http.
	Transport string `yaml:"transport" split_words:"true"`

	// HTTPPort serves MCP at /mcp, the REST API at /api/v1 and /metrics.
	HTTPPort int `yaml:"http_port" split_words:"true"`

	// CORSOrigins lists browser origins allowed to call the REST API.
	CORSOrigins []string `yaml:"cors_origins" split_words:"true"`

	Auth AuthConfig `yaml:"auth" split_words:"true"`
}

// AuthConfig controls client authentication on the HTTP transport.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode" split_words:"true"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	KeyEnv string `yaml:"key_env" split_words:"true"`

	// Header is the HTTP header to read the key from. Defaults to "x-api-key".
	Header string `yaml:"header" split_words:"true"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return DefaultAuthHeader
}

// NotifyConfig lists reminder delivery targets.
type NotifyConfig struct {
	Webhooks []WebhookConfig `yaml:"webhooks" ignored:"true"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// TimeLocation resolves Location.
func (c *Config) TimeLocation() (*time.Location, error) {
	if c.Location == "" || c.Location == DefaultLocation {
		return time.Local, nil
	}
	return time.LoadLocation(c.Location)
}

type ctxKey string

const configContextKey ctxKey = "weeklyreport.config"

// WithContext returns ctx carrying cfg.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

// FromContext returns the Config stored by WithContext, or nil.
func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Locale:   DefaultLocale,
		Location: DefaultLocation,
		Sheet: SheetConfig{
			Worksheet:       DefaultWorksheet,
			CredentialsFile: DefaultCredentialsFile,
			FirstRow:        DefaultFirstRow,
			LastRow:         DefaultLastRow,
			Timeout:         DefaultReadTimeout,
		},
		Server: ServerConfig{
			Transport: DefaultTransport,
			HTTPPort:  DefaultHTTPPort,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if len(cfg.Roster) == 0 {
		return fmt.Errorf("roster must list at least one member")
	}
	seen := make(map[string]bool, len(cfg.Roster))
	for i, n := range cfg.Roster {
		if n == "" {
			return fmt.Errorf("roster[%d]: empty name", i)
		}
		if seen[n] {
			return fmt.Errorf("roster[%d]: duplicate name %q", i, n)
		}
		seen[n] = true
	}
	if _, err := cfg.TimeLocation(); err != nil {
		return fmt.Errorf("location %q: %w", cfg.Location, err)
	}

	if cfg.Sheet.SpreadsheetID == "" {
		return fmt.Errorf("sheet.spreadsheet_id is required")
	}
	if cfg.Sheet.Worksheet == "" {
		return fmt.Errorf("sheet.worksheet must not be empty")
	}
	if cfg.Sheet.CredentialsFile == "" {
		return fmt.Errorf("sheet.credentials_file must not be empty")
	}
	if cfg.Sheet.FirstRow < 1 {
		return fmt.Errorf("sheet.first_row %d must be at least 1", cfg.Sheet.FirstRow)
	}
	if cfg.Sheet.LastRow < cfg.Sheet.FirstRow {
		return fmt.Errorf("sheet.last_row %d is before sheet.first_row %d", cfg.Sheet.LastRow, cfg.Sheet.FirstRow)
	}
	if cfg.Sheet.Timeout <= 0 {
		return fmt.Errorf("sheet.timeout must be positive")
	}

	switch cfg.Server.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("server.transport %q unknown: want stdio|http", cfg.Server.Transport)
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}

	for i, wh := range cfg.Notify.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("notify.webhooks[%d]: unknown type %q", i, wh.Type)
		}
		if wh.URLEnv == "" {
			return fmt.Errorf("notify.webhooks[%d]: url_env is required", i)
		}
	}
	return nil
}
