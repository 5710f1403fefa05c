// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Map ANALYTICS_ env vars into the Config struct.
//   - Validate required values so commands fail fast on bad config.
//   - Provide defaults for the optional blocks (analytics, observability).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Loads `.env` into the process environment before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix every configuration variable carries.
//
// A double underscore separates nesting levels, so
// ANALYTICS_DATABASE__SSL_MODE maps to database.ssl_mode.
const EnvPrefix = "ANALYTICS_"

// Config is the root configuration object for the application.
//
// Analytics, Integration and Observability are pointers because they are
// optional. Defaults are injected when they are absent.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Integration   *IntegrationConfig   `koanf:"integration"`
	Analytics     *AnalyticsConfig     `koanf:"analytics"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
// The database is the default snapshot source.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig is the address ("host:port") of the Redis instance backing
// the report job queue.
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// IntegrationConfig holds third-party delivery credentials.
type IntegrationConfig struct {
	ResendAPIKey     string   `koanf:"resend_api_key" validate:"required"`
	FromAddress      string   `koanf:"from_address" validate:"required,email"`
	ReportRecipients []string `koanf:"report_recipients" validate:"required,min=1,dive,email"`
}

// AnalyticsConfig tunes how reports are computed.
type AnalyticsConfig struct {
	// SnapshotFile, when set, replaces PostgreSQL as the snapshot source.
	SnapshotFile string `koanf:"snapshot_file"`

	// GrowthPolicy is the default monthly trend growth definition.
	GrowthPolicy string `koanf:"growth_policy" validate:"omitempty,oneof=calendar_adjacent previous_present"`

	// Timezone is the IANA zone "today" is computed in.
	Timezone string `koanf:"timezone" validate:"required"`

	// DailyReportCron schedules the daily sales report job.
	DailyReportCron string `koanf:"daily_report_cron" validate:"required"`

	// LoadTimeout bounds a single snapshot load.
	LoadTimeout time.Duration `koanf:"load_timeout" validate:"min=1s"`
}

// DefaultAnalyticsConfig returns the analytics settings used when none are
// configured.
func DefaultAnalyticsConfig() *AnalyticsConfig {
	return &AnalyticsConfig{
		GrowthPolicy:    "calendar_adjacent",
		Timezone:        "UTC",
		DailyReportCron: "0 6 * * *",
		LoadTimeout:     30 * time.Second,
	}
}

// Location resolves Timezone.
func (c *AnalyticsConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid analytics timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks the analytics block beyond its struct tags.
func (c *AnalyticsConfig) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if len(strings.Fields(c.DailyReportCron)) != 5 {
		return fmt.Errorf("daily_report_cron must have 5 fields, got %q", c.DailyReportCron)
	}
	return nil
}

// listKeys are the settings given as comma-separated lists.
var listKeys = map[string]bool{
	"integration.report_recipients": true,
}

// envKey turns ANALYTICS_DATABASE__SSL_MODE into database.ssl_mode.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// envValue maps a variable onto its key, splitting list settings on commas.
func envValue(name, value string) (string, any) {
	key := envKey(name)
	if !listKeys[key] {
		return key, value
	}

	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// LoadConfig reads the environment into a validated Config.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Optional blocks start from their defaults so a single variable such as
	// ANALYTICS_ANALYTICS__TIMEZONE overrides one field, not the whole block.
	mainConfig := &Config{
		Analytics:     DefaultAnalyticsConfig(),
		Observability: DefaultObservabilityConfig(),
	}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// MustLoadConfig is LoadConfig for main: it logs and exits on failure.
func MustLoadConfig() *Config {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("config validation failed")
	}
	return cfg
}

// Validate applies defaults for the optional blocks, then checks the
// whole tree.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Analytics == nil {
		c.Analytics = DefaultAnalyticsConfig()
	}
	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("invalid analytics config: %w", err)
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

// DeliveryEnabled reports whether the daily report can be emailed.
func (c *Config) DeliveryEnabled() bool {
	return c.Integration != nil && c.Integration.ResendAPIKey != ""
}
