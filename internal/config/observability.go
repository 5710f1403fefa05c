package config

import (
	"fmt"
	"time"
)

// ServiceName tags every log line, trace and New Relic application.
const ServiceName = "storefront-analytics"

// ObservabilityConfig groups logging and New Relic settings.
type ObservabilityConfig struct {
	ServiceName string `koanf:"service_name"`
	Environment string `koanf:"environment"`

	Logging  LoggingConfig  `koanf:"logging" validate:"required"`
	NewRelic NewRelicConfig `koanf:"new_relic"`

	HealthChecks HealthChecksConfig `koanf:"health_checks"`
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level" validate:"required"`

	// Format is "json" or "console".
	Format string `koanf:"format" validate:"required,oneof=json console"`

	// SlowQueryThreshold marks snapshot queries worth a warning.
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`
}

// NewRelicConfig configures the optional APM agent. An empty LicenseKey
// disables it.
type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
	DebugLogging              bool   `koanf:"debug_logging"`
}

// HealthChecksConfig drives the `status` command.
type HealthChecksConfig struct {
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`
	Checks  []string      `koanf:"checks" validate:"dive,oneof=database redis"`
}

// DefaultObservabilityConfig returns the observability settings used when
// none are configured.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: ServiceName,
		Environment: "development",
		Logging: LoggingConfig{
			Level:              "info",
			Format:             "json",
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		NewRelic: NewRelicConfig{
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
			// Agent debug output is plain text and would break JSON logs.
			DebugLogging: false,
		},
		HealthChecks: HealthChecksConfig{
			Timeout: 5 * time.Second,
			Checks:  []string{"database", "redis"},
		},
	}
}

func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}

	if c.Logging.SlowQueryThreshold < 0 {
		return fmt.Errorf("logging slow_query_threshold must be non-negative")
	}

	return nil
}

// GetLogLevel falls back to an environment-appropriate level when none is
// set.
func (c *ObservabilityConfig) GetLogLevel() string {
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	if c.IsProduction() {
		return "info"
	}
	return "debug"
}

func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}

// NewRelicEnabled reports whether an APM application should be started.
func (c *ObservabilityConfig) NewRelicEnabled() bool {
	return c.NewRelic.LicenseKey != ""
}
