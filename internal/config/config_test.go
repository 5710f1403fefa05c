package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"ANALYTICS_PRIMARY__ENV":                 "local",
		"ANALYTICS_DATABASE__HOST":               "localhost",
		"ANALYTICS_DATABASE__PORT":               "5432",
		"ANALYTICS_DATABASE__USER":               "analytics",
		"ANALYTICS_DATABASE__NAME":               "storefront",
		"ANALYTICS_DATABASE__SSL_MODE":           "disable",
		"ANALYTICS_DATABASE__MAX_OPEN_CONNS":     "10",
		"ANALYTICS_DATABASE__MAX_IDLE_CONNS":     "2",
		"ANALYTICS_DATABASE__CONN_MAX_LIFETIME":  "300",
		"ANALYTICS_DATABASE__CONN_MAX_IDLE_TIME": "60",
		"ANALYTICS_REDIS__ADDRESS":               "localhost:6379",
	} {
		t.Setenv(k, v)
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "database.ssl_mode", envKey("ANALYTICS_DATABASE__SSL_MODE"))
	assert.Equal(t, "observability.new_relic.license_key", envKey("ANALYTICS_OBSERVABILITY__NEW_RELIC__LICENSE_KEY"))
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Primary.Env)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Nil(t, cfg.Integration)
	assert.False(t, cfg.DeliveryEnabled())

	require.NotNil(t, cfg.Analytics)
	assert.Equal(t, "calendar_adjacent", cfg.Analytics.GrowthPolicy)
	assert.Equal(t, "UTC", cfg.Analytics.Timezone)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "local", cfg.Observability.Environment)
	assert.False(t, cfg.Observability.NewRelicEnabled())
}

func TestLoadConfig_OverridesSingleField(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ANALYTICS_ANALYTICS__TIMEZONE", "Europe/Berlin")
	t.Setenv("ANALYTICS_OBSERVABILITY__LOGGING__LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.Analytics.Timezone)
	assert.Equal(t, "0 6 * * *", cfg.Analytics.DailyReportCron)
	assert.Equal(t, "debug", cfg.Observability.GetLogLevel())
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
}

func TestLoadConfig_RejectsMissingDatabase(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ANALYTICS_DATABASE__HOST", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Host")
}

func TestLoadConfig_RejectsUnknownGrowthPolicy(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ANALYTICS_ANALYTICS__GROWTH_POLICY", "yoy")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestAnalyticsConfig_Validate(t *testing.T) {
	c := DefaultAnalyticsConfig()
	require.NoError(t, c.Validate())

	c.Timezone = "Mars/Olympus"
	assert.Error(t, c.Validate())

	c = DefaultAnalyticsConfig()
	c.DailyReportCron = "@daily"
	assert.Error(t, c.Validate())
}

func TestObservabilityConfig_Validate(t *testing.T) {
	c := DefaultObservabilityConfig()
	require.NoError(t, c.Validate())

	c.Logging.Level = "trace"
	assert.ErrorContains(t, c.Validate(), "invalid logging level")
}

func TestIntegrationConfig_ValidatedWhenPresent(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ANALYTICS_INTEGRATION__RESEND_API_KEY", "re_test")
	t.Setenv("ANALYTICS_INTEGRATION__FROM_ADDRESS", "reports@example.com")
	t.Setenv("ANALYTICS_INTEGRATION__REPORT_RECIPIENTS", "ops@example.com,ceo@example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.DeliveryEnabled())
	assert.Equal(t, []string{"ops@example.com", "ceo@example.com"}, cfg.Integration.ReportRecipients)

	t.Setenv("ANALYTICS_INTEGRATION__FROM_ADDRESS", "not-an-address")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestEnvValue_SplitsListSettings(t *testing.T) {
	key, value := envValue("ANALYTICS_INTEGRATION__REPORT_RECIPIENTS", " ops@example.com, ,ceo@example.com ")
	assert.Equal(t, "integration.report_recipients", key)
	assert.Equal(t, []string{"ops@example.com", "ceo@example.com"}, value)

	key, value = envValue("ANALYTICS_ANALYTICS__TIMEZONE", "Europe/Berlin,UTC")
	assert.Equal(t, "analytics.timezone", key)
	assert.Equal(t, "Europe/Berlin,UTC", value)
}

func TestLoadConfig_RejectsBadRecipientInList(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ANALYTICS_INTEGRATION__RESEND_API_KEY", "re_test")
	t.Setenv("ANALYTICS_INTEGRATION__FROM_ADDRESS", "reports@example.com")
	t.Setenv("ANALYTICS_INTEGRATION__REPORT_RECIPIENTS", "ops@example.com,nobody")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "ReportRecipients[1]")
}

func TestLoadConfig_SingleRecipient(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ANALYTICS_INTEGRATION__RESEND_API_KEY", "re_test")
	t.Setenv("ANALYTICS_INTEGRATION__FROM_ADDRESS", "reports@example.com")
	t.Setenv("ANALYTICS_INTEGRATION__REPORT_RECIPIENTS", "ops@example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@example.com"}, cfg.Integration.ReportRecipients)
}
