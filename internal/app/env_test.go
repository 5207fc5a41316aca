package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mapEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig(mapEnv(nil))

	require.Equal(t, Config{
		Timeout:  30 * time.Second,
		AuditTTL: 30 * 24 * time.Hour,
	}, cfg)
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg := LoadConfig(mapEnv(map[string]string{
		"OPENAI_API_KEY":         " sk-test ",
		"OPENAI_MODEL":           "gpt-4o",
		"OPENAI_BASE_URL":        "http://localhost:9000",
		"OPENAI_TIMEOUT_SECONDS": "5",
		"PARAM_PREFIX":           "/tienda/prod",
		"AUDIT_TABLE":            "tienda-exchanges",
		"AUDIT_TTL_DAYS":         "7",
	}))

	require.Equal(t, "sk-test", cfg.APIKey)
	require.Equal(t, "gpt-4o", cfg.Model)
	require.Equal(t, "http://localhost:9000", cfg.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, "/tienda/prod", cfg.ParamPrefix)
	require.Equal(t, "tienda-exchanges", cfg.AuditTable)
	require.Equal(t, 7*24*time.Hour, cfg.AuditTTL)
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	cfg := LoadConfig(mapEnv(map[string]string{
		"OPENAI_TIMEOUT_SECONDS": "soon",
		"AUDIT_TTL_DAYS":         "-3",
	}))
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, 30*24*time.Hour, cfg.AuditTTL)
}
