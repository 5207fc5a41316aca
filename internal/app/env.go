package app

import (
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeoutSeconds = 30
	defaultAuditTTLDays   = 30
)

// LoadConfig builds a Config from getenv, normally os.Getenv.
func LoadConfig(getenv func(string) string) Config {
	e := env(getenv)
	return Config{
		APIKey:      e.str("OPENAI_API_KEY", ""),
		Model:       e.str("OPENAI_MODEL", ""),
		BaseURL:     e.str("OPENAI_BASE_URL", ""),
		Timeout:     time.Duration(e.int("OPENAI_TIMEOUT_SECONDS", defaultTimeoutSeconds)) * time.Second,
		ParamPrefix: e.str("PARAM_PREFIX", ""),
		AuditTable:  e.str("AUDIT_TABLE", ""),
		AuditTTL:    time.Duration(e.int("AUDIT_TTL_DAYS", defaultAuditTTLDays)) * 24 * time.Hour,
	}
}

type env func(string) string

func (e env) str(key, def string) string {
	if v := strings.TrimSpace(e(key)); v != "" {
		return v
	}
	return def
}

func (e env) int(key string, def int) int {
	v := strings.TrimSpace(e(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
