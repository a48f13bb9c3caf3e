package config

import (
	"os"
	"strings"
)

// CaseInsensitiveNameMatching relaxes report-to-roster name matching to ignore case.
//
// Set via env:
// - RECONCILE_CASE_INSENSITIVE_NAMES=true
func CaseInsensitiveNameMatching() bool {
	return EnvBoolDefault("RECONCILE_CASE_INSENSITIVE_NAMES", false)
}

// RateLimitEnabled turns on the redis fixed-window limiter in front of /api.
func RateLimitEnabled() bool {
	return EnvBoolDefault("RATE_LIMIT_ENABLED", false)
}

func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}

func EnvBoolDefault(key string, def bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes", "y", "on":
		return true
	case "false", "0", "no", "n", "off":
		return false
	default:
		return def
	}
}
