package reports

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/guildroster/roster_backend/config"
	"github.com/guildroster/roster_backend/utils"
	"github.com/sirupsen/logrus"
)

func reportCacheEnabled() bool {
	return config.EnvBoolDefault("ENABLE_REPORT_CACHE", false)
}

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	return time.Duration(config.IntFromEnv("REPORT_CACHE_TTL_SECONDS", 120)) * time.Second
}

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	guildId, _ := utils.GetGuildIdFromContext(ctx)
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"report":         name,
		"ms":             d.Milliseconds(),
		"guild_id":       guildId,
		"correlation_id": cid,
		"extra":          extra,
	}).Warn("slow_report")
}

func cacheGet[T any](key string, dest *T) (bool, error) {
	return config.GetRedisObject(key, dest)
}

func cacheSet(key string, obj any, ttl time.Duration) error {
	return config.SetRedisObject(key, obj, ttl)
}
