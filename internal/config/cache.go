package config

import (
	"os"
	"strconv"
	"time"
)

// CacheConfig controls the response cache in front of the dashboard list
// and stats endpoints.  The TTL is deliberately short: payment records
// are append-only, so the only cost of a stale entry is a few seconds'
// delay before a new payment shows up on a refresh.  MaxBodyBytes caps
// the size of a cached response; anything larger is served uncached.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads the cache settings from the environment, with
// defaults suitable for a single-event dashboard.  An unparsable or
// negative CACHE_MAX_BODY_BYTES falls back to the 1 MiB default rather
// than 0, which bodyRecorder would read as unbounded buffering.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      getenv("CACHE_ENABLED", "true") == "true",
		TTL:          parseDur(getenv("CACHE_TTL", "15s")),
		Prefix:       getenv("CACHE_PREFIX", "payments"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if cfg.MaxBodyBytes < 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
