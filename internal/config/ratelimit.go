package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig throttles the anonymous checkout endpoint.  The bucket
// holds Burst tokens and regains one every RefillEvery, so a buyer can
// retry a few times quickly but sustained hammering from one address is
// cut off.  TTL bounds how long an idle bucket lives in Redis.
type RateLimitConfig struct {
	Enabled     bool
	Burst       int
	RefillEvery time.Duration
	TTL         time.Duration
	Prefix      string
}

// LoadRateLimitConfig reads the limiter settings from the environment.
// Defaults allow 5 checkout attempts in a burst with one token back every
// 10 seconds, which comfortably covers a buyer correcting form mistakes.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:     envBool("RATE_LIMIT_ENABLED", true),
		Burst:       envInt("RATE_LIMIT_BURST", 5),
		RefillEvery: envDur("RATE_LIMIT_REFILL_EVERY", 10*time.Second),
		TTL:         envDur("RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:      envStr("RATE_LIMIT_PREFIX", "rl:checkout"),
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.RefillEvery <= 0 {
		cfg.RefillEvery = 10 * time.Second
	}
	// An idle bucket must outlive a full refill cycle or counts reset early.
	if min := time.Duration(cfg.Burst) * cfg.RefillEvery; cfg.TTL < min {
		cfg.TTL = min
	}
	return cfg
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}
