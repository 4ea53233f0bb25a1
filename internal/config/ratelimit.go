package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig controls the fixed-window request limiter applied to
// mutating routes. Disabled unless RATE_LIMIT_ENABLED is truthy.
type RateLimitConfig struct {
	Enabled bool          // master switch
	Limit   int           // requests allowed per window
	Window  time.Duration // window length
	Prefix  string        // Redis key prefix
}

// LoadRateLimit reads rate limiter settings from the environment, falling
// back to 60 requests per minute when unset.
func LoadRateLimit() RateLimitConfig {
	cfg := RateLimitConfig{Limit: 60, Window: time.Minute, Prefix: "rl"}
	if v := os.Getenv("RATE_LIMIT_ENABLED"); strings.EqualFold(v, "true") || v == "1" {
		cfg.Enabled = true
	}
	if v := os.Getenv("RATE_LIMIT_PER_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Limit = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_PREFIX"); v != "" {
		cfg.Prefix = v
	}
	return cfg
}
