package config

import "time"

// RateLimitConfig controls the Redis-backed fixed-window rate limiter.
// Every window of Window duration allows up to Limit requests per key.
// The KeyStrategy chooses which parts of the request form the key.
type RateLimitConfig struct {
	Enabled     bool
	Limit       int
	Window      time.Duration
	KeyStrategy string // "ip", "user" or "ip_user" (default)
	Prefix      string
}

// LoadRateLimitConfig reads the RATE_LIMIT_* environment variables and
// applies sane floors so the limiter never divides by zero or locks
// everyone out permanently.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:     getenvBool("RATE_LIMIT_ENABLED", true),
		Limit:       getenvInt("RATE_LIMIT_LIMIT", 60),
		Window:      parseDur(getenv("RATE_LIMIT_WINDOW", "1m")),
		KeyStrategy: getenv("RATE_LIMIT_KEY_STRATEGY", "ip_user"),
		Prefix:      getenv("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Limit < 1 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return cfg
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Minute
	}
	return d
}
