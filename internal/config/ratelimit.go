package config

import (
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
)

// RateLimitConfig drives the Redis token bucket placed in front of the
// endpoints that trigger outbound work (ingestion and chat).
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       env.Int("RATE_LIMIT_CAPACITY", 20),
		RefillTokens:   env.Int("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: env.Duration("RATE_LIMIT_REFILL_INTERVAL", 3*time.Second),
		TTL:            env.Duration("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    env.Str("RATE_LIMIT_KEY_STRATEGY", "user_route"),
		Prefix:         env.Str("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if b := env.Int("RATE_LIMIT_BURST", -1); b > 0 {
		def.Capacity = b
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	if minTTL := 5 * def.RefillInterval; def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}
