package config

import "time"

// RateLimitConfig configures the token bucket applied to the public
// share-code access routes.
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
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 30),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 2*time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if b := envInt("RATE_LIMIT_BURST", -1); b > 0 {
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
	minTTL := 5 * def.RefillInterval
	if def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}

// LockoutConfig configures the failed share-code attempt lockout.  After
// Threshold consecutive failures from one caller, further attempts are
// refused for Window.  Failures older than Window are forgotten.
type LockoutConfig struct {
	Threshold int
	Window    time.Duration
	Prefix    string
}

func LoadLockoutConfig() LockoutConfig {
	c := LockoutConfig{
		Threshold: envInt("SHARE_CODE_MAX_ATTEMPTS", 5),
		Window:    envDur("SHARE_CODE_LOCKOUT", 15*time.Minute),
		Prefix:    envStr("SHARE_CODE_LOCKOUT_PREFIX", "sclock"),
	}
	if c.Threshold < 1 {
		c.Threshold = 1
	}
	if c.Window < time.Second {
		c.Window = time.Second
	}
	return c
}
