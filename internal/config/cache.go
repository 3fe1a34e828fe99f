package config

import (
	"strings"
	"time"
)

// CacheConfig drives the Redis response cache.  It is mounted only on
// routes whose body is the same for every caller, such as the standard
// chart of accounts.  Trial balances are never cached.
type CacheConfig struct {
	Enabled bool
	// Methods lists the upper-cased HTTP methods eligible for caching.
	Methods map[string]bool
	TTL     time.Duration
	// KeyStrategy is one of route, method_route, method_route_query or
	// route_query (the default).
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
	c := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", time.Hour),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "zb:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 256<<10),
	}
	if c.TTL <= 0 {
		c.Enabled = false
	}
	return c
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			m[p] = true
		}
	}
	return m
}
