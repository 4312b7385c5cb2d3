package config

import "time"

// CacheConfig defines settings for the summary response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled. Only GET responses are cached; the summary is the single
// expensive read in the checkout flow and every selection change goes
// through a write that would invalidate anything longer-lived, so the TTL
// defaults low.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 15*time.Second),
		Prefix:       getenv("CACHE_PREFIX", "summary"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Second
	}
	return cfg
}
