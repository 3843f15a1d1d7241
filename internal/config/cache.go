package config

import "time"

// CacheConfig defines settings for the response cache on read endpoints.
// Cache keys include the engine revision, so TTL only bounds how long stale
// revisions linger in Redis.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
	Methods      map[string]bool
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
	}
}
