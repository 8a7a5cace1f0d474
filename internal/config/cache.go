package config

import (
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Values for CACHE_KEY_STRATEGY.
const (
	CacheKeyPathQuery   = "route_query" // path and query string
	CacheKeyRoute       = "route"       // route pattern only, /venues/:id shares one entry
	CacheKeyPath        = "path"        // path without the query string
	CacheKeyMethodQuery = "method_route_query"
)

// CacheConfig configures the Redis page cache.  Every key lives under
// Prefix so a command can retire all pages at once; only GET and HEAD
// responses may be cached.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads the CACHE_* variables.  A configuration the cache
// cannot run with is reported instead of being patched up.
func LoadCacheConfig() (CacheConfig, error) {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", http.MethodGet)),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  strings.ToLower(envStr("CACHE_KEY_STRATEGY", CacheKeyPathQuery)),
		Prefix:       strings.TrimRight(strings.TrimSpace(envStr("CACHE_PREFIX", "fyyur:cache")), ":"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	return cfg, cfg.Validate()
}

// Validate checks a configuration that is enabled.
func (c CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.KeyStrategy {
	case CacheKeyPathQuery, CacheKeyRoute, CacheKeyPath, CacheKeyMethodQuery:
	default:
		return errors.Errorf("unknown CACHE_KEY_STRATEGY %q", c.KeyStrategy)
	}
	if c.Prefix == "" {
		return errors.New("CACHE_PREFIX must not be empty")
	}
	if c.TTL <= 0 {
		return errors.Errorf("CACHE_TTL must be positive, got %s", c.TTL)
	}
	if len(c.Methods) == 0 {
		return errors.New("CACHE_METHODS lists no method")
	}
	for m := range c.Methods {
		if m != http.MethodGet && m != http.MethodHead {
			return errors.Errorf("CACHE_METHODS: %s responses cannot be cached", m)
		}
	}
	return nil
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
