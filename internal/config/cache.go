package config

import (
	"strings"
	"time"
)

// Cache defines settings for the response cache middleware.  When
// Enabled is false or no Redis client is configured, caching is off.
// Methods is a comma separated list of HTTP methods to cache.
type Cache struct {
	Enabled      bool          `yaml:"enabled" env:"CACHE_ENABLED" env-default:"true"`
	Methods      string        `yaml:"methods" env:"CACHE_METHODS" env-default:"GET"`
	TTL          time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"30s"`
	Prefix       string        `yaml:"prefix" env:"CACHE_PREFIX" env-default:"cache"`
	MaxBodyBytes int           `yaml:"max_body_bytes" env:"CACHE_MAX_BODY_BYTES" env-default:"1048576"`
}

// MethodSet returns the upper-cased cacheable methods.
func (c Cache) MethodSet() map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(c.Methods, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}

func (c *Cache) sanitize() {
	if c.TTL <= 0 {
		c.TTL = time.Second
	}
	if c.Prefix == "" {
		c.Prefix = "cache"
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
}
