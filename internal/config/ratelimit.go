package config

import "time"

// RateLimit configures the token bucket applied to booking submissions.
// Each key gets Capacity tokens and regains RefillTokens every
// RefillInterval.  KeyStrategy is "ip" or "ip_route".
type RateLimit struct {
	Enabled        bool          `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
	Capacity       int           `yaml:"capacity" env:"RATE_LIMIT_CAPACITY" env-default:"20"`
	RefillTokens   int           `yaml:"refill_tokens" env:"RATE_LIMIT_REFILL_TOKENS" env-default:"1"`
	RefillInterval time.Duration `yaml:"refill_interval" env:"RATE_LIMIT_REFILL_INTERVAL" env-default:"1s"`
	TTL            time.Duration `yaml:"ttl" env:"RATE_LIMIT_TTL" env-default:"10m"`
	KeyStrategy    string        `yaml:"key_strategy" env:"RATE_LIMIT_KEY_STRATEGY" env-default:"ip_route"`
	Prefix         string        `yaml:"prefix" env:"RATE_LIMIT_PREFIX" env-default:"rl"`
	Debug          bool          `yaml:"debug" env:"RATE_LIMIT_DEBUG" env-default:"false"`
}

// sanitize clamps values so the Lua script always sees a usable bucket.
// Keys must outlive at least five refill intervals.
func (r *RateLimit) sanitize() {
	if r.Capacity < 1 {
		r.Capacity = 1
	}
	if r.RefillTokens < 1 {
		r.RefillTokens = 1
	}
	if r.RefillInterval <= 0 {
		r.RefillInterval = time.Second
	}
	if minTTL := 5 * r.RefillInterval; r.TTL < minTTL {
		r.TTL = minTTL
	}
	if r.Prefix == "" {
		r.Prefix = "rl"
	}
}
