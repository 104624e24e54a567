package config

// Redis backs the rate limiter and the response cache.  When the server
// cannot be reached at startup NewRedisClient returns nil and callers
// degrade gracefully by disabling both.

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis holds the client settings.  Addr is a host:port shorthand used
// when Host or Port is empty.
type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST"`
	Port     string `yaml:"port" env:"REDIS_PORT"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TLS      bool   `yaml:"tls" env:"REDIS_TLS" env-default:"false"`
}

// Address resolves the server address.
func (r Redis) Address() string {
	if r.Host != "" && r.Port != "" {
		return r.Host + ":" + r.Port
	}
	return r.Addr
}

// NewRedisClient builds a client and pings it with a short timeout.  The
// returned client is nil if the server is unreachable.
func NewRedisClient(r Redis) *redis.Client {
	var tlsConf *tls.Config
	if r.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      r.Address(),
		Password:  r.Password,
		DB:        r.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
