// Package config loads application configuration from environment
// variables.  An optional .env file in the working directory is read
// first; variables already present in the environment win.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values, grouped by concern.
type Config struct {
	App       App       `yaml:"app"`
	Storage   Storage   `yaml:"storage"`
	DB        DB        `yaml:"db"`
	Redis     Redis     `yaml:"redis"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Cache     Cache     `yaml:"cache"`
	RabbitMQ  RabbitMQ  `yaml:"rabbitmq"`
	Booking   Booking   `yaml:"booking"`
	Worker    Worker    `yaml:"worker"`
}

// App describes the HTTP process itself.
type App struct {
	Env  string `yaml:"env" env:"APP_ENV" env-default:"dev"`    // dev enables /dev/seed
	Port string `yaml:"port" env:"APP_PORT" env-default:"8080"` // HTTP port to listen on
}

// IsDev reports whether the application runs in the dev environment.
func (a App) IsDev() bool { return a.Env == "dev" }

// Storage selects the store implementation.
type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mysql"` // mysql | memory
}

// DB holds the MySQL connection settings.
type DB struct {
	User            string        `yaml:"user" env:"DB_USER"`
	Pass            string        `yaml:"pass" env:"DB_PASS"` // empty allowed
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"DB_PORT" env-default:"3306"`
	Name            string        `yaml:"name" env:"DB_NAME"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"25"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
	Migrate         bool          `yaml:"migrate" env:"DB_MIGRATE" env-default:"true"` // apply schema on startup
}

// RabbitMQ holds the broker settings for booking events.  An empty URL
// disables publishing.
type RabbitMQ struct {
	URL   string `yaml:"url" env:"RABBITMQ_URL"`
	Queue string `yaml:"queue" env:"RABBITMQ_QUEUE" env-default:"booking.confirmed"`
}

// Booking tunes the allocation engine.
type Booking struct {
	MaxCommitAttempts  int           `yaml:"max_commit_attempts" env:"BOOKING_MAX_COMMIT_ATTEMPTS" env-default:"2"`
	AlternativesWindow string        `yaml:"alternatives_window" env:"BOOKING_ALTERNATIVES_WINDOW" env-default:"all"` // all | same_day
	RequestTimeout     time.Duration `yaml:"request_timeout" env:"BOOKING_REQUEST_TIMEOUT" env-default:"5s"`
}

// Worker configures the booking event consumer.
type Worker struct {
	LogPath      string        `yaml:"log_path" env:"WORKER_LOG_PATH" env-default:"logs/booking.log"`
	MaxBackoff   time.Duration `yaml:"max_backoff" env:"WORKER_MAX_BACKOFF" env-default:"30s"`
	InitialDelay time.Duration `yaml:"initial_delay" env:"WORKER_INITIAL_DELAY" env-default:"1s"`
}

// Load reads the optional .env file and the environment into a Config,
// applies defaults and sanitises the values.  Missing required settings
// are reported as an error.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.RateLimit.sanitize()
	cfg.Cache.sanitize()
	if cfg.Booking.MaxCommitAttempts < 1 {
		cfg.Booking.MaxCommitAttempts = 2
	}
	if cfg.Booking.RequestTimeout <= 0 {
		cfg.Booking.RequestTimeout = 5 * time.Second
	}
	return cfg, nil
}

// LoadWorker reads the configuration for the event consumer, which only
// needs the broker and worker settings.
func LoadWorker() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if cfg.RabbitMQ.URL == "" {
		return nil, errors.New("RABBITMQ_URL is required")
	}
	if cfg.Worker.InitialDelay <= 0 {
		cfg.Worker.InitialDelay = time.Second
	}
	if cfg.Worker.MaxBackoff < cfg.Worker.InitialDelay {
		cfg.Worker.MaxBackoff = cfg.Worker.InitialDelay
	}
	return cfg, nil
}

func read() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// MustLoad is like Load but exits the process on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "mysql":
		if c.DB.User == "" || c.DB.Name == "" {
			return errors.New("DB_USER and DB_NAME are required when STORAGE_DRIVER=mysql")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	switch c.Booking.AlternativesWindow {
	case "all", "same_day":
	default:
		return fmt.Errorf("BOOKING_ALTERNATIVES_WINDOW must be all or same_day, got %q", c.Booking.AlternativesWindow)
	}
	return nil
}
