package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log" // Logging library
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/cinema-group-booking/internal/allocation"
	"github.com/iliyamo/cinema-group-booking/internal/analytics"
	"github.com/iliyamo/cinema-group-booking/internal/config" // Internal config loader
	"github.com/iliyamo/cinema-group-booking/internal/database"
	"github.com/iliyamo/cinema-group-booking/internal/handler"
	"github.com/iliyamo/cinema-group-booking/internal/memstore"
	"github.com/iliyamo/cinema-group-booking/internal/middleware"
	"github.com/iliyamo/cinema-group-booking/internal/queue"
	"github.com/iliyamo/cinema-group-booking/internal/repository"
	"github.com/iliyamo/cinema-group-booking/internal/router" // Internal router setup
)

// store is everything the server needs from a backing store.
type store interface {
	handler.Store
	allocation.ShowCatalog
	allocation.Committer
	analytics.Source
}

func openStore(cfg *config.Config) (store, *sql.DB, error) {
	if cfg.Storage.Driver == "memory" {
		log.Printf("store: using in-memory store")
		return memstore.New(), nil, nil
	}
	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DB.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	log.Printf("store: connected to mysql %s:%s/%s", cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
	return repository.NewStore(db), db, nil
}

func main() {
	cfg := config.MustLoad() // Load environment config

	st, db, err := openStore(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Printf("redis: %s unreachable, rate limiting and caching disabled", cfg.Redis.Address())
	} else {
		defer rdb.Close()
	}

	// A nil publisher disables booking.confirmed events.
	var publisher allocation.Publisher
	if cfg.RabbitMQ.URL != "" {
		p := queue.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		defer p.Close()
		publisher = p
	} else {
		log.Printf("queue: RABBITMQ_URL not set, booking events disabled")
	}

	planner := allocation.NewPlanner(st, st, allocation.ParseWindow(cfg.Booking.AlternativesWindow))
	booker := allocation.NewBooker(planner, st, st, st, publisher, cfg.Booking.MaxCommitAttempts)

	cache := middleware.NewResponseCache(cfg.Cache, rdb)
	limiter := middleware.NewRateLimiter(cfg.RateLimit, rdb)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(cache.Invalidate())

	router.RegisterRoutes(e, handler.Health(st))
	router.RegisterCatalog(e, handler.NewCatalogHandler(st), cache)
	router.RegisterBookings(e, handler.NewBookingHandler(booker, st, st, cfg.Booking.RequestTimeout), limiter)
	router.RegisterAnalytics(e, handler.NewAnalyticsHandler(analytics.NewAggregator(st)), cache)
	if cfg.App.IsDev() {
		router.RegisterDev(e, handler.NewSeedHandler(st))
	}

	addr := ":" + cfg.App.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.App.Env) // Print startup info

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) { // Start HTTP server
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
