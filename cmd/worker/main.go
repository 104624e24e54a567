package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/cinema-group-booking/internal/config"
	"github.com/iliyamo/cinema-group-booking/internal/queue"
)

func main() {
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Fatalf("worker: config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{
		URL:          cfg.RabbitMQ.URL,
		Queue:        cfg.RabbitMQ.Queue,
		LogPath:      cfg.Worker.LogPath,
		InitialDelay: cfg.Worker.InitialDelay,
		MaxBackoff:   cfg.Worker.MaxBackoff,
	}
	log.Printf("worker: consuming %s into %s", c.Queue, c.LogPath)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("worker: %v", err)
	}
	log.Printf("worker: stopped")
}
