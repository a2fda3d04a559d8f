package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/printshop/internal/config"
	"github.com/example/printshop/internal/domain/issue"
	"github.com/example/printshop/internal/infrastructure/kafka"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/sweeper"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("[Sweeper] Failed to load config: %v", err)
	}

	log.Println("[Sweeper] ========================================")
	log.Println("[Sweeper] Print Shop - Stale Issue Sweeper")
	log.Println("[Sweeper] ========================================")
	log.Printf("[Sweeper] Interval: %s", cfg.Sweeper.Interval)
	log.Printf("[Sweeper] Stale after: %s", cfg.Sweeper.StaleAfter)

	// Close/conclude events go through Kafka like any other write
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()

	// Initialize PostgreSQL connection
	db, err := store.ConnectPostgres(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("[Sweeper] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("[Sweeper] Connected to PostgreSQL")

	eventStore := store.NewPostgresEventStore(db, producer)
	readStore := store.NewPostgresReadStore(db)
	issueSvc := issue.NewService(eventStore)

	s := sweeper.New(issueSvc, readStore, cfg.Sweeper.Interval, cfg.Sweeper.StaleAfter)
	go s.Run(ctx)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Sweeper] Shutting down...")
	cancel()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
