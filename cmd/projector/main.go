package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/printshop/internal/config"
	"github.com/example/printshop/internal/infrastructure/cache"
	"github.com/example/printshop/internal/infrastructure/kafka"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/projection"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("[Projector] Failed to load config: %v", err)
	}
	consumerGroup := getEnv("KAFKA_CONSUMER_GROUP", "projector")

	log.Println("[Projector] ========================================")
	log.Println("[Projector] Print Shop - CQRS Projector")
	log.Println("[Projector] ========================================")
	log.Printf("[Projector] Kafka: %v", cfg.Kafka.Brokers)
	log.Printf("[Projector] Topic: %s", cfg.Kafka.Topic)
	log.Printf("[Projector] Group: %s", consumerGroup)

	// Initialize PostgreSQL connection
	db, err := store.ConnectPostgres(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("[Projector] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("[Projector] Connected to PostgreSQL (Read DB)")

	// Initialize read store with PostgreSQL
	readStore := store.NewPostgresReadStore(db)

	// Cart cache invalidation keeps the API's Redis entries honest
	cartCache := cache.NewCartCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := cartCache.Ping(ctx); err != nil {
		log.Printf("[Projector] Redis unavailable, cache invalidation disabled: %v", err)
		cartCache = nil
	} else {
		defer cartCache.Close()
		log.Printf("[Projector] Connected to Redis at %s", cfg.Redis.Addr)
	}

	// Initialize projector
	projector := projection.NewProjectorWithCache(readStore, cartCache)

	// Initialize Kafka consumer
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, consumerGroup)
	defer consumer.Close()

	// Start consuming
	go func() {
		log.Println("[Projector] Starting event consumer...")
		log.Printf("[Projector] Listening to topic: %s", cfg.Kafka.Topic)
		if err := consumer.Consume(ctx, projector.HandleEvent); err != nil {
			log.Printf("[Projector] Consumer error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Projector] Shutting down...")
	cancel()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
