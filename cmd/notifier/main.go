package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/printshop/internal/config"
	"github.com/example/printshop/internal/email"
	"github.com/example/printshop/internal/infrastructure/kafka"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/notification"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("[Notifier] Failed to load config: %v", err)
	}
	consumerGroup := "email-notifier" // Dedicated consumer group for email notifications

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] Print Shop - Email Notification Service")
	log.Println("[Notifier] ========================================")
	log.Printf("[Notifier] Kafka: %v", cfg.Kafka.Brokers)
	log.Printf("[Notifier] Topic: %s", cfg.Kafka.Topic)
	log.Printf("[Notifier] Group: %s", consumerGroup)
	log.Printf("[Notifier] SMTP: %s:%s", cfg.SMTP.Host, cfg.SMTP.Port)
	log.Printf("[Notifier] From: %s", cfg.SMTP.From)

	// Initialize PostgreSQL connection (for reading user data)
	db, err := store.ConnectPostgres(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("[Notifier] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("[Notifier] Connected to PostgreSQL (Read DB)")

	// Initialize read store with PostgreSQL
	readStore := store.NewPostgresReadStore(db)

	// Initialize email service
	emailSvc := email.NewService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)

	// Initialize notification handler
	handler := notification.NewHandler(emailSvc, readStore)

	// Initialize Kafka consumer
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, consumerGroup)
	defer consumer.Close()

	// Start consuming
	go func() {
		log.Println("[Notifier] Starting event consumer...")
		log.Printf("[Notifier] Listening to topic: %s", cfg.Kafka.Topic)
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil {
			log.Printf("[Notifier] Consumer error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Notifier] Shutting down...")
	cancel()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
