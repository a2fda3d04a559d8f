package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/example/printshop/internal/api"
	"github.com/example/printshop/internal/auth"
	"github.com/example/printshop/internal/command"
	"github.com/example/printshop/internal/config"
	"github.com/example/printshop/internal/domain/cart"
	"github.com/example/printshop/internal/domain/design"
	"github.com/example/printshop/internal/domain/expense"
	"github.com/example/printshop/internal/domain/issue"
	"github.com/example/printshop/internal/domain/order"
	"github.com/example/printshop/internal/domain/product"
	"github.com/example/printshop/internal/domain/resolution"
	"github.com/example/printshop/internal/domain/stock"
	"github.com/example/printshop/internal/domain/user"
	"github.com/example/printshop/internal/infrastructure/cache"
	"github.com/example/printshop/internal/infrastructure/kafka"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/projection"
	"github.com/example/printshop/internal/query"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("[API] Failed to load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("[API] PRINTSHOP_JWT_SECRET is required")
	}
	if len(cfg.JWT.Secret) < 32 {
		log.Fatal("[API] JWT secret must be at least 32 characters long")
	}

	log.Println("[API] ========================================")
	log.Println("[API] Print Shop - Storefront & Back Office")
	log.Println("[API] ========================================")
	log.Printf("[API] Kafka: %v", cfg.Kafka.Brokers)
	log.Printf("[API] Topic: %s", cfg.Kafka.Topic)
	log.Println("[API] Write DB: PostgreSQL (events table)")
	log.Println("[API] Read DB:  PostgreSQL (read_* tables)")

	// Initialize Kafka producer
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()

	// Initialize PostgreSQL connection
	db, err := store.ConnectPostgres(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("[API] Connected to PostgreSQL")

	// Initialize stores
	eventStore := store.NewPostgresEventStore(db, producer)
	readStore := store.NewPostgresReadStore(db)

	// Redis cache for carts; the API runs without it if Redis is down
	cartCache := cache.NewCartCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := cartCache.Ping(ctx); err != nil {
		log.Printf("[API] Redis unavailable, cart caching disabled: %v", err)
		cartCache = nil
	} else {
		defer cartCache.Close()
		log.Printf("[API] Connected to Redis at %s", cfg.Redis.Addr)
	}

	// Initialize domain services
	productSvc := product.NewService(eventStore)
	designSvc := design.NewService(eventStore)
	cartSvc := cart.NewService(eventStore)
	orderSvc := order.NewService(eventStore)
	issueSvc := issue.NewService(eventStore)
	resolutionSvc := resolution.NewService(eventStore)
	stockSvc := stock.NewService(eventStore)
	expenseSvc := expense.NewService(eventStore)
	userSvc := user.NewService(eventStore)

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	// Initialize handlers
	cmdHandler := command.NewHandler(
		productSvc, designSvc, cartSvc, orderSvc,
		issueSvc, resolutionSvc, stockSvc, expenseSvc,
		readStore,
	)
	queryHandler := query.NewHandlerWithCache(readStore, cartCache)

	// Initialize projector
	projector := projection.NewProjectorWithCache(readStore, cartCache)

	// Replay existing events from PostgreSQL to build read models
	log.Println("[API] Replaying events from PostgreSQL...")
	replayEvents(eventStore, projector)

	// Start Kafka consumer for new events (async projection)
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, "api-projector")
	defer consumer.Close()

	// Use WaitGroup to ensure consumer is ready
	var wg sync.WaitGroup
	consumerReady := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("[API] Starting Kafka consumer (async projection)...")
		close(consumerReady)
		if err := consumer.Consume(ctx, projector.HandleEvent); err != nil {
			if ctx.Err() == nil {
				log.Printf("[API] Projector error: %v", err)
			}
		}
	}()

	// Wait for consumer to start
	<-consumerReady
	// Give Kafka consumer a moment to establish connection
	time.Sleep(500 * time.Millisecond)
	log.Println("[API] Kafka consumer ready")

	// Initialize API
	handlers := api.NewHandlers(cmdHandler, queryHandler)
	authHandlers := api.NewAuthHandlers(userSvc, jwtService, readStore)
	router := api.NewRouter(api.RouterConfig{
		Handlers:     handlers,
		AuthHandlers: authHandlers,
		JWTService:   jwtService,
	})

	// Start HTTP server
	server := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	go func() {
		log.Println("[API] ========================================")
		log.Printf("[API] Server started on %s", cfg.Server.Addr())
		log.Println("[API] ========================================")
		log.Println("[API] Note: Using ASYNC projection")
		log.Println("[API] Read model updates may have slight delay")
		log.Println("[API] ========================================")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel() // Cancel context to stop consumer

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	wg.Wait() // Wait for consumer to finish
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// replayEvents replays all events from PostgreSQL to rebuild read models
func replayEvents(eventStore *store.PostgresEventStore, projector *projection.Projector) {
	events := eventStore.GetAllEvents()
	log.Printf("[API] Replaying %d events from event store...", len(events))

	ctx := context.Background()
	for _, event := range events {
		data, _ := event.MarshalJSON()
		if err := projector.HandleEvent(ctx, []byte(event.AggregateID), data); err != nil {
			log.Printf("[API] Error replaying event %s: %v", event.ID, err)
		}
	}
	log.Println("[API] Event replay completed - read models rebuilt")
}
