package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/cache"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/clients"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/httpapi"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/poller"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/repository"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/service"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	HTTPPort          string
	CatalogURL        string
	InventoryURL      string
	DiscountEngineURL string
	TaxServiceURL     string
	KafkaBrokers      []string
	RemoteTimeout     time.Duration
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
	DB                repository.Credentials
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:          getEnv("CART_SERVICE_PORT", "8081"),
		CatalogURL:        getEnv("CATALOG_URL", "http://localhost:8090"),
		InventoryURL:      getEnv("INVENTORY_URL", "http://localhost:8091"),
		DiscountEngineURL: getEnv("DISCOUNT_ENGINE_URL", "http://localhost:8092"),
		TaxServiceURL:     getEnv("TAX_SERVICE_URL", "http://localhost:8093"),
		KafkaBrokers:      splitBrokers(getEnv("KAFKA_BROKERS", "localhost:9092")),
		RemoteTimeout:     5 * time.Second,
		RequestTimeout:    30 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		DB: repository.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "cartdb"),
			MigrationsDirPath: getEnv("MIGRATIONS_DIR", "./internal/cart/repository/migrations"),
		},
	}
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	db, err := repository.Connect(&cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := repository.RunMigrations(db, &cfg.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	repo := repository.NewPostgresRepository(db)
	log.Printf("Connected to postgres at %s:%d", cfg.DB.Host, cfg.DB.Port)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	log.Printf("Redis ping succeeded")

	cartCache := cache.NewRedisCache(redisClient)
	cartService := service.NewCartService(
		repo,
		cartCache,
		clients.NewCatalogClient(cfg.CatalogURL, cfg.RemoteTimeout),
		clients.NewInventoryClient(cfg.InventoryURL, cfg.RemoteTimeout),
		clients.NewDiscountClient(cfg.DiscountEngineURL, cfg.RemoteTimeout),
		clients.NewTaxClient(cfg.TaxServiceURL, cfg.RemoteTimeout),
	)

	// Consume downstream order confirmations to clear carts.
	pollerCtx, stopPoller := context.WithCancel(ctx)
	orderPoller := poller.NewPoller(cartService, cfg.KafkaBrokers...)
	go orderPoller.Run(pollerCtx)

	serverMetrics := metrics.NewServerMetrics("cart_service")

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(serverMetrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	httpapi.NewHandler(cartService).Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Cart service listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down cart service...")
	stopPoller()
	orderPoller.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("Cart service stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitBrokers(csv string) []string {
	var brokers []string
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
