package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/checkout"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/gateway/authclient"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/gateway/cartclient"
	h "github.com/NitheshChakaravarthySeelan/CheckoutX/internal/gateway/http"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/platform/eventbus"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Config struct {
	HTTPPort        string
	CartServiceURL  string
	AuthServiceURL  string
	KafkaBrokers    []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		CartServiceURL:  getEnv("CART_SERVICE_URL", "http://localhost:8081"),
		AuthServiceURL:  getEnv("AUTH_SERVICE_URL", "http://localhost:8082"),
		KafkaBrokers:    splitBrokers(getEnv("KAFKA_BROKERS", "localhost:9092")),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func main() {
	cfg := loadConfig()

	// The publisher is a process-scoped shared session: created once
	// here, reused by every checkout, closed on shutdown.
	publisher := eventbus.NewKafkaPublisher(cfg.KafkaBrokers...)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Printf("failed to close event publisher: %v", err)
		}
	}()

	cartClient := cartclient.New(cfg.CartServiceURL, cfg.RequestTimeout)
	authClient := authclient.New(cfg.AuthServiceURL, cfg.RequestTimeout)
	initiator := checkout.NewInitiator(cartClient, publisher)

	cartHandler := h.NewCartHandler(cartClient)
	checkoutHandler := h.NewCheckoutHandler(initiator)

	serverMetrics := metrics.NewServerMetrics("gateway")

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(serverMetrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware(authClient))
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Post("/checkout", checkoutHandler.InitiateCheckout)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("API Gateway starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
