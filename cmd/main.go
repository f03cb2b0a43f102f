/**
 * @description
 * This is the main entry point for the payments-review-service. It is responsible
 * for initializing all components of the service, including configuration, the
 * database connection pool, the SWIFT reference index, message brokers, the
 * repository, the core application service, and the HTTP server. It wires
 * everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/go-chi/chi/v5: For HTTP routing.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/joho/godotenv: Loads a local .env file in development.
 * - internal/api, internal/app, internal/config, internal/store, internal/swiftref: Internal packages.
 * - pkg/bicdata: Client for remote SWIFT/BIC reference datasets.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/paybridge/payments-review-service/internal/api"
	"github.com/paybridge/payments-review-service/internal/app"
	"github.com/paybridge/payments-review-service/internal/config"
	"github.com/paybridge/payments-review-service/internal/store"
	"github.com/paybridge/payments-review-service/internal/swiftref"
	"github.com/paybridge/payments-review-service/pkg/bicdata"
	rmrabbit "github.com/paybridge/payments-review-service/pkg/rabbitmq"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load a local .env file if present; real deployments set env directly.
	if err := godotenv.Load(); err == nil {
		log.Println("level=info component=bootstrap msg=\"loaded .env file\"")
	}

	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.JWKSURL) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"jwks url must be configured\" env=JWKS_URL")
	}

	log.Printf("level=info component=bootstrap msg=\"starting payments-review-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	// Align pool sizing with the other review-platform services.
	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Load the SWIFT/BIC reference index. A missing or malformed dataset must
	// not prevent boot: the service degrades to an empty index where every
	// code check reports not found.
	swiftIndex := loadSwiftIndex(cfg)
	log.Printf("level=info component=bootstrap msg=\"swift index ready\" codes=%d", swiftIndex.Len())

	// Initialize the RabbitMQ producer to publish review events.
	var publisher rmrabbit.Publisher
	rabbitProducer, err := rmrabbit.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
		publisher = &rmrabbit.EventProducerFallback{}
	} else {
		defer rabbitProducer.Close()
		publisher = rabbitProducer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Optionally connect Redis for verification-check rate limiting.
	var redisClient *redis.Client
	rateLimitingEnabled := cfg.VerifyAccountRateLimitPerMinute > 0 || cfg.VerifySwiftRateLimitPerMinute > 0
	if rateLimitingEnabled {
		if strings.TrimSpace(cfg.RedisURL) == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; verification rate limiting disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; verification rate limiting disabled\" err=%v", parseErr)
			} else {
				redisClient = redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelPing()
				if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; verification rate limiting disabled\" err=%v", pingErr)
					redisClient.Close()
					redisClient = nil
				} else {
					defer redisClient.Close()
					log.Println("level=info component=bootstrap msg=\"redis connected\"")
				}
			}
		}
	}

	// Initialize the data access layer (repository).
	repository := store.NewPostgresRepository(dbpool)

	// Initialize the core application service with its dependencies.
	reviewService := app.NewService(repository, swiftIndex, publisher)
	if redisClient != nil {
		reviewService.SetRateLimiter(
			app.NewRedisVerifyRateLimiter(redisClient, cfg.RedisRateLimitPrefix),
			cfg.VerifyAccountRateLimitPerMinute,
			cfg.VerifySwiftRateLimitPerMinute,
		)
	}

	// Initialize the API handlers.
	reviewHandlers := api.NewPaymentReviewHandlers(reviewService)

	// Set up the HTTP router and define the API routes.
	router := chi.NewRouter()
	router.Mount("/api/employeepayments", api.PaymentReviewRoutes(reviewHandlers, cfg.JWKSURL))

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	// Wire up the payment.created consumer so newly created payments appear in
	// the review queue without manual import.
	ingestConsumer := reviewService.PaymentIngestConsumer()

	rabbitConsumer, err := rmrabbit.NewConsumer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq consumer unavailable; payment ingest disabled\" err=%v", err)
	} else {
		defer rabbitConsumer.Close()

		ingestBindings := map[string]func([]byte) bool{
			"payment.created": ingestConsumer.HandleMessage,
		}
		if err := rabbitConsumer.ConsumeWithBindings(rmrabbit.PaymentEventsExchange, cfg.PaymentCreatedQueue, ingestBindings); err != nil {
			log.Printf("level=warn component=bootstrap msg=\"payment ingest consumer start failed\" err=%v", err)
		}
	}

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}

// loadSwiftIndex builds the SWIFT/BIC index from the configured local dataset
// file, falling back to a remote fetch, then to an empty index.
func loadSwiftIndex(cfg config.Config) *swiftref.Index {
	if cfg.SwiftDataFile != "" {
		index, err := swiftref.LoadFile(cfg.SwiftDataFile)
		if err == nil {
			return index
		}
		log.Printf("level=warn component=bootstrap msg=\"swift dataset file load failed\" path=%s err=%v", cfg.SwiftDataFile, err)
	}

	if cfg.SwiftDataURL != "" {
		client := bicdata.NewClient(cfg.SwiftDataURL, cfg.SwiftDataAPIKey)
		fetchCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		raw, err := client.FetchDataset(fetchCtx)
		if err == nil {
			index, parseErr := swiftref.Parse(raw)
			if parseErr == nil {
				return index
			}
			log.Printf("level=warn component=bootstrap msg=\"swift dataset parse failed\" err=%v", parseErr)
		} else {
			log.Printf("level=warn component=bootstrap msg=\"swift dataset fetch failed\" url=%s err=%v", cfg.SwiftDataURL, err)
		}
	}

	log.Println("level=warn component=bootstrap msg=\"no swift dataset available; all code checks will report not found\"")
	return swiftref.Empty()
}
