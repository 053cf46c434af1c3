package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/inventory-engine/internal/config"
	"github.com/tair/inventory-engine/internal/idempotency"
	"github.com/tair/inventory-engine/internal/inventory"
	"github.com/tair/inventory-engine/internal/inventory/eventstore"
	"github.com/tair/inventory-engine/internal/inventory/port"
	"github.com/tair/inventory-engine/internal/inventory/projection"
	"github.com/tair/inventory-engine/kafka"
	"github.com/tair/inventory-engine/pkg/database"
	"github.com/tair/inventory-engine/pkg/logger"
	"github.com/tair/inventory-engine/pkg/tracing"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting reservation engine")

	// Initialize tracing
	tp, err := tracing.InitTracer(cfg.ServiceName)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer tracing.Shutdown(context.Background(), tp)

	// Connect to database
	sqlDB, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer sqlDB.Close()

	// Event store migrations
	store := eventstore.NewPostgresStore(sqlDB)
	if err := store.Migrate(context.Background()); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to migrate event store")
	}

	// Read model over gorm
	gormDB, err := database.NewGormConnection(cfg.DB)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect read model database")
	}

	levels := projection.NewGormLevelStore(gormDB)
	if err := levels.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to migrate stock levels")
	}
	projector := projection.NewStockLevelProjector(levels)

	logger.Logger.Info().Msg("Database initialized successfully")

	// Outcome publisher
	var publisher port.OutcomePublisher = port.NoopPublisher{}
	var kafkaPublisher *kafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err = kafka.NewPublisher(cfg.KafkaBrokers)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create kafka publisher")
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	// Initialize handlers with Wire DI
	handlers, err := inventory.InitializeHandlers(store, projector, publisher)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handlers")
	}

	// Kafka consumer for order events
	if len(cfg.KafkaBrokers) > 0 {
		processed := idempotency.Store(idempotency.NoopStore{})
		if cfg.RedisAddr != "" {
			rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			defer rdb.Close()
			processed = idempotency.NewRedisStore(rdb, "")
		}

		consumer, err := kafka.NewConsumer(
			cfg.KafkaBrokers,
			cfg.KafkaGroupID,
			handlers.Coordinator,
			handlers.Commit,
			handlers.Release,
			processed,
			cfg.AllOrNothingOrders,
		)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create kafka consumer")
		}
		defer consumer.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := consumer.Start(ctx); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start kafka consumer")
		}

		logger.Logger.Info().
			Strs("brokers", cfg.KafkaBrokers).
			Str("group_id", cfg.KafkaGroupID).
			Msg("Kafka consumer started")
	}

	// Start HTTP server
	go startHTTPServer(cfg.ServiceName, sqlDB, cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down reservation engine...")
}

func startHTTPServer(serviceName string, db *sql.DB, port string) {
	// Setup router
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		code := http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}).Methods("GET")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := otelhttp.NewHandler(c.Handler(router), serviceName)

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Msg("HTTP server started")

	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}
