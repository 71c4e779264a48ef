package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"eventhub/internal/config"
	"eventhub/internal/correlation"
	"eventhub/internal/database/migrations"
	"eventhub/internal/events"
	eventdb "eventhub/internal/events/db"
	"eventhub/internal/events/event_api"
	"eventhub/internal/httpapi"
	"eventhub/internal/kafka"
	"eventhub/internal/logger"
)

func connectDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func setupPublisher(cfg *config.Config, log *logger.Logger) events.Publisher {
	if !cfg.Kafka.Enabled {
		log.Info("KAFKA", "Kafka disabled, lifecycle events will not be published")
		return kafka.NopPublisher{}
	}

	topics := []string{
		cfg.Kafka.Topics.EventCreated,
		cfg.Kafka.Topics.EventUpdated,
		cfg.Kafka.Topics.EventDeleted,
	}
	if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		log.Info("KAFKA", "Required topics ensured successfully")
	}

	log.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for brokers %v", cfg.Kafka.Brokers))
	return kafka.NewProducer(cfg.Kafka.Brokers, kafka.Topics{
		EventCreated: cfg.Kafka.Topics.EventCreated,
		EventUpdated: cfg.Kafka.Topics.EventUpdated,
		EventDeleted: cfg.Kafka.Topics.EventDeleted,
	})
}

func main() {
	log := logger.New()
	defer log.Close()

	log.Info("APP", "Starting eventhub service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := connectDatabase(cfg, log)
	defer bunDB.Close()

	if err := migrations.Run(ctx, bunDB); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to run migrations: %v", err))
	}
	log.Info("DATABASE", "Schema migrations applied")

	publisher := setupPublisher(cfg, log)
	if producer, ok := publisher.(*kafka.Producer); ok {
		defer producer.Close()
	}

	service := events.NewService(&eventdb.DB{Bun: bunDB}, publisher, events.SystemClock(), log)
	handler := event_api.NewHandler(service, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", correlation.HeaderName},
		ExposedHeaders: []string{correlation.HeaderName},
	}))
	r.Use(correlation.Middleware(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	handler.RegisterRoutes(r)
	log.Info("ROUTER", "Event routes registered under /api/v1/events")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("eventhub service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "eventhub service shutdown complete")
	}
}
