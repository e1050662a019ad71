package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/bizops-backend/internal/config"
	"github.com/joao-fontenele/bizops-backend/internal/logging"
	"github.com/joao-fontenele/bizops-backend/internal/messaging"
	"github.com/joao-fontenele/bizops-backend/internal/telemetry"
	"github.com/joao-fontenele/bizops-backend/internal/worker"
)

const serviceName = "bizops-reorder-worker"

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadWithoutDB()
	if err != nil {
		bootLogger := logging.New(logging.Options{ServiceName: serviceName})
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New(logging.Options{ServiceName: serviceName, Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})

	if !cfg.Kafka.Enabled() {
		logger.Fatal().Msg("KAFKA_BROKERS environment variable is required")
	}
	if cfg.Email.ServiceURL == "" {
		logger.Fatal().Msg("EMAIL_SERVICE_URL environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.OTLPEndpoint, serviceName, cfg.Telemetry.ServiceVersion)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	consumer := messaging.NewConsumer(cfg.Kafka, logger)
	defer func() { _ = consumer.Close() }()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	handler := worker.NewReorderHandler(cfg.Email.ServiceURL, cfg.Email.ReorderRecipient, httpClient, logger)

	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.OrderTopic).
		Str("group_id", cfg.Kafka.GroupID).
		Msg("starting reorder worker")

	if err := consumer.Consume(ctx, handler.Handle); err != nil {
		_ = consumer.Close()
		_ = shutdownTracer(context.Background())
		logger.Fatal().Err(err).Msg("consumer error")
	}
	logger.Info().Msg("consumer stopped")
}
