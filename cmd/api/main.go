package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/joao-fontenele/bizops-backend/internal/clients"
	"github.com/joao-fontenele/bizops-backend/internal/config"
	"github.com/joao-fontenele/bizops-backend/internal/database"
	"github.com/joao-fontenele/bizops-backend/internal/httpx"
	"github.com/joao-fontenele/bizops-backend/internal/inventory"
	"github.com/joao-fontenele/bizops-backend/internal/invoices"
	"github.com/joao-fontenele/bizops-backend/internal/logging"
	"github.com/joao-fontenele/bizops-backend/internal/messaging"
	"github.com/joao-fontenele/bizops-backend/internal/orders"
	"github.com/joao-fontenele/bizops-backend/internal/server"
	"github.com/joao-fontenele/bizops-backend/internal/telemetry"
	"github.com/joao-fontenele/bizops-backend/internal/users"
)

const serviceName = "bizops-api"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Options{ServiceName: serviceName})
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := logging.New(logging.Options{ServiceName: serviceName, Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("api stopped")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.OTLPEndpoint, serviceName, cfg.Telemetry.ServiceVersion)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, cfg.Telemetry.ServiceVersion)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	if err := runtime.Start(); err != nil {
		logger.Warn().Err(err).Msg("runtime metrics disabled")
	}

	db, err := database.Open(cfg.DB, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// The API serves immediately; requests fail with a storage error and
	// /healthz reports 503 until the supervisor connects.
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		db.Run(ctx)
	}()

	var opts []orders.ServiceOption
	opts = append(opts, orders.WithTimeout(cfg.Orders.PlacementTimeout))
	if cfg.Kafka.Enabled() {
		producer := messaging.NewProducer(cfg.Kafka)
		defer func() { _ = producer.Close() }()
		opts = append(opts, orders.WithPublisher(producer))
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.OrderTopic).Msg("publishing order events")
	}

	placement, err := orders.NewService(orders.NewPostgresStore(db.DB()), logger, opts...)
	if err != nil {
		return err
	}

	resp := httpx.NewResponder(logger, cfg.App.ExposeErrors)
	router := server.NewRouter(server.Deps{
		Users:          users.NewHandler(users.NewService(users.NewRepository(db.DB()), logger), resp, logger),
		Inventory:      inventory.NewHandler(inventory.NewRepository(db.DB()), resp, logger),
		Orders:         orders.NewHandler(orders.NewRepository(db.DB()), placement, resp, logger),
		Clients:        clients.NewHandler(clients.NewRepository(db.DB()), resp, logger),
		Invoices:       invoices.NewHandler(invoices.NewRepository(db.DB()), resp, logger),
		Health:         db,
		Metrics:        metricsHandler,
		Responder:      resp,
		Logger:         logger,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Orders.PlacementTimeout + 5*time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.App.Port).Str("env", cfg.App.Env).Msg("starting api server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	stop()
	<-supervisorDone
	return nil
}
