package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wms-platform/dropzone-service/internal/api/handlers"
	"github.com/wms-platform/dropzone-service/internal/application"
	"github.com/wms-platform/dropzone-service/internal/config"
	"github.com/wms-platform/dropzone-service/internal/domain"
	"github.com/wms-platform/dropzone-service/internal/infrastructure/containersearch"
	kafkaInfra "github.com/wms-platform/dropzone-service/internal/infrastructure/kafka"
	mongoRepo "github.com/wms-platform/dropzone-service/internal/infrastructure/mongodb"
	"github.com/wms-platform/dropzone-service/internal/infrastructure/session"
	"github.com/wms-platform/dropzone-service/pkg/cloudevents"
	"github.com/wms-platform/dropzone-service/pkg/kafka"
	"github.com/wms-platform/dropzone-service/pkg/logging"
	"github.com/wms-platform/dropzone-service/pkg/metrics"
	"github.com/wms-platform/dropzone-service/pkg/middleware"
	"github.com/wms-platform/dropzone-service/pkg/mongodb"
	"github.com/wms-platform/dropzone-service/pkg/resilience"
	"github.com/wms-platform/dropzone-service/pkg/tracing"
)

const serviceName = "dropzone-service"

type mongoClient interface {
	Database() *mongo.Database
	Close(context.Context) error
	HealthCheck(context.Context) error
}

type eventProducer interface {
	kafkaInfra.EventProducer
	Close() error
}

type tracerProvider interface {
	Shutdown(context.Context) error
}

var loadConfig = func() (*config.Config, error) {
	return config.Load(viper.New(), os.Getenv("DROPZONE_CONFIG"))
}

var newMongoClient = func(ctx context.Context, cfg *mongodb.Config) (mongoClient, error) {
	client, err := mongodb.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

var newZoneProfileRepository = func(ctx context.Context, db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) (domain.ZoneProfileRepository, error) {
	repo, err := mongoRepo.NewZoneProfileRepository(ctx, db, m, logger)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

var newKafkaProducer = func(cfg *kafka.Config, m *metrics.Metrics, logger *logging.Logger) eventProducer {
	return kafka.NewInstrumentedProducer(kafka.NewProducer(cfg), m, logger)
}

var newMetrics = metrics.New

var initTracing = func(ctx context.Context, cfg *tracing.Config) (tracerProvider, error) {
	tp, err := tracing.Initialize(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return tp, nil
}

var startHTTPServer = func(srv *http.Server) error {
	return srv.ListenAndServe()
}

func main() {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	if err := run(context.Background(), signalCh); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, signalCh <-chan os.Signal) error {
	cfg, err := loadConfig()
	if err != nil {
		logging.New(logging.DefaultConfig(serviceName)).WithError(err).Error("Failed to load configuration")
		return err
	}

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(cfg.LogLevel)
	logConfig.Environment = cfg.Environment
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting dropzone-service API")

	// Initialize tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = cfg.Tracing.Endpoint
	tracingConfig.Environment = cfg.Environment
	tracingConfig.Enabled = cfg.Tracing.Enabled

	tp, err := initTracing(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint, "enabled", tracingConfig.Enabled)
	}

	m := newMetrics(metrics.DefaultConfig(serviceName))
	logger.Info("Metrics initialized")

	// Zone profiles are optional; without MongoDB the profile routes are off
	var (
		profiles    domain.ZoneProfileRepository
		mongoHealth func() error
	)
	if cfg.MongoDB.Enabled {
		mongoConfig := mongodb.DefaultConfig()
		mongoConfig.URI = cfg.MongoDB.URI
		mongoConfig.Database = cfg.MongoDB.Database
		mongoConfig.AppName = serviceName

		var client mongoClient
		err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() error {
			var connectErr error
			client, connectErr = newMongoClient(ctx, mongoConfig)
			return connectErr
		})
		if err != nil {
			logger.WithError(err).Error("Failed to connect to MongoDB")
			return err
		}
		defer client.Close(context.Background())
		logger.Info("Connected to MongoDB", "database", mongoConfig.Database)

		profiles, err = newZoneProfileRepository(ctx, client.Database(), m, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to initialize zone profile repository")
			return err
		}
		mongoHealth = func() error { return client.HealthCheck(ctx) }
	}

	var publisher domain.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaConfig := kafka.DefaultConfig()
		kafkaConfig.Brokers = cfg.Kafka.Brokers
		kafkaConfig.ClientID = serviceName

		producer := newKafkaProducer(kafkaConfig, m, logger)
		defer producer.Close()
		publisher = kafkaInfra.NewEventPublisher(producer, cloudevents.NewEventFactory("/"+serviceName), cfg.Kafka.Topic)
		logger.Info("Kafka producer initialized", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	store := session.NewStore(cfg.Session, cfg.Search.Cookie)

	searchClient, err := containersearch.NewClient(&containersearch.Config{
		BaseURL:        cfg.Search.BaseURL,
		EndpointPath:   cfg.Search.EndpointPath,
		Locale:         cfg.Search.Locale,
		Timeout:        cfg.Search.Timeout,
		CircuitBreaker: resilience.DefaultCircuitBreakerConfig("container-search"),
	}, store, logger, containersearch.WithMetrics(m))
	if err != nil {
		logger.WithError(err).Error("Failed to create container search client")
		return err
	}

	scanService := application.NewScanService(
		searchClient,
		store,
		profiles,
		publisher,
		application.ScanServiceConfig{
			DefaultMode:       cfg.Scan.Mode,
			BatchSize:         cfg.Scan.BatchSize,
			BatchDelay:        cfg.Scan.BatchDelay,
			PalletConcurrency: cfg.Scan.PalletConcurrency,
			DefaultZoneList:   cfg.Scan.Zones,
			Silent:            cfg.Scan.Silent,
		},
		logger,
		m,
	)

	routes := handlers.Handlers{
		Scans:    handlers.NewScanHandler(scanService, logger),
		Sessions: handlers.NewSessionHandler(store, logger),
	}
	if profiles != nil {
		routes.Profiles = handlers.NewProfileHandler(application.NewProfileService(profiles, logger), logger)
	}

	router := newRouter(cfg, logger, m, routes, func() error {
		if status := searchClient.BreakerStatus(); status.State == "open" {
			return fmt.Errorf("container search circuit is open after %d consecutive failures", status.ConsecutiveFailures)
		}
		if mongoHealth != nil {
			return mongoHealth()
		}
		return nil
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := startHTTPServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", cfg.ServerAddr)

	<-signalCh
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if err := scanService.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Scan did not stop before shutdown deadline")
	}

	logger.Info("Server stopped")
	return nil
}

func newRouter(cfg *config.Config, logger *logging.Logger, m *metrics.Metrics, routes handlers.Handlers, ready func() error) *gin.Engine {
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middlewareConfig.AllowedOrigins = cfg.AllowedOrigins
	middleware.Setup(router, middlewareConfig)

	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, ready))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	handlers.RegisterRoutes(router, routes)
	return router
}
