package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/jeremyodell/bjj-tournament-tracker/config"
	mastergymrepo "github.com/jeremyodell/bjj-tournament-tracker/internal/repositories/mastergym"
	pendingmatchrepo "github.com/jeremyodell/bjj-tournament-tracker/internal/repositories/pendingmatch"
	sourcegymrepo "github.com/jeremyodell/bjj-tournament-tracker/internal/repositories/sourcegym"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/database"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/events"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/graph"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/kafka"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/logging"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/matching"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/merging"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/middleware"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/review"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/routes/health"
	mastergymroutes "github.com/jeremyodell/bjj-tournament-tracker/pkg/routes/mastergym"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/routes/matchingrun"
	pendingmatchroutes "github.com/jeremyodell/bjj-tournament-tracker/pkg/routes/pendingmatch"
	sourcegymroutes "github.com/jeremyodell/bjj-tournament-tracker/pkg/routes/sourcegym"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/startup"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing/exporters"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.PrettyLogs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Service exited with error")
		os.Exit(1)
	}
}

func run(cfg config.Config, logger ectologger.Logger) error {
	ctx := context.Background()

	if cfg.TracingEnabled {
		shutdown, err := initTracing(ctx, cfg)
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
	}

	sqlxDB, err := sqlx.Connect(cfg.DatabaseDriver, databaseDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer sqlxDB.Close()
	sqlxDB.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	sqlxDB.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	sqlxDB.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)
	db := database.NewDatabaseInstance(sqlxDB, logger)

	driver, err := migratepg.WithInstance(sqlxDB.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
	})
	if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	sourceGyms := sourcegymrepo.NewRepository(db, logger)
	masterGyms := mastergymrepo.NewRepository(db, logger)
	pendingMatches := pendingmatchrepo.NewRepository(db, logger)

	var producer *kafka.Producer
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
	}
	emitter := events.NewEmitter(producer, logger)

	var projector merging.GraphProjector
	var graphPinger health.GraphPinger
	if cfg.GraphDBEnabled {
		graphClient, err := graph.NewClient(graph.Config{
			Host:     cfg.GraphDBHost,
			Port:     cfg.GraphDBPort,
			Username: cfg.GraphDBUser,
			Password: cfg.GraphDBPassword,
		}, logger)
		if err != nil {
			return err
		}
		defer graphClient.Close(context.Background())
		projector = graph.NewGymService(graphClient, logger)
		graphPinger = graphClient
	}

	mergeEngine := merging.NewEngine(sourceGyms, masterGyms, emitter, projector, logger)
	queue := review.NewQueue(pendingMatches, sourceGyms, mergeEngine, emitter, logger)

	matchConfig := matching.DefaultConfig()
	matchConfig.PageSize = cfg.MatchPageSize
	matchEngine := matching.NewEngine(sourceGyms, mergeEngine, queue, matchConfig, logger)
	runner := matching.NewRunner(matchEngine, cfg.MatchRunInterval, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	if cfg.TracingEnabled {
		e.Use(otelecho.Middleware(cfg.AppName))
	}
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.HTTPErrorHandler = middleware.Error(logger)

	checker := health.NewChecker(db, graphPinger, version)
	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	sourcegymroutes.NewHandler(sourceGyms).Register(api.Group("/source-gyms"))
	pendingmatchroutes.NewHandler(queue).Register(api.Group("/matches"))
	mastergymroutes.NewHandler(masterGyms, sourceGyms, mergeEngine).Register(api.Group("/master-gyms"))
	matchingrun.NewHandler(matchEngine).Register(api.Group("/matching"))

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	boot.AddDependency(&httpServerDependency{echo: e, port: cfg.Port, logger: logger})
	if cfg.MatchRunIntervalEnabled {
		boot.AddDependency(&runnerDependency{runner: runner})
	}

	if err := boot.Start(ctx); err != nil {
		return err
	}
	checker.SetReady(true)
	logger.WithFields(map[string]any{"port": cfg.Port, "version": version}).Info("Service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	checker.SetReady(false)
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return boot.Stop(shutdownCtx)
}

func databaseDSN(cfg config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName, cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode,
	)
}

func initTracing(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	exporter, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
		Endpoint: cfg.TracingOTLPEndpoint,
		Protocol: cfg.TracingOTLPProtocol,
		Insecure: true,
		Timeout:  10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(sdkresource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.AppName),
			semconv.ServiceVersionKey.String(version),
		)),
	)
	otel.SetTracerProvider(provider)
	tracing.SetTracer(provider.Tracer(cfg.AppName))

	return provider.Shutdown, nil
}

type httpServerDependency struct {
	echo   *echo.Echo
	port   int
	logger ectologger.Logger
}

func (d *httpServerDependency) GetName() string     { return "http-server" }
func (d *httpServerDependency) DependsOn() []string { return nil }

func (d *httpServerDependency) Start(ctx context.Context) error {
	go func() {
		if err := d.echo.Start(fmt.Sprintf(":%d", d.port)); err != nil && err != http.ErrServerClosed {
			d.logger.WithError(err).Error("HTTP server stopped")
		}
	}()
	return nil
}

func (d *httpServerDependency) Stop(ctx context.Context) error {
	return d.echo.Shutdown(ctx)
}

type runnerDependency struct {
	runner *matching.Runner
}

func (d *runnerDependency) GetName() string     { return "match-runner" }
func (d *runnerDependency) DependsOn() []string { return []string{"http-server"} }

func (d *runnerDependency) Start(ctx context.Context) error {
	go d.runner.Start(context.Background())
	return nil
}

func (d *runnerDependency) Stop(ctx context.Context) error {
	d.runner.Stop()
	return nil
}
