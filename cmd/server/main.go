package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/cheatday/planner/config"
	"github.com/cheatday/planner/internal/handlers"
	"github.com/cheatday/planner/pkg/database"
	"github.com/cheatday/planner/pkg/events"
	"github.com/cheatday/planner/pkg/kafka"
	"github.com/cheatday/planner/pkg/middleware"
	"github.com/cheatday/planner/pkg/planstore"
	planredis "github.com/cheatday/planner/pkg/redis"
	"github.com/cheatday/planner/pkg/routes/health"
	"github.com/cheatday/planner/pkg/session"
	"github.com/cheatday/planner/pkg/startup"
	plansync "github.com/cheatday/planner/pkg/sync"
	"github.com/cheatday/planner/pkg/tracing"
	"github.com/cheatday/planner/pkg/tracing/exporters"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zlog, err := newZapLogger(cfg.PrettyLogs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zlog.Sync() }()

	logger := ectologger.NewEctoLogger(func(m ectologger.EctoLogMessage) {
		zlog.Info("log", zap.Any("entry", m))
	})

	if cfg.JWTSecret == "" || cfg.AuthPassword == "" {
		logger.Error("AUTH_PASSWORD and JWT_SECRET must be set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otlpEndpoint := ""
	if cfg.OTLPEnabled {
		otlpEndpoint = cfg.OTLPEndpoint
	}
	shutdownTracing, err := tracing.Setup(ctx, cfg.AppName, exporters.OTLPConfig{
		Endpoint: otlpEndpoint,
		Protocol: cfg.OTLPProtocol,
		Insecure: cfg.OTLPInsecure,
	})
	if err != nil {
		logger.WithError(err).Error("failed to set up tracing")
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)

	var (
		store    planstore.Store
		pinger   health.Pinger
		redisCli *planredis.Client
		producer *kafka.Producer
	)

	switch cfg.StorageBackend {
	case "redis":
		boot.AddDependency(startup.Dependency{
			Name: "redis",
			Start: func(ctx context.Context) error {
				cli, err := planredis.NewClient(planredis.Config{
					Host:     cfg.RedisHost,
					Port:     cfg.RedisPort,
					Password: cfg.RedisPassword,
					DB:       cfg.RedisDB,
				}, logger)
				if err != nil {
					return err
				}
				redisCli = cli
				store = planstore.NewRedisStore(cli, logger)
				pinger = cli
				return nil
			},
			Stop: func(ctx context.Context) error {
				if redisCli == nil {
					return nil
				}
				return redisCli.Close()
			},
		})
	case "postgres":
		boot.AddDependency(startup.Dependency{
			Name: "postgres",
			Start: func(ctx context.Context) error {
				db, err := database.Connect(database.Config{
					Host:            cfg.DatabaseHost,
					Port:            cfg.DatabasePort,
					UserName:        cfg.DatabaseUserName,
					Password:        cfg.DatabasePassword,
					Name:            cfg.DatabaseName,
					SSLMode:         cfg.DatabaseSSLMode,
					MaxOpenConns:    cfg.DatabaseMaxOpenConns,
					MaxIdleConns:    cfg.DatabaseMaxIdleConns,
					ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
				}, logger)
				if err != nil {
					return err
				}
				if err := database.Migrate(db, cfg.DatabaseMigrationFolderPath, logger); err != nil {
					return err
				}
				store = planstore.NewPostgresStore(db, logger)
				pinger = sqlxPinger{db.PingContext}
				return nil
			},
		})
	default:
		store = planstore.NewMemoryStore()
	}

	if cfg.KafkaBrokers != "" {
		boot.AddDependency(startup.Dependency{
			Name: "kafka",
			Start: func(ctx context.Context) error {
				producer = kafka.NewProducer(kafka.ParseConfig(cfg.KafkaBrokers, cfg.KafkaEventTopic), logger)
				return nil
			},
			Stop: func(ctx context.Context) error {
				if producer == nil {
					return nil
				}
				return producer.Close()
			},
		})
	}

	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("startup failed")
		os.Exit(1)
	}

	emitter := events.NewEmitter(producer, logger)
	controller := plansync.NewController(store, cfg.StorageBackend, emitter, logger, plansync.DefaultDebounce, plansync.Callbacks{})
	defer controller.Close()

	gateway := session.New(cfg.AuthPassword, cfg.JWTSecret, cfg.SessionTTL)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowCredentials: true,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	checker := health.NewChecker(cfg.StorageBackend, pinger, version)
	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.Use(middleware.Session(gateway))

	handlers.NewAuthHandler(gateway).RegisterRoutes(api)

	protected := api.Group("", middleware.RequireSession(gateway))
	handlers.NewDataHandler(controller).RegisterRoutes(protected)

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		checker.SetReady(true)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	checker.SetReady(false)
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := controller.Flush(shutdownCtx); err != nil {
		logger.WithError(err).Error("failed to flush pending save")
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("failed to shut down server")
	}
	if err := boot.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("failed to stop dependencies")
	}
}

type sqlxPinger struct {
	ping func(ctx context.Context) error
}

func (p sqlxPinger) Ping(ctx context.Context) error {
	return p.ping(ctx)
}

func newZapLogger(pretty bool) (*zap.Logger, error) {
	if pretty {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
