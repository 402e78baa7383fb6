package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roomatlas/pg-marketplace/internal/bookings"
	"github.com/roomatlas/pg-marketplace/internal/properties"
	"github.com/roomatlas/pg-marketplace/internal/reviews"
	"github.com/roomatlas/pg-marketplace/internal/risk"
	"github.com/roomatlas/pg-marketplace/migrations"
	"github.com/roomatlas/pg-marketplace/pkg/cache"
	"github.com/roomatlas/pg-marketplace/pkg/common"
	"github.com/roomatlas/pg-marketplace/pkg/config"
	"github.com/roomatlas/pg-marketplace/pkg/database"
	"github.com/roomatlas/pg-marketplace/pkg/eventbus"
	"github.com/roomatlas/pg-marketplace/pkg/logger"
	"github.com/roomatlas/pg-marketplace/pkg/middleware"
	redisclient "github.com/roomatlas/pg-marketplace/pkg/redis"
	"go.uber.org/zap"
)

const (
	serviceName = "marketplace-api"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting marketplace API",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	if err := database.RunMigrations(migrations.FS, ".", &cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Migrations applied")

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	var cacheManager *cache.Manager
	redisClient, err := redisclient.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
	} else {
		cacheManager = cache.NewManager(redisClient)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Failed to close redis client", zap.Error(err))
			}
		}()
	}

	var bus *eventbus.Bus
	if cfg.NATS.Enabled {
		busCfg := eventbus.DefaultConfig()
		busCfg.URL = cfg.NATS.URL
		busCfg.Name = serviceName
		bus, err = eventbus.New(busCfg)
		if err != nil {
			logger.Warn("NATS unavailable, continuing without event bus", zap.Error(err))
			bus = nil
		} else {
			defer bus.Close()
		}
	}

	// A typed-nil *Bus must not reach the Publisher interfaces.
	var (
		riskBus     risk.Publisher
		bookingsBus bookings.Publisher
		reviewsBus  reviews.Publisher
	)
	if bus != nil {
		riskBus = bus
		bookingsBus = bus
		reviewsBus = bus
	}

	riskRepo := risk.NewRepository(db)
	riskService := risk.NewService(riskRepo, cacheManager, riskBus)

	propertiesRepo := properties.NewRepository(db)
	propertiesService := properties.NewService(propertiesRepo, riskService, cacheManager)

	bookingsRepo := bookings.NewRepository(db)
	bookingsService := bookings.NewService(bookingsRepo, bookings.NewPropertySource(propertiesRepo), riskService, bookingsBus)

	reviewsRepo := reviews.NewRepository(db)
	reviewsService := reviews.NewService(reviewsRepo, riskService, reviewsBus)

	// Redundant recompute trigger: if the synchronous recompute in the
	// payment callback failed, the durable consumer retries it.
	if bus != nil {
		subCtx := context.Background()
		err := bus.Subscribe(subCtx, eventbus.SubjectPaymentFailed, "risk-payments-failed",
			func(ctx context.Context, event *eventbus.Event) error {
				payload, err := eventbus.DecodePayment(event)
				if err != nil {
					logger.Warn("skipping malformed payment event", zap.Error(err))
					return nil
				}
				_, err = riskService.RecomputeOwnerRisk(ctx, payload.OwnerID)
				return err
			})
		if err != nil {
			logger.Warn("Failed to subscribe to payment events", zap.Error(err))
		}
	}

	propertiesHandler := properties.NewHandler(propertiesService)
	bookingsHandler := bookings.NewHandler(bookingsService)
	reviewsHandler := reviews.NewHandler(reviewsService)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics(serviceName))

	router.GET("/healthz", common.HealthCheck(serviceName, version))

	healthChecks := map[string]func() error{
		"database": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(ctx)
		},
	}
	if redisClient != nil {
		healthChecks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		}
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	// Public surface: browsing and review reads. Auth is optional so that a
	// logged-in viewer is attributed on impression records.
	public := v1.Group("")
	public.Use(middleware.OptionalAuth(cfg.JWT.Secret))
	propertiesHandler.RegisterPublicRoutes(public)
	reviewsHandler.RegisterPublicRoutes(public)

	// Payment provider callback, authenticated upstream by the gateway.
	bookingsHandler.RegisterWebhookRoutes(v1.Group(""))

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	bookingsHandler.RegisterRoutes(authed)
	reviewsHandler.RegisterTenantRoutes(authed)

	owner := v1.Group("")
	owner.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.RequireRole(middleware.RoleOwner, middleware.RoleAdmin))
	propertiesHandler.RegisterOwnerRoutes(owner)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
