package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/lib/pq" // PostgreSQL driver

	"authrules/internal/broker"
	"authrules/internal/config"
	"authrules/internal/constants"
	"authrules/internal/dictionary"
	"authrules/internal/logger"
	"authrules/internal/rules"
	"authrules/pkg/bootstrap"
	"authrules/pkg/health"
	"authrules/pkg/metrics"
	"authrules/pkg/middleware"
	"authrules/pkg/migrations"
	"authrules/pkg/ratelimit"
	"authrules/pkg/tracing"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type App struct {
	config          *config.Config
	logger          logger.Logger
	dbConnector     *bootstrap.DatabaseConnector
	db              *sql.DB
	redisClient     *redis.Client
	mongoClient     *mongo.Client
	producer        broker.Producer
	dictionaryCache *dictionary.Cache
	server          *http.Server
	router          *gin.Engine
	tracerProvider  *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config:      cfg,
		logger:      log,
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.initDictionary(ctx); err != nil {
		return fmt.Errorf("failed to initialize dictionary cache: %w", err)
	}

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	if err := a.initServer(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	tp, err := tracing.Init(a.config.Tracing, "rules-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("postgres configuration is required")
	}
	a.db = db

	if err := a.dbConnector.RunMigrations(a.db, "migrations"); err != nil {
		return err
	}

	redisClient, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		a.logger.WarnwCtx(ctx, "Redis connection failed, dictionary snapshots disabled", "error", err)
	} else {
		a.redisClient = redisClient
	}

	if a.config.Database.MongoDB.URI != "" {
		initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		mongoClient, err := a.dbConnector.InitMongoDB(initCtx)
		if err != nil {
			a.logger.WarnwCtx(initCtx, "MongoDB connection failed, continuing without remote dictionary", "error", err)
		} else if mongoClient != nil {
			a.mongoClient = mongoClient

			dbName := a.config.Database.MongoDB.Database
			if dbName == "" {
				dbName = constants.DefaultMongoDBName
			}
			if err := migrations.EnsureDictionaryIndexes(initCtx, mongoClient.Database(dbName)); err != nil {
				a.logger.WarnwCtx(initCtx, "Failed to ensure dictionary indexes", "error", err)
			}
		}
	}

	return nil
}

func (a *App) initDictionary(ctx context.Context) error {
	var store dictionary.Store
	if a.mongoClient != nil {
		dbName := a.config.Database.MongoDB.Database
		if dbName == "" {
			dbName = constants.DefaultMongoDBName
		}
		store = dictionary.NewMongoStore(a.mongoClient.Database(dbName))
	}

	opts := []dictionary.CacheOption{
		dictionary.WithLogger(a.logger),
	}

	if a.redisClient != nil {
		ttl := time.Duration(a.config.Dictionary.CacheTTLSeconds) * time.Second
		if ttl <= 0 {
			ttl = time.Duration(constants.DefaultDictionaryTTLSeconds) * time.Second
		}
		opts = append(opts, dictionary.WithRedis(a.redisClient, ttl))
	}

	if a.config.Dictionary.FallbackFile != "" {
		opts = append(opts, dictionary.WithFallbackFile(a.config.Dictionary.FallbackFile))
	}

	a.dictionaryCache = dictionary.NewCache(store, opts...)

	if err := a.dictionaryCache.Warm(ctx); err != nil {
		return err
	}

	a.logger.InfowCtx(ctx, "Dictionary cache warmed")
	return nil
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware("rules-service"))
	}

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())

	if a.config.RateLimit.Enabled {
		rateLimitConfig := ratelimit.RateLimitConfig{
			RPS:             a.config.RateLimit.RPS,
			Burst:           a.config.RateLimit.Burst,
			CleanupInterval: time.Duration(a.config.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.config.RateLimit.MaxAge) * time.Second,
		}
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		a.logger.Infow("Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	repo := rules.NewRepository(a.db)
	versioningRepo := rules.NewVersioningRepository(a.db)

	opts := []rules.ServiceOption{
		rules.WithVersioning(versioningRepo),
	}

	if len(a.config.Broker.Kafka.Brokers) > 0 {
		a.producer = broker.NewProducer(a.config.Broker, a.logger)

		topic := a.config.Broker.Kafka.RuleEventsTopic
		if topic == "" {
			topic = constants.DefaultRuleEventsTopic
		}
		opts = append(opts, rules.WithRuleEvents(rules.NewRuleEventProducer(a.producer, topic)))
		a.logger.Infow("Rule event producer initialized", "topic", topic)
	}

	svc := rules.NewService(repo, opts...)

	rulesHandler := rules.NewHandler(svc, a.logger)
	rulesHandler.RegisterRoutes(router)

	dictionaryHandler := dictionary.NewHandler(a.dictionaryCache, a.logger)
	dictionaryHandler.RegisterRoutes(router)

	metrics.RegisterRuleMetrics()
	metrics.RegisterDictionaryMetrics()
	metrics.RegisterBrokerMetrics()
	metrics.RegisterCircuitBreakerMetrics()
	metrics.RegisterHTTPMetrics()
	metrics.RegisterDatabaseMetrics()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgresChecker(a.db))
	if a.redisClient != nil {
		healthRegistry.RegisterOptional(health.NewRedisChecker(a.redisClient))
	}
	if a.mongoClient != nil {
		healthRegistry.RegisterOptional(health.NewMongoDBChecker(a.mongoClient))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) initServer() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeoutSeconds) * time.Second,
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		a.logger.InfowCtx(ctx, "Server listening", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return a.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	dbErrs := a.dbConnector.ShutdownDatabases(shutdownCtx, a.redisClient, a.db, a.mongoClient)
	errs = append(errs, dbErrs...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
