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

	"gdpr-tracker/internal/cache"
	"gdpr-tracker/internal/config"
	"gdpr-tracker/internal/database"
	"gdpr-tracker/internal/handlers"
	"gdpr-tracker/internal/logger"
	"gdpr-tracker/internal/middleware"
	"gdpr-tracker/internal/monitoring"
	"gdpr-tracker/internal/repositories"
	"gdpr-tracker/internal/services"
	"gdpr-tracker/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	if err := run(); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	pool, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	articleCache := newArticleCache(cfg)
	defer articleCache.Close()

	files, avatars, avatarDir, err := openStores(cfg)
	if err != nil {
		return err
	}

	if err := handlers.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	db := pool.DB
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	attachmentRepo := repositories.NewAttachmentRepository(db)

	userService := services.NewUserService(userRepo, avatars, userServiceConfig(cfg))
	authService := services.NewAuthService(userRepo, repositories.NewRefreshTokenRepository(db), services.AuthConfig{
		Secret:          cfg.Auth.JWTSecret,
		Issuer:          cfg.Auth.Issuer,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	})
	taskService := services.NewTaskService(taskRepo, repositories.NewCommentRepository(db), userRepo,
		services.WithAttachmentFiles(attachmentRepo, files))
	attachmentService := services.NewAttachmentService(attachmentRepo, taskRepo, files, cfg.Storage.MaxUploadSize)
	articleService := services.NewCachedArticleService(
		services.NewGdprArticleService(repositories.NewArticleRepository(db), repositories.NewSavedArticleRepository(db), userRepo),
		articleCache,
		cfg.Redis.ArticleTTL,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	monitor := monitoring.NewMonitor()
	monitor.RegisterHealthCheck("database", pool.HealthContext)
	monitor.RegisterHealthCheck("cache", articleCache.Health)

	router := gin.New()
	router.Use(middleware.RecoveryWithLog())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(monitor.MetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMin:  cfg.RateLimit.RequestsPerMin,
			BurstSize:       cfg.RateLimit.BurstSize,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
		})))
	}

	monitor.RegisterRoutes(router)
	handlers.RegisterRoutes(router, handlers.Handlers{
		Auth:        handlers.NewAuthHandler(authService, userService),
		Users:       handlers.NewUserHandler(userService),
		Tasks:       handlers.NewTaskHandler(taskService),
		Attachments: handlers.NewAttachmentHandler(attachmentService),
		Articles:    handlers.NewArticleHandler(articleService),
	}, handlers.RouteConfig{
		Authn: middleware.AuthzMiddleware(middleware.AuthzConfig{
			Secret: cfg.Auth.JWTSecret,
			Issuer: cfg.Auth.Issuer,
		}),
		AvatarDir: avatarDir,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", srv.Addr, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

func userServiceConfig(cfg *config.Config) services.UserServiceConfig {
	return services.UserServiceConfig{
		BCryptCost:    cfg.Auth.BCryptCost,
		MaxAvatarSize: cfg.Storage.MaxAvatarSize,
	}
}

func openDatabase(cfg *config.Config) (*database.DatabasePool, error) {
	poolConfig := database.DefaultPoolConfig()
	poolConfig.Driver = cfg.Database.Driver
	poolConfig.DSN = cfg.GetDatabaseDSN()
	poolConfig.MaxOpenConns = cfg.Database.MaxOpenConns
	poolConfig.MaxIdleConns = cfg.Database.MaxIdleConns
	poolConfig.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime
	if cfg.IsProduction() {
		poolConfig.LogLevel = gormlogger.Warn
	}

	pool, err := database.NewDatabasePool(poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(pool.DB); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	logger.Info("Database connected", "driver", cfg.Database.Driver)
	return pool, nil
}

// newArticleCache keeps the in-process tier even when Redis is disabled.
func newArticleCache(cfg *config.Config) *cache.MultiLevelCache {
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled, using in-process article cache")
		return cache.NewMultiLevelCache(nil, cache.DefaultMultiLevelConfig())
	}

	redisCache := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout)
	defer cancel()
	if err := redisCache.Health(ctx); err != nil {
		logger.Warn("Redis unreachable at startup, cache reads will fall through", "addr", cfg.GetRedisAddr(), "error", err)
	}

	return cache.NewMultiLevelCache(redisCache, cache.DefaultMultiLevelConfig())
}

// openStores returns the attachment store, the avatar store and, for local
// storage, the directory avatars are served from.
func openStores(cfg *config.Config) (storage.FileStore, storage.FileStore, string, error) {
	if cfg.Storage.Driver == "s3" {
		s3 := cfg.Storage.S3
		files, err := storage.NewS3Store(storage.S3Config{
			Endpoint:  s3.Endpoint,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Bucket:    s3.Bucket,
			UseSSL:    s3.UseSSL,
			Region:    s3.Region,
		})
		if err != nil {
			return nil, nil, "", err
		}
		avatars, err := storage.NewS3Store(storage.S3Config{
			Endpoint:  s3.Endpoint,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Bucket:    s3.AvatarBucket,
			UseSSL:    s3.UseSSL,
			Region:    s3.Region,
		})
		if err != nil {
			return nil, nil, "", err
		}
		return files, avatars, "", nil
	}

	files, err := storage.NewLocalStore(cfg.Storage.UploadDir)
	if err != nil {
		return nil, nil, "", err
	}
	avatars, err := storage.NewLocalStore(cfg.Storage.AvatarDir)
	if err != nil {
		return nil, nil, "", err
	}
	return files, avatars, avatars.Root(), nil
}
