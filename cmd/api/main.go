// Package main is the entry point for the photo-curator-service web app.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"photo-curator-service/internal/app/service"
	"photo-curator-service/internal/config"
	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/infra/download"
	"photo-curator-service/internal/infra/filestore"
	"photo-curator-service/internal/infra/postgres"
	"photo-curator-service/internal/infra/postgres/migrations"
	"photo-curator-service/internal/infra/provider/registry"
	rediscache "photo-curator-service/internal/infra/redis"
	"photo-curator-service/internal/job"
	"photo-curator-service/internal/logger"
	"photo-curator-service/internal/transport/httpserver"
	"photo-curator-service/internal/transport/httpserver/handler"
	"photo-curator-service/internal/transport/httpserver/middleware"
	"photo-curator-service/internal/validator"
	"photo-curator-service/pkg/locker"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Project folders must exist before the log file can be opened
	for _, dir := range cfg.Project.Folders() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			panic("failed to create project folder: " + err.Error())
		}
	}

	// Initialize logger
	logCfg := logger.Config{
		Level:   cfg.Logger.Level,
		Format:  cfg.Logger.Format,
		Output:  cfg.Logger.Output,
		Project: cfg.Project.Name,
	}
	if cfg.Logger.File {
		logCfg.FilePath = filepath.Join(cfg.Project.LogDir(), "app.log")
	}
	log, err := logger.New(logCfg, logger.SentryConfig{
		Enabled:     cfg.Sentry.Enabled,
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		SampleRate:  cfg.Sentry.SampleRate,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting photo-curator-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	ctx := context.Background()
	v := validator.New()

	// Open the catalog store
	var store domain.CatalogStore
	switch cfg.Catalog.Backend {
	case "postgres":
		db, err := openDatabase(ctx, cfg, log.Logger)
		if err != nil {
			log.Fatal("failed to open catalog database", zap.Error(err))
		}
		defer func() { _ = postgres.Close(db) }()
		store = postgres.NewStore(db, log.Logger)
	default:
		store = filestore.NewCatalogStore(cfg.Project.CatalogPath(), v, log.Logger)
	}
	log.Info("catalog backend ready", zap.String("backend", cfg.Catalog.Backend))

	checks := map[string]middleware.PingFunc{
		"catalog": store.Ping,
	}

	// Connect to Redis when configured; locking falls back to the process
	var (
		cache      domain.Cache
		distLocker locker.DistributedLocker = locker.NewLocalLocker()
	)
	if cfg.Redis.Enabled {
		redisClient, err := rediscache.NewClient(ctx, rediscache.ClientConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer func(c *goredis.Client) { _ = c.Close() }(redisClient)
		log.Info("connected to Redis",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)

		distLocker = locker.NewRedisLocker(redisClient, cfg.Cache.KeyPrefix, log.Logger)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }

		if cfg.Cache.Enabled {
			cache = rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
			log.Info("search cache enabled",
				zap.Duration("search_ttl", cfg.Cache.SearchTTL),
				zap.String("key_prefix", cfg.Cache.KeyPrefix),
			)
		}
	}

	// Create provider clients
	var providerOpts []registry.Option
	if cache != nil {
		providerOpts = append(providerOpts, registry.WithCache(cache, cfg.Cache.SearchTTL))
	}
	providers := registry.NewProviders(cfg.Provider, log.Logger, providerOpts...)

	downloader := download.NewExecutor(download.Config{
		MaxImageKB:     cfg.Download.MaxImageKB,
		Timeout:        cfg.Download.Timeout,
		ThumbnailWidth: cfg.Download.ThumbnailWidth,
	}, log.Logger)

	// Create services
	catalogSvc, err := service.NewCatalogService(ctx, store, log.Logger)
	if err != nil {
		log.Fatal("failed to load catalog", zap.Error(err))
	}

	termSvc := service.NewTermService(
		filestore.NewTermsFile(cfg.Project.SearchFilePath()),
		catalogSvc.SatisfiedKeys(cfg.Project.MinImagesPerTerm),
		log.Logger,
	)
	terms, err := termSvc.Load()
	if err != nil {
		log.Fatal("failed to load search terms", zap.Error(err))
	}

	downloadSvc := service.NewDownloadService(catalogSvc, downloader, distLocker, service.DownloadConfig{
		ImageDir: cfg.Project.ImageDir(),
	}, log.Logger)

	session, err := service.NewReviewSession(catalogSvc, providers, terms, downloadSvc, service.SessionConfig{
		PageSize:         cfg.Project.PageSize,
		Provider:         domain.ProviderTag(cfg.Project.DefaultProvider),
		DownloadOnAccept: cfg.Download.OnAccept,
	}, log.Logger)
	if err != nil {
		log.Fatal("failed to start review session", zap.Error(err))
	}

	// Create HTTP server
	site := handler.Site{ProjectName: cfg.Project.Name}
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:      cfg.App.Host,
			Port:      cfg.App.Port,
			BodyLimit: 1024 * 1024, // 1MB
			Debug:     cfg.App.Debug,
		},
		httpserver.Handlers{
			Review: handler.NewReviewHandler(session, catalogSvc, downloadSvc, site, v, log.Logger),
			Gallery: handler.NewGalleryHandler(catalogSvc, downloadSvc, handler.GalleryConfig{
				ProjectDir: cfg.Project.Dir(),
				ZipDir:     cfg.Project.ZipDir(),
			}, site, v, log.Logger),
			Setup:   handler.NewSetupHandler(termSvc, session, cfg.App.EnvFile, site, v, log.Logger),
			Session: handler.NewSessionHandler(session, catalogSvc, downloadSvc, v, log.Logger),
		},
		checks,
		log.Logger,
	)

	// Start download scheduler when an interval is configured
	var scheduler *job.DownloadScheduler
	if cfg.Download.Schedule.Interval > 0 {
		scheduler = job.NewDownloadScheduler(
			downloadSvc,
			job.DownloadConfig{
				Interval:  cfg.Download.Schedule.Interval,
				Timeout:   cfg.Download.Schedule.Timeout,
				OnStartup: cfg.Download.Schedule.OnStartup,
			},
			log.Logger,
			distLocker,
		)
		scheduler.Start(cfg.Download.Schedule.OnStartup)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		scheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	// Start server
	if err := server.Start(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := postgres.NewConnection(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		Name:         cfg.Database.Name,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxLifetime:  cfg.Database.MaxLifetime,
	}, cfg.App.Debug, logger)
	if err != nil {
		return nil, err
	}

	if err := migrations.Run(db); err != nil {
		_ = postgres.Close(db)
		return nil, err
	}
	logger.Info("database migrations completed")

	return db, nil
}
