// Package main is the operator CLI for a curation project.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"photo-curator-service/internal/app/service"
	"photo-curator-service/internal/config"
	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/infra/download"
	"photo-curator-service/internal/infra/filestore"
	"photo-curator-service/internal/infra/postgres"
	"photo-curator-service/internal/logger"
	"photo-curator-service/internal/validator"
	"photo-curator-service/pkg/locker"
)

// BulkDownloader runs catalog downloads. Implemented by service.DownloadService.
type BulkDownloader interface {
	DownloadCatalog(ctx context.Context, provider domain.ProviderTag) service.DownloadResult
	DownloadAll(ctx context.Context) []service.DownloadResult
}

type Globals struct {
	Catalog   *service.CatalogService
	Terms     *service.TermService
	Downloads BulkDownloader
	MinImages int
	Out       io.Writer
}

type CLI struct {
	Stats    StatsCmd    `cmd:"" help:"Show accepted photo counts per term"`
	Download DownloadCmd `cmd:"" aliases:"dl" help:"Download catalog images to disk"`
	Terms    TermsCmd    `cmd:"" help:"List the terms still open for review"`

	ConfigPath string `name:"config" short:"c" type:"path" help:"Path to config file"`
	Verbose    bool   `short:"v" help:"Log to stderr"`

	closers []func()
}

func (c *CLI) AfterApply(ctx *kong.Context) error {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zl := zap.NewNop()
	if c.Verbose {
		log, err := logger.New(logger.Config{
			Level:  cfg.Logger.Level,
			Format: "console",
			Output: "stderr",
		}, logger.SentryConfig{})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		zl = log.Logger
	}

	globals, err := c.buildGlobals(context.Background(), cfg, zl)
	if err != nil {
		return err
	}

	ctx.Bind(globals)
	return nil
}

func (c *CLI) buildGlobals(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Globals, error) {
	var store domain.CatalogStore
	if cfg.Catalog.Backend == "postgres" {
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
		}, false, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog database: %w", err)
		}
		c.closers = append(c.closers, func() { _ = postgres.Close(db) })
		store = postgres.NewStore(db, log)
	} else {
		store = filestore.NewCatalogStore(cfg.Project.CatalogPath(), validator.New(), log)
	}

	catalog, err := service.NewCatalogService(ctx, store, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	terms := service.NewTermService(
		filestore.NewTermsFile(cfg.Project.SearchFilePath()),
		catalog.SatisfiedKeys(cfg.Project.MinImagesPerTerm),
		log,
	)

	downloader := download.NewExecutor(download.Config{
		MaxImageKB:     cfg.Download.MaxImageKB,
		Timeout:        cfg.Download.Timeout,
		ThumbnailWidth: cfg.Download.ThumbnailWidth,
	}, log)

	return &Globals{
		Catalog: catalog,
		Terms:   terms,
		Downloads: service.NewDownloadService(catalog, downloader, locker.NewLocalLocker(), service.DownloadConfig{
			ImageDir: cfg.Project.ImageDir(),
		}, log),
		MinImages: cfg.Project.MinImagesPerTerm,
		Out:       os.Stdout,
	}, nil
}

func (c *CLI) close() {
	for _, fn := range c.closers {
		fn()
	}
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("curatorctl"),
		kong.Description("Inspect and maintain a photo curation project"),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	cli.close()
	ctx.FatalIfErrorf(err)
}
