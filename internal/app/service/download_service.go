package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"photo-curator-service/internal/domain"
	"photo-curator-service/pkg/locker"
)

// ErrDownloadInProgress is returned when a bulk download for the same
// provider is already running.
var ErrDownloadInProgress = errors.New("download already in progress")

// DownloadConfig holds download service settings.
type DownloadConfig struct {
	// ImageDir is the root folder; files land in <ImageDir>/<provider>/<termKey>/<id>.<ext>.
	ImageDir string
	// LockTTL bounds how long a bulk download may hold its lock.
	LockTTL time.Duration
}

// DownloadService saves binaries for catalog records.
type DownloadService struct {
	catalog    *CatalogService
	downloader domain.ImageDownloader
	locker     locker.DistributedLocker
	imageDir   string
	lockTTL    time.Duration
	logger     *zap.Logger
}

// NewDownloadService creates a new DownloadService.
func NewDownloadService(
	catalog *CatalogService,
	downloader domain.ImageDownloader,
	l locker.DistributedLocker,
	cfg DownloadConfig,
	logger *zap.Logger,
) *DownloadService {
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &DownloadService{
		catalog:    catalog,
		downloader: downloader,
		locker:     l,
		imageDir:   cfg.ImageDir,
		lockTTL:    ttl,
		logger:     logger,
	}
}

// DownloadResult summarizes a bulk download for one provider.
type DownloadResult struct {
	Provider domain.ProviderTag
	Saved    int
	Existing int
	TooLarge int
	Failed   int
	Duration time.Duration
	Error    error
}

type outcome int

const (
	outcomeSaved outcome = iota
	outcomeExisting
	outcomeTooLarge
)

// DownloadRecord saves the binary of one accepted record. Files already on
// disk are left alone; assets over the size ceiling are skipped.
func (s *DownloadService) DownloadRecord(ctx context.Context, termKey string, rec domain.CatalogRecord) error {
	_, err := s.download(ctx, termKey, rec)
	return err
}

// RecordPath returns where the record's binary is stored for url.
func (s *DownloadService) RecordPath(termKey string, rec domain.CatalogRecord, url string) string {
	name := rec.ID + "." + domain.FileExtension(rec, url)
	return filepath.Join(s.imageDir, rec.Provider.String(), termKey, name)
}

// RemoveRecord deletes every local file the record may have been saved as.
func (s *DownloadService) RemoveRecord(termKey string, rec domain.CatalogRecord) error {
	seen := map[string]bool{}
	for _, url := range domain.DownloadCandidates(rec) {
		path := s.RecordPath(termKey, rec, url)
		if seen[path] {
			continue
		}
		seen[path] = true

		if err := s.downloader.Remove(path); err != nil {
			return err
		}
	}

	return nil
}

func (s *DownloadService) download(ctx context.Context, termKey string, rec domain.CatalogRecord) (outcome, error) {
	candidates := domain.DownloadCandidates(rec)
	if len(candidates) == 0 {
		return 0, fmt.Errorf("%w: %s/%s has no download url", domain.ErrInvalidRecord, rec.Provider, rec.ID)
	}

	for _, url := range candidates {
		if _, err := os.Stat(s.RecordPath(termKey, rec, url)); err == nil {
			return outcomeExisting, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("checking existing image: %w", err)
		}
	}

	// Candidates are ordered best first; the first one under the ceiling wins.
	var lastErr error
	for _, url := range candidates {
		saved, err := s.downloader.Save(ctx, url, s.RecordPath(termKey, rec, url))
		if err != nil {
			lastErr = err
			s.logger.Warn("image download failed",
				zap.String("term", termKey),
				zap.String("id", rec.ID),
				zap.String("provider", rec.Provider.String()),
				zap.String("url", url),
				zap.Error(err),
			)

			continue
		}
		if saved {
			return outcomeSaved, nil
		}
	}
	if lastErr != nil {
		return 0, fmt.Errorf("downloading %s/%s: %w", rec.Provider, rec.ID, lastErr)
	}

	s.logger.Info("no variant under size limit",
		zap.String("term", termKey),
		zap.String("id", rec.ID),
		zap.String("provider", rec.Provider.String()),
	)

	return outcomeTooLarge, nil
}

// DownloadCatalog downloads every catalog record of the provider.
// Only one bulk download per provider runs at a time.
func (s *DownloadService) DownloadCatalog(ctx context.Context, provider domain.ProviderTag) DownloadResult {
	start := time.Now()
	result := DownloadResult{Provider: provider}

	err := locker.WithLock(ctx, s.locker, "download:"+provider.String(), s.lockTTL, func(ctx context.Context) error {
		records := s.catalog.RecordsFor(provider)

		s.logger.Info("downloading catalog images",
			zap.String("provider", provider.String()),
			zap.Int("records", len(records)),
		)

		for _, tr := range records {
			if err := ctx.Err(); err != nil {
				return err
			}

			out, err := s.download(ctx, tr.TermKey, tr.Record)
			if err != nil {
				result.Failed++
				continue
			}
			switch out {
			case outcomeSaved:
				result.Saved++
			case outcomeExisting:
				result.Existing++
			case outcomeTooLarge:
				result.TooLarge++
			}
		}

		return nil
	})
	if errors.Is(err, locker.ErrLockHeld) {
		err = ErrDownloadInProgress
	}

	result.Error = err
	result.Duration = time.Since(start)

	s.logger.Info("catalog download completed",
		zap.String("provider", provider.String()),
		zap.Int("saved", result.Saved),
		zap.Int("existing", result.Existing),
		zap.Int("too_large", result.TooLarge),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", result.Duration),
		zap.Error(err),
	)

	return result
}

// DownloadAll downloads the catalog of every provider concurrently.
// Partial failures are allowed.
func (s *DownloadService) DownloadAll(ctx context.Context) []DownloadResult {
	results := make([]DownloadResult, len(domain.AllProviders))
	var wg sync.WaitGroup

	for i, provider := range domain.AllProviders {
		wg.Add(1)
		go func(idx int, p domain.ProviderTag) {
			defer wg.Done()
			results[idx] = s.DownloadCatalog(ctx, p)
		}(i, provider)
	}

	wg.Wait()

	return results
}
