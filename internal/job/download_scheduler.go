// Package job provides background job schedulers.
package job

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"photo-curator-service/internal/app/service"
	"photo-curator-service/pkg/locker"
)

const downloadLockKey = "download:scheduler"

// CatalogDownloader runs a bulk download across providers.
// Implemented by service.DownloadService.
type CatalogDownloader interface {
	DownloadAll(ctx context.Context) []service.DownloadResult
}

// DownloadScheduler periodically downloads catalog binaries. A cooldown
// lock keeps several instances from running the same pass.
type DownloadScheduler struct {
	downloads CatalogDownloader
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
	locker    locker.DistributedLocker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// DownloadConfig holds download scheduler configuration.
type DownloadConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool
}

// NewDownloadScheduler creates a new DownloadScheduler.
func NewDownloadScheduler(
	downloads CatalogDownloader,
	cfg DownloadConfig,
	logger *zap.Logger,
	l locker.DistributedLocker,
) *DownloadScheduler {
	return &DownloadScheduler{
		downloads: downloads,
		interval:  cfg.Interval,
		timeout:   cfg.Timeout,
		logger:    logger,
		locker:    l,
	}
}

// Start begins the background download loop.
func (s *DownloadScheduler) Start(runOnStartup bool) {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting download scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_startup", runOnStartup),
	)

	s.wg.Add(1)
	go s.run(runOnStartup)
}

// Stop cancels a running pass and waits for the loop to exit.
func (s *DownloadScheduler) Stop() {
	if s == nil || s.cancel == nil {
		return
	}

	s.logger.Info("stopping download scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("download scheduler stopped")
}

func (s *DownloadScheduler) run(runOnStartup bool) {
	defer s.wg.Done()

	if runOnStartup {
		s.execute()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.execute()
		}
	}
}

// execute runs one pass. The lock TTL is the interval: after a clean pass
// the lock is left to expire as a cooldown, after a failed pass it is
// released so another instance can retry.
func (s *DownloadScheduler) execute() {
	acquired, err := s.locker.Acquire(s.ctx, downloadLockKey, s.interval)
	if err != nil {
		s.logger.Error("failed to acquire download lock", zap.Error(err))
		return
	}
	if !acquired {
		s.logger.Debug("another instance is downloading, skipping")
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	results := s.downloads.DownloadAll(ctx)

	saved, failed := 0, 0
	hasError := false
	for _, r := range results {
		saved += r.Saved
		failed += r.Failed
		if r.Error != nil && !errors.Is(r.Error, service.ErrDownloadInProgress) {
			hasError = true
			s.logger.Warn("provider download failed",
				zap.String("provider", r.Provider.String()),
				zap.Error(r.Error),
			)
		}
	}

	if hasError || failed > 0 {
		if err := s.locker.Release(s.ctx, downloadLockKey); err != nil {
			s.logger.Error("failed to release download lock", zap.Error(err))
		}
		s.logger.Info("download pass finished with errors, lock released for retry",
			zap.Int("saved", saved),
			zap.Int("failed", failed),
		)

		return
	}

	s.logger.Info("download pass finished, lock held for cooldown",
		zap.Int("saved", saved),
		zap.Duration("cooldown", s.interval),
	)
}
