// Package download fetches image assets to disk under a size ceiling.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"photo-curator-service/internal/infra/provider"
)

// Config holds download executor settings.
type Config struct {
	MaxImageKB     int // decimal kilobytes; 0 disables the ceiling
	Timeout        time.Duration
	ThumbnailWidth uint // 0 disables thumbnails
}

// Executor implements domain.ImageDownloader over HTTP.
type Executor struct {
	client     *resty.Client
	maxBytes   int64
	thumbWidth uint
	logger     *zap.Logger
}

// NewExecutor creates a new download executor.
func NewExecutor(cfg Config, logger *zap.Logger) *Executor {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", provider.UserAgent).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)

	return &Executor{
		client:     client,
		maxBytes:   int64(cfg.MaxImageKB) * 1000,
		thumbWidth: cfg.ThumbnailWidth,
		logger:     logger,
	}
}

// FetchSize returns the remote size in bytes. It trusts Content-Length from a
// HEAD request and otherwise counts the bytes of a streamed GET.
func (e *Executor) FetchSize(ctx context.Context, url string) (int64, error) {
	resp, err := e.client.R().SetContext(ctx).Head(url)
	if err == nil && !resp.IsError() {
		if n, convErr := strconv.ParseInt(resp.Header().Get("Content-Length"), 10, 64); convErr == nil && n > 0 {
			return n, nil
		}
	}

	resp, err = e.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return 0, fmt.Errorf("measuring %s: %w", url, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return 0, fmt.Errorf("measuring %s: status %d", url, resp.StatusCode())
	}

	n, err := io.Copy(io.Discard, body)
	if err != nil {
		return 0, fmt.Errorf("measuring %s: %w", url, err)
	}

	return n, nil
}

// Fits reports whether size is within the ceiling.
func (e *Executor) Fits(size int64) bool {
	return e.maxBytes <= 0 || size <= e.maxBytes
}

// Save downloads url to dest. It returns false without error when the asset
// exceeds the size ceiling. The file appears at dest only once complete.
func (e *Executor) Save(ctx context.Context, url, dest string) (bool, error) {
	size, err := e.FetchSize(ctx, url)
	if err != nil {
		return false, err
	}
	if !e.Fits(size) {
		e.logger.Info("image exceeds size limit, skipped",
			zap.String("url", url),
			zap.Float64("kb", float64(size)/1000),
			zap.Int64("limit_kb", e.maxBytes/1000),
		)

		return false, nil
	}

	if err := e.fetchTo(ctx, url, dest); err != nil {
		return false, err
	}

	e.logger.Info("image downloaded",
		zap.String("path", dest),
		zap.Float64("kb", float64(size)/1000),
	)

	if e.thumbWidth > 0 {
		if err := WriteThumbnail(dest, e.thumbWidth); err != nil {
			e.logger.Warn("thumbnail failed", zap.String("path", dest), zap.Error(err))
		}
	}

	return true, nil
}

// Remove deletes a saved image and its thumbnail.
func (e *Executor) Remove(dest string) error {
	for _, path := range []string{dest, ThumbnailPath(dest)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}

	return nil
}

func (e *Executor) fetchTo(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating image folder: %w", err)
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return fmt.Errorf("downloading %s: status %d", url, resp.StatusCode())
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("moving %s into place: %w", dest, err)
	}

	return nil
}
