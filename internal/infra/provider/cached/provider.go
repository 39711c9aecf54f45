// Package cached decorates photo providers with a shared search cache so
// revisiting a term does not spend provider quota.
package cached

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"photo-curator-service/internal/domain"
)

// Provider wraps a domain.PhotoProvider and caches successful searches.
// Cache failures are logged and fall through to the wrapped provider.
type Provider struct {
	next   domain.PhotoProvider
	cache  domain.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// Wrap returns a caching decorator around p.
func Wrap(p domain.PhotoProvider, cache domain.Cache, ttl time.Duration, logger *zap.Logger) *Provider {
	return &Provider{
		next:   p,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Name returns the wrapped provider's tag.
func (p *Provider) Name() domain.ProviderTag {
	return p.next.Name()
}

// Search serves from cache when possible. Empty results are not cached.
func (p *Provider) Search(ctx context.Context, params domain.SearchParams) ([]*domain.PhotoDescriptor, error) {
	params.Validate()
	key := Key(p.next.Name(), params)

	if data, err := p.cache.Get(ctx, key); err == nil && data != nil {
		var photos []*domain.PhotoDescriptor
		if err := json.Unmarshal(data, &photos); err == nil {
			return photos, nil
		}
		p.logger.Warn("discarding unreadable cached search", zap.String("key", key))
		_ = p.cache.Delete(ctx, key)
	}

	photos, err := p.next.Search(ctx, params)
	if err != nil || len(photos) == 0 {
		return photos, err
	}

	data, err := json.Marshal(photos)
	if err != nil {
		p.logger.Warn("encoding search for cache failed", zap.String("key", key), zap.Error(err))
		return photos, nil
	}
	if err := p.cache.Set(ctx, key, data, p.ttl); err != nil {
		p.logger.Warn("caching search failed", zap.String("key", key), zap.Error(err))
	}

	return photos, nil
}

// HealthCheck delegates to the wrapped provider.
func (p *Provider) HealthCheck(ctx context.Context) error {
	return p.next.HealthCheck(ctx)
}

// Key builds the cache key for one search page.
func Key(tag domain.ProviderTag, params domain.SearchParams) string {
	return fmt.Sprintf("search:%s:%s:%d:%d", tag, domain.FolderKey(params.Term), params.Page, params.PageSize)
}
