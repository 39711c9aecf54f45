// Package registry builds the configured photo providers.
package registry

import (
	"time"

	"go.uber.org/zap"

	"photo-curator-service/internal/config"
	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/infra/provider"
	"photo-curator-service/internal/infra/provider/cached"
	"photo-curator-service/internal/infra/provider/flickr"
	"photo-curator-service/internal/infra/provider/pexels"
	"photo-curator-service/internal/infra/provider/pixabay"
	"photo-curator-service/internal/infra/provider/unsplash"
)

// Option customizes provider construction.
type Option func(*options)

type options struct {
	cache    domain.Cache
	cacheTTL time.Duration
}

// WithCache wraps every provider in a search cache.
func WithCache(cache domain.Cache, ttl time.Duration) Option {
	return func(o *options) {
		o.cache = cache
		o.cacheTTL = ttl
	}
}

type factory struct {
	tag       domain.ProviderTag
	endpoint  config.ProviderEndpoint
	needsKey  bool
	construct func(provider.ClientConfig, *zap.Logger) domain.PhotoProvider
}

// NewProviders creates every enabled provider client.
//
// A provider whose API key is missing is left out and logged, so the
// review session simply cannot switch to it. Flickr needs no key.
func NewProviders(cfg config.ProviderConfig, logger *zap.Logger, opts ...Option) map[domain.ProviderTag]domain.PhotoProvider {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	factories := []factory{
		{domain.ProviderPexels, cfg.Pexels, true, func(c provider.ClientConfig, l *zap.Logger) domain.PhotoProvider { return pexels.New(c, l) }},
		{domain.ProviderPixabay, cfg.Pixabay, true, func(c provider.ClientConfig, l *zap.Logger) domain.PhotoProvider { return pixabay.New(c, l) }},
		{domain.ProviderUnsplash, cfg.Unsplash, true, func(c provider.ClientConfig, l *zap.Logger) domain.PhotoProvider { return unsplash.New(c, l) }},
		{domain.ProviderFlickr, cfg.Flickr, false, func(c provider.ClientConfig, l *zap.Logger) domain.PhotoProvider { return flickr.New(c, l) }},
	}

	providers := make(map[domain.ProviderTag]domain.PhotoProvider, len(factories))
	for _, f := range factories {
		if !f.endpoint.Enabled {
			logger.Info("provider disabled", zap.String("provider", f.tag.String()))
			continue
		}
		if f.needsKey && f.endpoint.APIKey == "" {
			logger.Warn("provider api key missing, provider unavailable", zap.String("provider", f.tag.String()))
			continue
		}

		var p domain.PhotoProvider = f.construct(ClientConfig(f.endpoint), logger)
		if o.cache != nil {
			p = cached.Wrap(p, o.cache, o.cacheTTL, logger)
		}
		providers[f.tag] = p
	}

	return providers
}

// ClientConfig maps a configured endpoint onto the shared client settings.
func ClientConfig(ep config.ProviderEndpoint) provider.ClientConfig {
	return provider.ClientConfig{
		BaseURL: ep.BaseURL,
		APIKey:  ep.APIKey,
		Timeout: ep.Timeout,
		Retry: provider.RetryConfig{
			MaxAttempts: ep.Retry.MaxAttempts,
			WaitTime:    ep.Retry.WaitTime,
			MaxWaitTime: ep.Retry.MaxWaitTime,
		},
		CB: provider.CBConfig{
			MaxRequests:  ep.CB.MaxRequests,
			Interval:     ep.CB.Interval,
			Timeout:      ep.CB.Timeout,
			FailureRatio: ep.CB.FailureRatio,
		},
	}
}
