package registry

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"photo-curator-service/internal/config"
	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/infra/provider/cached"
	"photo-curator-service/internal/infra/redis"
)

func endpoint(key string) config.ProviderEndpoint {
	return config.ProviderEndpoint{Enabled: true, BaseURL: "https://example.test", APIKey: key, Timeout: time.Second}
}

func TestNewProviders_SkipsMissingKeys(t *testing.T) {
	cfg := config.ProviderConfig{
		Pexels:   endpoint("pexels-key"),
		Pixabay:  endpoint(""),
		Unsplash: endpoint("unsplash-key"),
		Flickr:   endpoint(""),
	}

	providers := NewProviders(cfg, zap.NewNop())

	assert.Len(t, providers, 3)
	assert.Contains(t, providers, domain.ProviderPexels)
	assert.Contains(t, providers, domain.ProviderUnsplash)
	assert.Contains(t, providers, domain.ProviderFlickr)
	assert.NotContains(t, providers, domain.ProviderPixabay)

	for tag, p := range providers {
		assert.Equal(t, tag, p.Name())
	}
}

func TestNewProviders_SkipsDisabled(t *testing.T) {
	flickr := endpoint("")
	flickr.Enabled = false

	providers := NewProviders(config.ProviderConfig{Flickr: flickr}, zap.NewNop())
	assert.Empty(t, providers)
}

func TestNewProviders_WithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewCache(client, zap.NewNop(), "test")
	providers := NewProviders(config.ProviderConfig{Flickr: endpoint("")}, zap.NewNop(), WithCache(cache, time.Hour))

	assert.IsType(t, &cached.Provider{}, providers[domain.ProviderFlickr])
}
