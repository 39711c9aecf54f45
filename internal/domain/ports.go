package domain

import (
	"context"
	"time"
)

// CatalogSnapshot maps term folder keys to accepted records in acceptance order.
type CatalogSnapshot map[string][]CatalogRecord

// Clone returns a copy whose lists can be modified independently.
func (s CatalogSnapshot) Clone() CatalogSnapshot {
	out := make(CatalogSnapshot, len(s))
	for key, records := range s {
		out[key] = append([]CatalogRecord(nil), records...)
	}

	return out
}

// Total returns the number of records across all terms.
func (s CatalogSnapshot) Total() int {
	total := 0
	for _, records := range s {
		total += len(records)
	}

	return total
}

// CatalogStore persists the whole catalog.
// Implementations: internal/infra/filestore (JSON file), internal/infra/postgres.
type CatalogStore interface {
	// Load reads the full catalog. A missing catalog is an empty snapshot.
	Load(ctx context.Context) (CatalogSnapshot, error)

	// Save replaces the stored catalog with the snapshot.
	Save(ctx context.Context, snapshot CatalogSnapshot) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// PhotoProvider defines the interface for stock-photo search adapters.
// Implementations: internal/infra/provider/{pexels,pixabay,unsplash,flickr}.
type PhotoProvider interface {
	// Name returns the provider tag.
	Name() ProviderTag

	// Search returns a single page of photos for the term.
	Search(ctx context.Context, params SearchParams) ([]*PhotoDescriptor, error)

	// HealthCheck verifies the provider is accessible.
	HealthCheck(ctx context.Context) error
}

// ImageDownloader fetches binary assets under a size ceiling.
// Implementations: internal/infra/download.
type ImageDownloader interface {
	// FetchSize returns the remote size in bytes.
	FetchSize(ctx context.Context, url string) (int64, error)

	// Save writes the asset to dest. It returns false without error when
	// the asset exceeds the size ceiling.
	Save(ctx context.Context, url, dest string) (bool, error)

	// Remove deletes a saved asset and anything derived from it.
	// Missing files are not an error.
	Remove(dest string) error
}

// Cache defines the interface for caching operations.
// Implementations: internal/infra/redis.
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error
}
