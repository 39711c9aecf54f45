package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"photo-curator-service/internal/domain"
)

// fakeProvider serves canned photos per term and counts searches.
type fakeProvider struct {
	tag    domain.ProviderTag
	photos map[string][]*domain.PhotoDescriptor
	err    error
	nextID int64

	mu       sync.Mutex
	searches map[string]int
}

func newFakeProvider(tag domain.ProviderTag) *fakeProvider {
	return &fakeProvider{
		tag:      tag,
		photos:   make(map[string][]*domain.PhotoDescriptor),
		searches: make(map[string]int),
	}
}

// withPhotos registers n photos for term with fresh numeric ids.
func (p *fakeProvider) withPhotos(term string, n int) *fakeProvider {
	list := make([]*domain.PhotoDescriptor, 0, n)
	for range n {
		p.nextID++
		list = append(list, photoFor(p.tag, p.nextID))
	}
	p.photos[term] = list

	return p
}

func (p *fakeProvider) Name() domain.ProviderTag { return p.tag }

func (p *fakeProvider) Search(_ context.Context, params domain.SearchParams) ([]*domain.PhotoDescriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.searches[params.Term]++
	if p.err != nil {
		return nil, p.err
	}

	return p.photos[params.Term], nil
}

func (p *fakeProvider) HealthCheck(context.Context) error { return nil }

func (p *fakeProvider) searchCount(term string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.searches[term]
}

// photoFor builds a descriptor for the provider with the given id.
func photoFor(tag domain.ProviderTag, id int64) *domain.PhotoDescriptor {
	sid := strconv.FormatInt(id, 10)

	switch tag {
	case domain.ProviderPexels:
		raw := &domain.PexelsRecord{ID: id, Original: "https://images.pexels.test/" + sid + ".jpeg"}
		return domain.NewPhotoDescriptor(raw, raw.Original, raw.Original)
	case domain.ProviderPixabay:
		raw := &domain.PixabayRecord{ID: id, LargeImageURL: "https://pixabay.test/get/" + sid + ".jpg"}
		return domain.NewPhotoDescriptor(raw, raw.LargeImageURL, raw.LargeImageURL)
	case domain.ProviderUnsplash:
		raw := &domain.UnsplashRecord{ID: sid, URLs: domain.UnsplashURLs{Full: "https://images.unsplash.test/" + sid}}
		return domain.NewPhotoDescriptor(raw, raw.URLs.Full, raw.URLs.Full)
	default:
		raw := &domain.FlickrRecord{ID: sid, URL: "https://live.staticflickr.test/" + sid + "_m.jpg", HighResURL: "https://live.staticflickr.test/" + sid + "_b.jpg"}
		return domain.NewPhotoDescriptor(raw, raw.URL, raw.HighResURL)
	}
}

// memStore is an in-memory CatalogStore.
type memStore struct {
	mu       sync.Mutex
	snapshot domain.CatalogSnapshot
	saves    int
	failSave bool
}

func newMemStore() *memStore {
	return &memStore{snapshot: domain.CatalogSnapshot{}}
}

func (s *memStore) Load(context.Context) (domain.CatalogSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot.Clone(), nil
}

func (s *memStore) Save(_ context.Context, snapshot domain.CatalogSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSave {
		return errors.New("disk full")
	}
	s.saves++
	s.snapshot = snapshot.Clone()

	return nil
}

func (s *memStore) Ping(context.Context) error { return nil }

// recordingDownloader remembers every record it was asked to fetch.
type recordingDownloader struct {
	mu    sync.Mutex
	calls []domain.RecordKey
	err   error
}

func (d *recordingDownloader) DownloadRecord(_ context.Context, _ string, rec domain.CatalogRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = append(d.calls, rec.Key())

	return d.err
}
