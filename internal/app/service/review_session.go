package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"photo-curator-service/internal/domain"
)

// RecordDownloader saves the binary of an accepted record.
// Implemented by DownloadService.
type RecordDownloader interface {
	DownloadRecord(ctx context.Context, termKey string, rec domain.CatalogRecord) error
}

// SessionConfig holds review session settings.
type SessionConfig struct {
	PageSize         int
	Provider         domain.ProviderTag
	DownloadOnAccept bool
}

// ReviewSession walks one reviewer through terms and candidate photos.
// Calls are serialized; each decision runs to completion before the next.
type ReviewSession struct {
	catalog   *CatalogService
	providers map[domain.ProviderTag]domain.PhotoProvider
	downloads RecordDownloader
	logger    *zap.Logger

	pageSize         int
	downloadOnAccept bool

	mu       sync.Mutex
	terms    []domain.Term
	cursor   domain.Cursor
	cache    map[int][]*domain.PhotoDescriptor
	accepted int
}

// NewReviewSession creates a session positioned at the first photo of the
// first term. When cfg.Provider is not registered the first registered
// provider is used instead.
func NewReviewSession(
	catalog *CatalogService,
	providers map[domain.ProviderTag]domain.PhotoProvider,
	terms []domain.Term,
	downloads RecordDownloader,
	cfg SessionConfig,
	logger *zap.Logger,
) (*ReviewSession, error) {
	provider := cfg.Provider
	if _, ok := providers[provider]; !ok {
		provider = ""
		for _, tag := range domain.AllProviders {
			if _, ok := providers[tag]; ok {
				provider = tag
				break
			}
		}
		if provider == "" {
			return nil, errors.New("no photo provider registered")
		}
		logger.Warn("configured provider unavailable, falling back",
			zap.String("configured", cfg.Provider.String()),
			zap.String("provider", provider.String()),
		)
	}

	return &ReviewSession{
		catalog:          catalog,
		providers:        providers,
		downloads:        downloads,
		logger:           logger,
		pageSize:         cfg.PageSize,
		downloadOnAccept: cfg.DownloadOnAccept,
		terms:            append([]domain.Term(nil), terms...),
		cursor:           domain.Cursor{Provider: provider},
		cache:            make(map[int][]*domain.PhotoDescriptor),
		accepted:         catalog.Total(),
	}, nil
}

// CurrentPhotos returns the candidate photos for the term at idx.
// Out-of-range indexes return nil and leave the cache untouched.
func (s *ReviewSession) CurrentPhotos(ctx context.Context, idx int, useCache bool) []*domain.PhotoDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.photos(ctx, idx, useCache)
}

// CurrentPosition describes what the reviewer currently sees.
func (s *ReviewSession) CurrentPosition(ctx context.Context) domain.Position {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.position(ctx)
}

// Decide applies a reviewer action. Only catalog persistence failures and
// unknown actions or providers are reported; navigation past either end is
// a no-op.
func (s *ReviewSession) Decide(ctx context.Context, d domain.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch d.Action {
	case domain.ActionAccept:
		return s.accept(ctx)
	case domain.ActionReject:
		if !s.finished() {
			s.advance(ctx)
		}
	case domain.ActionNextTerm:
		if !s.finished() {
			s.cursor.TermIndex++
			s.cursor.PhotoIndex = 0
		}
	case domain.ActionPrevTerm:
		if s.cursor.TermIndex > 0 {
			s.cursor.TermIndex--
			s.cursor.PhotoIndex = 0
		}
	case domain.ActionPrevious:
		s.previous(ctx)
	case domain.ActionSwitchProvider:
		return s.switchProvider(ctx, d.Provider)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownAction, d.Action)
	}

	return nil
}

// Jump moves to the first photo of the term at idx. It returns false
// when idx is out of range.
func (s *ReviewSession) Jump(idx int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.terms) {
		return false
	}
	s.cursor.TermIndex = idx
	s.cursor.PhotoIndex = 0

	return true
}

// ReplaceTerms swaps in a new term list and restarts the walk.
func (s *ReviewSession) ReplaceTerms(terms []domain.Term) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.terms = append([]domain.Term(nil), terms...)
	s.cursor.TermIndex = 0
	s.cursor.PhotoIndex = 0
	s.cache = make(map[int][]*domain.PhotoDescriptor)

	s.logger.Info("review terms replaced", zap.Int("terms", len(terms)))
}

// Terms returns a copy of the active term list.
func (s *ReviewSession) Terms() []domain.Term {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.Term(nil), s.terms...)
}

// Cursor returns the current review position.
func (s *ReviewSession) Cursor() domain.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cursor
}

// Providers returns the registered provider tags in display order.
func (s *ReviewSession) Providers() []domain.ProviderTag {
	tags := make([]domain.ProviderTag, 0, len(s.providers))
	for _, tag := range domain.AllProviders {
		if _, ok := s.providers[tag]; ok {
			tags = append(tags, tag)
		}
	}

	return tags
}

// ActiveProvider returns the provider new photos are fetched from.
func (s *ReviewSession) ActiveProvider() domain.ProviderTag {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cursor.Provider
}

func (s *ReviewSession) finished() bool {
	return s.cursor.TermIndex >= len(s.terms)
}

func (s *ReviewSession) photos(ctx context.Context, idx int, useCache bool) []*domain.PhotoDescriptor {
	if idx < 0 || idx >= len(s.terms) {
		return nil
	}
	if useCache {
		if cached, ok := s.cache[idx]; ok {
			return cached
		}
	}

	term := s.terms[idx]
	provider := s.providers[s.cursor.Provider]
	params := domain.NewSearchParams(term, s.pageSize)

	photos, err := provider.Search(ctx, params)
	if err != nil {
		// Provider already logged the failure; the term shows as exhausted.
		s.logger.Debug("no photos for term",
			zap.String("term", string(term)),
			zap.String("provider", s.cursor.Provider.String()),
			zap.Error(err),
		)
		photos = nil
	}
	if photos == nil {
		photos = []*domain.PhotoDescriptor{}
	}
	s.cache[idx] = photos

	return photos
}

func (s *ReviewSession) position(ctx context.Context) domain.Position {
	pos := domain.Position{
		TermIndex:     s.cursor.TermIndex,
		TermCount:     len(s.terms),
		PhotoIndex:    s.cursor.PhotoIndex,
		AcceptedTotal: s.accepted,
		Provider:      s.cursor.Provider,
	}
	if s.finished() {
		pos.Finished = true
		return pos
	}

	term := s.terms[s.cursor.TermIndex]
	pos.Term = term
	pos.AcceptedForTerm = s.catalog.CountFor(term.FolderKey())

	photos := s.photos(ctx, s.cursor.TermIndex, true)
	pos.PhotoCount = len(photos)
	if s.cursor.PhotoIndex < len(photos) {
		pos.Photo = photos[s.cursor.PhotoIndex]
		pos.URL = domain.BestURL(pos.Photo)
	}

	return pos
}

func (s *ReviewSession) accept(ctx context.Context) error {
	if s.finished() {
		return nil
	}

	photos := s.photos(ctx, s.cursor.TermIndex, true)
	if s.cursor.PhotoIndex >= len(photos) {
		return nil
	}

	term := s.terms[s.cursor.TermIndex]
	termKey := term.FolderKey()
	rec := domain.ToCatalogRecord(photos[s.cursor.PhotoIndex])

	added, err := s.catalog.Accept(ctx, termKey, rec)
	if err != nil {
		return err
	}

	if added {
		s.accepted++
		s.logger.Info("photo accepted",
			zap.String("term", termKey),
			zap.String("id", rec.ID),
			zap.String("provider", rec.Provider.String()),
			zap.Int("accepted_total", s.accepted),
		)

		if s.downloadOnAccept && s.downloads != nil {
			if err := s.downloads.DownloadRecord(ctx, termKey, rec); err != nil {
				s.logger.Warn("download after accept failed",
					zap.String("term", termKey),
					zap.String("id", rec.ID),
					zap.Error(err),
				)
			}
		}
	}

	s.advance(ctx)

	return nil
}

// advance is the only transition that can reach the finished state.
func (s *ReviewSession) advance(ctx context.Context) {
	if s.finished() {
		return
	}

	s.cursor.PhotoIndex++
	photos := s.photos(ctx, s.cursor.TermIndex, true)
	if s.cursor.PhotoIndex >= len(photos) {
		s.cursor.TermIndex++
		s.cursor.PhotoIndex = 0
	}
}

func (s *ReviewSession) previous(ctx context.Context) {
	if s.cursor.PhotoIndex > 0 {
		s.cursor.PhotoIndex--
		return
	}
	if s.cursor.TermIndex == 0 {
		return
	}

	s.cursor.TermIndex--
	photos := s.photos(ctx, s.cursor.TermIndex, true)
	s.cursor.PhotoIndex = max(0, len(photos)-1)
}

func (s *ReviewSession) switchProvider(ctx context.Context, tag domain.ProviderTag) error {
	if _, ok := s.providers[tag]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownProvider, tag)
	}

	s.cache = make(map[int][]*domain.PhotoDescriptor)
	s.cursor.Provider = tag
	s.cursor.PhotoIndex = 0

	s.logger.Info("review provider switched", zap.String("provider", tag.String()))

	s.photos(ctx, s.cursor.TermIndex, false)

	return nil
}
