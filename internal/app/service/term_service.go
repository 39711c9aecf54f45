package service

import (
	"fmt"

	"go.uber.org/zap"

	"photo-curator-service/internal/domain"
)

// TermSource stores the operator's raw search term text.
// Implemented by filestore.TermsFile.
type TermSource interface {
	Read() (string, error)
	Write(text string) error
}

// TermService turns the raw term file into the active term list.
// The satisfied set is fixed at construction: terms that reach the
// minimum during a session stay listed until the process restarts.
type TermService struct {
	src       TermSource
	satisfied map[string]struct{}
	logger    *zap.Logger
}

// NewTermService creates a new TermService.
func NewTermService(src TermSource, satisfied map[string]struct{}, logger *zap.Logger) *TermService {
	if satisfied == nil {
		satisfied = map[string]struct{}{}
	}

	return &TermService{
		src:       src,
		satisfied: satisfied,
		logger:    logger,
	}
}

// Load reads the term source and drops blank and satisfied terms.
func (s *TermService) Load() ([]domain.Term, error) {
	raw, err := s.src.Read()
	if err != nil {
		return nil, fmt.Errorf("reading search terms: %w", err)
	}

	lines := domain.SplitLines(raw)
	terms := domain.LoadTerms(lines, s.satisfied)

	s.logger.Info("search terms loaded",
		zap.Int("lines", len(lines)),
		zap.Int("active", len(terms)),
		zap.Int("satisfied", len(s.satisfied)),
	)

	return terms, nil
}

// Raw returns the stored term text as the operator wrote it.
func (s *TermService) Raw() (string, error) {
	raw, err := s.src.Read()
	if err != nil {
		return "", fmt.Errorf("reading search terms: %w", err)
	}

	return raw, nil
}

// Save replaces the stored term text and returns the reloaded list.
func (s *TermService) Save(text string) ([]domain.Term, error) {
	if err := s.src.Write(text); err != nil {
		return nil, fmt.Errorf("writing search terms: %w", err)
	}

	return s.Load()
}

// Satisfied reports whether the term key was satisfied at startup.
func (s *TermService) Satisfied(termKey string) bool {
	_, ok := s.satisfied[termKey]
	return ok
}
