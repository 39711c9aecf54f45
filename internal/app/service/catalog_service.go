// Package service provides application use cases.
package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"photo-curator-service/internal/domain"
)

// CatalogService owns the in-memory catalog and writes every change
// through to the store before making it visible.
type CatalogService struct {
	store  domain.CatalogStore
	logger *zap.Logger

	mu      sync.RWMutex
	entries domain.CatalogSnapshot
}

// NewCatalogService loads the catalog from store.
func NewCatalogService(ctx context.Context, store domain.CatalogStore, logger *zap.Logger) (*CatalogService, error) {
	entries, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if entries == nil {
		entries = domain.CatalogSnapshot{}
	}

	return &CatalogService{
		store:   store,
		logger:  logger,
		entries: entries,
	}, nil
}

// Accept appends rec to the term's list unless a record with the same
// (id, provider) key is already there. It returns false for duplicates.
// The append is only kept once the whole catalog has been persisted.
func (s *CatalogService) Accept(ctx context.Context, termKey string, rec domain.CatalogRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.Key()
	for _, existing := range s.entries[termKey] {
		if existing.Key() == key {
			s.logger.Debug("duplicate accept ignored",
				zap.String("term", termKey),
				zap.String("id", key.ID),
				zap.String("provider", key.Provider.String()),
			)

			return false, nil
		}
	}

	next := s.entries.Clone()
	next[termKey] = append(next[termKey], rec)

	if err := s.store.Save(ctx, next); err != nil {
		s.logger.Error("persisting accepted photo failed",
			zap.String("term", termKey),
			zap.String("id", key.ID),
			zap.String("provider", key.Provider.String()),
			zap.Error(err),
		)

		return false, fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}
	s.entries = next

	return true, nil
}

// Remove deletes the record with the given key from the term's list.
// It returns false when no such record exists.
func (s *CatalogService) Remove(ctx context.Context, termKey, id string, provider domain.ProviderTag) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.entries[termKey]
	idx := -1
	for i, r := range records {
		if r.ID == id && r.Provider == provider {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := s.entries.Clone()
	next[termKey] = append(next[termKey][:idx], next[termKey][idx+1:]...)

	if err := s.store.Save(ctx, next); err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}
	s.entries = next

	s.logger.Info("catalog record removed",
		zap.String("term", termKey),
		zap.String("id", id),
		zap.String("provider", provider.String()),
	)

	return true, nil
}

// CountFor returns how many records are stored for the term.
func (s *CatalogService) CountFor(termKey string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries[termKey])
}

// Total returns the number of records across all terms.
func (s *CatalogService) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.entries.Total()
}

// Snapshot returns a copy of the catalog.
func (s *CatalogService) Snapshot() domain.CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.entries.Clone()
}

// Keys returns the term keys in lexical order.
func (s *CatalogService) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// SatisfiedKeys returns the term keys holding at least min records.
func (s *CatalogService) SatisfiedKeys(min int) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	satisfied := make(map[string]struct{})
	for key, records := range s.entries {
		if len(records) >= min {
			satisfied[key] = struct{}{}
		}
	}

	return satisfied
}

// TermRecord pairs a record with the term it was accepted for.
type TermRecord struct {
	TermKey string
	Record  domain.CatalogRecord
}

// RecordsFor returns every record of the provider, grouped by term key in
// lexical order. An empty provider returns all records.
func (s *CatalogService) RecordsFor(provider domain.ProviderTag) []TermRecord {
	snapshot := s.Snapshot()

	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []TermRecord
	for _, key := range keys {
		for _, rec := range snapshot[key] {
			if provider == "" || rec.Provider == provider {
				out = append(out, TermRecord{TermKey: key, Record: rec})
			}
		}
	}

	return out
}

// Ping reports whether the backing store is reachable.
func (s *CatalogService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
