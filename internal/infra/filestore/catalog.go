// Package filestore keeps project state in plain files under the assets folder.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/validator"
)

// CatalogStore implements domain.CatalogStore as a single JSON document
// mapping term folder keys to accepted records.
type CatalogStore struct {
	path      string
	validator *validator.Validator
	logger    *zap.Logger
}

// NewCatalogStore creates a store for the catalog file at path.
func NewCatalogStore(path string, v *validator.Validator, logger *zap.Logger) *CatalogStore {
	return &CatalogStore{
		path:      path,
		validator: v,
		logger:    logger.With(zap.String("catalog", path)),
	}
}

// Path returns the catalog file location.
func (s *CatalogStore) Path() string {
	return s.path
}

// QuarantinePath returns where unreadable entries are set aside.
func (s *CatalogStore) QuarantinePath() string {
	return strings.TrimSuffix(s.path, filepath.Ext(s.path)) + ".quarantine.json"
}

// Load reads the catalog. A missing file is an empty catalog. Entries that
// cannot be decoded or fail validation are moved to the quarantine file
// and left out of the result.
func (s *CatalogStore) Load(_ context.Context) (domain.CatalogSnapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("catalog file not found, starting empty")
		return domain.CatalogSnapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.CatalogSnapshot{}, nil
	}

	var raw map[string][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: catalog is not a term map: %v", domain.ErrInvalidRecord, err)
	}

	snapshot := make(domain.CatalogSnapshot, len(raw))
	quarantined := make(map[string][]json.RawMessage)

	for key, entries := range raw {
		records := make([]domain.CatalogRecord, 0, len(entries))
		for i, entry := range entries {
			rec, err := domain.DecodeRecord(entry)
			if err == nil {
				err = s.validator.ValidateRecord(rec)
			}
			if err != nil {
				s.logger.Warn("quarantining catalog entry",
					zap.String("term", key),
					zap.Int("index", i),
					zap.Error(err),
				)
				quarantined[key] = append(quarantined[key], entry)

				continue
			}
			records = append(records, rec)
		}
		snapshot[key] = records
	}

	if len(quarantined) > 0 {
		if err := s.quarantine(quarantined); err != nil {
			return nil, err
		}
	}

	s.logger.Info("catalog loaded",
		zap.Int("terms", len(snapshot)),
		zap.Int("records", snapshot.Total()),
	)

	return snapshot, nil
}

// Save replaces the catalog file with the snapshot.
func (s *CatalogStore) Save(_ context.Context, snapshot domain.CatalogSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}

	if err := WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}

	return nil
}

// Ping verifies the catalog folder exists.
func (s *CatalogStore) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.path))
	}

	return nil
}

// quarantine merges entries into the quarantine file, keeping earlier ones.
func (s *CatalogStore) quarantine(entries map[string][]json.RawMessage) error {
	existing := make(map[string][]json.RawMessage)
	if data, err := os.ReadFile(s.QuarantinePath()); err == nil {
		_ = json.Unmarshal(data, &existing)
	}

	for key, list := range entries {
		existing[key] = append(existing[key], list...)
	}

	data, err := json.MarshalIndent(existing, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding quarantine: %w", err)
	}
	if err := WriteFileAtomic(s.QuarantinePath(), data); err != nil {
		return fmt.Errorf("writing quarantine: %w", err)
	}

	return nil
}

// WriteFileAtomic writes data next to path and renames it into place, so
// readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
