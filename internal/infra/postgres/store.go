package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"photo-curator-service/internal/domain"
)

// Store implements domain.CatalogStore using PostgreSQL.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a new PostgreSQL catalog store.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Load reads every accepted photo ordered by term and position.
// Rows whose payload no longer decodes are logged and skipped.
func (s *Store) Load(ctx context.Context) (domain.CatalogSnapshot, error) {
	var models []AcceptedPhotoModel
	if err := s.db.WithContext(ctx).Order("term_key, position").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	snapshot := make(domain.CatalogSnapshot)
	for i := range models {
		m := &models[i]
		rec, err := m.ToDomain()
		if err != nil {
			s.logger.Warn("skipping unreadable catalog row",
				zap.Uint("row", m.ID),
				zap.String("term", m.TermKey),
				zap.Error(err),
			)

			continue
		}
		snapshot[m.TermKey] = append(snapshot[m.TermKey], rec)
	}

	return snapshot, nil
}

// Save makes the table match the snapshot in one transaction: every record
// is upserted with a fresh generation, then rows of older generations,
// which the snapshot no longer contains, are deleted.
func (s *Store) Save(ctx context.Context, snapshot domain.CatalogSnapshot) error {
	generation := time.Now().UnixNano()

	models := make([]*AcceptedPhotoModel, 0, snapshot.Total())
	for key, records := range snapshot {
		for pos, rec := range records {
			m, err := FromDomain(key, pos, rec, generation)
			if err != nil {
				return err
			}
			models = append(models, m)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(models) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "term_key"}, {Name: "photo_id"}, {Name: "provider"}},
				DoUpdates: clause.AssignmentColumns([]string{"position", "payload", "tags", "generation"}),
			}).CreateInBatches(models, 100).Error
			if err != nil {
				return fmt.Errorf("upserting accepted photos: %w", err)
			}
		}

		if err := tx.Where("generation <> ?", generation).Delete(&AcceptedPhotoModel{}).Error; err != nil {
			return fmt.Errorf("pruning accepted photos: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("saving catalog: %w", err)
	}

	return nil
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// CountByProvider returns the number of accepted photos per provider.
func (s *Store) CountByProvider(ctx context.Context) (map[domain.ProviderTag]int64, error) {
	var rows []struct {
		Provider string
		Count    int64
	}
	err := s.db.WithContext(ctx).
		Model(&AcceptedPhotoModel{}).
		Select("provider, count(*) AS count").
		Group("provider").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("counting accepted photos: %w", err)
	}

	counts := make(map[domain.ProviderTag]int64, len(rows))
	for _, r := range rows {
		counts[domain.ProviderTag(r.Provider)] = r.Count
	}

	return counts, nil
}

// FindByTag returns records tagged with tag, across all terms.
func (s *Store) FindByTag(ctx context.Context, tag string) ([]domain.CatalogRecord, error) {
	var models []AcceptedPhotoModel
	err := s.db.WithContext(ctx).
		Where("tags @> ARRAY[?]::text[]", tag).
		Order("term_key, position").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("finding by tag: %w", err)
	}

	records := make([]domain.CatalogRecord, 0, len(models))
	for i := range models {
		rec, err := models[i].ToDomain()
		if err != nil {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}
