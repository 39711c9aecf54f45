package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createAcceptedPhotosTable creates the catalog table.
func createAcceptedPhotosTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_accepted_photos",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS accepted_photos (
					id BIGSERIAL PRIMARY KEY,
					term_key VARCHAR(200) NOT NULL,
					photo_id VARCHAR(100) NOT NULL,
					provider VARCHAR(20) NOT NULL,
					position INTEGER NOT NULL,
					payload JSONB NOT NULL,
					tags TEXT[],

					generation BIGINT NOT NULL,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

					-- One record per photo and provider within a term
					CONSTRAINT uq_accepted_term_photo UNIQUE (term_key, photo_id, provider)
				);
			`).Error
			if err != nil {
				return err
			}

			return tx.Exec("CREATE INDEX IF NOT EXISTS idx_accepted_photos_provider ON accepted_photos(provider);").Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS accepted_photos;").Error
		},
	}
}
