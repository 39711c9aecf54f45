package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// addTagIndex adds a GIN index for tag containment queries (tags @> ARRAY[...]).
func addTagIndex() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_add_tag_index",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_accepted_photos_tags
				ON accepted_photos USING GIN (tags)
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`DROP INDEX IF EXISTS idx_accepted_photos_tags`).Error
		},
	}
}
