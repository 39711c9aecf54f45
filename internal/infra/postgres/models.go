package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"photo-curator-service/internal/domain"
)

// AcceptedPhotoModel is the GORM model for the accepted_photos table.
// One row per (term, photo, provider); Position keeps acceptance order.
type AcceptedPhotoModel struct {
	ID       uint           `gorm:"primaryKey"`
	TermKey  string         `gorm:"type:varchar(200);not null;uniqueIndex:uq_accepted_term_photo"`
	PhotoID  string         `gorm:"type:varchar(100);not null;uniqueIndex:uq_accepted_term_photo"`
	Provider string         `gorm:"type:varchar(20);not null;uniqueIndex:uq_accepted_term_photo;index"`
	Position int            `gorm:"not null"`
	Payload  string         `gorm:"type:jsonb;not null"`
	Tags     pq.StringArray `gorm:"type:text[]"`

	// Generation identifies the snapshot that last wrote the row.
	Generation int64     `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for AcceptedPhotoModel.
func (AcceptedPhotoModel) TableName() string {
	return "accepted_photos"
}

// ToDomain decodes the stored payload.
func (m *AcceptedPhotoModel) ToDomain() (domain.CatalogRecord, error) {
	return domain.DecodeRecord([]byte(m.Payload))
}

// FromDomain creates a row for the record at position within termKey.
func FromDomain(termKey string, position int, rec domain.CatalogRecord, generation int64) (*AcceptedPhotoModel, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding %s/%s: %w", rec.Provider, rec.ID, err)
	}

	return &AcceptedPhotoModel{
		TermKey:    termKey,
		PhotoID:    rec.ID,
		Provider:   string(rec.Provider),
		Position:   position,
		Payload:    string(payload),
		Tags:       recordTags(rec),
		Generation: generation,
	}, nil
}

func recordTags(rec domain.CatalogRecord) pq.StringArray {
	if p, ok := rec.Payload.(*domain.PixabayRecord); ok {
		return p.TagList()
	}

	return pq.StringArray{}
}
