package unsplash

import (
	"photo-curator-service/internal/domain"
)

// Response represents the JSON response from the Unsplash search endpoint.
type Response struct {
	Total      int                     `json:"total"`
	TotalPages int                     `json:"total_pages"`
	Results    []domain.UnsplashRecord `json:"results"`
}

// ToDomain wraps a search result in a descriptor. URLs keep their tracking
// parameter here; it is stripped when the record is accepted.
func ToDomain(item domain.UnsplashRecord) *domain.PhotoDescriptor {
	rec := item
	rec.APIType = domain.ProviderUnsplash

	return domain.NewPhotoDescriptor(&rec, rec.URLs.Small, rec.URLs.Full)
}
