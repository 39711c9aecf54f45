package pixabay

import (
	"photo-curator-service/internal/domain"
)

// Response represents the JSON response from the Pixabay search endpoint.
type Response struct {
	Total     int                    `json:"total"`
	TotalHits int                    `json:"totalHits"`
	Hits      []domain.PixabayRecord `json:"hits"`
}

// ToDomain wraps a search hit in a descriptor. Pixabay hits are stored as-is.
func ToDomain(hit domain.PixabayRecord) *domain.PhotoDescriptor {
	rec := hit
	rec.APIType = domain.ProviderPixabay

	return domain.NewPhotoDescriptor(&rec, rec.WebformatURL, rec.LargeImageURL)
}
