package pexels

import (
	"strings"

	"photo-curator-service/internal/domain"
)

// Response represents the JSON response from the Pexels search endpoint.
type Response struct {
	Page         int     `json:"page"`
	PerPage      int     `json:"per_page"`
	TotalResults int     `json:"total_results"`
	Photos       []Photo `json:"photos"`
	NextPage     string  `json:"next_page"`
}

// Photo represents a single Pexels photo.
type Photo struct {
	ID           int64  `json:"id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	URL          string `json:"url"`
	Photographer string `json:"photographer"`
	Alt          string `json:"alt"`
	Src          Src    `json:"src"`
}

// Src holds the resolution variants.
type Src struct {
	Original  string `json:"original"`
	Large2x   string `json:"large2x"`
	Large     string `json:"large"`
	Medium    string `json:"medium"`
	Small     string `json:"small"`
	Portrait  string `json:"portrait"`
	Landscape string `json:"landscape"`
	Tiny      string `json:"tiny"`
}

// ToDomain flattens the photo into a catalog payload and wraps it in a descriptor.
func (p *Photo) ToDomain() *domain.PhotoDescriptor {
	rec := &domain.PexelsRecord{
		APIType:      domain.ProviderPexels,
		ID:           p.ID,
		Width:        p.Width,
		Height:       p.Height,
		Photographer: p.Photographer,
		URL:          p.URL,
		Description:  p.Alt,
		Original:     p.Src.Original,
		Large2x:      p.Src.Large2x,
		Large:        p.Src.Large,
		Medium:       p.Src.Medium,
		Small:        p.Src.Small,
		Portrait:     p.Src.Portrait,
		Landscape:    p.Src.Landscape,
		Tiny:         p.Src.Tiny,
		Extension:    domain.URLExtension(p.Src.Original, "jpeg"),
	}
	if rec.Original != "" {
		rec.Compressed = rec.Original + "?auto=compress"
	}
	if rec.Description == "" {
		rec.Description = slugDescription(p.URL)
	}

	return domain.NewPhotoDescriptor(rec, p.Src.Medium, p.Src.Original)
}

// slugDescription derives a description from the photo page slug,
// e.g. .../photo/brown-tabby-cat-45201/ becomes "brown tabby cat".
func slugDescription(pageURL string) string {
	slug := strings.TrimSuffix(pageURL, "/")
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}
	if i := strings.LastIndex(slug, "-"); i >= 0 {
		slug = slug[:i]
	}

	return strings.ReplaceAll(slug, "-", " ")
}
