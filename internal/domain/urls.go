package domain

import (
	"net/url"
	"path"
	"strings"
)

// Per-provider URL policies. Each table is keyed by ProviderTag and walks
// the provider's resolution variants in priority order.

var bestURLPolicies = map[ProviderTag]func(RecordPayload) string{
	ProviderPexels: func(p RecordPayload) string {
		r := p.(*PexelsRecord)
		return firstNonEmpty(r.Large2x, r.Original, firstNonEmpty(pexelsVariants(r)...))
	},
	ProviderPixabay: func(p RecordPayload) string {
		r := p.(*PixabayRecord)
		return firstNonEmpty(r.LargeImageURL, r.WebformatURL, r.PreviewURL)
	},
	ProviderUnsplash: func(p RecordPayload) string {
		r := p.(*UnsplashRecord)
		return StripTrackingID(firstNonEmpty(r.URLs.Full, r.URLs.Regular, r.URLs.Raw, r.URLs.Small, r.URLs.Thumb))
	},
	ProviderFlickr: func(p RecordPayload) string {
		r := p.(*FlickrRecord)
		return firstNonEmpty(r.HighResURL, r.URL)
	},
}

var thumbnailPolicies = map[ProviderTag]func(RecordPayload) string{
	ProviderPexels: func(p RecordPayload) string {
		r := p.(*PexelsRecord)
		return firstNonEmpty(r.Tiny, r.Small, r.Medium, r.Original)
	},
	ProviderPixabay: func(p RecordPayload) string {
		r := p.(*PixabayRecord)
		return firstNonEmpty(r.PreviewURL, r.WebformatURL, r.LargeImageURL)
	},
	ProviderUnsplash: func(p RecordPayload) string {
		r := p.(*UnsplashRecord)
		return StripTrackingID(firstNonEmpty(r.URLs.Thumb, r.URLs.Small, r.URLs.Regular))
	},
	ProviderFlickr: func(p RecordPayload) string {
		r := p.(*FlickrRecord)
		return firstNonEmpty(r.URL, r.HighResURL)
	},
}

var downloadPolicies = map[ProviderTag]func(RecordPayload) []string{
	ProviderPexels: func(p RecordPayload) []string {
		r := p.(*PexelsRecord)
		return nonEmpty(r.Original, r.Large2x, r.Large, r.Medium, r.Small)
	},
	ProviderPixabay: func(p RecordPayload) []string {
		return nonEmpty(bestURLPolicies[ProviderPixabay](p))
	},
	ProviderUnsplash: func(p RecordPayload) []string {
		r := p.(*UnsplashRecord)
		return nonEmpty(StripTrackingID(r.URLs.Full))
	},
	ProviderFlickr: func(p RecordPayload) []string {
		r := p.(*FlickrRecord)
		return nonEmpty(r.HighResURL)
	},
}

var recordSanitizers = map[ProviderTag]func(RecordPayload) RecordPayload{
	ProviderUnsplash: func(p RecordPayload) RecordPayload {
		r := *p.(*UnsplashRecord)
		r.URLs = UnsplashURLs{
			Raw:     StripTrackingID(r.URLs.Raw),
			Full:    StripTrackingID(r.URLs.Full),
			Regular: StripTrackingID(r.URLs.Regular),
			Small:   StripTrackingID(r.URLs.Small),
			Thumb:   StripTrackingID(r.URLs.Thumb),
		}
		r.User.Links = UnsplashUserLinks{
			Self:   StripTrackingID(r.User.Links.Self),
			HTML:   StripTrackingID(r.User.Links.HTML),
			Photos: StripTrackingID(r.User.Links.Photos),
		}

		return &r
	},
}

// BestURL returns the highest-resolution URL worth showing for a descriptor,
// or "" when the payload exposes none.
func BestURL(d *PhotoDescriptor) string {
	if d == nil || d.Raw == nil {
		return ""
	}

	return RecordURL(d.Raw)
}

// RecordURL applies the best-URL policy to a payload.
func RecordURL(p RecordPayload) string {
	policy, ok := bestURLPolicies[p.Provider()]
	if !ok {
		return ""
	}

	return policy(p)
}

// ThumbnailURL returns the smallest preview for a catalog record.
func ThumbnailURL(r CatalogRecord) string {
	policy, ok := thumbnailPolicies[r.Provider]
	if !ok || r.Payload == nil {
		return ""
	}

	return policy(r.Payload)
}

// DownloadCandidates returns the URLs to try, in order, when saving a record.
func DownloadCandidates(r CatalogRecord) []string {
	policy, ok := downloadPolicies[r.Provider]
	if !ok || r.Payload == nil {
		return nil
	}

	return policy(r.Payload)
}

// FileExtension picks the file extension for a downloaded record.
func FileExtension(r CatalogRecord, rawURL string) string {
	switch p := r.Payload.(type) {
	case *PexelsRecord:
		if p.Extension != "" {
			return p.Extension
		}
	case *UnsplashRecord:
		if u, err := url.Parse(rawURL); err == nil {
			if fm := u.Query().Get("fm"); fm != "" {
				return fm
			}
		}

		return "jpg"
	}

	return URLExtension(rawURL, "jpg")
}

// URLExtension returns the extension of the URL path without the dot.
func URLExtension(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}

	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	if ext == "" {
		return fallback
	}

	return strings.ToLower(ext)
}

// StripTrackingID removes Unsplash's ixid tracking parameter and everything after it.
func StripTrackingID(rawURL string) string {
	if before, _, found := strings.Cut(rawURL, "?ixid"); found {
		return before
	}
	before, _, _ := strings.Cut(rawURL, "&ixid")

	return before
}

func pexelsVariants(r *PexelsRecord) []string {
	return []string{r.Original, r.Large2x, r.Large, r.Medium, r.Small, r.Portrait, r.Landscape, r.Tiny}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}

	return out
}
