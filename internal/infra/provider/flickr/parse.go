package flickr

import (
	"io"
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"photo-curator-service/internal/domain"
)

// StaticHost marks image tags that point at Flickr photo storage.
const StaticHost = "staticflickr.com"

var sizeSuffix = regexp.MustCompile(`_[a-z]\.jpg`)

// HighResURL swaps the size suffix of a static Flickr URL for the large (_b) variant.
func HighResURL(src string) string {
	return sizeSuffix.ReplaceAllString(src, "_b.jpg")
}

// PhotoID returns the leading "_" segment of the URL's file name.
func PhotoID(rawURL string) string {
	id, _, _ := strings.Cut(path.Base(rawURL), "_")
	return id
}

// ParsePhotos extracts photo records from a search result page. Results are
// de-duplicated by high-resolution URL and capped at limit.
func ParsePhotos(r io.Reader, limit int) ([]*domain.FlickrRecord, error) {
	var (
		photos []*domain.FlickrRecord
		seen   = make(map[string]struct{})
	)

	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, err
			}

			return photos, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "img" {
				continue
			}

			src := attr(tok, "src")
			if src == "" || !strings.Contains(src, StaticHost) {
				continue
			}
			if strings.HasPrefix(src, "//") {
				src = "https:" + src
			}

			hiRes := HighResURL(src)
			if _, dup := seen[hiRes]; dup {
				continue
			}
			seen[hiRes] = struct{}{}

			photos = append(photos, &domain.FlickrRecord{
				APIType:    domain.ProviderFlickr,
				ID:         PhotoID(hiRes),
				URL:        src,
				HighResURL: hiRes,
			})
			if limit > 0 && len(photos) >= limit {
				return photos, nil
			}
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}
