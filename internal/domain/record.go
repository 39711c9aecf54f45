package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RecordPayload is the provider-specific body of a catalog record.
// Implementations: PexelsRecord, PixabayRecord, UnsplashRecord, FlickrRecord.
type RecordPayload interface {
	// Provider returns the discriminator stored as apiType.
	Provider() ProviderTag

	// RecordID returns the provider-scoped photo id as a string.
	RecordID() string
}

// RecordKey is the catalog uniqueness key.
type RecordKey struct {
	ID       string
	Provider ProviderTag
}

// CatalogRecord is a persisted snapshot of an accepted photo.
type CatalogRecord struct {
	ID       string
	Provider ProviderTag
	Payload  RecordPayload
}

// NewCatalogRecord wraps a payload and stamps its apiType discriminator.
func NewCatalogRecord(payload RecordPayload) CatalogRecord {
	switch p := payload.(type) {
	case *PexelsRecord:
		p.APIType = ProviderPexels
	case *PixabayRecord:
		p.APIType = ProviderPixabay
	case *UnsplashRecord:
		p.APIType = ProviderUnsplash
	case *FlickrRecord:
		p.APIType = ProviderFlickr
	}

	return CatalogRecord{
		ID:       payload.RecordID(),
		Provider: payload.Provider(),
		Payload:  payload,
	}
}

// Key returns the (id, provider) compound key.
func (r CatalogRecord) Key() RecordKey {
	return RecordKey{ID: r.ID, Provider: r.Provider}
}

// MarshalJSON writes the provider payload as-is.
func (r CatalogRecord) MarshalJSON() ([]byte, error) {
	if r.Payload == nil {
		return nil, fmt.Errorf("%w: empty payload for %s/%s", ErrInvalidRecord, r.Provider, r.ID)
	}

	return json.Marshal(r.Payload)
}

// UnmarshalJSON decodes a payload selected by its apiType field.
func (r *CatalogRecord) UnmarshalJSON(data []byte) error {
	rec, err := DecodeRecord(data)
	if err != nil {
		return err
	}
	*r = rec

	return nil
}

// DecodeRecord decodes one catalog entry. Entries without apiType were
// written by the pexels-only tool and are read as pexels records.
func DecodeRecord(data []byte) (CatalogRecord, error) {
	var head struct {
		APIType string `json:"apiType"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return CatalogRecord{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	tag := ProviderTag(head.APIType)
	if tag == "" {
		tag = ProviderPexels
	}

	var payload RecordPayload
	switch tag {
	case ProviderPexels:
		payload = &PexelsRecord{}
	case ProviderPixabay:
		payload = &PixabayRecord{}
	case ProviderUnsplash:
		payload = &UnsplashRecord{}
	case ProviderFlickr:
		payload = &FlickrRecord{}
	default:
		return CatalogRecord{}, fmt.Errorf("%w: %w %q", ErrInvalidRecord, ErrUnknownProvider, head.APIType)
	}

	if err := json.Unmarshal(data, payload); err != nil {
		return CatalogRecord{}, fmt.Errorf("%w: decoding %s record: %v", ErrInvalidRecord, tag, err)
	}

	id := payload.RecordID()
	if id == "" || id == "0" {
		return CatalogRecord{}, fmt.Errorf("%w: %s record without id", ErrInvalidRecord, tag)
	}

	return NewCatalogRecord(payload), nil
}

// PexelsRecord mirrors a Pexels photo with its resolution variants flattened.
type PexelsRecord struct {
	APIType      ProviderTag `json:"apiType"`
	ID           int64       `json:"id" validate:"required,gt=0"`
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	Photographer string      `json:"photographer"`
	URL          string      `json:"url"`
	Description  string      `json:"description"`
	Original     string      `json:"original" validate:"required"`
	Compressed   string      `json:"compressed"`
	Large2x      string      `json:"large2x"`
	Large        string      `json:"large"`
	Medium       string      `json:"medium"`
	Small        string      `json:"small"`
	Portrait     string      `json:"portrait"`
	Landscape    string      `json:"landscape"`
	Tiny         string      `json:"tiny"`
	Extension    string      `json:"extension"`
}

func (r *PexelsRecord) Provider() ProviderTag { return ProviderPexels }
func (r *PexelsRecord) RecordID() string      { return strconv.FormatInt(r.ID, 10) }

// PixabayRecord is a Pixabay search hit passed through unchanged.
type PixabayRecord struct {
	APIType         ProviderTag `json:"apiType"`
	ID              int64       `json:"id" validate:"required,gt=0"`
	PageURL         string      `json:"pageURL"`
	Type            string      `json:"type"`
	Tags            string      `json:"tags"`
	PreviewURL      string      `json:"previewURL"`
	PreviewWidth    int         `json:"previewWidth"`
	PreviewHeight   int         `json:"previewHeight"`
	WebformatURL    string      `json:"webformatURL"`
	WebformatWidth  int         `json:"webformatWidth"`
	WebformatHeight int         `json:"webformatHeight"`
	LargeImageURL   string      `json:"largeImageURL" validate:"required"`
	ImageWidth      int         `json:"imageWidth"`
	ImageHeight     int         `json:"imageHeight"`
	ImageSize       int64       `json:"imageSize"`
	Views           int         `json:"views"`
	Downloads       int         `json:"downloads"`
	Collections     int         `json:"collections"`
	Likes           int         `json:"likes"`
	Comments        int         `json:"comments"`
	UserID          int64       `json:"user_id"`
	User            string      `json:"user"`
	UserImageURL    string      `json:"userImageURL"`
}

func (r *PixabayRecord) Provider() ProviderTag { return ProviderPixabay }
func (r *PixabayRecord) RecordID() string      { return strconv.FormatInt(r.ID, 10) }

// TagList splits the comma separated tag string.
func (r *PixabayRecord) TagList() []string {
	var tags []string
	for _, tag := range strings.Split(r.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

// UnsplashURLs holds Unsplash resolution variants.
type UnsplashURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full" validate:"required"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// UnsplashLinks holds Unsplash photo links.
type UnsplashLinks struct {
	Self     string `json:"self"`
	HTML     string `json:"html"`
	Download string `json:"download"`
}

// UnsplashProfileImage holds avatar variants.
type UnsplashProfileImage struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// UnsplashUserLinks holds photographer links.
type UnsplashUserLinks struct {
	Self   string `json:"self"`
	HTML   string `json:"html"`
	Photos string `json:"photos"`
}

// UnsplashUser describes the photographer.
type UnsplashUser struct {
	ID                string               `json:"id"`
	Username          string               `json:"username"`
	Name              string               `json:"name"`
	FirstName         string               `json:"first_name"`
	LastName          string               `json:"last_name"`
	InstagramUsername string               `json:"instagram_username"`
	TwitterUsername   string               `json:"twitter_username"`
	PortfolioURL      string               `json:"portfolio_url"`
	ProfileImage      UnsplashProfileImage `json:"profile_image"`
	Links             UnsplashUserLinks    `json:"links"`
}

// UnsplashRecord mirrors an Unsplash search result.
type UnsplashRecord struct {
	APIType                ProviderTag       `json:"apiType"`
	ID                     string            `json:"id" validate:"required"`
	CreatedAt              string            `json:"created_at"`
	Width                  int               `json:"width"`
	Height                 int               `json:"height"`
	Color                  string            `json:"color"`
	BlurHash               string            `json:"blur_hash"`
	Description            string            `json:"description"`
	AltDescription         string            `json:"alt_description"`
	URLs                   UnsplashURLs      `json:"urls"`
	Links                  UnsplashLinks     `json:"links"`
	User                   UnsplashUser      `json:"user"`
	CurrentUserCollections []json.RawMessage `json:"current_user_collections"`
}

func (r *UnsplashRecord) Provider() ProviderTag { return ProviderUnsplash }
func (r *UnsplashRecord) RecordID() string      { return r.ID }

// FlickrRecord is a photo scraped from the Flickr search page.
type FlickrRecord struct {
	APIType    ProviderTag `json:"apiType"`
	ID         string      `json:"id" validate:"required"`
	URL        string      `json:"url"`
	HighResURL string      `json:"highResUrl" validate:"required"`
}

func (r *FlickrRecord) Provider() ProviderTag { return ProviderFlickr }
func (r *FlickrRecord) RecordID() string      { return r.ID }
