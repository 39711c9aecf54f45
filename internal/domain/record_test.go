package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDecodeRecord_ByAPIType(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		provider ProviderTag
		id       string
	}{
		{
			name:     "pexels",
			data:     `{"id": 42, "original": "https://images.pexels.com/photos/42/a.jpeg", "apiType": "pexels"}`,
			provider: ProviderPexels,
			id:       "42",
		},
		{
			name:     "legacy pexels without apiType",
			data:     `{"id": 7, "original": "https://images.pexels.com/photos/7/a.jpeg"}`,
			provider: ProviderPexels,
			id:       "7",
		},
		{
			name:     "pixabay",
			data:     `{"id": 42, "largeImageURL": "https://pixabay.com/get/a.jpg", "tags": "cat, pet", "apiType": "pixabay"}`,
			provider: ProviderPixabay,
			id:       "42",
		},
		{
			name:     "unsplash",
			data:     `{"id": "abc", "urls": {"full": "https://images.unsplash.com/photo-1"}, "apiType": "unsplash"}`,
			provider: ProviderUnsplash,
			id:       "abc",
		},
		{
			name:     "flickr",
			data:     `{"id": "5312", "url": "https://live.staticflickr.com/1/5312_x_m.jpg", "highResUrl": "https://live.staticflickr.com/1/5312_x_b.jpg", "apiType": "flickr"}`,
			provider: ProviderFlickr,
			id:       "5312",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := DecodeRecord([]byte(tt.data))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Provider != tt.provider {
				t.Errorf("expected provider %q, got %q", tt.provider, rec.Provider)
			}
			if rec.ID != tt.id {
				t.Errorf("expected id %q, got %q", tt.id, rec.ID)
			}
			if rec.Key() != (RecordKey{ID: tt.id, Provider: tt.provider}) {
				t.Errorf("unexpected key %+v", rec.Key())
			}
		})
	}
}

func TestDecodeRecord_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"unknown apiType", `{"id": "1", "apiType": "shutterstock"}`},
		{"missing id", `{"original": "https://x/a.jpeg", "apiType": "pexels"}`},
		{"wrong id type", `{"id": {"nested": true}, "apiType": "pixabay"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord([]byte(tt.data))
			if !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}
}

func TestCatalogRecord_MarshalAddsAPIType(t *testing.T) {
	rec := NewCatalogRecord(&FlickrRecord{ID: "9", HighResURL: "https://live.staticflickr.com/9_b.jpg"})

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"apiType":"flickr"`) {
		t.Errorf("expected apiType discriminator in %s", data)
	}

	var back CatalogRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Key() != rec.Key() {
		t.Errorf("expected key %+v, got %+v", rec.Key(), back.Key())
	}
}

func TestPixabayRecord_TagList(t *testing.T) {
	r := &PixabayRecord{Tags: "cat, animal , , pet"}
	got := r.TagList()

	if len(got) != 3 || got[0] != "cat" || got[1] != "animal" || got[2] != "pet" {
		t.Errorf("unexpected tags %v", got)
	}
}

func TestPhotoDescriptor_JSON(t *testing.T) {
	d := NewPhotoDescriptor(&PexelsRecord{ID: 3, Original: "https://p/3.jpeg", Large2x: "https://p/3-2x.jpeg"},
		"https://p/3-m.jpeg", "https://p/3.jpeg")

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var back PhotoDescriptor
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.ID != "3" || back.Provider != ProviderPexels {
		t.Errorf("unexpected descriptor %+v", back)
	}
	if BestURL(&back) != "https://p/3-2x.jpeg" {
		t.Errorf("unexpected best url %q", BestURL(&back))
	}
}

func TestToCatalogRecord_StripsUnsplashTracking(t *testing.T) {
	raw := &UnsplashRecord{
		ID: "u1",
		URLs: UnsplashURLs{
			Full:  "https://images.unsplash.com/photo-1?ixid=abc&fm=jpg",
			Thumb: "https://images.unsplash.com/photo-1?w=200&ixid=abc",
		},
	}
	d := NewPhotoDescriptor(raw, raw.URLs.Thumb, raw.URLs.Full)

	rec := ToCatalogRecord(d)
	payload := rec.Payload.(*UnsplashRecord)

	if payload.URLs.Full != "https://images.unsplash.com/photo-1" {
		t.Errorf("unexpected full url %q", payload.URLs.Full)
	}
	if payload.URLs.Thumb != "https://images.unsplash.com/photo-1?w=200" {
		t.Errorf("unexpected thumb url %q", payload.URLs.Thumb)
	}
	if raw.URLs.Full == payload.URLs.Full {
		t.Error("descriptor payload must not be mutated")
	}
}

func TestCatalogSnapshot_CloneIsIndependent(t *testing.T) {
	s := CatalogSnapshot{"cats": {NewCatalogRecord(&FlickrRecord{ID: "1", HighResURL: "x"})}}
	c := s.Clone()
	c["cats"] = append(c["cats"], NewCatalogRecord(&FlickrRecord{ID: "2", HighResURL: "y"}))

	if len(s["cats"]) != 1 {
		t.Errorf("expected original to keep 1 record, got %d", len(s["cats"]))
	}
	if c.Total() != 2 {
		t.Errorf("expected clone total 2, got %d", c.Total())
	}
}
