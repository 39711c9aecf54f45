package domain

import (
	"encoding/json"
	"fmt"
)

// PhotoDescriptor is the normalized view of one provider search result.
// Descriptors are built fresh on every search and never mutated.
type PhotoDescriptor struct {
	ID         string
	Provider   ProviderTag
	PreviewURL string
	FullResURL string
	Raw        RecordPayload
}

// NewPhotoDescriptor builds a descriptor around a provider payload.
func NewPhotoDescriptor(raw RecordPayload, previewURL, fullResURL string) *PhotoDescriptor {
	return &PhotoDescriptor{
		ID:         raw.RecordID(),
		Provider:   raw.Provider(),
		PreviewURL: previewURL,
		FullResURL: fullResURL,
		Raw:        raw,
	}
}

// ToCatalogRecord converts an accepted descriptor into a catalog record,
// applying the provider's serialization cleanup.
func ToCatalogRecord(d *PhotoDescriptor) CatalogRecord {
	payload := d.Raw
	if sanitize, ok := recordSanitizers[d.Provider]; ok {
		payload = sanitize(payload)
	}

	return NewCatalogRecord(payload)
}

type photoDescriptorJSON struct {
	ID         string          `json:"id"`
	Provider   ProviderTag     `json:"provider"`
	PreviewURL string          `json:"previewUrl"`
	FullResURL string          `json:"fullResUrl"`
	Raw        json.RawMessage `json:"raw"`
}

// MarshalJSON encodes the descriptor with its raw payload.
func (d *PhotoDescriptor) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(NewCatalogRecord(d.Raw))
	if err != nil {
		return nil, err
	}

	return json.Marshal(photoDescriptorJSON{
		ID:         d.ID,
		Provider:   d.Provider,
		PreviewURL: d.PreviewURL,
		FullResURL: d.FullResURL,
		Raw:        raw,
	})
}

// UnmarshalJSON decodes a descriptor written by MarshalJSON.
func (d *PhotoDescriptor) UnmarshalJSON(data []byte) error {
	var v photoDescriptorJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	rec, err := DecodeRecord(v.Raw)
	if err != nil {
		return err
	}
	if rec.Provider != v.Provider {
		return fmt.Errorf("%w: descriptor provider %s does not match payload %s", ErrInvalidRecord, v.Provider, rec.Provider)
	}

	*d = PhotoDescriptor{
		ID:         v.ID,
		Provider:   v.Provider,
		PreviewURL: v.PreviewURL,
		FullResURL: v.FullResURL,
		Raw:        rec.Payload,
	}

	return nil
}
