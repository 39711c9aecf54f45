// Package domain contains the core review entities, policies and ports.
// This package has no external dependencies (only stdlib).
package domain

import (
	"fmt"
	"strings"
)

// ProviderTag identifies a stock-photo provider.
type ProviderTag string

const (
	ProviderPexels   ProviderTag = "pexels"
	ProviderPixabay  ProviderTag = "pixabay"
	ProviderUnsplash ProviderTag = "unsplash"
	ProviderFlickr   ProviderTag = "flickr"
)

// AllProviders lists every supported provider in display order.
var AllProviders = []ProviderTag{
	ProviderPexels,
	ProviderPixabay,
	ProviderUnsplash,
	ProviderFlickr,
}

// Valid reports whether the tag names a supported provider.
func (p ProviderTag) Valid() bool {
	for _, known := range AllProviders {
		if p == known {
			return true
		}
	}

	return false
}

// String implements fmt.Stringer.
func (p ProviderTag) String() string {
	return string(p)
}

// ParseProviderTag converts user input into a ProviderTag.
func ParseProviderTag(s string) (ProviderTag, error) {
	tag := ProviderTag(strings.ToLower(strings.TrimSpace(s)))
	if !tag.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}

	return tag, nil
}
