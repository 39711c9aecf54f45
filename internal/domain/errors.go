package domain

import "errors"

var (
	// ErrUnknownProvider is returned for provider tags outside AllProviders.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnknownAction is returned for decisions outside the review actions.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInvalidRecord marks a catalog entry that failed decoding or validation.
	ErrInvalidRecord = errors.New("invalid catalog record")

	// ErrRecordNotFound is returned when a catalog record does not exist.
	ErrRecordNotFound = errors.New("catalog record not found")

	// ErrPersist wraps any failure to durably store the catalog.
	ErrPersist = errors.New("persisting catalog")
)
