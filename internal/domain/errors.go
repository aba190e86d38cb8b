package domain

import "errors"

var (
	// ErrIdentityResolution means a source string is neither a known storm identity nor an existing path.
	ErrIdentityResolution = errors.New("identity resolution")

	// ErrConfiguration means a record type or file deck is not allowed or not implemented.
	ErrConfiguration = errors.New("configuration")

	// ErrDateRange means a filter date is outside the track bounds or the window is empty.
	ErrDateRange = errors.New("date range")

	// ErrInvalidIsotach means a wind swath was requested for an unsupported threshold.
	ErrInvalidIsotach = errors.New("invalid isotach")

	// ErrRetrieval means the record provider failed to supply a track.
	ErrRetrieval = errors.New("retrieval")
)
