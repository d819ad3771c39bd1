package domain

import "errors"

var (
	// ErrUnsupportedPlatform rejects identifiers outside the closed
	// platform set, before any network activity.
	ErrUnsupportedPlatform = errors.New("platform not supported")

	// ErrMissingProductID rejects extraction requests without a product
	// identifier, before any network activity.
	ErrMissingProductID = errors.New("product id required")

	// ErrUpstreamUnavailable means every acquisition strategy in a chain
	// produced zero records. It is a sentinel, not a fault: the caller
	// turns it into a structured service_unavailable envelope.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidFilter covers non-numeric or otherwise malformed filter
	// values supplied by the caller.
	ErrInvalidFilter = errors.New("invalid filter value")

	ErrNotFound = errors.New("not found")
)
