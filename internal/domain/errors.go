package domain

import "errors"

var (
	// ErrEmptyQuery is returned when a search query has no text.
	ErrEmptyQuery = errors.New("search query must not be empty")

	// ErrInvalidResultCap is returned when max_results falls outside [1,100].
	ErrInvalidResultCap = errors.New("max_results must be between 1 and 100")

	// ErrNotConfigured is returned by capability ports whose credential or
	// backend is missing.
	ErrNotConfigured = errors.New("capability not configured")

	// ErrMissingURL indicates an opportunity without a URL reached a layer
	// that requires one. The aggregator discards such results before
	// enrichment, so seeing this is an invariant violation.
	ErrMissingURL = errors.New("opportunity has no URL")

	// ErrExtractionFailed is returned when the language model's structured
	// output cannot be parsed against the expected schema.
	ErrExtractionFailed = errors.New("structured extraction failed")

	// ErrOpportunityNotFound is returned for lookups of unknown ids.
	ErrOpportunityNotFound = errors.New("opportunity not found")
)
