package types

import "errors"

// Domain errors for the shared data model
var (
	// ErrInvalidCategory is returned when a category string is outside the
	// four canonical buckets.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrInvalidConfidence is returned when a confidence score falls
	// outside [0, 1].
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
	// ErrDuplicateMapping is returned when two mappings are produced for
	// the same source path. The traversal guarantees single-visit, so a
	// duplicate indicates an internal defect rather than bad input.
	ErrDuplicateMapping = errors.New("duplicate mapping for source path")
)
