package types

import "fmt"

// Decision is the classification oracle's answer for a folder or file.
// FolderDescription is only populated by folder calls.
type Decision struct {
	Category          Category
	Confidence        float64
	IsMixed           bool
	Reason            string
	FolderDescription string
}

// Validate checks the oracle's output against the protocol: the category
// must be one of the four canonical values and the confidence must be
// in [0, 1]. Violations are fatal to a traversal.
func (d Decision) Validate() error {
	if !d.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, string(d.Category))
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidConfidence, d.Confidence)
	}
	return nil
}

// IsConfident reports whether the decision clears the threshold and is
// not flagged as mixed content.
func (d Decision) IsConfident(threshold float64) bool {
	return d.Confidence >= threshold && !d.IsMixed
}
