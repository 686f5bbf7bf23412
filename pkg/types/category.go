package types

import "fmt"

// Category is one of the four canonical buckets a folder or file can be
// routed into.
type Category string

const (
	CategoryStudy    Category = "study"
	CategoryPractice Category = "practice"
	CategorySupport  Category = "support"
	CategorySkip     Category = "skip"
)

// Categories lists the canonical buckets in display order.
var Categories = []Category{CategoryStudy, CategoryPractice, CategorySupport, CategorySkip}

// ParseCategory converts a raw string into a Category. Any value outside
// the four-bucket set is a protocol violation by the oracle and returns
// ErrInvalidCategory.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryStudy, CategoryPractice, CategorySupport, CategorySkip:
		return Category(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Valid reports whether the category is one of the four canonical values.
func (c Category) Valid() bool {
	switch c {
	case CategoryStudy, CategoryPractice, CategorySupport, CategorySkip:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
