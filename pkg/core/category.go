package core

import "fmt"

// RateCategory selects the request-rate bucket a call is counted against.
type RateCategory string

// Rate categories. Each one has its own per-minute ceiling.
const (
	// CategoryDefault covers every call that does not name another category.
	CategoryDefault RateCategory = "default"
	// CategoryShift covers fixed and variable shift creation.
	CategoryShift RateCategory = "shift"
	// CategoryQuote covers quote requests.
	CategoryQuote RateCategory = "quote"
)

// Categories lists every rate category in a stable order.
func Categories() []RateCategory {
	return []RateCategory{CategoryShift, CategoryQuote, CategoryDefault}
}

// String returns the category name, mapping the empty category to "default".
func (c RateCategory) String() string {
	if c == "" {
		return string(CategoryDefault)
	}
	return string(c)
}

// Normalize maps the empty category to CategoryDefault.
func (c RateCategory) Normalize() RateCategory {
	if c == "" {
		return CategoryDefault
	}
	return c
}

// ParseRateCategory parses a category name. The empty string yields CategoryDefault.
func ParseRateCategory(s string) (RateCategory, error) {
	switch RateCategory(s) {
	case "", CategoryDefault:
		return CategoryDefault, nil
	case CategoryShift:
		return CategoryShift, nil
	case CategoryQuote:
		return CategoryQuote, nil
	}
	return "", fmt.Errorf("unknown rate category %q", s)
}
