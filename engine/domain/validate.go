package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Injection patterns — SQL/NoSQL fragments that should never appear in a
// user query.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(DROP|DELETE|INSERT|UPDATE|ALTER|EXEC|UNION)\b.*\b(TABLE|FROM|INTO|SELECT|SET)\b`),
	regexp.MustCompile(`(?i)(--|;)\s*(DROP|DELETE|SELECT)`),
	regexp.MustCompile(`(?i)\$\{.*\}`),            // template injection
	regexp.MustCompile(`(?i)\{\s*"\$[a-z]+"\s*:`), // NoSQL operator injection
}

const maxQueryLength = 500

// ValidateQuery validates a search query string. An empty or missing query
// is rejected before any provider call is attempted.
func ValidateQuery(text string) error {
	trimmed := strings.TrimSpace(text)

	if trimmed == "" {
		return NewValidationError("query", text, ErrEmptyQuery)
	}
	if utf8.RuneCountInString(trimmed) > maxQueryLength {
		return NewValidationError("query", trimmed[:40]+"…", ErrQueryTooLong)
	}
	for _, pat := range injectionPatterns {
		if pat.MatchString(trimmed) {
			return NewValidationError("query", trimmed, ErrQueryInjection)
		}
	}
	return nil
}

// ValidateListing validates a catalog record at load and index time.
func ValidateListing(l Listing) error {
	if l.ID <= 0 {
		return NewValidationError("id", fmt.Sprintf("%d", l.ID), ErrInvalidListing)
	}
	if strings.TrimSpace(l.Title) == "" {
		return NewValidationError("title", l.Title, ErrInvalidListing)
	}
	if strings.TrimSpace(l.Type) == "" {
		return NewValidationError("type", l.Type, ErrInvalidListing)
	}
	if l.Price < 0 {
		return NewValidationError("price", fmt.Sprintf("%g", l.Price), ErrInvalidListing)
	}
	if l.Bedrooms < 0 || l.Bathrooms < 0 {
		return NewValidationError("rooms", fmt.Sprintf("%d/%d", l.Bedrooms, l.Bathrooms), ErrInvalidListing)
	}
	return nil
}
