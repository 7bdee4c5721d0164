package application

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"stylebook/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts field names to space-separated words
// for more readable error messages (e.g., "profileID" -> "profile ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"profileID":    "profile ID",
		"entryID":      "entry ID",
		"templateID":   "template ID",
		"templatesURL": "templates URL",
		"symbologyURL": "symbology URL",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ParseProfileID parses a profile UUID, returning a ValidationError on failure
func ParseProfileID(fieldName, s string) (uuid.UUID, error) {
	if err := ValidateRequired(fieldName, s); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("invalid %s: %s", formatFieldName(fieldName), s),
		}
	}
	return id, nil
}

// ValidateKind checks a catalog kind name
func ValidateKind(s string) (domain.CatalogKind, error) {
	kind, err := domain.ParseCatalogKind(s)
	if err != nil {
		return "", &ValidationError{Field: "kind", Message: err.Error()}
	}
	return kind, nil
}

// ValidateURL checks that a catalog URL is empty or looks usable
func ValidateURL(fieldName, s string) error {
	if s == "" {
		return nil
	}
	if !strings.Contains(s, "://") && !strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "~") {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be a URL or an absolute path, got: %s", formatFieldName(fieldName), s),
		}
	}
	return nil
}
