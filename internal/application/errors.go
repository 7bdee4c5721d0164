package application

import (
	"fmt"

	"gitlab.com/tozd/go/errors"

	"stylebook/internal/domain"
)

// Sentinel errors for common conditions
var (
	ErrParse            = domain.ErrParse
	ErrProfileNotFound  = errors.Base("profile not found")
	ErrInvalidProfile   = errors.Base("invalid profile")
	ErrNotFound         = errors.Base("not found")
	ErrPermission       = errors.Base("permission denied")
	ErrNoDownloadFolder = errors.Base("download folder is not set")
	ErrNoCatalogURL     = errors.Base("profile has no catalog URL")
)

// ParseError is returned when a fetched catalog cannot be decoded
type ParseError = domain.ParseError

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProfileError ties a lookup failure to the profile reference that caused it
type ProfileError struct {
	Ref    string
	Reason error
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Ref)
}

func (e *ProfileError) Unwrap() error {
	return e.Reason
}
