package application

import "stylebook/internal/domain"

// Re-export domain types for use by adapters
type (
	Profile          = domain.Profile
	CatalogEntry     = domain.CatalogEntry
	CatalogKind      = domain.CatalogKind
	CustomProperties = domain.CustomProperties
)

const (
	KindTemplates = domain.KindTemplates
	KindSymbology = domain.KindSymbology
)
