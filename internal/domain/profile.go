package domain

import (
	"time"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"
)

// CatalogKind distinguishes the two catalogs a profile carries
type CatalogKind string

const (
	KindTemplates CatalogKind = "templates"
	KindSymbology CatalogKind = "symbology"
)

// CatalogKinds lists every kind in display order
var CatalogKinds = []CatalogKind{KindTemplates, KindSymbology}

func (k CatalogKind) String() string {
	return string(k)
}

// Valid reports whether k is a known kind
func (k CatalogKind) Valid() bool {
	return k == KindTemplates || k == KindSymbology
}

// ParseCatalogKind accepts the plural key and a few singular spellings
func ParseCatalogKind(s string) (CatalogKind, error) {
	switch s {
	case "templates", "template":
		return KindTemplates, nil
	case "symbology", "symbologies", "style", "styles":
		return KindSymbology, nil
	default:
		return "", errors.Errorf("unknown catalog kind: %q (expected templates or symbology)", s)
	}
}

// Properties describes where a catalog asset lives and what it is
type Properties struct {
	Extension    Optional[string] `json:"extension"`
	Directory    Optional[string] `json:"directory"`
	TemplateType Optional[string] `json:"type"`
	Thumbnail    Optional[string] `json:"thumbnail"`
}

// CatalogEntry is a template or symbology record from a remote catalog.
// Both kinds share the same shape; the kind is carried by the caller.
type CatalogEntry struct {
	ID          Optional[string] `json:"id"`
	Name        Optional[string] `json:"name"`
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	License     Optional[string] `json:"license"`
	Properties  Properties       `json:"properties"`
}

// DisplayTitle returns the title, falling back to name and then id
func (e CatalogEntry) DisplayTitle() string {
	if t, ok := e.Title.Get(); ok && t != "" {
		return t
	}
	if n, ok := e.Name.Get(); ok && n != "" {
		return n
	}
	return e.ID.Or("")
}

// Profile is a named source of templates and symbology.
// Templates and Symbology are views read from the settings store.
type Profile struct {
	ID           uuid.UUID
	Name         string
	Title        string
	Description  string
	Path         string // local directory or remote base URL
	TemplatesURL string
	SymbologyURL string
	CreatedAt    time.Time

	Templates []CatalogEntry
	Symbology []CatalogEntry
}

// NewProfile creates a profile with a fresh id and creation time
func NewProfile(name string) *Profile {
	return &Profile{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// CatalogURL returns the catalog URL for a kind
func (p *Profile) CatalogURL(kind CatalogKind) string {
	switch kind {
	case KindTemplates:
		return p.TemplatesURL
	case KindSymbology:
		return p.SymbologyURL
	default:
		return ""
	}
}

// Entries returns the materialized catalog for a kind
func (p *Profile) Entries(kind CatalogKind) []CatalogEntry {
	switch kind {
	case KindTemplates:
		return p.Templates
	case KindSymbology:
		return p.Symbology
	default:
		return nil
	}
}

// SetEntries replaces the materialized catalog for a kind
func (p *Profile) SetEntries(kind CatalogKind, entries []CatalogEntry) {
	switch kind {
	case KindTemplates:
		p.Templates = entries
	case KindSymbology:
		p.Symbology = entries
	}
}

// Matches reports whether s equals the profile name or title
func (p *Profile) Matches(s string) bool {
	return p.Name == s || (p.Title != "" && p.Title == s)
}

// CustomProperties annotates a template with layout text and logos
type CustomProperties struct {
	Heading    Optional[string] `json:"heading"`
	Subheading Optional[string] `json:"subheading"`
	Narrative  Optional[string] `json:"narrative"`
	Logo1      Optional[string] `json:"logo_1"`
	Logo2      Optional[string] `json:"logo_2"`
	Logo3      Optional[string] `json:"logo_3"`
}

// Fields returns the properties as store key/value pairs, in a fixed order
func (c CustomProperties) Fields() []Field {
	return []Field{
		{"heading", c.Heading},
		{"subheading", c.Subheading},
		{"narrative", c.Narrative},
		{"logo_1", c.Logo1},
		{"logo_2", c.Logo2},
		{"logo_3", c.Logo3},
	}
}

// Field is a named optional value
type Field struct {
	Key   string
	Value Optional[string]
}

// SeedProfile is a profile shipped with the application
type SeedProfile struct {
	Profile  *Profile
	Selected bool
}
