// Package defaults holds the profiles shipped with stylebook
package defaults

import (
	_ "embed"
	"encoding/json"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/domain"
)

//go:embed profiles.json
var profilesJSON []byte

type document struct {
	Profiles []record `json:"profiles"`
}

type record struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Path         string          `json:"path"`
	TemplatesURL string          `json:"templates_url"`
	SymbologyURL string          `json:"symbology_url"`
	Selected     bool            `json:"selected"`
	Templates    json.RawMessage `json:"templates"`
	Symbology    json.RawMessage `json:"symbology"`
}

// Profiles returns the built-in seed profiles
func Profiles() ([]domain.SeedProfile, error) {
	return Parse(profilesJSON)
}

// Parse decodes a profiles document. Embedded catalogs use the same entry
// format as remote catalog documents.
func Parse(data []byte) ([]domain.SeedProfile, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Errorf("parsing default profiles: %w", err)
	}

	seeds := make([]domain.SeedProfile, 0, len(doc.Profiles))
	for _, r := range doc.Profiles {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, errors.Errorf("default profile %s: invalid id: %w", r.Name, err)
		}

		p := &domain.Profile{
			ID:           id,
			Name:         r.Name,
			Title:        r.Title,
			Description:  r.Description,
			Path:         r.Path,
			TemplatesURL: r.TemplatesURL,
			SymbologyURL: r.SymbologyURL,
		}

		for kind, raw := range map[domain.CatalogKind]json.RawMessage{
			domain.KindTemplates: r.Templates,
			domain.KindSymbology: r.Symbology,
		} {
			entries, err := parseEmbedded(kind, raw)
			if err != nil {
				return nil, errors.Errorf("default profile %s: %w", r.Name, err)
			}
			p.SetEntries(kind, entries)
		}

		seeds = append(seeds, domain.SeedProfile{Profile: p, Selected: r.Selected})
	}
	return seeds, nil
}

func parseEmbedded(kind domain.CatalogKind, raw json.RawMessage) ([]domain.CatalogEntry, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	wrapped, err := json.Marshal(map[string]json.RawMessage{string(kind): raw})
	if err != nil {
		return nil, err
	}
	return domain.ParseCatalog(wrapped, kind)
}
