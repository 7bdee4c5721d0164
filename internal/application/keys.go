package application

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"stylebook/internal/domain"
	"stylebook/internal/ports"
)

// Settings layout, relative to the store root
const (
	baseGroup = "stylebook"

	profilesGroup   = baseGroup + "/profiles"
	currentKey      = "current_profile"
	defaultsSetKey  = "default_profiles_set"
	downloadKey     = "download_folder"
	propertiesGroup = "properties"
	customGroup     = "custom_properties"
)

// Profile scalar keys
const (
	keyName         = "name"
	keyPath         = "path"
	keyTitle        = "title"
	keyDescription  = "description"
	keyTemplatesURL = "templates_url"
	keySymbologyURL = "symbology_url"
	keyCreatedDate  = "created_date"
)

// segment escapes an id so it always addresses a single path segment
func segment(id string) string {
	return url.PathEscape(id)
}

func baseSettings(root ports.SettingsGroup) ports.SettingsGroup {
	return root.Group(baseGroup)
}

func profilesSettings(root ports.SettingsGroup) ports.SettingsGroup {
	return root.Group(profilesGroup)
}

func profileSettings(root ports.SettingsGroup, id uuid.UUID) ports.SettingsGroup {
	return profilesSettings(root).Group(id.String())
}

func catalogSettings(root ports.SettingsGroup, id uuid.UUID, kind domain.CatalogKind) ports.SettingsGroup {
	return profileSettings(root, id).Group(string(kind))
}

func customSettings(root ports.SettingsGroup, id uuid.UUID, templateID string) ports.SettingsGroup {
	return profileSettings(root, id).Group(customSegment(templateID)).Group(customGroup)
}

// customSegment is segment, except that a template id naming a catalog
// kind gets its first byte percent-encoded. Custom property groups sit
// beside the catalog groups and must never land inside one.
// segment never encodes an ASCII letter, so the result stays unique.
func customSegment(templateID string) string {
	s := segment(templateID)
	if domain.CatalogKind(s).Valid() {
		return fmt.Sprintf("%%%02X", s[0]) + s[1:]
	}
	return s
}

// setOptional writes v under key, removing the key when v is absent
func setOptional(g ports.SettingsGroup, key string, v domain.Optional[string]) error {
	if s, ok := v.Get(); ok {
		return g.SetValue(key, s)
	}
	return g.Remove(key)
}

func getOptional(g ports.SettingsGroup, key string) (domain.Optional[string], error) {
	v, ok, err := g.Value(key)
	if err != nil {
		return domain.None[string](), err
	}
	return domain.OptionalString(v, ok), nil
}

// getString reads a scalar with "" as the default
func getString(g ports.SettingsGroup, key string) (string, error) {
	v, _, err := g.Value(key)
	return v, err
}
