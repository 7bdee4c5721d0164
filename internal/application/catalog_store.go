package application

import (
	"time"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/domain"
	"stylebook/internal/ports"
)

// Entry keys
const (
	keyID           = "id"
	keyLicense      = "license"
	keyExtension    = "extension"
	keyDirectory    = "directory"
	keyTemplateType = "template_type"
	keyThumbnail    = "thumbnail"
)

func writeEntry(g ports.SettingsGroup, e domain.CatalogEntry) error {
	for _, f := range []domain.Field{
		{Key: keyID, Value: e.ID},
		{Key: keyName, Value: e.Name},
		{Key: keyTitle, Value: e.Title},
		{Key: keyDescription, Value: e.Description},
		{Key: keyLicense, Value: e.License},
	} {
		if err := setOptional(g, f.Key, f.Value); err != nil {
			return err
		}
	}

	props := g.Group(propertiesGroup)
	for _, f := range []domain.Field{
		{Key: keyExtension, Value: e.Properties.Extension},
		{Key: keyDirectory, Value: e.Properties.Directory},
		{Key: keyTemplateType, Value: e.Properties.TemplateType},
		{Key: keyThumbnail, Value: e.Properties.Thumbnail},
	} {
		if err := setOptional(props, f.Key, f.Value); err != nil {
			return err
		}
	}
	return nil
}

func readEntry(g ports.SettingsGroup) (domain.CatalogEntry, error) {
	var (
		e   domain.CatalogEntry
		err error
	)
	read := func(g ports.SettingsGroup, key string, dst *domain.Optional[string]) {
		if err != nil {
			return
		}
		*dst, err = getOptional(g, key)
	}

	read(g, keyID, &e.ID)
	read(g, keyName, &e.Name)
	read(g, keyTitle, &e.Title)
	read(g, keyDescription, &e.Description)
	read(g, keyLicense, &e.License)

	props := g.Group(propertiesGroup)
	read(props, keyExtension, &e.Properties.Extension)
	read(props, keyDirectory, &e.Properties.Directory)
	read(props, keyTemplateType, &e.Properties.TemplateType)
	read(props, keyThumbnail, &e.Properties.Thumbnail)

	return e, err
}

// writeEntries stores each entry under its id. Entries without an id
// cannot be addressed and are returned as skipped.
func writeEntries(cat ports.SettingsGroup, entries []domain.CatalogEntry) (written int, skipped int, err error) {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		id, ok := e.ID.Get()
		if !ok || id == "" {
			skipped++
			continue
		}
		if err := writeEntry(cat.Group(segment(id)), e); err != nil {
			return written, skipped, errors.Errorf("failed to write entry %s: %w", id, err)
		}
		if !seen[id] {
			seen[id] = true
			written++
		}
	}
	return written, skipped, nil
}

func listEntries(root ports.SettingsGroup, id uuid.UUID, kind domain.CatalogKind) ([]domain.CatalogEntry, error) {
	cat := catalogSettings(root, id, kind)
	names, err := cat.ChildGroups()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.CatalogEntry, 0, len(names))
	for _, name := range names {
		e, err := readEntry(cat.Group(name))
		if err != nil {
			return nil, errors.Errorf("failed to read %s entry %s: %w", kind, name, err)
		}
		// groups without an id were not written by writeEntries
		if !e.ID.IsSet() {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func profileExists(root ports.SettingsGroup, id uuid.UUID) (bool, error) {
	_, ok, err := profileSettings(root, id).Value(keyName)
	return ok, err
}

func writeProfileScalars(g ports.SettingsGroup, p *domain.Profile) error {
	for _, kv := range [][2]string{
		{keyName, p.Name},
		{keyPath, p.Path},
		{keyTitle, p.Title},
		{keyDescription, p.Description},
		{keyTemplatesURL, p.TemplatesURL},
		{keySymbologyURL, p.SymbologyURL},
		{keyCreatedDate, p.CreatedAt.UTC().Format(time.RFC3339)},
	} {
		if err := g.SetValue(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// readProfile loads a profile with its catalogs. ok is false when no
// profile is stored under id.
func readProfile(root ports.SettingsGroup, id uuid.UUID) (p *domain.Profile, ok bool, err error) {
	g := profileSettings(root, id)
	name, ok, err := g.Value(keyName)
	if err != nil || !ok {
		return nil, ok, err
	}

	p = &domain.Profile{ID: id, Name: name}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{keyPath, &p.Path},
		{keyTitle, &p.Title},
		{keyDescription, &p.Description},
		{keyTemplatesURL, &p.TemplatesURL},
		{keySymbologyURL, &p.SymbologyURL},
	} {
		if *f.dst, err = getString(g, f.key); err != nil {
			return nil, false, err
		}
	}

	created, err := getString(g, keyCreatedDate)
	if err != nil {
		return nil, false, err
	}
	// An unparsable date leaves the zero time, which sorts oldest.
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)

	for _, kind := range domain.CatalogKinds {
		entries, err := listEntries(root, id, kind)
		if err != nil {
			return nil, false, err
		}
		p.SetEntries(kind, entries)
	}

	return p, true, nil
}

// listProfileIDs returns every stored profile id in store order.
// Groups that are not UUIDs are ignored.
func listProfileIDs(root ports.SettingsGroup) ([]uuid.UUID, error) {
	names, err := profilesSettings(root).ChildGroups()
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		id, err := uuid.Parse(name)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
