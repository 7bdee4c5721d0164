package domain

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// unsafeFilenameChars are replaced with '_' in downloaded asset names
const unsafeFilenameChars = ` %:/,\[]<>*?`

// CleanFilename replaces characters that are invalid in file names on common
// operating systems with underscores
func CleanFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeFilenameChars, r) {
			return '_'
		}
		return r
	}, name)
}

// DisambiguateName appends "(n)" to name, where n is the number of
// colliding names. With no collisions the name is returned unchanged.
// Only the count is used; a name that already carries a suffix is not
// searched for a free slot.
func DisambiguateName(name string, collisions int) string {
	if collisions <= 0 {
		return name
	}
	return fmt.Sprintf("%s(%d)", name, collisions)
}

// AssetFileName returns "<name>.<extension>" for an entry, or an error when
// either part is missing
func AssetFileName(e CatalogEntry) (string, error) {
	name, ok := e.Name.Get()
	if !ok || name == "" {
		return "", errors.Errorf("entry %s has no name", e.ID.Or("<unknown>"))
	}
	ext, ok := e.Properties.Extension.Get()
	if !ok || ext == "" {
		return "", errors.Errorf("entry %s has no extension", e.ID.Or(name))
	}
	return name + "." + strings.TrimPrefix(ext, "."), nil
}

// AssetURL builds "<base>/<kind>/<directory>/<name>.<extension>"
func AssetURL(base string, kind CatalogKind, e CatalogEntry) (string, error) {
	if base == "" {
		return "", errors.New("profile has no base path")
	}
	file, err := AssetFileName(e)
	if err != nil {
		return "", err
	}
	parts := []string{strings.TrimRight(base, "/"), string(kind)}
	if dir, ok := e.Properties.Directory.Get(); ok && dir != "" {
		parts = append(parts, strings.Trim(dir, "/"))
	}
	parts = append(parts, file)
	return strings.Join(parts, "/"), nil
}
