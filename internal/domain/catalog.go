package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

// ErrParse is matched by every catalog decoding failure
var ErrParse = errors.Base("catalog parse error")

// ParseError describes why a catalog document could not be decoded
type ParseError struct {
	Kind    CatalogKind
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s catalog: %s", e.Kind, e.Message)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// catalogRecord is one element of the remote array. Asset properties are
// usually flat on the record; a nested "properties" object is accepted too.
type catalogRecord struct {
	ID          Optional[string] `json:"id"`
	Name        Optional[string] `json:"name"`
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	License     Optional[string] `json:"license"`

	Extension Optional[string] `json:"extension"`
	Directory Optional[string] `json:"directory"`
	Type      Optional[string] `json:"type"`
	Thumbnail Optional[string] `json:"thumbnail"`

	Properties *Properties `json:"properties"`
}

func (r catalogRecord) entry() CatalogEntry {
	props := Properties{
		Extension:    r.Extension,
		Directory:    r.Directory,
		TemplateType: r.Type,
		Thumbnail:    r.Thumbnail,
	}
	if r.Properties != nil {
		props.Extension = firstSet(props.Extension, r.Properties.Extension)
		props.Directory = firstSet(props.Directory, r.Properties.Directory)
		props.TemplateType = firstSet(props.TemplateType, r.Properties.TemplateType)
		props.Thumbnail = firstSet(props.Thumbnail, r.Properties.Thumbnail)
	}
	return CatalogEntry{
		ID:          r.ID,
		Name:        r.Name,
		Title:       r.Title,
		Description: r.Description,
		License:     r.License,
		Properties:  props,
	}
}

func firstSet(a, b Optional[string]) Optional[string] {
	if a.IsSet() {
		return a
	}
	return b
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCatalog decodes a catalog document of the given kind.
// The top-level object must hold an array under the kind's key
// ("templates" or "symbology"). No field of an element is required.
// Entries keep the order of the input array.
func ParseCatalog(raw []byte, kind CatalogKind) ([]CatalogEntry, error) {
	if !kind.Valid() {
		return nil, &ParseError{Kind: kind, Message: "unknown catalog kind"}
	}

	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return nil, &ParseError{Kind: kind, Message: "document is not valid UTF-8"}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ParseError{Kind: kind, Message: fmt.Sprintf("malformed JSON: %v", err)}
	}

	field, ok := doc[string(kind)]
	if !ok {
		return nil, &ParseError{Kind: kind, Message: fmt.Sprintf("missing %q array", kind)}
	}

	trimmed := bytes.TrimSpace(field)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ParseError{Kind: kind, Message: fmt.Sprintf("%q is not an array", kind)}
	}

	var records []catalogRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, &ParseError{Kind: kind, Message: fmt.Sprintf("malformed %q element: %v", kind, err)}
	}

	entries := make([]CatalogEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

// SortByTitle orders entries by display title, case-insensitively
func SortByTitle(entries []CatalogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].DisplayTitle()) < strings.ToLower(entries[j].DisplayTitle())
	})
}
