package domain

import (
	"strings"
	"testing"

	"gitlab.com/tozd/go/errors"
)

func TestParseCatalog_Templates(t *testing.T) {
	raw := []byte(`{
		"templates": [
			{"id": "t1", "name": "a4_portrait", "title": "A4 Portrait", "description": "Portrait map",
			 "extension": "qpt", "directory": "a4", "type": "layout", "thumbnail": "a4.png"},
			{"id": "t2", "name": "a3_landscape", "title": null}
		]
	}`)

	entries, err := ParseCatalog(raw, KindTemplates)
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if got := first.ID.Or(""); got != "t1" {
		t.Errorf("id = %q, want t1", got)
	}
	if got := first.Properties.TemplateType.Or(""); got != "layout" {
		t.Errorf("template type = %q, want layout", got)
	}
	if got := first.Properties.Thumbnail.Or(""); got != "a4.png" {
		t.Errorf("thumbnail = %q, want a4.png", got)
	}

	second := entries[1]
	if second.Title.IsSet() {
		t.Error("null title should decode as absent")
	}
	if second.Description.IsSet() {
		t.Error("missing description should decode as absent")
	}
	if second.Properties.Extension.IsSet() {
		t.Error("missing extension should decode as absent")
	}
}

func TestParseCatalog_NestedProperties(t *testing.T) {
	raw := []byte(`{"symbology": [{"id": "s1", "properties": {"extension": "qml", "directory": "colour-scales", "type": "color"}}]}`)

	entries, err := ParseCatalog(raw, KindSymbology)
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	props := entries[0].Properties
	if props.Extension.Or("") != "qml" || props.Directory.Or("") != "colour-scales" || props.TemplateType.Or("") != "color" {
		t.Errorf("unexpected properties: %+v", props)
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		kind   CatalogKind
		errMsg string
	}{
		{"malformed JSON", `{"templates": [`, KindTemplates, "malformed JSON"},
		{"missing array", `{"other": []}`, KindTemplates, `missing "templates" array`},
		{"wrong kind", `{"templates": []}`, KindSymbology, `missing "symbology" array`},
		{"not an array", `{"templates": {"id": "t1"}}`, KindTemplates, "is not an array"},
		{"null array", `{"templates": null}`, KindTemplates, "is not an array"},
		{"top level array", `[{"id": "t1"}]`, KindTemplates, "malformed JSON"},
		{"invalid utf8", "{\"templates\": [\"\xff\"]}", KindTemplates, "not valid UTF-8"},
		{"unknown kind", `{"templates": []}`, CatalogKind("fonts"), "unknown catalog kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.raw), tt.kind)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestParseCatalog_EmptyArray(t *testing.T) {
	entries, err := ParseCatalog([]byte("\xEF\xBB\xBF{\"symbology\": []}"), KindSymbology)
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestSortByTitle(t *testing.T) {
	entries := []CatalogEntry{
		{ID: Some("3"), Title: Some("zebra")},
		{ID: Some("1"), Title: Some("Apple")},
		{ID: Some("2"), Name: Some("mango")},
	}

	SortByTitle(entries)

	var got []string
	for _, e := range entries {
		got = append(got, e.ID.Or(""))
	}
	if strings.Join(got, ",") != "1,2,3" {
		t.Errorf("order = %v, want [1 2 3]", got)
	}
}
