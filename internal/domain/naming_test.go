package domain

import (
	"encoding/json"
	"testing"
)

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"world_map.qml", "world_map.qml"},
		{"world map.qml", "world_map.qml"},
		{"a:b/c\\d.qml", "a_b_c_d.qml"},
		{"[x]<y>*?,%.svg", "_x__y_____.svg"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CleanFilename(tt.in); got != tt.want {
				t.Errorf("CleanFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDisambiguateName(t *testing.T) {
	if got := DisambiguateName("HOT", 0); got != "HOT" {
		t.Errorf("no collisions: got %q", got)
	}
	if got := DisambiguateName("HOT", 1); got != "HOT(1)" {
		t.Errorf("one collision: got %q", got)
	}
	if got := DisambiguateName("HOT", 2); got != "HOT(2)" {
		t.Errorf("two collisions: got %q", got)
	}
}

func TestAssetURL(t *testing.T) {
	entry := CatalogEntry{
		ID:   Some("s1"),
		Name: Some("world_map"),
		Properties: Properties{
			Extension: Some("qml"),
			Directory: Some("colour-scales"),
		},
	}

	got, err := AssetURL("https://example.org/repo/", KindSymbology, entry)
	if err != nil {
		t.Fatalf("AssetURL failed: %v", err)
	}
	want := "https://example.org/repo/symbology/colour-scales/world_map.qml"
	if got != want {
		t.Errorf("AssetURL = %q, want %q", got, want)
	}

	entry.Properties.Extension = None[string]()
	if _, err := AssetURL("https://example.org/repo", KindSymbology, entry); err == nil {
		t.Error("expected error for entry without extension")
	}
	if _, err := AssetURL("", KindSymbology, entry); err == nil {
		t.Error("expected error for empty base")
	}
}

func TestOptional_JSON(t *testing.T) {
	var v struct {
		A Optional[string] `json:"a"`
		B Optional[string] `json:"b"`
		C Optional[string] `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": "x", "b": null}`), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got, ok := v.A.Get(); !ok || got != "x" {
		t.Errorf("a = %q, %v", got, ok)
	}
	if v.B.IsSet() || v.C.IsSet() {
		t.Error("null and missing fields should be absent")
	}
	if v.C.Or("default") != "default" {
		t.Error("Or should return the default for absent values")
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `{"a":"x","b":null,"c":null}` {
		t.Errorf("marshal = %s", out)
	}
}

func TestParseCatalogKind(t *testing.T) {
	for _, s := range []string{"templates", "template"} {
		if k, err := ParseCatalogKind(s); err != nil || k != KindTemplates {
			t.Errorf("ParseCatalogKind(%q) = %v, %v", s, k, err)
		}
	}
	if k, err := ParseCatalogKind("symbology"); err != nil || k != KindSymbology {
		t.Errorf("ParseCatalogKind(symbology) = %v, %v", k, err)
	}
	if _, err := ParseCatalogKind("fonts"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestDomainErrorsCarryStack(t *testing.T) {
	_, kindErr := ParseCatalogKind("fonts")
	_, nameErr := AssetFileName(CatalogEntry{ID: Some("t1")})
	_, baseErr := AssetURL("", KindTemplates, CatalogEntry{})

	for name, err := range map[string]error{"kind": kindErr, "name": nameErr, "base": baseErr} {
		st, ok := err.(interface{ StackTrace() []uintptr })
		if !ok || len(st.StackTrace()) == 0 {
			t.Errorf("%s error %v has no stack trace", name, err)
		}
	}
}
