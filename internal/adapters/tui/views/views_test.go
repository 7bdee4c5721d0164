package views

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/adapters/filesystem"
	"stylebook/internal/adapters/httpfetch"
	"stylebook/internal/adapters/sqlite"
	"stylebook/internal/adapters/tasks"
	"stylebook/internal/application"
	"stylebook/internal/domain"
)

func newTestApp(t *testing.T) (context.Context, *application.App) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := zerolog.New(zerolog.TestWriter{T: t}).WithContext(context.Background())
	app := application.NewApp(store, httpfetch.New(), filesystem.NewAssetStore(afero.NewMemMapFs()))
	return ctx, app
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and feeds its message back into model
func run(t *testing.T, model tea.Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	_, next := model.Update(cmd())
	return next
}

func TestPaginator(t *testing.T) {
	tests := []struct {
		name      string
		pageSize  int
		total     int
		moves     func(p *Paginator)
		cursor    int
		wantStart int
		wantEnd   int
	}{
		{"empty list", 5, 0, func(p *Paginator) { p.CursorDown() }, 0, 0, 0},
		{"fits on one page", 5, 3, func(p *Paginator) { p.CursorDown(); p.CursorDown(); p.CursorDown() }, 2, 0, 3},
		{"scrolls with cursor", 3, 10, func(p *Paginator) { p.SetCursor(4) }, 4, 2, 5},
		{"page down clamps", 4, 6, func(p *Paginator) { p.PageDown(); p.PageDown() }, 5, 2, 6},
		{"page up returns", 4, 10, func(p *Paginator) { p.SetCursor(9); p.PageUp() }, 5, 5, 9},
		{"up at top stays", 4, 10, func(p *Paginator) { p.CursorUp() }, 0, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginator(tt.pageSize)
			p.SetTotal(tt.total)
			tt.moves(p)

			if p.Cursor() != tt.cursor {
				t.Errorf("Cursor() = %d, want %d", p.Cursor(), tt.cursor)
			}
			start, end := p.VisibleRange()
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("VisibleRange() = (%d, %d), want (%d, %d)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestPaginator_SetTotalClampsCursor(t *testing.T) {
	p := NewPaginator(5)
	p.SetTotal(10)
	p.SetCursor(9)
	p.SetTotal(3)
	assert.Equal(t, 2, p.Cursor())
}

func TestInputForm_Changed(t *testing.T) {
	f := NewInputForm(
		NewInputField("Name", "", 0),
		NewInputField("Title", "", 0),
	)
	f.Load("HOT", "Old title")

	assert.False(t, f.Changed(0).IsSet())
	assert.False(t, f.Changed(1).IsSet())

	f.Fields[1].Input.SetValue("  New title ")
	assert.Equal(t, domain.Some("New title"), f.Changed(1))

	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, f.FocusedField)
	f.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 0, f.FocusedField)
}

func TestProfileFormModel_Command(t *testing.T) {
	ctx, app := newTestApp(t)
	m := NewProfileFormModel(ctx, app)

	m.Edit(nil)
	m.form.Fields[fieldName].Input.SetValue("HOT")
	add := m.Command()
	assert.Empty(t, add.Ref)
	assert.Equal(t, domain.Some("HOT"), add.Fields.Name)
	assert.Equal(t, domain.Some(""), add.Fields.TemplatesURL, "new profiles send every field")

	p := domain.NewProfile("HOT")
	p.TemplatesURL = "https://example.org/templates.json"
	require.NoError(t, app.Profiles.Save(ctx, p))

	m.Edit(p)
	m.form.Fields[fieldDescription].Input.SetValue("edited")
	edit := m.Command()
	assert.Equal(t, p.ID.String(), edit.Ref)
	assert.False(t, edit.Fields.Name.IsSet())
	assert.False(t, edit.Fields.TemplatesURL.IsSet())
	assert.Equal(t, domain.Some("edited"), edit.Fields.Description)

	done := m.submit()
	require.NotNil(t, done)
	assert.IsType(t, FormDoneMsg{}, done())

	got, err := app.Profiles.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Description)
	assert.Equal(t, "https://example.org/templates.json", got.TemplatesURL)
}

func TestProfileFormModel_RejectsEmptyName(t *testing.T) {
	ctx, app := newTestApp(t)
	m := NewProfileFormModel(ctx, app)
	m.Edit(nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.True(t, m.MessageErr)
}

func TestProfilesModel_UseAndDelete(t *testing.T) {
	ctx, app := newTestApp(t)
	hot := domain.NewProfile("HOT")
	osm := domain.NewProfile("OSM")
	require.NoError(t, app.Profiles.Save(ctx, hot))
	require.NoError(t, app.Profiles.Save(ctx, osm))

	m := NewProfilesModel(ctx, app, tasks.NewManager(), nil)
	run(t, m, m.Init())
	require.Len(t, m.profiles, 2)

	selected := m.Selected()
	require.NotNil(t, selected)

	_, cmd := m.Update(keyRunes("u"))
	reload := run(t, m, cmd)
	run(t, m, reload)
	assert.Equal(t, selected.ID, m.current)
	assert.Contains(t, m.View(), "* ")

	_, cmd = m.Update(keyRunes("d"))
	assert.Nil(t, cmd)
	assert.True(t, m.confirm.Active)

	_, cmd = m.Update(keyRunes("y"))
	reload = run(t, m, cmd)
	run(t, m, reload)

	assert.Len(t, m.profiles, 1)
	assert.NotEqual(t, selected.ID, m.profiles[0].ID)
	assert.True(t, strings.HasPrefix(m.Message, "Deleted profile"))
}

func TestProfilesModel_SyncInBackground(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"templates": [{"id": "t1", "name": "a4"}, {"id": "t2", "name": "a3"}]}`))
	}))
	t.Cleanup(srv.Close)

	ctx, app := newTestApp(t)
	p := domain.NewProfile("HOT")
	p.TemplatesURL = srv.URL + "/templates.json"
	require.NoError(t, app.Profiles.Save(ctx, p))

	m := NewProfilesModel(ctx, app, tasks.NewManager(), nil)
	run(t, m, m.Init())

	done := m.startSync(p, domain.KindTemplates)
	assert.Equal(t, 1, m.Syncing())

	msg := done()
	assert.True(t, m.OwnsBackground(msg))
	m.Update(msg)

	assert.Equal(t, 0, m.Syncing())
	assert.False(t, m.MessageErr, m.Message)
	assert.Equal(t, "Synced 2 templates entries for HOT", m.Message)

	entries, err := app.Catalogs.List(ctx, p.ID, domain.KindTemplates)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestProfilesModel_SyncWithoutURLs(t *testing.T) {
	ctx, app := newTestApp(t)
	require.NoError(t, app.Profiles.Save(ctx, domain.NewProfile("bare")))

	m := NewProfilesModel(ctx, app, tasks.NewManager(), nil)
	run(t, m, m.Init())

	_, cmd := m.Update(keyRunes("s"))
	assert.Nil(t, cmd)
	assert.True(t, m.MessageErr)
	assert.Equal(t, 0, m.Syncing())
}

func TestCatalogModel_FilterAndCopy(t *testing.T) {
	ctx, app := newTestApp(t)
	p := domain.NewProfile("HOT")
	require.NoError(t, app.Profiles.Save(ctx, p))
	_, err := app.Catalogs.Reconcile(ctx, p.ID, []domain.CatalogEntry{
		{ID: domain.Some("world"), Title: domain.Some("World map")},
		{ID: domain.Some("index"), Title: domain.Some("Index map")},
		{ID: domain.Some("flood"), Title: domain.Some("Flood extent")},
	}, domain.KindSymbology)
	require.NoError(t, err)

	var copied []string
	m := NewCatalogModel(ctx, app, nil)
	m.copy = func(s string) error {
		copied = append(copied, s)
		return nil
	}

	run(t, m, m.Open(p))
	assert.Empty(t, m.entries, "templates are shown first")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	run(t, m, cmd)
	assert.Equal(t, domain.KindSymbology, m.kind)
	require.Len(t, m.visible, 3)

	m.Update(keyRunes("/"))
	require.True(t, m.filtering)
	for _, r := range "map" {
		m.Update(keyRunes(string(r)))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.filtering)
	require.Len(t, m.visible, 2)
	assert.Equal(t, "Index map", m.visible[0].DisplayTitle(), "entries are sorted by title")

	m.Update(keyRunes("j"))
	m.Update(keyRunes("y"))
	assert.Equal(t, []string{"world"}, copied)
	assert.Equal(t, "Copied world", m.Message)

	assert.Contains(t, m.View(), "World map")
}

func TestCatalogModel_DownloadWithoutFolder(t *testing.T) {
	ctx, app := newTestApp(t)
	p := domain.NewProfile("HOT")
	p.Path = "https://example.org/hot/"
	require.NoError(t, app.Profiles.Save(ctx, p))
	_, err := app.Catalogs.Reconcile(ctx, p.ID, []domain.CatalogEntry{
		{ID: domain.Some("t1"), Name: domain.Some("a4"), Properties: domain.Properties{Extension: domain.Some("qpt")}},
	}, domain.KindTemplates)
	require.NoError(t, err)

	m := NewCatalogModel(ctx, app, nil)
	run(t, m, m.Open(p))

	_, cmd := m.Update(keyRunes("D"))
	run(t, m, cmd)
	assert.True(t, m.MessageErr)
}

type stubEditor struct {
	err error
}

func (e stubEditor) Command(path string) (*exec.Cmd, error) {
	if e.err != nil {
		return nil, e.err
	}
	return exec.Command("true", path), nil
}

func TestCatalogModel_Edit(t *testing.T) {
	ctx, app := newTestApp(t)
	p := domain.NewProfile("HOT")
	require.NoError(t, app.Profiles.Save(ctx, p))
	_, err := app.Catalogs.Reconcile(ctx, p.ID, []domain.CatalogEntry{
		{ID: domain.Some("t1"), Name: domain.Some("a4")},
	}, domain.KindTemplates)
	require.NoError(t, err)

	t.Run("without editor", func(t *testing.T) {
		m := NewCatalogModel(ctx, app, nil)
		run(t, m, m.Open(p))
		_, cmd := m.Update(keyRunes("e"))
		assert.Nil(t, cmd)
		assert.True(t, m.MessageErr)
		assert.Equal(t, "No editor available", m.Message)
	})

	t.Run("editor runs on the saved file", func(t *testing.T) {
		m := NewCatalogModel(ctx, app, stubEditor{})
		_, cmd := m.Update(editAssetMsg{path: "/tmp/a4.qpt"})
		assert.NotNil(t, cmd)
		assert.False(t, m.MessageErr)
	})

	t.Run("editor missing", func(t *testing.T) {
		m := NewCatalogModel(ctx, app, stubEditor{err: errors.New("no editor found")})
		_, cmd := m.Update(editAssetMsg{path: "/tmp/a4.qpt"})
		assert.Nil(t, cmd)
		assert.True(t, m.MessageErr)
	})
}

func TestNextKind(t *testing.T) {
	assert.Equal(t, domain.KindSymbology, nextKind(domain.KindTemplates))
	assert.Equal(t, domain.KindTemplates, nextKind(domain.KindSymbology))
}

func TestRenderEntryDetail(t *testing.T) {
	out := RenderEntryDetail(domain.CatalogEntry{
		ID:      domain.Some("t1"),
		Name:    domain.Some("a4_portrait"),
		License: domain.Some(""),
		Properties: domain.Properties{
			Extension: domain.Some(".qpt"),
			Directory: domain.Some("layouts"),
		},
	})
	assert.Contains(t, out, "a4_portrait.qpt")
	assert.Contains(t, out, "layouts")
	assert.NotContains(t, out, "License", "empty fields are left out")
	assert.NotContains(t, out, "Description")

	assert.Empty(t, RenderEntryDetail(domain.CatalogEntry{ID: domain.Some("t2")}))
}

func TestRenderProfileDetail(t *testing.T) {
	p := domain.NewProfile("HOT")
	p.TemplatesURL = "https://example.org/templates.json"
	p.SetEntries(domain.KindTemplates, []domain.CatalogEntry{{ID: domain.Some("t1")}})

	out := RenderProfileDetail(p)
	assert.Contains(t, out, "https://example.org/templates.json (1)")
	assert.Contains(t, out, "Symbology")
	assert.Contains(t, out, "- (0)")
}
