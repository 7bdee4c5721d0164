package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylebook/internal/adapters/filesystem"
	"stylebook/internal/adapters/httpfetch"
	"stylebook/internal/adapters/sqlite"
	"stylebook/internal/application"
	"stylebook/internal/domain"
)

const (
	hotTemplates = `{"templates": [
		{"id": "t2", "name": "b", "title": "beta"},
		{"id": "t1", "name": "a", "title": "Alpha", "extension": "qpt"}
	]}`
	hotSymbology = `{"symbology": [{"id": "s1", "name": "world_map", "extension": "qml", "directory": "colour-scales"}]}`
)

type fixture struct {
	ctx      context.Context
	app      *application.App
	server   *httptest.Server
	requests atomic.Int32
	fs       afero.Fs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{fs: afero.NewMemMapFs()}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		switch r.URL.Path {
		case "/hot/templates.json":
			w.Write([]byte(hotTemplates))
		case "/hot/symbology.json":
			w.Write([]byte(hotSymbology))
		case "/hot/symbology/colour-scales/world_map.qml":
			w.Write([]byte("<qgis/>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.server.Close)

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	f.app = application.NewApp(store, httpfetch.New(), filesystem.NewAssetStore(f.fs))
	f.ctx = zerolog.New(zerolog.TestWriter{T: t}).WithContext(context.Background())
	return f
}

func (f *fixture) addHOT(t *testing.T) *domain.Profile {
	t.Helper()
	cmd := NewSaveProfileCommand(f.app.Profiles, "", ProfileFields{
		Name:         domain.Some("HOT"),
		Path:         domain.Some(f.server.URL + "/hot"),
		TemplatesURL: domain.Some(f.server.URL + "/hot/templates.json"),
		SymbologyURL: domain.Some(f.server.URL + "/hot/symbology.json"),
	})
	cmd.Use = true
	res, err := cmd.Execute(f.ctx)
	require.NoError(t, err)
	return res.Profile
}

func TestSaveProfileCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		fields  ProfileFields
		wantErr string
	}{
		{
			name:   "valid add",
			fields: ProfileFields{Name: domain.Some("HOT")},
		},
		{
			name:    "add without name",
			fields:  ProfileFields{Title: domain.Some("Humanitarian")},
			wantErr: "name is required",
		},
		{
			name:    "edit clearing name",
			ref:     "HOT",
			fields:  ProfileFields{Name: domain.Some(" ")},
			wantErr: "name is required",
		},
		{
			name:   "edit without name",
			ref:    "HOT",
			fields: ProfileFields{Title: domain.Some("Humanitarian")},
		},
		{
			name:    "bad url",
			fields:  ProfileFields{Name: domain.Some("HOT"), TemplatesURL: domain.Some("templates.json")},
			wantErr: "templates URL must be a URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSaveProfileCommand(nil, tt.ref, tt.fields).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveProfileCommand_AddAndEdit(t *testing.T) {
	f := newFixture(t)
	p := f.addHOT(t)

	current, err := f.app.Profiles.Current(f.ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, p.ID, current.ID)

	res, err := NewSaveProfileCommand(f.app.Profiles, "HOT", ProfileFields{
		Description: domain.Some("Humanitarian mapping"),
	}).Execute(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, p.ID, res.Profile.ID)
	assert.Contains(t, res.Message, "Updated profile HOT")

	got, err := f.app.Profiles.Get(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Humanitarian mapping", got.Description)
	assert.Equal(t, p.TemplatesURL, got.TemplatesURL, "absent fields keep the stored value")

	dup, err := NewSaveProfileCommand(f.app.Profiles, "", ProfileFields{Name: domain.Some("HOT")}).Execute(f.ctx)
	require.NoError(t, err)
	assert.True(t, dup.Renamed)
	assert.Equal(t, "HOT(1)", dup.Profile.Name)
}

func TestDeleteAndUseProfileCommands(t *testing.T) {
	f := newFixture(t)
	p := f.addHOT(t)

	_, err := NewUseProfileCommand(f.app.Profiles, "nope").Execute(f.ctx)
	assert.ErrorIs(t, err, application.ErrNotFound)

	used, err := NewUseProfileCommand(f.app.Profiles, p.ID.String()).Execute(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "HOT", used.Name)

	msg, err := NewDeleteProfileCommand(f.app.Profiles, "HOT").Execute(f.ctx)
	require.NoError(t, err)
	assert.Contains(t, msg, "Deleted profile HOT")

	_, _, err = NewListCatalogCommand(f.app, "", domain.KindTemplates).Execute(f.ctx)
	assert.ErrorIs(t, err, ErrNoCurrentProfile)

	err = NewDeleteProfileCommand(f.app.Profiles, "").Validate()
	assert.Error(t, err)
}

func TestSyncCatalogCommand(t *testing.T) {
	f := newFixture(t)
	p := f.addHOT(t)

	bare, err := NewSaveProfileCommand(f.app.Profiles, "", ProfileFields{Name: domain.Some("Bare")}).Execute(f.ctx)
	require.NoError(t, err)

	cmd := NewSyncCatalogCommand(f.app, "")
	cmd.All = true
	outcomes, err := cmd.Execute(f.ctx)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	byProfile := map[string][]SyncOutcome{}
	for _, o := range outcomes {
		byProfile[o.Profile.Name] = append(byProfile[o.Profile.Name], o)
	}
	require.Len(t, byProfile["HOT"], 2)
	assert.Equal(t, domain.KindTemplates, byProfile["HOT"][0].Kind, "kinds keep their order")
	assert.Equal(t, 2, byProfile["HOT"][0].Count)
	assert.Equal(t, 1, byProfile["HOT"][1].Count)
	for _, o := range byProfile[bare.Profile.Name] {
		assert.True(t, o.Skipped)
		assert.Contains(t, o.String(), "no catalog URL")
	}

	_, entries, err := NewListCatalogCommand(f.app, p.Name, domain.KindTemplates).Execute(f.ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Alpha", entries[0].Title.Or(""), "entries are sorted by title")

	list := NewListCatalogCommand(f.app, "", domain.KindTemplates)
	list.Query = "BETA"
	_, entries, err = list.Execute(f.ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "t2", entries[0].ID.Or(""))
}

func TestSyncCatalogCommand_ReportsFailures(t *testing.T) {
	f := newFixture(t)
	_, err := NewSaveProfileCommand(f.app.Profiles, "", ProfileFields{
		Name:         domain.Some("Broken"),
		TemplatesURL: domain.Some(f.server.URL + "/missing.json"),
	}).Execute(f.ctx)
	require.NoError(t, err)

	outcomes, err := NewSyncCatalogCommand(f.app, "Broken").Execute(f.ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	require.Len(t, outcomes, 2)
	assert.Error(t, outcomes[0].Err)
	assert.True(t, outcomes[1].Skipped)
}

func TestImportCatalogCommand(t *testing.T) {
	f := newFixture(t)
	f.addHOT(t)

	msg, err := NewImportCatalogCommand(f.app, "", domain.KindSymbology, []byte(hotSymbology)).Execute(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "Imported 1 symbology into HOT", msg)

	msg, err = NewImportCatalogCommand(f.app, "", domain.KindSymbology, []byte(`{"symbology": []}`)).Execute(f.ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg, "Empty symbology catalog"))

	_, err = NewImportCatalogCommand(f.app, "", domain.KindSymbology, []byte(`{"templates": []}`)).Execute(f.ctx)
	assert.ErrorIs(t, err, application.ErrParse)
}

func TestDownloadCommand(t *testing.T) {
	f := newFixture(t)
	f.addHOT(t)

	_, err := NewSyncCatalogCommand(f.app, "").Execute(f.ctx)
	require.NoError(t, err)
	require.NoError(t, f.app.Prefs.SetDownloadFolder(f.ctx, "/assets"))

	res, err := NewDownloadCommand(f.app, "", domain.KindSymbology, "s1").Execute(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "/assets/world_map.qml", res.Path)

	data, err := afero.ReadFile(f.fs, res.Path)
	require.NoError(t, err)
	assert.Equal(t, "<qgis/>", string(data))

	_, err = NewDownloadCommand(f.app, "", domain.KindSymbology, "").Execute(f.ctx)
	var ve *application.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestFilterEntries(t *testing.T) {
	entries := []domain.CatalogEntry{
		{ID: domain.Some("t1"), Title: domain.Some("Légende")},
		{ID: domain.Some("t2"), Name: domain.Some("flood_extent")},
		{ID: domain.Some("map3")},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"t1", "t2", "map3"}},
		{"  ", []string{"t1", "t2", "map3"}},
		{"legende", []string{"t1"}},
		{"FLOOD", []string{"t2"}},
		{"map", []string{"map3"}},
		{"nothing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got []string
			for _, e := range FilterEntries(entries, tt.query) {
				got = append(got, e.ID.Or(""))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
