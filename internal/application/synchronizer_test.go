package application

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/domain"
	"stylebook/internal/ports"
)

const templatesDoc = `{
	"templates": [
		{"id": "t1", "name": "a4_portrait", "title": "A4 Portrait", "description": "Portrait layout",
		 "extension": "qpt", "directory": "a4-templates", "type": "layout", "thumbnail": "a4.png"},
		{"id": "t2", "name": "a3_landscape", "title": "A3 Landscape", "license": "CC-BY-4.0"},
		{"id": "t3", "name": "bare"}
	]
}`

func TestSynchronizer_ParseReconcileList(t *testing.T) {
	env := newTestEnv(t)
	p := env.saveProfile(t, "HOT")

	parsed, err := env.sync.Parse([]byte(templatesDoc), domain.KindTemplates)
	require.NoError(t, err)

	n, err := env.sync.Reconcile(env.ctx, p.ID, parsed, domain.KindTemplates)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	listed, err := env.sync.List(env.ctx, p.ID, domain.KindTemplates)
	require.NoError(t, err)
	assert.ElementsMatch(t, parsed, listed, "stored catalog should equal the parsed one")

	symbology, err := env.sync.List(env.ctx, p.ID, domain.KindSymbology)
	require.NoError(t, err)
	assert.Empty(t, symbology, "other kind must stay untouched")

	assert.Equal(t, 1, env.events.count(ports.EventCatalogChanged))
}

func TestSynchronizer_EmptyReconcileKeepsCatalog(t *testing.T) {
	env := newTestEnv(t)
	p := env.saveProfile(t, "HOT")

	_, err := env.sync.Reconcile(env.ctx, p.ID, []domain.CatalogEntry{entry("t1", "A")}, domain.KindTemplates)
	require.NoError(t, err)

	n, err := env.sync.Reconcile(env.ctx, p.ID, nil, domain.KindTemplates)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	listed, err := env.sync.List(env.ctx, p.ID, domain.KindTemplates)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, entryIDs(listed))

	n, err = env.sync.Reconcile(env.ctx, p.ID, []domain.CatalogEntry{entry("t2", "B")}, domain.KindTemplates)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	listed, err = env.sync.List(env.ctx, p.ID, domain.KindTemplates)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, entryIDs(listed), "t1 must be gone after a full replace")

	assert.Equal(t, 2, env.events.count(ports.EventCatalogChanged), "no-op reconcile emits nothing")
}

func TestSynchronizer_DisjointReplace(t *testing.T) {
	env := newTestEnv(t)
	p := env.saveProfile(t, "HOT")

	first := []domain.CatalogEntry{entry("a", "A"), entry("b", "B")}
	second := []domain.CatalogEntry{entry("c", "C"), entry("d", "D"), entry("e", "E")}

	_, err := env.sync.Reconcile(env.ctx, p.ID, first, domain.KindSymbology)
	require.NoError(t, err)
	_, err = env.sync.Reconcile(env.ctx, p.ID, second, domain.KindSymbology)
	require.NoError(t, err)

	listed, err := env.sync.List(env.ctx, p.ID, domain.KindSymbology)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c", "d", "e"}, entryIDs(listed))
}

func TestSynchronizer_OverwritesFieldsAndDropsStaleOnes(t *testing.T) {
	env := newTestEnv(t)
	p := env.saveProfile(t, "HOT")

	old := entry("t1", "old")
	old.Title = domain.Some("Old title")
	old.Properties.Thumbnail = domain.Some("old.png")
	_, err := env.sync.Reconcile(env.ctx, p.ID, []domain.CatalogEntry{old}, domain.KindTemplates)
	require.NoError(t, err)

	_, err = env.sync.Reconcile(env.ctx, p.ID, []domain.CatalogEntry{entry("t1", "new")}, domain.KindTemplates)
	require.NoError(t, err)

	got, err := env.sync.Find(env.ctx, p.ID, domain.KindTemplates, "t1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name.Or(""))
	assert.False(t, got.Title.IsSet(), "title dropped upstream must not linger")
	assert.False(t, got.Properties.Thumbnail.IsSet())
}

func TestSynchronizer_ProfileNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sync.Reconcile(env.ctx, uuid.New(), []domain.CatalogEntry{entry("t1", "A")}, domain.KindTemplates)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = env.sync.Reconcile(env.ctx, uuid.New(), nil, domain.KindTemplates)
	assert.ErrorIs(t, err, ErrProfileNotFound, "the profile check comes before the empty-set rule")
}

func TestSynchronizer_SkipsEntriesWithoutID(t *testing.T) {
	env := newTestEnv(t)
	p := env.saveProfile(t, "HOT")

	entries := []domain.CatalogEntry{
		entry("t1", "A"),
		{Name: domain.Some("no id")},
		entry("t1", "A again"),
	}
	n, err := env.sync.Reconcile(env.ctx, p.ID, entries, domain.KindTemplates)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	listed, err := env.sync.List(env.ctx, p.ID, domain.KindTemplates)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "A again", listed[0].Name.Or(""), "later duplicates win")

	n, err = env.sync.Reconcile(env.ctx, p.ID, []domain.CatalogEntry{{Name: domain.Some("no id")}}, domain.KindTemplates)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "a set with no addressable entries counts as empty")

	listed, err = env.sync.List(env.ctx, p.ID, domain.KindTemplates)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestSynchronizer_IDsWithSlashes(t *testing.T) {
	env := newTestEnv(t)
	p := env.saveProfile(t, "HOT")

	_, err := env.sync.Reconcile(env.ctx, p.ID, []domain.CatalogEntry{entry("maps/world", "World")}, domain.KindSymbology)
	require.NoError(t, err)

	listed, err := env.sync.List(env.ctx, p.ID, domain.KindSymbology)
	require.NoError(t, err)
	assert.Equal(t, []string{"maps/world"}, entryIDs(listed))
}

func TestSynchronizer_Sync(t *testing.T) {
	env := newTestEnv(t)
	p := domain.NewProfile("HOT")
	p.TemplatesURL = "https://example.org/templates.json"
	require.NoError(t, env.profiles.Save(env.ctx, p))

	env.fetcher.docs[p.TemplatesURL] = []byte(templatesDoc)

	n, err := env.sync.Sync(env.ctx, p.ID, domain.KindTemplates)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = env.sync.Sync(env.ctx, p.ID, domain.KindSymbology)
	assert.ErrorIs(t, err, ErrNoCatalogURL)

	env.fetcher.docs[p.TemplatesURL] = []byte(`{"templates": [`)
	_, err = env.sync.Sync(env.ctx, p.ID, domain.KindTemplates)
	assert.ErrorIs(t, err, ErrParse)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))

	listed, err := env.sync.List(env.ctx, p.ID, domain.KindTemplates)
	require.NoError(t, err)
	assert.Len(t, listed, 3, "a broken document leaves the catalog alone")
}

func TestSynchronizer_ListUnknownProfile(t *testing.T) {
	env := newTestEnv(t)
	listed, err := env.sync.List(env.ctx, uuid.New(), domain.KindTemplates)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestSynchronizer_ListIgnoresGroupsWithoutID(t *testing.T) {
	env := newTestEnv(t)
	p := env.saveProfile(t, "HOT")

	_, err := env.sync.Reconcile(env.ctx, p.ID, []domain.CatalogEntry{entry("t1", "A")}, domain.KindTemplates)
	require.NoError(t, err)

	require.NoError(t, env.store.Update(func(root ports.SettingsGroup) error {
		return catalogSettings(root, p.ID, domain.KindTemplates).Group("stray").Group(customGroup).SetValue("heading", "x")
	}))

	listed, err := env.sync.List(env.ctx, p.ID, domain.KindTemplates)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, entryIDs(listed))
}

func TestSynchronizer_ReconcileAfterDeleteWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	p := env.saveProfile(t, "HOT")
	require.NoError(t, env.profiles.Delete(env.ctx, p.ID))

	_, err := env.sync.Reconcile(env.ctx, p.ID, []domain.CatalogEntry{entry("t1", "A")}, domain.KindTemplates)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	groups, err := profileSettings(env.store.Group(""), p.ID).ChildGroups()
	require.NoError(t, err)
	assert.Empty(t, groups, "no keys may be left under a deleted profile")
	assert.Zero(t, env.events.count(ports.EventCatalogChanged))
}
