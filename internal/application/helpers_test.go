package application

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/adapters/sqlite"
	"stylebook/internal/domain"
	"stylebook/internal/ports"
)

type testEnv struct {
	ctx      context.Context
	store    *sqlite.Settings
	fetcher  *fakeFetcher
	events   *eventRecorder
	sync     *Synchronizer
	profiles *ProfileManager
	prefs    *Preferences
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err, "opening settings store")
	t.Cleanup(func() { store.Close() })

	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	events := &eventRecorder{}
	bus := NewBroadcaster()
	bus.Subscribe(events.record)

	fetcher := &fakeFetcher{docs: map[string][]byte{}}

	return &testEnv{
		ctx:      logger.WithContext(context.Background()),
		store:    store,
		fetcher:  fetcher,
		events:   events,
		sync:     NewSynchronizer(store, fetcher, bus),
		profiles: NewProfileManager(store, bus),
		prefs:    NewPreferences(store),
	}
}

func (e *testEnv) saveProfile(t *testing.T, name string) *domain.Profile {
	t.Helper()
	p := domain.NewProfile(name)
	require.NoError(t, e.profiles.Save(e.ctx, p), "saving profile %s", name)
	return p
}

type fakeFetcher struct {
	mu    sync.Mutex
	docs  map[string][]byte
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	doc, ok := f.docs[url]
	if !ok {
		return nil, errors.Errorf("HTTP 404: %s", url)
	}
	return doc, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []ports.Event
}

func (r *eventRecorder) record(ev ports.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) count(t ports.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func entry(id, name string) domain.CatalogEntry {
	return domain.CatalogEntry{ID: domain.Some(id), Name: domain.Some(name)}
}

func entryIDs(entries []domain.CatalogEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID.Or(""))
	}
	return ids
}
