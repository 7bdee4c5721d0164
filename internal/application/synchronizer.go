package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/domain"
	"stylebook/internal/ports"
)

// Synchronizer turns fetched catalog documents into stored catalog entries
// for a profile and reads them back
type Synchronizer struct {
	store    ports.SettingsStore
	fetcher  ports.CatalogFetcher
	notifier ports.Notifier
}

// NewSynchronizer creates a Synchronizer. fetcher may be nil when only
// Parse/Reconcile/List are used; notifier may be nil.
func NewSynchronizer(store ports.SettingsStore, fetcher ports.CatalogFetcher, notifier ports.Notifier) *Synchronizer {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Synchronizer{
		store:    store,
		fetcher:  fetcher,
		notifier: notifier,
	}
}

// Parse decodes a raw catalog document
func (s *Synchronizer) Parse(raw []byte, kind domain.CatalogKind) ([]domain.CatalogEntry, error) {
	return domain.ParseCatalog(raw, kind)
}

// Reconcile replaces the stored catalog of kind for a profile with entries.
//
// An empty entry set is a no-op: the stored catalog is left untouched and 0
// is returned, so a temporarily empty remote document cannot wipe a
// profile. Otherwise the previous set is removed and every entry written
// inside a single transaction. Entries without an id are skipped.
func (s *Synchronizer) Reconcile(ctx context.Context, profileID uuid.UUID, entries []domain.CatalogEntry, kind domain.CatalogKind) (int, error) {
	logger := zerolog.Ctx(ctx).With().Str("profile", profileID.String()).Str("kind", kind.String()).Logger()

	if !kind.Valid() {
		return 0, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown catalog kind: %s", kind)}
	}

	if countAddressable(entries) == 0 {
		exists, err := profileExists(s.store.Group(""), profileID)
		if err != nil {
			return 0, errors.Errorf("failed to look up profile: %w", err)
		}
		if !exists {
			return 0, &ProfileError{Ref: profileID.String(), Reason: ErrProfileNotFound}
		}
		logger.Info().Int("received", len(entries)).Msg("empty catalog, keeping stored entries")
		return 0, nil
	}

	start := time.Now()
	var written, skipped int
	err := s.store.Update(func(root ports.SettingsGroup) error {
		// checked in the transaction so a concurrent delete cannot leave
		// entries under a removed profile
		exists, err := profileExists(root, profileID)
		if err != nil {
			return err
		}
		if !exists {
			return &ProfileError{Ref: profileID.String(), Reason: ErrProfileNotFound}
		}
		if err := profileSettings(root, profileID).Remove(string(kind)); err != nil {
			return err
		}
		written, skipped, err = writeEntries(catalogSettings(root, profileID, kind), entries)
		return err
	})
	if err != nil {
		return 0, errors.Errorf("failed to reconcile %s: %w", kind, err)
	}

	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Msg("catalog entries without id were not stored")
	}
	logger.Info().Int("written", written).Dur("duration", time.Since(start)).Msg("catalog reconciled")

	s.notifier.Notify(ports.Event{Type: ports.EventCatalogChanged, ProfileID: profileID, Kind: string(kind)})
	return written, nil
}

func countAddressable(entries []domain.CatalogEntry) int {
	n := 0
	for _, e := range entries {
		if id, ok := e.ID.Get(); ok && id != "" {
			n++
		}
	}
	return n
}

// List returns the stored catalog of kind for a profile in store order.
// A missing profile yields an empty list.
func (s *Synchronizer) List(ctx context.Context, profileID uuid.UUID, kind domain.CatalogKind) ([]domain.CatalogEntry, error) {
	if !kind.Valid() {
		return nil, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown catalog kind: %s", kind)}
	}
	entries, err := listEntries(s.store.Group(""), profileID, kind)
	if err != nil {
		return nil, errors.Errorf("failed to list %s: %w", kind, err)
	}
	return entries, nil
}

// Find returns one stored entry by id
func (s *Synchronizer) Find(ctx context.Context, profileID uuid.UUID, kind domain.CatalogKind, entryID string) (domain.CatalogEntry, error) {
	entries, err := s.List(ctx, profileID, kind)
	if err != nil {
		return domain.CatalogEntry{}, err
	}
	for _, e := range entries {
		if e.ID.Or("") == entryID {
			return e, nil
		}
	}
	return domain.CatalogEntry{}, errors.Errorf("%s entry %s: %w", kind, entryID, ErrNotFound)
}

// Import parses raw and reconciles it into the profile's catalog
func (s *Synchronizer) Import(ctx context.Context, profileID uuid.UUID, raw []byte, kind domain.CatalogKind) (int, error) {
	entries, err := s.Parse(raw, kind)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("profile", profileID.String()).Msg("catalog parse failed")
		return 0, err
	}
	return s.Reconcile(ctx, profileID, entries, kind)
}

// Sync fetches the profile's catalog URL for kind, then parses and
// reconciles the result
func (s *Synchronizer) Sync(ctx context.Context, profileID uuid.UUID, kind domain.CatalogKind) (int, error) {
	if s.fetcher == nil {
		return 0, errors.New("no catalog fetcher configured")
	}

	p, ok, err := readProfile(s.store.Group(""), profileID)
	if err != nil {
		return 0, errors.Errorf("failed to load profile: %w", err)
	}
	if !ok {
		return 0, &ProfileError{Ref: profileID.String(), Reason: ErrProfileNotFound}
	}

	url := p.CatalogURL(kind)
	if url == "" {
		return 0, errors.Errorf("%s %s: %w", p.Name, kind, ErrNoCatalogURL)
	}

	zerolog.Ctx(ctx).Debug().Str("url", url).Str("kind", kind.String()).Msg("fetching catalog")
	raw, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return 0, errors.Errorf("failed to fetch %s catalog: %w", kind, err)
	}

	// A cancelled fetch never reaches reconciliation.
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	return s.Import(ctx, profileID, raw, kind)
}

// SyncTaskName names the background task for a profile catalog; concurrent
// syncs of the same catalog share the name and therefore one execution
func SyncTaskName(profileID uuid.UUID, kind domain.CatalogKind) string {
	return fmt.Sprintf("sync:%s:%s", profileID, kind)
}

// SyncInBackground submits Sync to runner. done receives the entry count
// and error once the task completes; it is not called if the task is
// cancelled first.
func (s *Synchronizer) SyncInBackground(ctx context.Context, runner ports.TaskRunner, profileID uuid.UUID, kind domain.CatalogKind, done func(int, error)) ports.Task {
	return runner.Submit(ctx, SyncTaskName(profileID, kind),
		func(ctx context.Context) (any, error) {
			n, err := s.Sync(ctx, profileID, kind)
			return n, err
		},
		func(v any, err error) {
			if done == nil {
				return
			}
			count, _ := v.(int)
			done(count, err)
		},
	)
}
