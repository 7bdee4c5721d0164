package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"stylebook/internal/application"
	"stylebook/internal/domain"
)

// ListCatalogCommand lists the stored catalog of a profile
type ListCatalogCommand struct {
	app  *application.App
	Ref  string
	Kind domain.CatalogKind
	// Query keeps entries whose id, name or title contains it, case-insensitively
	Query string
}

// NewListCatalogCommand creates a new ListCatalogCommand
func NewListCatalogCommand(app *application.App, ref string, kind domain.CatalogKind) *ListCatalogCommand {
	return &ListCatalogCommand{app: app, Ref: ref, Kind: kind}
}

// Execute returns the profile and its entries sorted by title
func (c *ListCatalogCommand) Execute(ctx context.Context) (*domain.Profile, []domain.CatalogEntry, error) {
	p, err := ResolveProfile(ctx, c.app.Profiles, c.Ref)
	if err != nil {
		return nil, nil, err
	}

	entries, err := c.app.Catalogs.List(ctx, p.ID, c.Kind)
	if err != nil {
		return nil, nil, err
	}

	entries = FilterEntries(entries, c.Query)
	domain.SortByTitle(entries)
	return p, entries, nil
}

// FilterEntries keeps entries whose id, name or title contains query.
// Matching ignores case and accents.
func FilterEntries(entries []domain.CatalogEntry, query string) []domain.CatalogEntry {
	query = fold(strings.TrimSpace(query))
	if query == "" {
		return entries
	}
	var out []domain.CatalogEntry
	for _, e := range entries {
		for _, s := range []string{e.ID.Or(""), e.Name.Or(""), e.Title.Or("")} {
			if strings.Contains(fold(s), query) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// SyncOutcome is the sync result of one catalog
type SyncOutcome struct {
	Profile *domain.Profile
	Kind    domain.CatalogKind
	Count   int
	Skipped bool // no catalog URL configured
	Err     error
}

// String renders the outcome as one line
func (o SyncOutcome) String() string {
	switch {
	case o.Err != nil:
		return fmt.Sprintf("%s %s: failed: %v", o.Profile.Name, o.Kind, o.Err)
	case o.Skipped:
		return fmt.Sprintf("%s %s: no catalog URL", o.Profile.Name, o.Kind)
	default:
		return fmt.Sprintf("%s %s: %d entries", o.Profile.Name, o.Kind, o.Count)
	}
}

// SyncCatalogCommand fetches and reconciles catalogs. With All set every
// stored profile is synced, several at a time.
type SyncCatalogCommand struct {
	app   *application.App
	Ref   string
	Kinds []domain.CatalogKind
	All   bool
	// Parallel bounds concurrent fetches when All is set
	Parallel int
}

// NewSyncCatalogCommand creates a new SyncCatalogCommand for every kind
func NewSyncCatalogCommand(app *application.App, ref string) *SyncCatalogCommand {
	return &SyncCatalogCommand{
		app:      app,
		Ref:      ref,
		Kinds:    domain.CatalogKinds,
		Parallel: 4,
	}
}

// Execute runs the sync. A catalog that fails does not stop the others;
// the returned error joins every failure.
func (c *SyncCatalogCommand) Execute(ctx context.Context) ([]SyncOutcome, error) {
	var targets []*domain.Profile
	if c.All {
		all, err := c.app.Profiles.List(ctx)
		if err != nil {
			return nil, err
		}
		targets = all
	} else {
		p, err := ResolveProfile(ctx, c.app.Profiles, c.Ref)
		if err != nil {
			return nil, err
		}
		targets = []*domain.Profile{p}
	}

	var (
		mu       sync.Mutex
		outcomes []SyncOutcome
		failures []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Parallel, 1))
	for _, p := range targets {
		for _, kind := range c.Kinds {
			g.Go(func() error {
				o := c.syncOne(gctx, p, kind)
				mu.Lock()
				defer mu.Unlock()
				outcomes = append(outcomes, o)
				if o.Err != nil {
					failures = append(failures, errors.Errorf("%s %s: %w", p.Name, kind, o.Err))
				}
				return nil
			})
		}
	}
	g.Wait()

	sortOutcomes(outcomes, targets)
	return outcomes, errors.Join(failures...)
}

func (c *SyncCatalogCommand) syncOne(ctx context.Context, p *domain.Profile, kind domain.CatalogKind) SyncOutcome {
	o := SyncOutcome{Profile: p, Kind: kind}
	n, err := c.app.Catalogs.Sync(ctx, p.ID, kind)
	switch {
	case errors.Is(err, application.ErrNoCatalogURL):
		o.Skipped = true
	case err != nil:
		zerolog.Ctx(ctx).Warn().Err(err).Str("profile", p.Name).Str("kind", kind.String()).Msg("sync failed")
		o.Err = err
	default:
		o.Count = n
	}
	return o
}

// sortOutcomes restores profile then kind order after the parallel run
func sortOutcomes(outcomes []SyncOutcome, order []*domain.Profile) {
	rank := make(map[string]int, len(order))
	for i, p := range order {
		rank[p.ID.String()] = i * len(domain.CatalogKinds)
	}
	kindRank := func(k domain.CatalogKind) int {
		for i, kk := range domain.CatalogKinds {
			if kk == k {
				return i
			}
		}
		return 0
	}
	key := func(o SyncOutcome) int { return rank[o.Profile.ID.String()] + kindRank(o.Kind) }
	sort.SliceStable(outcomes, func(i, j int) bool {
		return key(outcomes[i]) < key(outcomes[j])
	})
}

// ImportCatalogCommand reconciles a catalog document supplied by the caller
type ImportCatalogCommand struct {
	app  *application.App
	Ref  string
	Kind domain.CatalogKind
	Data []byte
}

// NewImportCatalogCommand creates a new ImportCatalogCommand
func NewImportCatalogCommand(app *application.App, ref string, kind domain.CatalogKind, data []byte) *ImportCatalogCommand {
	return &ImportCatalogCommand{app: app, Ref: ref, Kind: kind, Data: data}
}

// Execute runs the import and returns a message
func (c *ImportCatalogCommand) Execute(ctx context.Context) (string, error) {
	p, err := ResolveProfile(ctx, c.app.Profiles, c.Ref)
	if err != nil {
		return "", err
	}

	n, err := c.app.Catalogs.Import(ctx, p.ID, c.Data, c.Kind)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return fmt.Sprintf("Empty %s catalog, kept the stored entries of %s", c.Kind, p.Name), nil
	}
	return fmt.Sprintf("Imported %d %s into %s", n, c.Kind, p.Name), nil
}

// DownloadCommand downloads the asset of a catalog entry
type DownloadCommand struct {
	app     *application.App
	Ref     string
	Kind    domain.CatalogKind
	EntryID string
}

// NewDownloadCommand creates a new DownloadCommand
func NewDownloadCommand(app *application.App, ref string, kind domain.CatalogKind, entryID string) *DownloadCommand {
	return &DownloadCommand{app: app, Ref: ref, Kind: kind, EntryID: entryID}
}

// Execute runs the download
func (c *DownloadCommand) Execute(ctx context.Context) (*application.DownloadResult, error) {
	if err := application.ValidateRequired("entryID", c.EntryID); err != nil {
		return nil, err
	}
	p, err := ResolveProfile(ctx, c.app.Profiles, c.Ref)
	if err != nil {
		return nil, err
	}
	return c.app.Downloader.Download(ctx, p.ID, c.Kind, c.EntryID)
}
