package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/domain"
	"stylebook/internal/ports"
)

// MatchPolicy decides which profile FindByName returns when one profile's
// name and another profile's title both equal the query
type MatchPolicy int

const (
	// MatchNameFirst prefers a name match over a title match
	MatchNameFirst MatchPolicy = iota
	// MatchStoreOrder returns the first profile in store order matching either
	MatchStoreOrder
)

// ProfileManager owns profile records, the current-profile pointer and
// custom template properties
type ProfileManager struct {
	store    ports.SettingsStore
	notifier ports.Notifier
	policy   MatchPolicy
}

// ProfileOption configures a ProfileManager
type ProfileOption func(*ProfileManager)

// WithMatchPolicy sets the FindByName tie-break
func WithMatchPolicy(p MatchPolicy) ProfileOption {
	return func(m *ProfileManager) { m.policy = p }
}

// NewProfileManager creates a ProfileManager; notifier may be nil
func NewProfileManager(store ports.SettingsStore, notifier ports.Notifier, opts ...ProfileOption) *ProfileManager {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	m := &ProfileManager{
		store:    store,
		notifier: notifier,
		policy:   MatchNameFirst,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Validate checks a profile before it is saved
func (m *ProfileManager) Validate(p *domain.Profile) error {
	if p == nil {
		return &ValidationError{Field: "profile", Message: "profile is required"}
	}
	if err := ValidateRequired("name", p.Name); err != nil {
		return err
	}
	if err := ValidateURL("templatesURL", p.TemplatesURL); err != nil {
		return err
	}
	return ValidateURL("symbologyURL", p.SymbologyURL)
}

// Save writes a profile. Catalog entries carried by the profile are
// written first, then the scalar fields. When another profile already
// uses the name, "(n)" is appended where n counts those profiles; p.Name
// is updated to the stored name.
func (m *ProfileManager) Save(ctx context.Context, p *domain.Profile) error {
	if err := m.Validate(p); err != nil {
		return err
	}

	p.Name = strings.TrimSpace(p.Name)
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	logger := zerolog.Ctx(ctx).With().Str("profile", p.ID.String()).Logger()

	err := m.store.Update(func(root ports.SettingsGroup) error {
		collisions, err := countNameCollisions(root, p)
		if err != nil {
			return err
		}
		if collisions > 0 {
			renamed := domain.DisambiguateName(p.Name, collisions)
			logger.Info().Str("name", p.Name).Str("stored_as", renamed).Msg("profile name already in use")
			p.Name = renamed
		}

		for _, kind := range domain.CatalogKinds {
			entries := p.Entries(kind)
			if len(entries) == 0 {
				continue
			}
			if _, skipped, err := writeEntries(catalogSettings(root, p.ID, kind), entries); err != nil {
				return err
			} else if skipped > 0 {
				logger.Warn().Int("skipped", skipped).Str("kind", kind.String()).Msg("catalog entries without id were not stored")
			}
		}

		return writeProfileScalars(profileSettings(root, p.ID), p)
	})
	if err != nil {
		return errors.Errorf("failed to save profile %s: %w", p.Name, err)
	}

	logger.Info().Str("name", p.Name).Msg("profile saved")
	m.notifier.Notify(ports.Event{Type: ports.EventProfilesChanged, ProfileID: p.ID})
	return nil
}

func countNameCollisions(root ports.SettingsGroup, p *domain.Profile) (int, error) {
	ids, err := listProfileIDs(root)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if id == p.ID {
			continue
		}
		name, _, err := profileSettings(root, id).Value(keyName)
		if err != nil {
			return 0, err
		}
		if name == p.Name {
			n++
		}
	}
	return n, nil
}

// Get loads a profile with its catalogs
func (m *ProfileManager) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, ok, err := readProfile(m.store.Group(""), id)
	if err != nil {
		return nil, errors.Errorf("failed to load profile %s: %w", id, err)
	}
	if !ok {
		return nil, &ProfileError{Ref: id.String(), Reason: ErrProfileNotFound}
	}
	return p, nil
}

// Exists reports whether a profile is stored under id
func (m *ProfileManager) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return profileExists(m.store.Group(""), id)
}

// List loads every stored profile in store order
func (m *ProfileManager) List(ctx context.Context) ([]*domain.Profile, error) {
	root := m.store.Group("")
	ids, err := listProfileIDs(root)
	if err != nil {
		return nil, errors.Errorf("failed to list profiles: %w", err)
	}

	profiles := make([]*domain.Profile, 0, len(ids))
	for _, id := range ids {
		p, ok, err := readProfile(root, id)
		if err != nil {
			return nil, errors.Errorf("failed to load profile %s: %w", id, err)
		}
		if ok {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

// Delete removes a profile with all of its catalogs and custom properties.
// The current-profile pointer is cleared first when it references id.
func (m *ProfileManager) Delete(ctx context.Context, id uuid.UUID) error {
	wasCurrent := false
	err := m.store.Update(func(root ports.SettingsGroup) error {
		exists, err := profileExists(root, id)
		if err != nil {
			return err
		}
		if !exists {
			return &ProfileError{Ref: id.String(), Reason: ErrProfileNotFound}
		}

		base := baseSettings(root)
		current, _, err := base.Value(currentKey)
		if err != nil {
			return err
		}
		if current == id.String() {
			if err := base.Remove(currentKey); err != nil {
				return err
			}
			wasCurrent = true
		}

		return profilesSettings(root).Remove(id.String())
	})
	if err != nil {
		return errors.Errorf("failed to delete profile: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("profile", id.String()).Bool("was_current", wasCurrent).Msg("profile deleted")
	if wasCurrent {
		m.notifier.Notify(ports.Event{Type: ports.EventCurrentChanged})
	}
	m.notifier.Notify(ports.Event{Type: ports.EventProfilesChanged, ProfileID: id})
	return nil
}

// SetCurrent makes id the current profile
func (m *ProfileManager) SetCurrent(ctx context.Context, id uuid.UUID) error {
	exists, err := m.Exists(ctx, id)
	if err != nil {
		return errors.Errorf("failed to look up profile: %w", err)
	}
	if !exists {
		return &ProfileError{Ref: id.String(), Reason: ErrInvalidProfile}
	}

	if err := baseSettings(m.store.Group("")).SetValue(currentKey, id.String()); err != nil {
		return errors.Errorf("failed to set current profile: %w", err)
	}

	m.notifier.Notify(ports.Event{Type: ports.EventCurrentChanged, ProfileID: id})
	return nil
}

// ClearCurrent unsets the current profile
func (m *ProfileManager) ClearCurrent(ctx context.Context) error {
	if err := baseSettings(m.store.Group("")).Remove(currentKey); err != nil {
		return errors.Errorf("failed to clear current profile: %w", err)
	}
	m.notifier.Notify(ports.Event{Type: ports.EventCurrentChanged})
	return nil
}

// Current returns the current profile, or nil when none is selected.
// A pointer to a profile that no longer exists is treated as unset.
func (m *ProfileManager) Current(ctx context.Context) (*domain.Profile, error) {
	raw, ok, err := baseSettings(m.store.Group("")).Value(currentKey)
	if err != nil {
		return nil, errors.Errorf("failed to read current profile: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	logger := zerolog.Ctx(ctx)

	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn().Str("current_profile", raw).Msg("current profile pointer is not a UUID, ignoring")
		return nil, nil
	}

	p, ok, err := readProfile(m.store.Group(""), id)
	if err != nil {
		return nil, errors.Errorf("failed to load current profile: %w", err)
	}
	if !ok {
		logger.Warn().Str("current_profile", raw).Msg("current profile no longer exists, ignoring")
		return nil, nil
	}
	return p, nil
}

// FindByName returns the profile whose name or title equals name
func (m *ProfileManager) FindByName(ctx context.Context, name string) (*domain.Profile, error) {
	profiles, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	if m.policy == MatchNameFirst {
		for _, p := range profiles {
			if p.Name == name {
				return p, nil
			}
		}
	}
	for _, p := range profiles {
		if p.Matches(name) {
			return p, nil
		}
	}

	return nil, &ProfileError{Ref: name, Reason: ErrNotFound}
}

// Resolve accepts a profile UUID, name or title
func (m *ProfileManager) Resolve(ctx context.Context, ref string) (*domain.Profile, error) {
	if id, err := uuid.Parse(strings.TrimSpace(ref)); err == nil {
		return m.Get(ctx, id)
	}
	return m.FindByName(ctx, ref)
}

// Latest returns the most recently created profile, or nil when none exist.
// Equal timestamps keep the first in store order.
func (m *ProfileManager) Latest(ctx context.Context) (*domain.Profile, error) {
	profiles, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	var latest *domain.Profile
	for _, p := range profiles {
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	return latest, nil
}

// CustomProperties returns the custom properties of a template. Properties
// that were never edited are all absent.
func (m *ProfileManager) CustomProperties(ctx context.Context, profileID uuid.UUID, templateID string) (domain.CustomProperties, error) {
	var cp domain.CustomProperties
	if err := ValidateRequired("templateID", templateID); err != nil {
		return cp, err
	}

	g := customSettings(m.store.Group(""), profileID, templateID)
	for _, f := range []struct {
		key string
		dst *domain.Optional[string]
	}{
		{"heading", &cp.Heading},
		{"subheading", &cp.Subheading},
		{"narrative", &cp.Narrative},
		{"logo_1", &cp.Logo1},
		{"logo_2", &cp.Logo2},
		{"logo_3", &cp.Logo3},
	} {
		v, err := getOptional(g, f.key)
		if err != nil {
			return cp, errors.Errorf("failed to read custom properties: %w", err)
		}
		*f.dst = v
	}
	return cp, nil
}

// SaveCustomProperties stores the custom properties of a template.
// They live beside the catalog, so later syncs leave them in place.
func (m *ProfileManager) SaveCustomProperties(ctx context.Context, profileID uuid.UUID, templateID string, cp domain.CustomProperties) error {
	if err := ValidateRequired("templateID", templateID); err != nil {
		return err
	}

	err := m.store.Update(func(root ports.SettingsGroup) error {
		exists, err := profileExists(root, profileID)
		if err != nil {
			return err
		}
		if !exists {
			return &ProfileError{Ref: profileID.String(), Reason: ErrProfileNotFound}
		}

		g := customSettings(root, profileID, templateID)
		for _, f := range cp.Fields() {
			if err := setOptional(g, f.Key, f.Value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Errorf("failed to save custom properties: %w", err)
	}
	return nil
}
