package application

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/domain"
)

// EnsureDefaults seeds the default profiles the first time it runs.
// Profiles that already exist are left alone; a seed marked Selected
// becomes the current profile. Returns whether seeding happened.
func EnsureDefaults(ctx context.Context, profiles *ProfileManager, prefs *Preferences, seeds []domain.SeedProfile) (bool, error) {
	applied, err := prefs.DefaultsApplied(ctx)
	if err != nil {
		return false, err
	}
	if applied {
		return false, nil
	}

	logger := zerolog.Ctx(ctx)
	for _, seed := range seeds {
		p := seed.Profile
		exists, err := profiles.Exists(ctx, p.ID)
		if err != nil {
			return false, err
		}
		if exists {
			continue
		}

		if err := profiles.Save(ctx, p); err != nil {
			return false, errors.Errorf("failed to seed profile %s: %w", p.Name, err)
		}
		logger.Info().Str("profile", p.Name).Msg("seeded default profile")

		if seed.Selected {
			if err := profiles.SetCurrent(ctx, p.ID); err != nil {
				return false, err
			}
		}
	}

	if err := prefs.markDefaultsApplied(ctx); err != nil {
		return false, errors.Errorf("failed to record default profiles: %w", err)
	}
	return true, nil
}
