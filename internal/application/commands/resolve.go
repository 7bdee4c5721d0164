package commands

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"stylebook/internal/application"
	"stylebook/internal/domain"
)

// ErrNoCurrentProfile is returned when a command needs a profile, none was
// given and no profile is selected
var ErrNoCurrentProfile = errors.Base("no profile given and no current profile selected")

// ResolveProfile resolves ref by UUID, name or title. An empty ref means
// the current profile.
func ResolveProfile(ctx context.Context, profiles *application.ProfileManager, ref string) (*domain.Profile, error) {
	if ref != "" {
		return profiles.Resolve(ctx, ref)
	}
	p, err := profiles.Current(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoCurrentProfile
	}
	return p, nil
}
