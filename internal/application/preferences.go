package application

import (
	"context"
	"io/fs"
	"strconv"

	"gitlab.com/tozd/go/errors"

	"stylebook/internal/ports"
)

// Preferences holds plugin-wide settings outside the profiles namespace
type Preferences struct {
	store ports.SettingsStore
}

// NewPreferences creates Preferences over store
func NewPreferences(store ports.SettingsStore) *Preferences {
	return &Preferences{store: store}
}

// DownloadFolder returns the folder assets are downloaded into, or ""
func (p *Preferences) DownloadFolder(ctx context.Context) (string, error) {
	v, _, err := baseSettings(p.store.Group("")).Value(downloadKey)
	if err != nil {
		return "", errors.Errorf("failed to read download folder: %w", err)
	}
	return v, nil
}

// SetDownloadFolder stores the download folder; "" clears it
func (p *Preferences) SetDownloadFolder(ctx context.Context, folder string) error {
	base := baseSettings(p.store.Group(""))
	var err error
	if folder == "" {
		err = base.Remove(downloadKey)
	} else {
		err = base.SetValue(downloadKey, folder)
	}
	if err != nil {
		return errors.Errorf("failed to store download folder: %w", err)
	}
	return nil
}

// DefaultsApplied reports whether the default profiles were already seeded
func (p *Preferences) DefaultsApplied(ctx context.Context) (bool, error) {
	v, ok, err := baseSettings(p.store.Group("")).Value(defaultsSetKey)
	if err != nil || !ok {
		return false, err
	}
	applied, _ := strconv.ParseBool(v)
	return applied, nil
}

// OpenDownloadFolder shows the download folder in the file manager and
// returns its path. Permission failures match ErrPermission.
func (p *Preferences) OpenDownloadFolder(ctx context.Context, opener ports.FolderOpener) (string, error) {
	folder, err := p.DownloadFolder(ctx)
	if err != nil {
		return "", err
	}
	if folder == "" {
		return "", ErrNoDownloadFolder
	}

	if err := opener.OpenFolder(folder); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", errors.Errorf("%s: %w", folder, ErrPermission)
		}
		return "", errors.Errorf("failed to open download folder: %w", err)
	}
	return folder, nil
}

func (p *Preferences) markDefaultsApplied(ctx context.Context) error {
	return baseSettings(p.store.Group("")).SetValue(defaultsSetKey, strconv.FormatBool(true))
}
