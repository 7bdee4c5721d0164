package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/domain"
	"stylebook/internal/ports"
)

// Downloader fetches catalog assets into the configured download folder
type Downloader struct {
	profiles *ProfileManager
	sync     *Synchronizer
	prefs    *Preferences
	fetcher  ports.CatalogFetcher
	assets   ports.AssetStore
}

// NewDownloader creates a Downloader
func NewDownloader(profiles *ProfileManager, sync *Synchronizer, prefs *Preferences, fetcher ports.CatalogFetcher, assets ports.AssetStore) *Downloader {
	return &Downloader{
		profiles: profiles,
		sync:     sync,
		prefs:    prefs,
		fetcher:  fetcher,
		assets:   assets,
	}
}

// DownloadResult describes a downloaded asset
type DownloadResult struct {
	URL  string
	Path string
	Size int
}

// Download fetches the asset of one catalog entry and writes it to the
// download folder under a cleaned "<name>.<extension>" file name
func (d *Downloader) Download(ctx context.Context, profileID uuid.UUID, kind domain.CatalogKind, entryID string) (*DownloadResult, error) {
	if err := ValidateRequired("entryID", entryID); err != nil {
		return nil, err
	}

	folder, err := d.prefs.DownloadFolder(ctx)
	if err != nil {
		return nil, err
	}
	if folder == "" {
		return nil, ErrNoDownloadFolder
	}

	p, err := d.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}

	entry, err := d.sync.Find(ctx, profileID, kind, entryID)
	if err != nil {
		return nil, err
	}

	url, err := domain.AssetURL(p.Path, kind, entry)
	if err != nil {
		return nil, &ValidationError{Field: "entryID", Message: err.Error()}
	}
	fileName, err := domain.AssetFileName(entry)
	if err != nil {
		return nil, &ValidationError{Field: "entryID", Message: err.Error()}
	}

	logger := zerolog.Ctx(ctx).With().Str("url", url).Str("folder", folder).Logger()
	logger.Info().Msg("download started")

	data, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		logger.Error().Err(err).Msg("download failed")
		return nil, errors.Errorf("failed to download %s: %w", url, err)
	}

	path, err := d.assets.Save(folder, domain.CleanFilename(fileName), data)
	if err != nil {
		return nil, errors.Errorf("failed to store %s: %w", fileName, err)
	}

	logger.Info().Str("path", path).Int("bytes", len(data)).Msg("download finished")
	return &DownloadResult{URL: url, Path: path, Size: len(data)}, nil
}
