package application

import (
	"stylebook/internal/ports"
)

// App wires the use cases over one settings store
type App struct {
	Profiles   *ProfileManager
	Catalogs   *Synchronizer
	Prefs      *Preferences
	Downloader *Downloader
	Events     *Broadcaster
}

// NewApp builds the use cases. fetcher serves both catalog documents and
// asset downloads.
func NewApp(store ports.SettingsStore, fetcher ports.CatalogFetcher, assets ports.AssetStore, opts ...ProfileOption) *App {
	events := NewBroadcaster()
	profiles := NewProfileManager(store, events, opts...)
	catalogs := NewSynchronizer(store, fetcher, events)
	prefs := NewPreferences(store)

	return &App{
		Profiles:   profiles,
		Catalogs:   catalogs,
		Prefs:      prefs,
		Downloader: NewDownloader(profiles, catalogs, prefs, fetcher, assets),
		Events:     events,
	}
}
