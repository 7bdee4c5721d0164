package ports

// AssetStore writes downloaded assets into a folder
type AssetStore interface {
	// Save writes data under name inside dir and returns the full path
	Save(dir, name string, data []byte) (string, error)
}

// FolderOpener opens a folder in the system file manager
type FolderOpener interface {
	OpenFolder(path string) error
}
