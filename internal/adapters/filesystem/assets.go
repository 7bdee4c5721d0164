package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/ports"
)

// AssetStore implements ports.AssetStore on an afero filesystem
type AssetStore struct {
	fs afero.Fs
}

// Ensure AssetStore implements ports.AssetStore
var _ ports.AssetStore = (*AssetStore)(nil)

// NewAssetStore creates an AssetStore over fs
func NewAssetStore(fs afero.Fs) *AssetStore {
	return &AssetStore{fs: fs}
}

// NewOsAssetStore creates an AssetStore on the host filesystem
func NewOsAssetStore() *AssetStore {
	return NewAssetStore(afero.NewOsFs())
}

// Save writes data to dir/name, creating dir when needed. The file is
// written under a temporary name first so a failed download never leaves
// a truncated asset behind.
func (s *AssetStore) Save(dir, name string, data []byte) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", errors.Errorf("invalid asset file name: %q", name)
	}

	dir = ExpandHome(dir)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Errorf("failed to create download folder: %w", err)
	}

	dst := filepath.Join(dir, name)
	tmp, err := afero.TempFile(s.fs, dir, "."+name+".*")
	if err != nil {
		return "", errors.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return "", errors.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return "", errors.Errorf("failed to write %s: %w", name, err)
	}
	if err := s.fs.Rename(tmpName, dst); err != nil {
		s.fs.Remove(tmpName)
		return "", errors.Errorf("failed to move %s into place: %w", name, err)
	}
	return dst, nil
}

// List returns the regular files in dir, sorted by name
func (s *AssetStore) List(dir string) ([]string, error) {
	infos, err := afero.ReadDir(s.fs, ExpandHome(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Errorf("failed to read download folder: %w", err)
	}

	var names []string
	for _, info := range infos {
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			continue
		}
		names = append(names, info.Name())
	}
	return names, nil
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
