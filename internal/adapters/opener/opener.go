package opener

import (
	"os"
	"os/exec"
	"runtime"

	"gitlab.com/tozd/go/errors"

	"stylebook/internal/ports"
)

// Opener implements ports.FolderOpener with the platform's file manager
type Opener struct {
	goos string
}

// Ensure Opener implements ports.FolderOpener
var _ ports.FolderOpener = (*Opener)(nil)

// NewOpener creates an opener for the running platform
func NewOpener() *Opener {
	return &Opener{goos: runtime.GOOS}
}

// OpenFolder opens path in the file manager. Permission failures wrap
// fs.ErrPermission.
func (o *Opener) OpenFolder(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("cannot open %s: %w", path, err)
	}
	if !info.IsDir() {
		return errors.Errorf("not a folder: %s", path)
	}

	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	if err := cmd.Run(); err != nil {
		return errors.Errorf("failed to open %s: %w", path, err)
	}
	return nil
}

// Command returns the command that opens path
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	switch o.goos {
	case "darwin":
		return exec.Command("open", path), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", path), nil
	case "windows":
		return exec.Command("explorer", path), nil
	default:
		return nil, errors.Errorf("unsupported operating system: %s", o.goos)
	}
}
