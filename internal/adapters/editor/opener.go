package editor

import (
	"os"
	"os/exec"
	"strings"

	"gitlab.com/tozd/go/errors"

	"stylebook/internal/ports"
)

// ErrNoEditor is returned when no editor is configured or installed
var ErrNoEditor = errors.Base("no editor found: set editor in the config or $EDITOR")

// fallbacks are tried in order when nothing is configured
var fallbacks = []string{"nvim", "vim", "vi", "nano"}

// Editor implements ports.AssetEditor
type Editor struct {
	preferred string
	getenv    func(string) string
	lookPath  func(string) (string, error)
}

var _ ports.AssetEditor = (*Editor)(nil)

// New creates an editor launcher. preferred comes from the config and may
// carry arguments, e.g. "code --wait".
func New(preferred string) *Editor {
	return &Editor{
		preferred: preferred,
		getenv:    os.Getenv,
		lookPath:  exec.LookPath,
	}
}

// Command returns the editor process for path, attached to the terminal
func (e *Editor) Command(path string) (*exec.Cmd, error) {
	argv := e.resolve()
	if len(argv) == 0 {
		return nil, errors.WithStack(ErrNoEditor)
	}

	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, nil
}

// Open runs the editor on path and waits for it to exit
func (e *Editor) Open(path string) error {
	cmd, err := e.Command(path)
	if err != nil {
		return err
	}
	if err := cmd.Run(); err != nil {
		return errors.Errorf("editor exited: %w", err)
	}
	return nil
}

// resolve picks the config value, then $VISUAL and $EDITOR, then the first
// installed fallback
func (e *Editor) resolve() []string {
	for _, v := range []string{e.preferred, e.getenv("VISUAL"), e.getenv("EDITOR")} {
		if argv := strings.Fields(v); len(argv) > 0 {
			return argv
		}
	}
	for _, name := range fallbacks {
		if path, err := e.lookPath(name); err == nil {
			return []string{path}
		}
	}
	return nil
}
