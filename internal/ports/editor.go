package ports

import "os/exec"

// AssetEditor opens a downloaded asset in a text editor
type AssetEditor interface {
	// Command returns the editor process for path, wired to the terminal.
	// It is run directly by the CLI and through tea.ExecProcess by the TUI.
	Command(path string) (*exec.Cmd, error)
}
