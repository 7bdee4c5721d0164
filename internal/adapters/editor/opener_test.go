package editor

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestEditor_Command(t *testing.T) {
	tests := []struct {
		name      string
		preferred string
		env       map[string]string
		installed []string
		wantArgs  []string
		wantErr   bool
	}{
		{
			name:      "config wins",
			preferred: "code --wait",
			env:       map[string]string{"EDITOR": "vim"},
			wantArgs:  []string{"code", "--wait", "/tmp/a4.qpt"},
		},
		{
			name:     "visual before editor",
			env:      map[string]string{"VISUAL": "emacs", "EDITOR": "vim"},
			wantArgs: []string{"emacs", "/tmp/a4.qpt"},
		},
		{
			name:     "editor",
			env:      map[string]string{"EDITOR": "hx"},
			wantArgs: []string{"hx", "/tmp/a4.qpt"},
		},
		{
			name:      "blank config falls through",
			preferred: "  ",
			env:       map[string]string{"EDITOR": "hx"},
			wantArgs:  []string{"hx", "/tmp/a4.qpt"},
		},
		{
			name:      "installed fallback",
			installed: []string{"nano"},
			wantArgs:  []string{"/usr/bin/nano", "/tmp/a4.qpt"},
		},
		{
			name:    "nothing available",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.preferred)
			e.getenv = func(k string) string { return tt.env[k] }
			e.lookPath = func(name string) (string, error) {
				for _, n := range tt.installed {
					if n == name {
						return "/usr/bin/" + n, nil
					}
				}
				return "", exec.ErrNotFound
			}

			cmd, err := e.Command("/tmp/a4.qpt")
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrNoEditor))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantArgs, cmd.Args)
		})
	}
}
