package sqlite

import (
	"database/sql"
	"strings"

	"gitlab.com/tozd/go/errors"

	"stylebook/internal/ports"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// group implements ports.SettingsGroup
type group struct {
	q    querier
	path string
}

// Ensure group implements SettingsGroup
var _ ports.SettingsGroup = (*group)(nil)

func (g *group) Path() string {
	return g.path
}

func (g *group) Group(path string) ports.SettingsGroup {
	return &group{q: g.q, path: joinPath(g.path, path)}
}

// Value retrieves a value by key
func (g *group) Value(key string) (string, bool, error) {
	var value string
	err := g.q.QueryRow(`SELECT value FROM settings WHERE key = ?`, joinPath(g.path, key)).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Errorf("failed to read %s: %w", joinPath(g.path, key), err)
	}
	return value, true, nil
}

// SetValue inserts or replaces a value
func (g *group) SetValue(key, value string) error {
	full := joinPath(g.path, key)
	if full == "" {
		return errors.New("empty settings key")
	}
	_, err := g.q.Exec(`
		INSERT OR REPLACE INTO settings (key, value, updated_at)
		VALUES (?, ?, strftime('%s', 'now'))
	`, full, value)
	if err != nil {
		return errors.Errorf("failed to write %s: %w", full, err)
	}
	return nil
}

// Remove deletes a key and its subtree
func (g *group) Remove(key string) error {
	full := joinPath(g.path, key)
	if full == "" {
		return errors.New("refusing to remove the settings root")
	}
	_, err := g.q.Exec(`DELETE FROM settings WHERE key = ? OR instr(key, ?) = 1`, full, full+"/")
	if err != nil {
		return errors.Errorf("failed to remove %s: %w", full, err)
	}
	return nil
}

// ChildGroups lists direct sub-groups in key order
func (g *group) ChildGroups() ([]string, error) {
	return g.children(true)
}

// ChildKeys lists direct leaf keys in key order
func (g *group) ChildKeys() ([]string, error) {
	return g.children(false)
}

func (g *group) children(groups bool) ([]string, error) {
	prefix := ""
	if g.path != "" {
		prefix = g.path + "/"
	}

	var (
		rows *sql.Rows
		err  error
	)
	if prefix == "" {
		rows, err = g.q.Query(`SELECT key FROM settings ORDER BY key`)
	} else {
		rows, err = g.q.Query(`SELECT key FROM settings WHERE instr(key, ?) = 1 ORDER BY key`, prefix)
	}
	if err != nil {
		return nil, errors.Errorf("failed to list %s: %w", g.path, err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var names []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		rest := strings.TrimPrefix(key, prefix)
		i := strings.IndexByte(rest, '/')

		var name string
		switch {
		case groups && i > 0:
			name = rest[:i]
		case !groups && i < 0:
			name = rest
		default:
			continue
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	return names, rows.Err()
}
