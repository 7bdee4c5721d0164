package sqlite

import (
	"database/sql"
	"embed"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/ports"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Settings implements ports.SettingsStore on a single SQLite table of
// slash-delimited keys
type Settings struct {
	db     *sql.DB
	dbPath string
}

// Ensure Settings implements SettingsStore
var _ ports.SettingsStore = (*Settings)(nil)

// Open opens (creating if needed) the settings database at dbPath and
// brings its schema up to date
func Open(dbPath string) (*Settings, error) {
	// Expand ~ in path
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.Errorf("failed to create settings directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
	`); err != nil {
		db.Close()
		return nil, errors.Errorf("failed to setup database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Settings{db: db, dbPath: dbPath}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return errors.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return errors.Errorf("failed to run settings migrations: %w", err)
	}
	return nil
}

// Path returns the database file path
func (s *Settings) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Settings) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Group returns a handle scoped to path
func (s *Settings) Group(path string) ports.SettingsGroup {
	return &group{q: s.db, path: cleanPath(path)}
}

// Update runs fn inside a transaction; any error rolls everything back
func (s *Settings) Update(fn func(root ports.SettingsGroup) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&group{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Errorf("failed to commit settings: %w", err)
	}
	return nil
}

// cleanPath trims redundant separators so "a//b/" and "a/b" address the same group
func cleanPath(path string) string {
	parts := strings.Split(path, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

func joinPath(base, key string) string {
	key = cleanPath(key)
	if base == "" {
		return key
	}
	if key == "" {
		return base
	}
	return base + "/" + key
}
