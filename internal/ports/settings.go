package ports

// SettingsGroup is a handle scoped to one slash-delimited path of the
// settings hierarchy. Keys and sub-groups are relative to Path.
type SettingsGroup interface {
	// Path returns the absolute path of this group ("" for the root)
	Path() string

	// Value returns the value at key and whether it exists
	Value(key string) (string, bool, error)
	// SetValue writes a single value, replacing any existing one
	SetValue(key, value string) error
	// Remove deletes key together with every key below it
	Remove(key string) error

	// ChildGroups lists the direct sub-groups (segments that have keys below them)
	ChildGroups() ([]string, error)
	// ChildKeys lists the direct leaf keys
	ChildKeys() ([]string, error)

	// Group returns a handle scoped to a sub-path
	Group(path string) SettingsGroup
}

// SettingsStore is the hierarchical key-value persistence used for
// profiles, catalogs and plugin-wide settings
type SettingsStore interface {
	// Group returns a handle scoped to path
	Group(path string) SettingsGroup

	// Update runs fn against the root group inside a single transaction.
	// Nothing fn wrote is visible if it returns an error.
	Update(fn func(root SettingsGroup) error) error

	Close() error
}
