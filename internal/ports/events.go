package ports

import "github.com/google/uuid"

// EventType identifies what changed
type EventType int

const (
	EventProfilesChanged EventType = iota
	EventCurrentChanged
	EventCatalogChanged
)

func (t EventType) String() string {
	switch t {
	case EventProfilesChanged:
		return "profiles_changed"
	case EventCurrentChanged:
		return "current_changed"
	case EventCatalogChanged:
		return "catalog_changed"
	default:
		return "unknown"
	}
}

// Event is emitted after a successful write
type Event struct {
	Type      EventType
	ProfileID uuid.UUID
	Kind      string // catalog kind, for EventCatalogChanged
}

// Notifier delivers events to observers such as list views
type Notifier interface {
	Notify(Event)
}
