package catalog

import "context"

// EventRepository provides read access to catalogued events.
type EventRepository interface {
	// GetEvent returns the event with the given ID, or an
	// ErrCodeEventNotFound error.
	GetEvent(ctx context.Context, id EventID) (*Event, error)

	// GetEvents returns the events with the given IDs in the same order.
	// Missing IDs surface as ErrCodeEventNotFound.
	GetEvents(ctx context.Context, ids []EventID) ([]*Event, error)

	// ListEventTimes returns the onset times of all events in the catalog,
	// used by the overview rate series.
	ListEventTimes(ctx context.Context) ([]float64, error)

	// PutEvent inserts or replaces an event.
	PutEvent(ctx context.Context, ev *Event) error
}

// FamilyRepository provides access to the catalog's family table.
type FamilyRepository interface {
	// GetFamily returns the family with the given ID, or an
	// ErrCodeFamilyNotFound error.
	GetFamily(ctx context.Context, id FamilyID) (*Family, error)

	// ListFamilies returns all families ordered by ID.
	ListFamilies(ctx context.Context) ([]*Family, error)

	// PutFamily inserts or replaces a family after validating it.
	PutFamily(ctx context.Context, fam *Family) error
}

// TriggerRepository provides access to the raw trigger times (detections
// before family association), used by the overview rate series to contrast
// all triggers against repeaters.
type TriggerRepository interface {
	// ListTriggerTimes returns the onset times of all raw triggers.
	ListTriggerTimes(ctx context.Context) ([]float64, error)

	// PutTrigger records a raw trigger time.
	PutTrigger(ctx context.Context, t float64) error
}
