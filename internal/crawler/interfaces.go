package crawler

import (
	"context"
	"time"
)

// SiteClient renders the source site's pages and returns plain extracted
// structures. Implementations own the browser/HTTP machinery; parsers only
// ever see ListingRow and RosterTable values, so tests never touch a DOM.
type SiteClient interface {
	// Start launches the underlying session. Calling Start on an already
	// started client is a no-op.
	Start(ctx context.Context) error
	// EventsListing fetches the past-events listing rows.
	EventsListing(ctx context.Context) ([]ListingRow, error)
	// Roster fetches the roster table for one event, switching the table to
	// its unpaginated view when that control exists.
	Roster(ctx context.Context, eventID string) (RosterTable, error)
	// Close tears the session down. Closing a never-started or already
	// closed client is a no-op.
	Close(ctx context.Context) error
}

// InsertOutcome tags the result of a participation insert so callers cannot
// mistake a duplicate no-op for a failure.
type InsertOutcome int

const (
	// Inserted means a new row was written.
	Inserted InsertOutcome = iota
	// AlreadyExists means the uniqueness constraint matched an existing row
	// and nothing was written.
	AlreadyExists
)

// Store is the narrow persistence contract the pipeline relies on.
type Store interface {
	Ping(ctx context.Context) error
	// FindEventByExternalID returns nil without error when absent.
	FindEventByExternalID(ctx context.Context, externalID string) (*Event, error)
	// ExistingExternalIDs returns the subset of ids already persisted, as a
	// single batched query.
	ExistingExternalIDs(ctx context.Context, ids []string) ([]string, error)
	// InsertEvent fails on a duplicate external ID.
	InsertEvent(ctx context.Context, event NewEvent) (*Event, error)
	// FindOrCreatePlayer resolves the composite key, creating the row on
	// first sighting. The bool reports whether a row was created.
	FindOrCreatePlayer(ctx context.Context, key PlayerKey) (*Player, bool, error)
	// InsertParticipation reports AlreadyExists on a (player, event)
	// uniqueness collision instead of an error.
	InsertParticipation(ctx context.Context, p NewParticipation) (InsertOutcome, error)
	Close()
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock with time.Now.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
