package crawler

import (
	"context"
	"fmt"
	"time"
)

// fakeSite is an in-memory SiteClient serving canned listing rows and
// roster tables, with optional injected failures.
type fakeSite struct {
	listing      []ListingRow
	listingErrs  []error
	rosters      map[string]RosterTable
	rosterErrs   map[string]error
	started      bool
	closed       bool
	listingCalls int
	rosterCalls  map[string]int
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		rosters:     make(map[string]RosterTable),
		rosterErrs:  make(map[string]error),
		rosterCalls: make(map[string]int),
	}
}

func (f *fakeSite) Start(ctx context.Context) error {
	f.started = true
	return nil
}

func (f *fakeSite) EventsListing(ctx context.Context) ([]ListingRow, error) {
	call := f.listingCalls
	f.listingCalls++
	if call < len(f.listingErrs) && f.listingErrs[call] != nil {
		return nil, f.listingErrs[call]
	}
	return f.listing, nil
}

func (f *fakeSite) Roster(ctx context.Context, eventID string) (RosterTable, error) {
	f.rosterCalls[eventID]++
	if err, ok := f.rosterErrs[eventID]; ok {
		return RosterTable{}, err
	}
	table, ok := f.rosters[eventID]
	if !ok {
		return RosterTable{}, fmt.Errorf("no roster fixture for %s", eventID)
	}
	return table, nil
}

func (f *fakeSite) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

// fakeStore is an in-memory Store with the same uniqueness semantics as
// the Postgres implementation.
type fakeStore struct {
	events         map[string]*Event
	players        map[PlayerKey]*Player
	participations map[[2]int64]*Participation
	nextID         int64
	pingErr        error
	insertEventErr map[string]error
	closed         bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:         make(map[string]*Event),
		players:        make(map[PlayerKey]*Player),
		participations: make(map[[2]int64]*Participation),
		insertEventErr: make(map[string]error),
	}
}

func (f *fakeStore) Ping(ctx context.Context) error {
	return f.pingErr
}

func (f *fakeStore) FindEventByExternalID(ctx context.Context, externalID string) (*Event, error) {
	event, ok := f.events[externalID]
	if !ok {
		return nil, nil
	}
	return event, nil
}

func (f *fakeStore) ExistingExternalIDs(ctx context.Context, ids []string) ([]string, error) {
	existing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := f.events[id]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

func (f *fakeStore) InsertEvent(ctx context.Context, event NewEvent) (*Event, error) {
	if err, ok := f.insertEventErr[event.ExternalID]; ok {
		return nil, err
	}
	if _, ok := f.events[event.ExternalID]; ok {
		return nil, fmt.Errorf("duplicate key value violates unique constraint %q", "events_event_id_unique")
	}
	f.nextID++
	row := &Event{
		ID:         f.nextID,
		ExternalID: event.ExternalID,
		Name:       event.Name,
		DateText:   event.DateText,
		StartDate:  event.StartDate,
		City:       event.City,
		CreatedAt:  time.Now().UTC(),
	}
	f.events[event.ExternalID] = row
	return row, nil
}

func (f *fakeStore) FindOrCreatePlayer(ctx context.Context, key PlayerKey) (*Player, bool, error) {
	if player, ok := f.players[key]; ok {
		return player, false, nil
	}
	f.nextID++
	player := &Player{
		ID:        f.nextID,
		MaskedID:  key.MaskedID,
		FirstName: key.FirstName,
		LastName:  key.LastName,
		Country:   key.Country,
		CreatedAt: time.Now().UTC(),
	}
	f.players[key] = player
	return player, true, nil
}

func (f *fakeStore) InsertParticipation(ctx context.Context, p NewParticipation) (InsertOutcome, error) {
	key := [2]int64{p.PlayerID, p.EventID}
	if _, ok := f.participations[key]; ok {
		return AlreadyExists, nil
	}
	f.nextID++
	f.participations[key] = &Participation{
		ID:          f.nextID,
		PlayerID:    p.PlayerID,
		EventID:     p.EventID,
		Division:    p.Division,
		DeckListURL: p.DeckListURL,
		Standing:    p.Standing,
		CreatedAt:   time.Now().UTC(),
	}
	return Inserted, nil
}

func (f *fakeStore) Close() {
	f.closed = true
}

// noPause satisfies Pauser without sleeping so tests stay fast.
type noPause struct {
	calls int
}

func (p *noPause) Pause(ctx context.Context) {
	p.calls++
}

// fixedClock ticks forward a constant step on every Now call.
type fixedClock struct {
	now  time.Time
	step time.Duration
}

func (c *fixedClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}
