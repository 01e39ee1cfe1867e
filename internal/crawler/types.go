// Package crawler implements the rk9.gg scrape-and-ingest pipeline: page
// parsers, retry/backoff, polite pacing, and the ingestion services that
// turn listing and roster pages into persisted rows.
package crawler

import "time"

// LinkCell is one anchor found inside a listing cell.
type LinkCell struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// ListingRow is the plain extraction of one row of the past-events table.
// The fetcher layer produces these; parsers never touch the DOM.
type ListingRow struct {
	DateText string     `json:"date_text"`
	Name     string     `json:"name"`
	City     string     `json:"city"`
	Links    []LinkCell `json:"links"`
}

// RosterCell is one roster table cell: its trimmed text and, when the cell
// contains an anchor, that anchor's href.
type RosterCell struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// RosterTable is the plain extraction of a roster page table.
type RosterTable struct {
	Headers []string       `json:"headers"`
	Rows    [][]RosterCell `json:"rows"`
}

// ParsedEvent is one TCG tournament extracted from the events listing.
type ParsedEvent struct {
	ExternalID string `json:"event_id"`
	Name       string `json:"name"`
	DateText   string `json:"date_text"`
	City       string `json:"city"`
}

// ParsedParticipant is one roster row after column resolution.
type ParsedParticipant struct {
	MaskedID    string  `json:"player_id_masked"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Country     string  `json:"country"`
	Division    *string `json:"division,omitempty"`
	DeckListURL *string `json:"deck_list_url,omitempty"`
	Standing    *int    `json:"standing,omitempty"`
}

// Event is a persisted tournament. ExternalID is the site-assigned
// identifier and is globally unique; rows are immutable once created.
type Event struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"event_id"`
	Name       string    `json:"name"`
	DateText   string    `json:"date_text"`
	StartDate  *string   `json:"start_date,omitempty"`
	City       string    `json:"city"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewEvent carries the fields for an event insert.
type NewEvent struct {
	ExternalID string
	Name       string
	DateText   string
	StartDate  *string
	City       string
}

// Player is a persisted competitor. The site never exposes a stable global
// player ID, so identity is the 4-tuple (MaskedID, FirstName, LastName,
// Country). First recorded spelling wins; rows are never updated.
type Player struct {
	ID        int64     `json:"id"`
	MaskedID  string    `json:"player_id_masked"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerKey is the composite natural key used to resolve a Player.
type PlayerKey struct {
	MaskedID  string
	FirstName string
	LastName  string
	Country   string
}

// Participation links one Player to one Event. The (PlayerID, EventID)
// pair is unique.
type Participation struct {
	ID          int64     `json:"id"`
	PlayerID    int64     `json:"player_id"`
	EventID     int64     `json:"event_id"`
	Division    *string   `json:"division,omitempty"`
	DeckListURL *string   `json:"deck_list_url,omitempty"`
	Standing    *int      `json:"standing,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewParticipation carries the fields for a participation insert.
type NewParticipation struct {
	PlayerID    int64
	EventID     int64
	Division    *string
	DeckListURL *string
	Standing    *int
}

// EventCrawlResult reports one listing ingestion pass.
type EventCrawlResult struct {
	EventsAdded   int          `json:"events_added"`
	EventsSkipped int          `json:"events_skipped"`
	AddedIDs      []string     `json:"added_event_ids"`
	Errors        []CrawlError `json:"errors"`
}

// RosterCrawlResult reports one roster ingestion pass.
type RosterCrawlResult struct {
	EventID             string       `json:"event_id"`
	PlayersAdded        int          `json:"players_added"`
	PlayersReused       int          `json:"players_reused"`
	ParticipationsAdded int          `json:"participations_added"`
	Errors              []CrawlError `json:"errors"`
}

// Summary aggregates a full crawl run.
type Summary struct {
	RunID               string        `json:"run_id"`
	Mode                Mode          `json:"mode"`
	EventsProcessed     int           `json:"events_processed"`
	EventsAdded         int           `json:"events_added"`
	PlayersAdded        int           `json:"players_added"`
	PlayersReused       int           `json:"players_reused"`
	ParticipationsAdded int           `json:"participations_added"`
	TotalErrors         int           `json:"total_errors"`
	Duration            time.Duration `json:"duration"`
}
