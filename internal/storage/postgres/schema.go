package postgres

import (
	"context"
	"fmt"
)

// schemaStatements creates the three tables and their uniqueness
// constraints. The constraints are the sole concurrency backstop: event
// external IDs, the player 4-tuple, and the (player, event) pair.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
	id BIGSERIAL PRIMARY KEY,
	event_id TEXT NOT NULL,
	name TEXT NOT NULL,
	date_text TEXT NOT NULL DEFAULT '',
	start_date TEXT,
	city TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT events_event_id_unique UNIQUE (event_id)
)`,
	`CREATE TABLE IF NOT EXISTS players (
	id BIGSERIAL PRIMARY KEY,
	player_id_masked TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	country TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT players_identity_unique UNIQUE (player_id_masked, first_name, last_name, country)
)`,
	`CREATE INDEX IF NOT EXISTS players_name_idx ON players (first_name, last_name)`,
	`CREATE TABLE IF NOT EXISTS participations (
	id BIGSERIAL PRIMARY KEY,
	player_id BIGINT NOT NULL REFERENCES players(id),
	event_id BIGINT NOT NULL REFERENCES events(id),
	division TEXT,
	deck_list_url TEXT,
	standing INTEGER,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT participations_player_event_unique UNIQUE (player_id, event_id)
)`,
	`CREATE INDEX IF NOT EXISTS participations_player_idx ON participations (player_id)`,
}

// EnsureSchema creates the tables when they do not exist yet. Dedicated
// migration tooling is deliberately out of scope; the schema is small and
// append-only.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
