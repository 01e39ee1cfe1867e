// Package postgres implements the crawler's persistence contract on
// PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ptcgtools/rk9-crawler/internal/crawler"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// dbPool is the pool surface the store uses; pgxmock satisfies it in tests.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store implements crawler.Store on a pgx pool.
type Store struct {
	pool   dbPool
	logger *zap.Logger
}

// New connects a pool from config.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewWithPool(pool, logger), nil
}

// NewWithPool constructs a store from an existing pool (primarily for
// testing).
func NewWithPool(pool dbPool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{pool: pool, logger: logger}
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the pool. Safe to call more than once.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// FindEventByExternalID returns the event with the given site-assigned ID,
// or nil when absent.
func (s *Store) FindEventByExternalID(ctx context.Context, externalID string) (*crawler.Event, error) {
	const query = `
SELECT id, event_id, name, date_text, start_date, city, created_at
FROM events
WHERE event_id = $1`
	var e crawler.Event
	err := s.pool.QueryRow(ctx, query, externalID).Scan(
		&e.ID, &e.ExternalID, &e.Name, &e.DateText, &e.StartDate, &e.City, &e.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find event %s: %w", externalID, err)
	}
	return &e, nil
}

// ExistingExternalIDs returns the subset of ids already persisted, via one
// batched query.
func (s *Store) ExistingExternalIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT event_id FROM events WHERE event_id = ANY($1)`
	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query existing event ids: %w", err)
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan event id: %w", err)
		}
		existing = append(existing, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event ids: %w", err)
	}
	return existing, nil
}

// InsertEvent writes a new event. A duplicate external ID violates the
// uniqueness constraint and surfaces as an error.
func (s *Store) InsertEvent(ctx context.Context, event crawler.NewEvent) (*crawler.Event, error) {
	const query = `
INSERT INTO events (event_id, name, date_text, start_date, city)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`
	e := crawler.Event{
		ExternalID: event.ExternalID,
		Name:       event.Name,
		DateText:   event.DateText,
		StartDate:  event.StartDate,
		City:       event.City,
	}
	err := s.pool.QueryRow(ctx, query,
		event.ExternalID, event.Name, event.DateText, event.StartDate, event.City,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert event %s: %w", event.ExternalID, err)
	}
	return &e, nil
}

// FindOrCreatePlayer resolves a player by the composite natural key,
// creating the row on first sighting. The insert races safely against
// concurrent writers: ON CONFLICT DO NOTHING followed by a lookup.
func (s *Store) FindOrCreatePlayer(ctx context.Context, key crawler.PlayerKey) (*crawler.Player, bool, error) {
	const insert = `
INSERT INTO players (player_id_masked, first_name, last_name, country)
VALUES ($1, $2, $3, $4)
ON CONFLICT ON CONSTRAINT players_identity_unique DO NOTHING
RETURNING id, created_at`
	p := crawler.Player{
		MaskedID:  key.MaskedID,
		FirstName: key.FirstName,
		LastName:  key.LastName,
		Country:   key.Country,
	}
	err := s.pool.QueryRow(ctx, insert,
		key.MaskedID, key.FirstName, key.LastName, key.Country,
	).Scan(&p.ID, &p.CreatedAt)
	if err == nil {
		return &p, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("insert player: %w", err)
	}

	const find = `
SELECT id, created_at
FROM players
WHERE player_id_masked = $1 AND first_name = $2 AND last_name = $3 AND country = $4`
	err = s.pool.QueryRow(ctx, find,
		key.MaskedID, key.FirstName, key.LastName, key.Country,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("find player: %w", err)
	}
	return &p, false, nil
}

// InsertParticipation writes a participation row, reporting AlreadyExists
// when the (player, event) pair is already present.
func (s *Store) InsertParticipation(ctx context.Context, p crawler.NewParticipation) (crawler.InsertOutcome, error) {
	const query = `
INSERT INTO participations (player_id, event_id, division, deck_list_url, standing)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT ON CONSTRAINT participations_player_event_unique DO NOTHING
RETURNING id`
	var id int64
	err := s.pool.QueryRow(ctx, query,
		p.PlayerID, p.EventID, p.Division, p.DeckListURL, p.Standing,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return crawler.AlreadyExists, nil
	}
	if err != nil {
		return crawler.AlreadyExists, fmt.Errorf("insert participation: %w", err)
	}
	return crawler.Inserted, nil
}
