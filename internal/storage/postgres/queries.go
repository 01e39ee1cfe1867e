package postgres

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultSearchLimit = 100
	maxSearchLimit     = 500
)

// SearchOptions filters a player search.
type SearchOptions struct {
	// Name is tokenized on whitespace; every word must match first or last
	// name as a case-insensitive substring.
	Name string
	// Country, when set, must match exactly.
	Country string
	// Division, when set, restricts to players with at least one
	// participation in that division.
	Division string
	// Limit defaults to 100 and caps at 500.
	Limit int
}

// PlayerSearchResult is one search hit with its participation count.
type PlayerSearchResult struct {
	ID                 int64  `json:"id"`
	MaskedID           string `json:"player_id_masked"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Country            string `json:"country"`
	ParticipationCount int    `json:"participation_count"`
}

// ParticipationDetail is one row of a player's tournament history.
type ParticipationDetail struct {
	ParticipationID int64   `json:"participation_id"`
	EventName       string  `json:"event_name"`
	EventDateText   string  `json:"event_date_text"`
	EventCity       string  `json:"event_city"`
	Division        *string `json:"division,omitempty"`
	DeckListURL     *string `json:"deck_list_url,omitempty"`
	Standing        *int    `json:"standing,omitempty"`
}

// SearchPlayers finds players whose names match every word of the query.
// A search for "J. Tomás Maxwell" matches first_name "J. Tomás" plus
// last_name "Maxwell" because each word only needs to match one of the two
// columns.
func (s *Store) SearchPlayers(ctx context.Context, opts SearchOptions) ([]PlayerSearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, word := range strings.Fields(opts.Name) {
		placeholder := arg("%" + word + "%")
		conditions = append(conditions,
			fmt.Sprintf("(p.first_name ILIKE %s OR p.last_name ILIKE %s)", placeholder, placeholder))
	}
	if opts.Country != "" {
		conditions = append(conditions, fmt.Sprintf("p.country = %s", arg(opts.Country)))
	}
	if opts.Division != "" {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM participations d WHERE d.player_id = p.id AND d.division = %s)",
			arg(opts.Division)))
	}

	query := `
SELECT p.id, p.player_id_masked, p.first_name, p.last_name, p.country,
	count(pa.id) AS participation_count
FROM players p
LEFT JOIN participations pa ON pa.player_id = p.id`
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += `
GROUP BY p.id, p.player_id_masked, p.first_name, p.last_name, p.country
ORDER BY p.last_name, p.first_name, p.id
LIMIT ` + arg(limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search players: %w", err)
	}
	defer rows.Close()

	var results []PlayerSearchResult
	for rows.Next() {
		var r PlayerSearchResult
		if err := rows.Scan(&r.ID, &r.MaskedID, &r.FirstName, &r.LastName, &r.Country, &r.ParticipationCount); err != nil {
			return nil, fmt.Errorf("scan player row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate player rows: %w", err)
	}
	return results, nil
}

// ListParticipations returns a player's tournament history, most recent
// event first. Events whose start date never parsed sort last.
func (s *Store) ListParticipations(ctx context.Context, playerID int64) ([]ParticipationDetail, error) {
	const query = `
SELECT pa.id, e.name, e.date_text, e.city, pa.division, pa.deck_list_url, pa.standing
FROM participations pa
JOIN events e ON e.id = pa.event_id
WHERE pa.player_id = $1
ORDER BY e.start_date DESC NULLS LAST, pa.id`
	rows, err := s.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	var details []ParticipationDetail
	for rows.Next() {
		var d ParticipationDetail
		if err := rows.Scan(&d.ParticipationID, &d.EventName, &d.EventDateText, &d.EventCity,
			&d.Division, &d.DeckListURL, &d.Standing); err != nil {
			return nil, fmt.Errorf("scan participation row: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participation rows: %w", err)
	}
	return details, nil
}
