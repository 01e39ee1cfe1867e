package crawler

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// rosterField names one column the roster parser cares about.
type rosterField int

const (
	fieldMaskedID rosterField = iota
	fieldFirstName
	fieldLastName
	fieldCountry
	fieldDivision
	fieldDeckList
	fieldStanding
)

// rosterColumnCandidates maps each field to the normalized header labels
// that identify it. Column sets vary across tournament eras (older events
// have no country column at all), so resolution is by header text, never
// by position.
var rosterColumnCandidates = []struct {
	field  rosterField
	labels []string
}{
	{fieldMaskedID, []string{"player id"}},
	{fieldFirstName, []string{"first name"}},
	{fieldLastName, []string{"last name"}},
	{fieldCountry, []string{"country"}},
	{fieldDivision, []string{"division"}},
	{fieldDeckList, []string{"deck list"}},
	{fieldStanding, []string{"standing"}},
}

// columnIndex holds the resolved position of each field, -1 when the
// header row has no matching column.
type columnIndex map[rosterField]int

// resolveColumns normalizes the header labels and resolves each field's
// position once per page fetch.
func resolveColumns(headers []string) columnIndex {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeWhitespace(strings.ToLower(h))
	}
	index := make(columnIndex, len(rosterColumnCandidates))
	for _, candidate := range rosterColumnCandidates {
		index[candidate.field] = -1
		for i, h := range normalized {
			for _, label := range candidate.labels {
				if h == label {
					index[candidate.field] = i
					break
				}
			}
			if index[candidate.field] >= 0 {
				break
			}
		}
	}
	return index
}

func (c columnIndex) text(row []RosterCell, field rosterField) string {
	i := c[field]
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i].Text)
}

func (c columnIndex) href(row []RosterCell, field rosterField) *string {
	i := c[field]
	if i < 0 || i >= len(row) || row[i].Href == "" {
		return nil
	}
	href := row[i].Href
	return &href
}

// ParseRoster converts an extracted roster table into participants.
// Missing columns yield empty/nil fields rather than failing the row; a
// standing of "" or "-" means unplaced and maps to nil rather than zero.
func ParseRoster(table RosterTable) []ParsedParticipant {
	columns := resolveColumns(table.Headers)
	participants := make([]ParsedParticipant, 0, len(table.Rows))

	for _, row := range table.Rows {
		country := strings.ToUpper(columns.text(row, fieldCountry))
		if !countryCodePattern.MatchString(country) {
			country = ""
		}

		var division *string
		if d := columns.text(row, fieldDivision); d != "" {
			division = &d
		}

		var standing *int
		if s := columns.text(row, fieldStanding); s != "" && s != "-" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				standing = &n
			}
		}

		participants = append(participants, ParsedParticipant{
			MaskedID:    columns.text(row, fieldMaskedID),
			FirstName:   columns.text(row, fieldFirstName),
			LastName:    columns.text(row, fieldLastName),
			Country:     country,
			Division:    division,
			DeckListURL: columns.href(row, fieldDeckList),
			Standing:    standing,
		})
	}
	return participants
}

// IsValidParticipant reports whether a parsed record is persistable: masked
// ID and both names non-empty, country exactly two uppercase letters.
func IsValidParticipant(p ParsedParticipant) bool {
	return p.MaskedID != "" &&
		p.FirstName != "" &&
		p.LastName != "" &&
		countryCodePattern.MatchString(p.Country)
}

// RosterService ingests one event's roster: fetch, validate, resolve
// players by composite key, insert participations with duplicate-skip
// semantics.
type RosterService struct {
	site   SiteClient
	store  Store
	retry  RetryOptions
	logger *zap.Logger
}

// NewRosterService wires a RosterService.
func NewRosterService(site SiteClient, store Store, retry RetryOptions, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{
		site:   site,
		store:  store,
		retry:  retry,
		logger: logger,
	}
}

// FetchRoster navigates to the event's roster page and parses it, retrying
// transient failures.
func (s *RosterService) FetchRoster(ctx context.Context, eventID string) ([]ParsedParticipant, error) {
	opts := s.retry
	opts.ShouldRetry = IsRetryable
	opts.OnRetry = func(err error, attempt int) {
		s.logger.Warn("retrying roster fetch",
			zap.String("event_id", eventID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	table, err := Retry(ctx, opts, func(ctx context.Context) (RosterTable, error) {
		return s.site.Roster(ctx, eventID)
	})
	if err != nil {
		fetchErrors.WithLabelValues("roster").Inc()
		return nil, err
	}
	pagesFetched.WithLabelValues("roster").Inc()
	return ParseRoster(table), nil
}

// Persist writes the valid participants for one event. Invalid records are
// dropped silently; a duplicate (player, event) pair is counted as already
// present, not an error; any other per-record failure is captured and the
// batch continues.
func (s *RosterService) Persist(ctx context.Context, eventID string, participants []ParsedParticipant) RosterCrawlResult {
	result := RosterCrawlResult{EventID: eventID}

	event, err := s.store.FindEventByExternalID(ctx, eventID)
	if err != nil {
		result.Errors = append(result.Errors, NewCrawlError(KindDatabase, eventID, err))
		return result
	}
	if event == nil {
		result.Errors = append(result.Errors, NewCrawlError(KindDatabase, eventID,
			fmt.Errorf("event not found in database: %s", eventID)))
		return result
	}

	valid := make([]ParsedParticipant, 0, len(participants))
	for _, p := range participants {
		if IsValidParticipant(p) {
			valid = append(valid, p)
		}
	}
	s.logger.Debug("filtered roster records",
		zap.String("event_id", eventID),
		zap.Int("valid", len(valid)),
		zap.Int("total", len(participants)),
	)

	for _, p := range valid {
		player, created, err := s.store.FindOrCreatePlayer(ctx, PlayerKey{
			MaskedID:  p.MaskedID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Country:   p.Country,
		})
		if err != nil {
			result.Errors = append(result.Errors, ClassifyError(err, eventID))
			s.logger.Error("failed to resolve player",
				zap.String("event_id", eventID),
				zap.String("player", p.FirstName+" "+p.LastName),
				zap.Error(err),
			)
			continue
		}
		if created {
			result.PlayersAdded++
			rowsInserted.WithLabelValues("player").Inc()
		} else {
			result.PlayersReused++
		}

		outcome, err := s.store.InsertParticipation(ctx, NewParticipation{
			PlayerID:    player.ID,
			EventID:     event.ID,
			Division:    p.Division,
			DeckListURL: p.DeckListURL,
			Standing:    p.Standing,
		})
		if err != nil {
			result.Errors = append(result.Errors, ClassifyError(err, eventID))
			s.logger.Error("failed to insert participation",
				zap.String("event_id", eventID),
				zap.Int64("player_id", player.ID),
				zap.Error(err),
			)
			continue
		}
		if outcome == Inserted {
			result.ParticipationsAdded++
			rowsInserted.WithLabelValues("participation").Inc()
		}
	}
	return result
}

// Crawl runs the full roster pass for one event. Fetch failures fold into
// the result; the orchestrator moves on to the next event.
func (s *RosterService) Crawl(ctx context.Context, eventID string) RosterCrawlResult {
	participants, err := s.FetchRoster(ctx, eventID)
	if err != nil {
		s.logger.Error("roster fetch failed",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		return RosterCrawlResult{
			EventID: eventID,
			Errors:  []CrawlError{ClassifyError(err, eventID)},
		}
	}
	return s.Persist(ctx, eventID, participants)
}
