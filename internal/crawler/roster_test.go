package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func rosterCells(texts ...string) []RosterCell {
	cells := make([]RosterCell, len(texts))
	for i, text := range texts {
		cells[i] = RosterCell{Text: text}
	}
	return cells
}

var standardHeaders = []string{"Player ID", "First Name", "Last Name", "Country", "Division", "Deck List", "Standing"}

func TestResolveColumnsByHeaderText(t *testing.T) {
	t.Parallel()

	// Shuffled order with noisy casing and extra columns.
	columns := resolveColumns([]string{"Standing", "LAST  NAME", "player id", "Pronouns", "First Name", "Country"})

	assert.Equal(t, 2, columns[fieldMaskedID])
	assert.Equal(t, 4, columns[fieldFirstName])
	assert.Equal(t, 1, columns[fieldLastName])
	assert.Equal(t, 5, columns[fieldCountry])
	assert.Equal(t, 0, columns[fieldStanding])
	assert.Equal(t, -1, columns[fieldDivision])
	assert.Equal(t, -1, columns[fieldDeckList])
}

func TestParseRoster(t *testing.T) {
	t.Parallel()

	table := RosterTable{
		Headers: standardHeaders,
		Rows: [][]RosterCell{
			{
				{Text: "1234567"}, {Text: "Ash"}, {Text: "Ketchum"}, {Text: "jp"},
				{Text: "Masters"}, {Text: "view", Href: "/decklist/abc123"}, {Text: "17"},
			},
			{
				{Text: "7654321"}, {Text: "Misty"}, {Text: "Waterflower"}, {Text: "US"},
				{Text: ""}, {Text: ""}, {Text: "-"},
			},
		},
	}

	participants := ParseRoster(table)
	require.Len(t, participants, 2)

	first := participants[0]
	assert.Equal(t, "1234567", first.MaskedID)
	assert.Equal(t, "JP", first.Country, "country codes are uppercased")
	require.NotNil(t, first.Division)
	assert.Equal(t, "Masters", *first.Division)
	require.NotNil(t, first.DeckListURL)
	assert.Equal(t, "/decklist/abc123", *first.DeckListURL)
	require.NotNil(t, first.Standing)
	assert.Equal(t, 17, *first.Standing)

	second := participants[1]
	assert.Nil(t, second.Division)
	assert.Nil(t, second.DeckListURL)
	assert.Nil(t, second.Standing, `a standing of "-" means unplaced`)
}

// Older tournaments publish rosters without a country column; rows parse
// with an empty country and fail validation downstream instead of crashing
// the parser.
func TestParseRosterMissingColumns(t *testing.T) {
	t.Parallel()

	table := RosterTable{
		Headers: []string{"First Name", "Last Name"},
		Rows: [][]RosterCell{
			{{Text: "Brock"}, {Text: "Harrison"}},
		},
	}

	participants := ParseRoster(table)
	require.Len(t, participants, 1)
	assert.Empty(t, participants[0].MaskedID)
	assert.Empty(t, participants[0].Country)
	assert.False(t, IsValidParticipant(participants[0]))
}

func TestParseRosterShortRow(t *testing.T) {
	t.Parallel()

	table := RosterTable{
		Headers: standardHeaders,
		Rows: [][]RosterCell{
			rosterCells("1234567", "Ash"),
		},
	}

	participants := ParseRoster(table)
	require.Len(t, participants, 1)
	assert.Equal(t, "Ash", participants[0].FirstName)
	assert.Empty(t, participants[0].LastName)
}

func TestIsValidParticipant(t *testing.T) {
	t.Parallel()

	valid := ParsedParticipant{MaskedID: "111", FirstName: "Ash", LastName: "Ketchum", Country: "JP"}
	assert.True(t, IsValidParticipant(valid))

	tests := []struct {
		name   string
		mutate func(*ParsedParticipant)
	}{
		{"empty masked id", func(p *ParsedParticipant) { p.MaskedID = "" }},
		{"empty first name", func(p *ParsedParticipant) { p.FirstName = "" }},
		{"empty last name", func(p *ParsedParticipant) { p.LastName = "" }},
		{"empty country", func(p *ParsedParticipant) { p.Country = "" }},
		{"lowercase country", func(p *ParsedParticipant) { p.Country = "jp" }},
		{"three letter country", func(p *ParsedParticipant) { p.Country = "JPN" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := valid
			tt.mutate(&p)
			assert.False(t, IsValidParticipant(p))
		})
	}
}

func seedEvent(t *testing.T, store *fakeStore, externalID string) *Event {
	t.Helper()
	event, err := store.InsertEvent(context.Background(), NewEvent{ExternalID: externalID, Name: externalID})
	require.NoError(t, err)
	return event
}

func TestRosterServicePersist(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedEvent(t, store, "BRU2026")

	svc := NewRosterService(newFakeSite(), store, fastRetry(1), zap.NewNop())

	masters := "Masters"
	participants := []ParsedParticipant{
		{MaskedID: "111", FirstName: "Ash", LastName: "Ketchum", Country: "JP", Division: &masters},
		{MaskedID: "222", FirstName: "Misty", LastName: "Waterflower", Country: "US"},
		{MaskedID: "", FirstName: "Invalid", LastName: "Row", Country: "US"},
	}

	result := svc.Persist(context.Background(), "BRU2026", participants)

	assert.Equal(t, 2, result.PlayersAdded)
	assert.Equal(t, 0, result.PlayersReused)
	assert.Equal(t, 2, result.ParticipationsAdded)
	assert.Empty(t, result.Errors)
	assert.Len(t, store.players, 2, "invalid rows are dropped before persistence")
}

// Re-ingesting the same roster reuses every player and inserts no new
// participations; participations added never exceeds players resolved.
func TestRosterServicePersistIdempotent(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedEvent(t, store, "BRU2026")

	svc := NewRosterService(newFakeSite(), store, fastRetry(1), zap.NewNop())
	participants := []ParsedParticipant{
		{MaskedID: "111", FirstName: "Ash", LastName: "Ketchum", Country: "JP"},
		{MaskedID: "222", FirstName: "Misty", LastName: "Waterflower", Country: "US"},
	}

	first := svc.Persist(context.Background(), "BRU2026", participants)
	require.Equal(t, 2, first.ParticipationsAdded)

	second := svc.Persist(context.Background(), "BRU2026", participants)
	assert.Equal(t, 0, second.PlayersAdded)
	assert.Equal(t, 2, second.PlayersReused)
	assert.Equal(t, 0, second.ParticipationsAdded, "duplicate pairs are skipped, not errors")
	assert.Empty(t, second.Errors)
	assert.LessOrEqual(t, second.ParticipationsAdded, second.PlayersAdded+second.PlayersReused)
}

// The same player key appearing in two events creates one player row and
// two participations.
func TestRosterServicePersistSharesPlayersAcrossEvents(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedEvent(t, store, "EV1")
	seedEvent(t, store, "EV2")

	svc := NewRosterService(newFakeSite(), store, fastRetry(1), zap.NewNop())
	participants := []ParsedParticipant{
		{MaskedID: "111", FirstName: "Ash", LastName: "Ketchum", Country: "JP"},
	}

	first := svc.Persist(context.Background(), "EV1", participants)
	assert.Equal(t, 1, first.PlayersAdded)

	second := svc.Persist(context.Background(), "EV2", participants)
	assert.Equal(t, 0, second.PlayersAdded)
	assert.Equal(t, 1, second.PlayersReused)
	assert.Equal(t, 1, second.ParticipationsAdded)
	assert.Len(t, store.players, 1)
	assert.Len(t, store.participations, 2)
}

// Same masked ID but a different name is a different player; the composite
// key treats each spelling as a distinct identity.
func TestRosterServicePersistCompositeKeyDistinguishesSpellings(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedEvent(t, store, "EV1")

	svc := NewRosterService(newFakeSite(), store, fastRetry(1), zap.NewNop())
	participants := []ParsedParticipant{
		{MaskedID: "111", FirstName: "Ash", LastName: "Ketchum", Country: "JP"},
		{MaskedID: "111", FirstName: "Ashton", LastName: "Ketchum", Country: "JP"},
	}

	result := svc.Persist(context.Background(), "EV1", participants)
	assert.Equal(t, 2, result.PlayersAdded)
	assert.Len(t, store.players, 2)
}

func TestRosterServicePersistUnknownEvent(t *testing.T) {
	t.Parallel()

	svc := NewRosterService(newFakeSite(), newFakeStore(), fastRetry(1), zap.NewNop())
	result := svc.Persist(context.Background(), "GHOST", []ParsedParticipant{
		{MaskedID: "111", FirstName: "Ash", LastName: "Ketchum", Country: "JP"},
	})

	assert.Zero(t, result.PlayersAdded)
	assert.Zero(t, result.ParticipationsAdded)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, KindDatabase, result.Errors[0].Kind)
}

func TestRosterServiceCrawlFoldsFetchFailure(t *testing.T) {
	t.Parallel()

	site := newFakeSite()
	site.rosterErrs["BRU2026"] = errors.New("unexpected cell layout")

	svc := NewRosterService(site, newFakeStore(), fastRetry(3), zap.NewNop())
	result := svc.Crawl(context.Background(), "BRU2026")

	assert.Equal(t, "BRU2026", result.EventID)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, KindParse, result.Errors[0].Kind)
}

func TestRosterServiceFetchRosterParsesTable(t *testing.T) {
	t.Parallel()

	site := newFakeSite()
	site.rosters["BRU2026"] = RosterTable{
		Headers: standardHeaders,
		Rows: [][]RosterCell{
			rosterCells("111", "Ash", "Ketchum", "JP", "", "", ""),
		},
	}

	svc := NewRosterService(site, newFakeStore(), fastRetry(3), zap.NewNop())
	participants, err := svc.FetchRoster(context.Background(), "BRU2026")

	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, "Ketchum", participants[0].LastName)
}
