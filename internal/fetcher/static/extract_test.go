package static

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingFixture = `<html><body>
<table id="dtPastEvents">
 <thead><tr><th>Date</th><th>Logo</th><th>Name</th><th>Location</th><th>Links</th></tr></thead>
 <tbody>
  <tr>
   <td>February 7-8, 2026</td>
   <td><img src="logo.png"></td>
   <td><a href="/event/BRU">Brussels Special Event</a></td>
   <td>Brussels</td>
   <td>
    <a href="/tournament/BRUVGC">VGC</a>
    <a href="/tournament/BRU2026">TCG</a>
   </td>
  </tr>
  <tr>
   <td>March 14-15, 2026</td>
   <td></td>
   <td>Lisbon Regional</td>
   <td>Lisbon</td>
   <td><a href="/tournament/LISGO">GO</a></td>
  </tr>
  <tr><td>short row</td><td></td><td></td></tr>
 </tbody>
</table>
</body></html>`

const rosterFixture = `<html><body>
<table id="dtLiveRoster">
 <thead><tr>
  <th>Player ID</th><th>First Name</th><th>Last Name</th><th>Country</th><th>Division</th><th>Deck List</th><th>Standing</th>
 </tr></thead>
 <tbody>
  <tr>
   <td>1234567</td><td>Ash</td><td>Ketchum</td><td>JP</td>
   <td>Masters</td><td><a href="/decklist/abc">view</a></td><td>17</td>
  </tr>
  <tr>
   <td>7654321</td><td>Misty</td><td>Waterflower</td><td>US</td>
   <td>Masters</td><td></td><td>-</td>
  </tr>
 </tbody>
</table>
</body></html>`

func TestParseListing(t *testing.T) {
	t.Parallel()

	rows, err := ParseListing([]byte(listingFixture))
	require.NoError(t, err)
	require.Len(t, rows, 2, "rows with fewer than five cells are dropped")

	first := rows[0]
	assert.Equal(t, "February 7-8, 2026", first.DateText)
	assert.Equal(t, "Brussels Special Event", first.Name, "anchor text wins over cell text")
	assert.Equal(t, "Brussels", first.City)
	require.Len(t, first.Links, 2)
	assert.Equal(t, "TCG", first.Links[1].Text)
	assert.Equal(t, "/tournament/BRU2026", first.Links[1].Href)

	second := rows[1]
	assert.Equal(t, "Lisbon Regional", second.Name, "plain text name when the cell has no anchor")
	require.Len(t, second.Links, 1)
	assert.Equal(t, "GO", second.Links[0].Text)
}

func TestParseListingEmptyDocument(t *testing.T) {
	t.Parallel()

	rows, err := ParseListing([]byte(`<html><body><p>nothing here</p></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseRoster(t *testing.T) {
	t.Parallel()

	table, err := ParseRoster([]byte(rosterFixture))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Player ID", "First Name", "Last Name", "Country", "Division", "Deck List", "Standing",
	}, table.Headers)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	require.Len(t, first, 7)
	assert.Equal(t, "1234567", first[0].Text)
	assert.Equal(t, "view", first[5].Text)
	assert.Equal(t, "/decklist/abc", first[5].Href)

	second := table.Rows[1]
	assert.Equal(t, "-", second[6].Text)
	assert.Empty(t, second[5].Href, "cells without anchors carry no href")
}

func TestParseRosterNoTable(t *testing.T) {
	t.Parallel()

	table, err := ParseRoster([]byte(`<html><body></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, table.Headers)
	assert.Empty(t, table.Rows)
}
