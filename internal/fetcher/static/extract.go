package static

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ptcgtools/rk9-crawler/internal/crawler"
)

// ParseListing extracts listing rows from server-rendered HTML. It mirrors
// the headless in-page extraction so the downstream parser sees identical
// structures regardless of which path fetched the page.
func ParseListing(body []byte) ([]crawler.ListingRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	var rows []crawler.ListingRow
	doc.Find("#dtPastEvents tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 5 {
			return
		}
		var links []crawler.LinkCell
		cells.Eq(4).Find("a").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			links = append(links, crawler.LinkCell{
				Text: strings.TrimSpace(a.Text()),
				Href: href,
			})
		})
		name := strings.TrimSpace(cells.Eq(2).Find("a").First().Text())
		if name == "" {
			name = strings.TrimSpace(cells.Eq(2).Text())
		}
		rows = append(rows, crawler.ListingRow{
			DateText: strings.TrimSpace(cells.Eq(0).Text()),
			Name:     name,
			City:     strings.TrimSpace(cells.Eq(3).Text()),
			Links:    links,
		})
	})
	return rows, nil
}

// ParseRoster extracts the first table from server-rendered HTML.
func ParseRoster(body []byte) (crawler.RosterTable, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return crawler.RosterTable{}, fmt.Errorf("parse roster html: %w", err)
	}

	table := crawler.RosterTable{}
	root := doc.Find("table").First()
	root.Find("thead tr th").Each(func(_ int, th *goquery.Selection) {
		table.Headers = append(table.Headers, strings.TrimSpace(th.Text()))
	})
	root.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		var row []crawler.RosterCell
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			href, _ := td.Find("a").First().Attr("href")
			row = append(row, crawler.RosterCell{
				Text: strings.TrimSpace(td.Text()),
				Href: href,
			})
		})
		table.Rows = append(table.Rows, row)
	})
	return table, nil
}
