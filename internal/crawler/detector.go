package crawler

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// TableDetector decides whether a static HTML fetch already contains the
// data table or whether the page needs a headless render. rk9 builds its
// tables client-side with DataTables, so in practice rosters always
// promote; the detector keeps the cheap path honest for pages that do
// render server-side.
type TableDetector struct {
	rowSelector  string
	minHTMLBytes int
}

// NewTableDetector constructs a detector for the given row selector.
func NewTableDetector(rowSelector string, minHTMLBytes int) *TableDetector {
	return &TableDetector{
		rowSelector:  rowSelector,
		minHTMLBytes: minHTMLBytes,
	}
}

// NeedsRender reports whether the static body lacks the populated table.
func (d *TableDetector) NeedsRender(body []byte) bool {
	if d == nil {
		return true
	}
	if d.minHTMLBytes > 0 && len(body) < d.minHTMLBytes {
		return true
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return true
	}
	return doc.Find(d.rowSelector).Length() == 0
}
