package headless

// Selectors for the two page shapes the crawler visits. The listing is the
// DataTables-rendered past-events table; rosters are a single table per
// page.
const (
	listingRowsSelector = "#dtPastEvents tbody tr"
	rosterRowsSelector  = "table tbody tr"
)

// listingExtractionJS evaluates in-page and returns one object per listing
// row: the raw date text, the event name (preferring the anchor's text),
// the city, and every anchor in the per-game links cell. Rows with fewer
// than five cells are layout artifacts and are dropped here.
const listingExtractionJS = `
Array.from(document.querySelectorAll('#dtPastEvents tbody tr'))
	.map((row) => {
		const cells = Array.from(row.querySelectorAll('td'));
		if (cells.length < 5) return null;
		const links = Array.from(cells[4].querySelectorAll('a')).map((a) => ({
			text: (a.textContent || '').trim(),
			href: a.getAttribute('href') || '',
		}));
		const nameAnchor = cells[2].querySelector('a');
		return {
			date_text: (cells[0].textContent || '').trim(),
			name: ((nameAnchor && nameAnchor.textContent) || cells[2].textContent || '').trim(),
			city: (cells[3].textContent || '').trim(),
			links: links,
		};
	})
	.filter((row) => row !== null)
`

// rosterExtractionJS returns the first table's normalized header labels and
// each body cell's trimmed text plus the href of its anchor, if any.
const rosterExtractionJS = `
(() => {
	const table = document.querySelector('table');
	if (!table) return { headers: [], rows: [] };
	const headers = Array.from(table.querySelectorAll('thead tr th'))
		.map((th) => (th.textContent || '').trim());
	const rows = Array.from(table.querySelectorAll('tbody tr')).map((tr) =>
		Array.from(tr.querySelectorAll('td')).map((td) => {
			const a = td.querySelector('a');
			return {
				text: (td.textContent || '').trim(),
				href: a ? (a.getAttribute('href') || '') : '',
			};
		})
	);
	return { headers: headers, rows: rows };
})()
`

// selectAllRowsJS switches the DataTables page-length select to "all"
// (-1) and reports whether the control was present.
const selectAllRowsJS = `
(() => {
	const select = document.querySelector('.dataTables_length select');
	if (!select) return false;
	select.value = '-1';
	select.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
})()
`
