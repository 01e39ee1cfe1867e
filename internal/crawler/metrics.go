package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pagesFetched counts successful page fetches by kind (listing/roster).
	pagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rk9_pages_fetched_total",
		Help: "Pages successfully fetched and extracted, by page kind.",
	}, []string{"kind"})
	// fetchErrors counts fetch failures that survived retrying.
	fetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rk9_fetch_errors_total",
		Help: "Fetch operations that failed after retries, by page kind.",
	}, []string{"kind"})
	// retriesTotal counts individual retry waits across all operations.
	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rk9_retries_total",
		Help: "Retry attempts taken by the backoff executor.",
	})
	// rowsInserted counts persisted rows by entity.
	rowsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rk9_rows_inserted_total",
		Help: "Rows inserted into the store, by entity.",
	}, []string{"entity"})
)
