package crawler

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// tcgLinkLabel is the visible anchor text that marks the TCG sub-tournament
// link among the per-game links sharing a listing cell.
const tcgLinkLabel = "TCG"

var (
	eventIDPattern = regexp.MustCompile(`/tournament/([A-Za-z0-9]+)`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// ExtractEventID pulls the external event identifier out of a tournament
// link. Returns "" when the href does not match the expected path shape.
func ExtractEventID(href string) string {
	if href == "" {
		return ""
	}
	match := eventIDPattern.FindStringSubmatch(href)
	if match == nil {
		return ""
	}
	return match[1]
}

// ParseEvents converts extracted listing rows into typed events. A listing
// row can link into several per-game sub-tournaments; only rows with a link
// whose visible text is exactly "TCG" are kept, the rest are dropped
// without error.
func ParseEvents(rows []ListingRow) []ParsedEvent {
	events := make([]ParsedEvent, 0, len(rows))
	for _, row := range rows {
		externalID := ""
		for _, link := range row.Links {
			if strings.TrimSpace(link.Text) != tcgLinkLabel {
				continue
			}
			externalID = ExtractEventID(link.Href)
			break
		}
		if externalID == "" {
			continue
		}
		events = append(events, ParsedEvent{
			ExternalID: externalID,
			Name:       normalizeWhitespace(row.Name),
			DateText:   strings.TrimSpace(row.DateText),
			City:       strings.TrimSpace(row.City),
		})
	}
	return events
}

func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// EventService ingests the events listing: fetch, diff against persisted
// external IDs, insert only the new ones.
type EventService struct {
	site   SiteClient
	store  Store
	retry  RetryOptions
	logger *zap.Logger
}

// NewEventService wires an EventService.
func NewEventService(site SiteClient, store Store, retry RetryOptions, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		site:   site,
		store:  store,
		retry:  retry,
		logger: logger,
	}
}

// FetchListing navigates to the events listing and parses it, retrying
// transient failures.
func (s *EventService) FetchListing(ctx context.Context) ([]ParsedEvent, error) {
	opts := s.retry
	opts.ShouldRetry = IsRetryable
	opts.OnRetry = func(err error, attempt int) {
		s.logger.Warn("retrying events listing fetch",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	rows, err := Retry(ctx, opts, s.site.EventsListing)
	if err != nil {
		fetchErrors.WithLabelValues("listing").Inc()
		return nil, err
	}
	pagesFetched.WithLabelValues("listing").Inc()

	events := ParseEvents(rows)
	s.logger.Info("parsed events listing",
		zap.Int("rows", len(rows)),
		zap.Int("tcg_events", len(events)),
	)
	return events, nil
}

// DiffAndPersist inserts the events not yet persisted, using one batched
// existence check. A bad row is recorded and does not block the rest.
func (s *EventService) DiffAndPersist(ctx context.Context, events []ParsedEvent) EventCrawlResult {
	result := EventCrawlResult{}

	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ExternalID)
	}
	existing, err := s.store.ExistingExternalIDs(ctx, ids)
	if err != nil {
		result.Errors = append(result.Errors, NewCrawlError(KindDatabase, "", err))
		return result
	}
	known := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		known[id] = struct{}{}
	}

	for _, e := range events {
		if _, ok := known[e.ExternalID]; ok {
			result.EventsSkipped++
			continue
		}
		_, err := s.store.InsertEvent(ctx, NewEvent{
			ExternalID: e.ExternalID,
			Name:       e.Name,
			DateText:   e.DateText,
			StartDate:  StartDatePtr(e.DateText),
			City:       e.City,
		})
		if err != nil {
			result.Errors = append(result.Errors, ClassifyError(err, e.ExternalID))
			s.logger.Error("failed to insert event",
				zap.String("event_id", e.ExternalID),
				zap.Error(err),
			)
			continue
		}
		result.EventsAdded++
		result.AddedIDs = append(result.AddedIDs, e.ExternalID)
		rowsInserted.WithLabelValues("event").Inc()
		s.logger.Debug("added event",
			zap.String("event_id", e.ExternalID),
			zap.String("name", e.Name),
		)
	}
	return result
}

// Crawl runs the full listing pass. A fetch failure is folded into the
// result rather than raised; steady-state crawl errors never abort a run.
func (s *EventService) Crawl(ctx context.Context) EventCrawlResult {
	events, err := s.FetchListing(ctx)
	if err != nil {
		s.logger.Error("events listing fetch failed", zap.Error(err))
		return EventCrawlResult{Errors: []CrawlError{ClassifyError(err, "")}}
	}
	return s.DiffAndPersist(ctx, events)
}
