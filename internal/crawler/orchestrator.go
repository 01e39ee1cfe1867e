package crawler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mode labels the caller's intent for a crawl run. Both modes execute the
// same sequence: the event diff already confines work to unseen events, so
// a separate update algorithm would be redundant.
type Mode string

// Crawl modes.
const (
	ModeFull        Mode = "full"
	ModeIncremental Mode = "incremental"
)

// State is the orchestrator's lifecycle phase.
type State string

// Orchestrator states.
const (
	StateIdle             State = "idle"
	StateInitializing     State = "initializing"
	StateFullCrawl        State = "full_crawl"
	StateIncrementalCrawl State = "incremental_crawl"
	StateFinalizing       State = "finalizing"
)

// Runner sequences a crawl run: initialize resources, ingest the events
// listing, crawl rosters for the events added this run (sequentially, with
// a polite pause between fetches), then finalize. Rosters are deliberately
// not crawled in parallel; concurrency would defeat the polite-delay
// contract.
type Runner struct {
	store   Store
	site    SiteClient
	events  *EventService
	rosters *RosterService
	pauser  Pauser
	clock   Clock
	logger  *zap.Logger
	state   State
}

// NewRunner wires a Runner. The Runner is the single owner of the store
// and site lifecycles for the duration of a run.
func NewRunner(
	store Store,
	site SiteClient,
	events *EventService,
	rosters *RosterService,
	pauser Pauser,
	clock Clock,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Runner{
		store:   store,
		site:    site,
		events:  events,
		rosters: rosters,
		pauser:  pauser,
		clock:   clock,
		logger:  logger,
		state:   StateIdle,
	}
}

// State returns the current lifecycle phase.
func (r *Runner) State() State {
	return r.state
}

// Run executes one crawl. Initialization failure is fatal to the run and
// returned as an error; steady-state crawl failures are folded into the
// summary. Finalization always runs.
func (r *Runner) Run(ctx context.Context, mode Mode) (Summary, error) {
	start := r.clock.Now()
	summary := Summary{
		RunID: uuid.NewString(),
		Mode:  mode,
	}

	r.transition(StateInitializing)
	if err := r.initialize(ctx); err != nil {
		r.finalize(ctx)
		return summary, fmt.Errorf("initialize crawl: %w", err)
	}
	defer r.finalize(ctx)

	if mode == ModeIncremental {
		r.transition(StateIncrementalCrawl)
	} else {
		r.transition(StateFullCrawl)
	}

	eventsResult := r.events.Crawl(ctx)
	r.logger.Info("events pass finished",
		zap.Int("added", eventsResult.EventsAdded),
		zap.Int("skipped", eventsResult.EventsSkipped),
		zap.Int("errors", len(eventsResult.Errors)),
	)

	summary.EventsProcessed = eventsResult.EventsAdded + eventsResult.EventsSkipped
	summary.EventsAdded = eventsResult.EventsAdded
	summary.TotalErrors = len(eventsResult.Errors)

	for i, eventID := range eventsResult.AddedIDs {
		if i > 0 {
			r.pauser.Pause(ctx)
		}
		r.logger.Info("crawling roster",
			zap.String("event_id", eventID),
			zap.Int("position", i+1),
			zap.Int("total", len(eventsResult.AddedIDs)),
		)
		rosterResult := r.rosters.Crawl(ctx, eventID)
		summary.PlayersAdded += rosterResult.PlayersAdded
		summary.PlayersReused += rosterResult.PlayersReused
		summary.ParticipationsAdded += rosterResult.ParticipationsAdded
		summary.TotalErrors += len(rosterResult.Errors)
	}

	summary.Duration = r.clock.Now().Sub(start)
	return summary, nil
}

func (r *Runner) initialize(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("storage connection: %w", err)
	}
	if err := r.site.Start(ctx); err != nil {
		return fmt.Errorf("browser session: %w", err)
	}
	r.logger.Info("crawler initialized")
	return nil
}

// finalize closes the browser session and the storage connection. Both
// closes tolerate never-opened or already-closed resources.
func (r *Runner) finalize(ctx context.Context) {
	r.transition(StateFinalizing)
	if err := r.site.Close(ctx); err != nil {
		r.logger.Error("failed to close browser session", zap.Error(err))
	}
	r.store.Close()
	r.transition(StateIdle)
}

func (r *Runner) transition(next State) {
	r.logger.Debug("state transition",
		zap.String("from", string(r.state)),
		zap.String("to", string(next)),
	)
	r.state = next
}
