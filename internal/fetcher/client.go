// Package fetcher combines the static probe and the headless browser into
// the render-and-extract client the crawl pipeline consumes.
package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ptcgtools/rk9-crawler/internal/crawler"
	"github.com/ptcgtools/rk9-crawler/internal/fetcher/headless"
	"github.com/ptcgtools/rk9-crawler/internal/fetcher/static"
)

// Config controls the combined site client.
type Config struct {
	ListingURL    string
	RosterBaseURL string
	UserAgent     string
	ProbeTimeout  time.Duration
	Headless      headless.Config
}

// Client implements crawler.SiteClient. Every fetch probes the page with
// plain HTTP first; when the detector finds no populated table in the
// static HTML the fetch promotes to the headless session.
type Client struct {
	cfg     Config
	probe   *static.Fetcher
	session *headless.Session
	listing *crawler.TableDetector
	roster  *crawler.TableDetector
	logger  *zap.Logger
}

// New wires a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Headless.UserAgent = cfg.UserAgent
	return &Client{
		cfg: cfg,
		probe: static.New(static.Config{
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.ProbeTimeout,
		}, logger),
		session: headless.NewSession(cfg.Headless, logger),
		listing: crawler.NewTableDetector("#dtPastEvents tbody tr", 0),
		roster:  crawler.NewTableDetector("table tbody tr", 0),
		logger:  logger,
	}
}

// Start launches the headless session. Re-entrant.
func (c *Client) Start(ctx context.Context) error {
	return c.session.Start(ctx)
}

// Close tears the headless session down. Safe on a never-started client.
func (c *Client) Close(ctx context.Context) error {
	return c.session.Close(ctx)
}

// EventsListing fetches and extracts the past-events listing.
func (c *Client) EventsListing(ctx context.Context) ([]crawler.ListingRow, error) {
	body, err := c.probe.Fetch(ctx, c.cfg.ListingURL)
	if err == nil && !c.listing.NeedsRender(body) {
		c.logger.Debug("listing served statically", zap.String("url", c.cfg.ListingURL))
		return static.ParseListing(body)
	}
	if err != nil {
		c.logger.Debug("listing probe failed, promoting to headless", zap.Error(err))
	}
	return c.session.FetchListing(ctx, c.cfg.ListingURL)
}

// Roster fetches and extracts one event's roster table.
func (c *Client) Roster(ctx context.Context, eventID string) (crawler.RosterTable, error) {
	url := c.RosterURL(eventID)
	body, err := c.probe.Fetch(ctx, url)
	if err == nil && !c.roster.NeedsRender(body) {
		c.logger.Debug("roster served statically", zap.String("url", url))
		return static.ParseRoster(body)
	}
	if err != nil {
		c.logger.Debug("roster probe failed, promoting to headless", zap.Error(err))
	}
	return c.session.FetchRoster(ctx, url)
}

// RosterURL builds the roster page URL for an event.
func (c *Client) RosterURL(eventID string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.RosterBaseURL, "/"), eventID)
}
