// Package headless drives a headless Chrome session via chromedp and
// extracts plain row structures from rendered pages.
package headless

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/ptcgtools/rk9-crawler/internal/crawler"
)

// Config controls the browser session.
type Config struct {
	UserAgent string
	// Viewport must be wide enough that every roster column renders; the
	// Standing column is hidden below 1920px.
	ViewportWidth  int
	ViewportHeight int
	// NavTimeout bounds page navigation.
	NavTimeout time.Duration
	// SelectorTimeout bounds the wait for client-side table rendering,
	// which can finish well after network activity settles.
	SelectorTimeout time.Duration
	// SettleDelay is the fixed wait after switching a table to its
	// unpaginated view.
	SettleDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1920
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 1080
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.SelectorTimeout <= 0 {
		c.SelectorTimeout = 15 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	return c
}

// Session owns a single browser process, created on Start and reused for
// every page until Close. Each operation runs in its own tab.
type Session struct {
	cfg    Config
	logger *zap.Logger

	mu          sync.Mutex
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc
}

// NewSession builds an unstarted Session.
func NewSession(cfg Config, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// Start launches the browser. Calling Start on a running session returns
// without launching a second process.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browserCtx != nil {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if s.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserStop := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserStop()
		allocCancel()
		return fmt.Errorf("chromedp warmup: %w", err)
	}

	s.allocCancel = allocCancel
	s.browserCtx = browserCtx
	s.browserStop = browserStop
	s.logger.Debug("browser session started")
	return nil
}

// Close tears the browser down. Closing a never-started or already closed
// session is a no-op.
func (s *Session) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browserCtx == nil {
		return nil
	}
	s.browserStop()
	s.allocCancel()
	s.browserCtx = nil
	s.browserStop = nil
	s.allocCancel = nil
	s.logger.Debug("browser session closed")
	return nil
}

func (s *Session) browser() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browserCtx == nil {
		return nil, fmt.Errorf("browser session not started")
	}
	return s.browserCtx, nil
}

// FetchListing renders the events listing page and extracts its rows.
func (s *Session) FetchListing(ctx context.Context, url string) ([]crawler.ListingRow, error) {
	var rows []crawler.ListingRow
	err := s.withTab(ctx, url, listingRowsSelector, func(tabCtx context.Context) error {
		return chromedp.Run(tabCtx, chromedp.Evaluate(listingExtractionJS, &rows))
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FetchRoster renders a roster page, switches the table to its unpaginated
// view when that control exists, and extracts the table.
func (s *Session) FetchRoster(ctx context.Context, url string) (crawler.RosterTable, error) {
	var table crawler.RosterTable
	err := s.withTab(ctx, url, rosterRowsSelector, func(tabCtx context.Context) error {
		if err := s.showAllRows(tabCtx); err != nil {
			return err
		}
		return chromedp.Run(tabCtx, chromedp.Evaluate(rosterExtractionJS, &table))
	})
	if err != nil {
		return crawler.RosterTable{}, err
	}
	return table, nil
}

// withTab opens a tab, navigates under the navigation timeout, waits for
// the dynamic table under the shorter selector timeout, then runs extract.
func (s *Session) withTab(ctx context.Context, url, waitSelector string, extract func(context.Context) error) error {
	browserCtx, err := s.browser()
	if err != nil {
		return err
	}

	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	defer closeTab()
	stopForward := forwardCancel(ctx, closeTab)
	defer stopForward()

	navCtx, cancelNav := context.WithTimeout(tabCtx, s.cfg.NavTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx,
		network.Enable(),
		s.viewportAction(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}

	selCtx, cancelSel := context.WithTimeout(tabCtx, s.cfg.SelectorTimeout)
	defer cancelSel()
	if err := chromedp.Run(selCtx, chromedp.WaitReady(waitSelector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %q on %s: %w", waitSelector, url, err)
	}

	if err := extract(tabCtx); err != nil {
		return fmt.Errorf("extract %s: %w", url, err)
	}
	return nil
}

func (s *Session) viewportAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		err := emulation.SetDeviceMetricsOverride(
			int64(s.cfg.ViewportWidth),
			int64(s.cfg.ViewportHeight),
			1.0,
			false,
		).Do(ctx)
		if err != nil {
			return fmt.Errorf("set viewport: %w", err)
		}
		if s.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(s.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

// showAllRows switches the DataTables length control to "all" and waits a
// fixed settle delay. Older or small events have no such control; that is
// not an error.
func (s *Session) showAllRows(tabCtx context.Context) error {
	var switched bool
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(selectAllRowsJS, &switched)); err != nil {
		return fmt.Errorf("select all rows: %w", err)
	}
	if !switched {
		s.logger.Debug("table length control absent, skipping show-all")
		return nil
	}
	return chromedp.Run(tabCtx, chromedp.Sleep(s.cfg.SettleDelay))
}

// forwardCancel propagates caller cancellation into the tab context, which
// chromedp derives from the browser context rather than the caller's.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
