package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ptcgtools/rk9-crawler/internal/crawler"
	"github.com/ptcgtools/rk9-crawler/internal/fetcher"
	"github.com/ptcgtools/rk9-crawler/internal/fetcher/headless"
	"github.com/ptcgtools/rk9-crawler/internal/storage/postgres"
)

func newCrawlCmd() *cobra.Command {
	var update bool

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Runs a crawl: ingest the events listing, then new rosters",
		Long: `Fetches the events listing, persists events not yet known, and then
crawls the roster of every event added in this run, pausing a randomized
polite delay between roster fetches. With --update the run is labeled
incremental; both modes share the same diff-driven mechanism.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := crawler.ModeFull
			if update {
				mode = crawler.ModeIncremental
			}
			return runCrawl(cmd, mode)
		},
	}

	cmd.Flags().BoolVar(&update, "update", false, "incremental run (diff-only labeling)")
	return cmd
}

func runCrawl(cmd *cobra.Command, mode crawler.Mode) error {
	ctx := cmd.Context()

	store, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	}, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return fmt.Errorf("ensure schema: %w", err)
	}

	site := fetcher.New(fetcher.Config{
		ListingURL:    cfg.Site.ListingURL,
		RosterBaseURL: cfg.Site.RosterBaseURL,
		UserAgent:     cfg.Crawler.UserAgent,
		ProbeTimeout:  time.Duration(cfg.Crawler.ProbeTimeoutSeconds) * time.Second,
		Headless: headless.Config{
			ViewportWidth:   cfg.Browser.ViewportWidth,
			ViewportHeight:  cfg.Browser.ViewportHeight,
			NavTimeout:      time.Duration(cfg.Browser.NavTimeoutSeconds) * time.Second,
			SelectorTimeout: time.Duration(cfg.Browser.SelectorTimeoutSeconds) * time.Second,
			SettleDelay:     time.Duration(cfg.Browser.SettleMs) * time.Millisecond,
		},
	}, logger)

	retryOpts := cfg.RetryOptions()
	minDelay, maxDelay := cfg.DelayWindow()

	runner := crawler.NewRunner(
		store,
		site,
		crawler.NewEventService(site, store, retryOpts, logger),
		crawler.NewRosterService(site, store, retryOpts, logger),
		&crawler.RandomPauser{Min: minDelay, Max: maxDelay},
		crawler.SystemClock{},
		logger,
	)

	logger.Info("starting crawl", zap.String("mode", string(mode)))
	summary, err := runner.Run(ctx, mode)
	if err != nil {
		return err
	}

	fmt.Println(crawler.FormatSummary(summary))
	return nil
}
