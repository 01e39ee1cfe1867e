// Package static fetches pages over plain HTTP via colly and extracts row
// structures from server-rendered HTML with goquery. It is the cheap probe
// path; pages whose tables are built client-side promote to the headless
// session instead.
package static

import (
	"context"
	"errors"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Config controls the probe fetcher.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher retrieves raw page bodies with a colly collector.
type Fetcher struct {
	base   *colly.Collector
	logger *zap.Logger
}

// New constructs a configured probe Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := colly.NewCollector(colly.UserAgent(cfg.UserAgent))
	base.AllowURLRevisit = true
	if cfg.Timeout > 0 {
		base.SetRequestTimeout(cfg.Timeout)
	}
	return &Fetcher{
		base:   base,
		logger: logger,
	}
}

// Fetch retrieves one page body.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	collector := f.base.Clone()

	var (
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		fetchErr = err
	})

	if err := collector.Visit(url); err != nil {
		return nil, err
	}
	collector.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if body == nil {
		return nil, errors.New("probe fetch produced no response")
	}
	return body, nil
}
