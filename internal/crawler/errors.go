package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"time"
)

// Kind buckets a crawl failure for retry decisions and reporting.
type Kind string

// Error kinds, from most to least specific during classification.
const (
	KindTimeout   Kind = "timeout"
	KindNetwork   Kind = "network"
	KindRateLimit Kind = "rate_limit"
	KindDatabase  Kind = "database"
	KindParse     Kind = "parse"
)

// Retryable reports whether errors of this kind are worth another attempt.
// Parse and database failures are deterministic; retrying them only burns
// the polite-crawl budget.
func (k Kind) Retryable() bool {
	switch k {
	case KindTimeout, KindNetwork, KindRateLimit:
		return true
	default:
		return false
	}
}

var (
	timeoutPattern   = regexp.MustCompile(`(?i)timeout|timed out|navigation|deadline`)
	networkPattern   = regexp.MustCompile(`(?i)network|connection (reset|refused)|econnreset|econnrefused|socket|no such host|broken pipe`)
	rateLimitPattern = regexp.MustCompile(`(?i)rate limit|too many requests|\b429\b`)
	databasePattern  = regexp.MustCompile(`(?i)database|postgres|pgx|sql|constraint|duplicate key`)
)

// Classify maps an error onto a Kind by inspecting wrapped sentinel errors
// first and then matching its message text in fixed priority order. Anything
// unrecognized is treated as a parse failure.
func Classify(err error) Kind {
	if err == nil {
		return KindParse
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	msg := err.Error()
	switch {
	case timeoutPattern.MatchString(msg):
		return KindTimeout
	case networkPattern.MatchString(msg):
		return KindNetwork
	case rateLimitPattern.MatchString(msg):
		return KindRateLimit
	case databasePattern.MatchString(msg):
		return KindDatabase
	default:
		return KindParse
	}
}

// IsRetryable is the default classifier handed to the retry executor.
func IsRetryable(err error) bool {
	return Classify(err).Retryable()
}

// CrawlError is a typed per-row or per-fetch failure record carried in
// crawl results. Row-level errors never abort a batch; they accumulate here.
type CrawlError struct {
	Kind      Kind      `json:"kind"`
	EventID   string    `json:"event_id,omitempty"`
	At        time.Time `json:"at"`
	Retryable bool      `json:"retryable"`
	Err       error     `json:"-"`
	Message   string    `json:"message"`
}

// NewCrawlError builds a CrawlError of an explicit kind.
func NewCrawlError(kind Kind, eventID string, err error) CrawlError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return CrawlError{
		Kind:      kind,
		EventID:   eventID,
		At:        time.Now().UTC(),
		Retryable: kind.Retryable(),
		Err:       err,
		Message:   msg,
	}
}

// ClassifyError builds a CrawlError by classifying err's message.
func ClassifyError(err error, eventID string) CrawlError {
	return NewCrawlError(Classify(err), eventID, err)
}

func (e CrawlError) Error() string {
	if e.EventID != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Kind, e.EventID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e CrawlError) Unwrap() error {
	return e.Err
}
