package crawler

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// Pauser abstracts the self-imposed wait between sequential roster fetches.
type Pauser interface {
	Pause(ctx context.Context)
}

// RandomPauser sleeps a uniformly random duration within [Min, Max] before
// the next outbound request. This is a deliberate rate limit on our side,
// not a server-commanded backoff.
type RandomPauser struct {
	Min time.Duration
	Max time.Duration
}

// Pause blocks for the randomized delay or until the context finishes.
func (p *RandomPauser) Pause(ctx context.Context) {
	delay := randomBetween(p.Min, p.Max)
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func randomBetween(min, max time.Duration) time.Duration {
	if max < min {
		min, max = max, min
	}
	span := max - min
	if span <= 0 {
		return min
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(span)+1))
	if err != nil {
		return min + span/2
	}
	return min + time.Duration(n.Int64())
}
