package headless

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfigWithDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}.withDefaults()
	assert.Equal(t, 1920, cfg.ViewportWidth)
	assert.Equal(t, 1080, cfg.ViewportHeight)
	assert.Equal(t, 30*time.Second, cfg.NavTimeout)
	assert.Equal(t, 15*time.Second, cfg.SelectorTimeout)
	assert.Equal(t, 2*time.Second, cfg.SettleDelay)
}

func TestConfigWithDefaultsKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		ViewportWidth:   2560,
		ViewportHeight:  1440,
		NavTimeout:      10 * time.Second,
		SelectorTimeout: 5 * time.Second,
		SettleDelay:     time.Second,
	}.withDefaults()
	assert.Equal(t, 2560, cfg.ViewportWidth)
	assert.Equal(t, 10*time.Second, cfg.NavTimeout)
	assert.Equal(t, time.Second, cfg.SettleDelay)
}

func TestSessionCloseBeforeStart(t *testing.T) {
	t.Parallel()

	s := NewSession(Config{}, zap.NewNop())
	require.NoError(t, s.Close(context.Background()))
	require.NoError(t, s.Close(context.Background()), "double close is a no-op")
}

func TestSessionFetchBeforeStart(t *testing.T) {
	t.Parallel()

	s := NewSession(Config{}, zap.NewNop())
	_, err := s.FetchListing(context.Background(), "https://example.test")
	require.Error(t, err, "operations on an unstarted session fail instead of auto-launching")
}
