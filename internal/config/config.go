// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ptcgtools/rk9-crawler/internal/crawler"
)

// Config captures every configuration knob, loadable from file or RK9_*
// environment variables.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Browser BrowserConfig `mapstructure:"browser"`
	DB      DBConfig      `mapstructure:"db"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SiteConfig points at the source site.
type SiteConfig struct {
	ListingURL    string `mapstructure:"listing_url"`
	RosterBaseURL string `mapstructure:"roster_base_url"`
}

// CrawlerConfig governs pacing and retry behavior.
type CrawlerConfig struct {
	UserAgent           string  `mapstructure:"user_agent"`
	DelayMinMs          int     `mapstructure:"delay_min_ms"`
	DelayMaxMs          int     `mapstructure:"delay_max_ms"`
	MaxRetries          int     `mapstructure:"max_retries"`
	RetryInitialMs      int     `mapstructure:"retry_initial_ms"`
	RetryMultiplier     float64 `mapstructure:"retry_multiplier"`
	RetryMaxMs          int     `mapstructure:"retry_max_ms"`
	ProbeTimeoutSeconds int     `mapstructure:"probe_timeout_seconds"`
}

// BrowserConfig configures the headless session.
type BrowserConfig struct {
	NavTimeoutSeconds      int `mapstructure:"nav_timeout_seconds"`
	SelectorTimeoutSeconds int `mapstructure:"selector_timeout_seconds"`
	ViewportWidth          int `mapstructure:"viewport_width"`
	ViewportHeight         int `mapstructure:"viewport_height"`
	SettleMs               int `mapstructure:"settle_ms"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk and environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RK9")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.listing_url", "https://rk9.gg/events/pokemon")
	v.SetDefault("site.roster_base_url", "https://rk9.gg/roster")
	v.SetDefault("crawler.user_agent", "rk9-crawler/0.1")
	v.SetDefault("crawler.delay_min_ms", 1000)
	v.SetDefault("crawler.delay_max_ms", 3000)
	v.SetDefault("crawler.max_retries", 3)
	v.SetDefault("crawler.retry_initial_ms", 1000)
	v.SetDefault("crawler.retry_multiplier", 2.0)
	v.SetDefault("crawler.retry_max_ms", 30000)
	v.SetDefault("crawler.probe_timeout_seconds", 15)
	v.SetDefault("browser.nav_timeout_seconds", 30)
	v.SetDefault("browser.selector_timeout_seconds", 15)
	v.SetDefault("browser.viewport_width", 1920)
	v.SetDefault("browser.viewport_height", 1080)
	v.SetDefault("browser.settle_ms", 2000)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Site.ListingURL == "" {
		return fmt.Errorf("site.listing_url must be set")
	}
	if c.Site.RosterBaseURL == "" {
		return fmt.Errorf("site.roster_base_url must be set")
	}
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.Crawler.DelayMinMs < 0 || c.Crawler.DelayMaxMs < c.Crawler.DelayMinMs {
		return fmt.Errorf("crawler delay window must satisfy 0 <= delay_min_ms <= delay_max_ms")
	}
	if c.Crawler.MaxRetries <= 0 {
		return fmt.Errorf("crawler.max_retries must be > 0")
	}
	if c.Crawler.RetryMultiplier <= 1 {
		return fmt.Errorf("crawler.retry_multiplier must be > 1")
	}
	if c.Browser.NavTimeoutSeconds <= 0 {
		return fmt.Errorf("browser.nav_timeout_seconds must be > 0")
	}
	if c.Browser.SelectorTimeoutSeconds <= 0 {
		return fmt.Errorf("browser.selector_timeout_seconds must be > 0")
	}
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("browser viewport dimensions must be > 0")
	}
	return nil
}

// RetryOptions converts the retry knobs into executor options.
func (c Config) RetryOptions() crawler.RetryOptions {
	return crawler.RetryOptions{
		MaxAttempts:  c.Crawler.MaxRetries,
		InitialDelay: time.Duration(c.Crawler.RetryInitialMs) * time.Millisecond,
		Multiplier:   c.Crawler.RetryMultiplier,
		MaxDelay:     time.Duration(c.Crawler.RetryMaxMs) * time.Millisecond,
	}
}

// DelayWindow returns the polite-crawl delay bounds.
func (c Config) DelayWindow() (time.Duration, time.Duration) {
	return time.Duration(c.Crawler.DelayMinMs) * time.Millisecond,
		time.Duration(c.Crawler.DelayMaxMs) * time.Millisecond
}
