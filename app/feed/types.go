package feed

import (
	"errors"
	"time"
)

var (
	// ErrInvalidFeedFormat marks a payload that is recognizably an error page or empty.
	ErrInvalidFeedFormat = errors.New("invalid feed format")
	// ErrMalformedFeed marks a payload whose markup could not be parsed as a feed.
	ErrMalformedFeed = errors.New("malformed feed")
)

// Alert processing types

type Candidate struct {
	Title       string
	Description string
}

type Record struct {
	Zone        string    `json:"zone"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Phenomenon  string    `json:"phenomenon"`
	Severity    Severity  `json:"severity"`
	ValidFrom   time.Time `json:"valid_from"`
	ValidUntil  time.Time `json:"valid_until"`
	Style       string    `json:"style"`
}

type ZoneFilter struct {
	TargetZone     string
	ExcludedMarker string
}

// Configuration types

const (
	OnInvalidFeedEmpty = "empty"
	OnInvalidFeedError = "error"
)

type Config struct {
	Name           string         // Derived from filename (without .yml extension)
	FeedURL        string         `yaml:"feed_url"`
	TargetZone     string         `yaml:"target_zone"`
	ExcludedMarker string         `yaml:"excluded_marker"`
	Settings       ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled       bool   `yaml:"enabled"`
	MaxRetries    int    `yaml:"max_retries"`
	TimeoutMs     int    `yaml:"timeout_ms"`
	RetryDelayMs  int    `yaml:"retry_delay_ms"`
	OnInvalidFeed string `yaml:"on_invalid_feed"` // "empty" or "error"
}

func (c *Config) Filter() ZoneFilter {
	return ZoneFilter{TargetZone: c.TargetZone, ExcludedMarker: c.ExcludedMarker}
}

func (s ConfigSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

func (s ConfigSettings) RetryDelay() time.Duration {
	return time.Duration(s.RetryDelayMs) * time.Millisecond
}
