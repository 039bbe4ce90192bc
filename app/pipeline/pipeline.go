package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lysyi3m/weather-advices/app/feed"
	"github.com/lysyi3m/weather-advices/app/fetch"
	"github.com/lysyi3m/weather-advices/app/metrics"
	"github.com/lysyi3m/weather-advices/app/retry"
)

// Fetcher is the single-attempt transport the pipeline drives through retries.
type Fetcher interface {
	Get(ctx context.Context, url string, timeout time.Duration) (string, error)
}

var _ Fetcher = (*fetch.Fetcher)(nil)

type Pipeline struct {
	fetcher Fetcher
	retrier *retry.Controller
	parser  *feed.Parser
	clock   clockwork.Clock
	metrics *metrics.Metrics
}

func New(fetcher Fetcher, parser *feed.Parser, clock clockwork.Clock, m *metrics.Metrics) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		fetcher: fetcher,
		retrier: retry.NewController(clock),
		parser:  parser,
		clock:   clock,
		metrics: m,
	}
}

// Acquire fetches the raw feed text for a zone from its relay endpoint.
func (p *Pipeline) Acquire(ctx context.Context, zoneConfig *feed.Config) (string, error) {
	target, err := p.cacheBustedURL(zoneConfig.FeedURL)
	if err != nil {
		return "", err
	}

	policy := retry.Policy{
		MaxAttempts: zoneConfig.Settings.MaxRetries,
		Delay:       zoneConfig.Settings.RetryDelay(),
	}

	text, err := retry.Do(ctx, p.retrier, policy, func(ctx context.Context, attempt int) (string, error) {
		start := p.clock.Now()
		text, err := p.fetcher.Get(ctx, target, zoneConfig.Settings.Timeout())
		p.metrics.FetchDuration.WithLabelValues(zoneConfig.Name).Observe(p.clock.Since(start).Seconds())
		p.metrics.FetchAttempts.WithLabelValues(zoneConfig.Name, attemptOutcome(err)).Inc()
		return text, err
	})
	if errors.Is(err, retry.ErrRetriesExhausted) {
		p.metrics.RetriesExhausted.WithLabelValues(zoneConfig.Name).Inc()
	}
	if err != nil {
		return "", fmt.Errorf("failed to acquire feed for %s: %w", zoneConfig.Name, err)
	}

	return text, nil
}

// Run fetches and parses the feed for one zone. Each call is independent.
func (p *Pipeline) Run(ctx context.Context, zoneConfig *feed.Config) ([]feed.Record, error) {
	text, err := p.Acquire(ctx, zoneConfig)
	if err != nil {
		return nil, err
	}

	records, err := p.parser.Run(text, zoneConfig, p.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed for %s: %w", zoneConfig.Name, err)
	}

	return records, nil
}

func (p *Pipeline) cacheBustedURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid feed URL %q: %w", rawURL, err)
	}

	query := u.Query()
	query.Set("t", strconv.FormatInt(p.clock.Now().UnixMilli(), 10))
	u.RawQuery = query.Encode()

	return u.String(), nil
}

func attemptOutcome(err error) string {
	var statusErr *fetch.StatusError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, fetch.ErrTimeout):
		return "timeout"
	case errors.As(err, &statusErr):
		return "status"
	default:
		return "error"
	}
}

func logRun(zoneConfig *feed.Config, report Report, duration time.Duration) {
	if report.Status == StatusTransient || report.Status == StatusUnavailable {
		slog.Error("Pipeline failed",
			"zone", zoneConfig.Name,
			"status", report.Status,
			"duration", duration,
			"error", report.Error)
		return
	}

	slog.Info("Pipeline completed",
		"zone", zoneConfig.Name,
		"status", report.Status,
		"duration", duration,
		"alerts", len(report.Alerts))
}
