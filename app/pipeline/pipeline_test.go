package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lysyi3m/weather-advices/app/feed"
	"github.com/lysyi3m/weather-advices/app/fetch"
	"github.com/lysyi3m/weather-advices/app/metrics"
	"github.com/lysyi3m/weather-advices/app/retry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cest = time.FixedZone("CEST", 2*60*60)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Avisos</title>
    <link>https://www.aemet.es</link>
    <description>Avisos CAP</description>
    <item>
      <title>Aviso de nivel amarillo. Litoral norte de Valencia. Costeros.</title>
      <description>Mar combinada. 10:00 16-10-2025 CEST a 23:59 16-10-2025 CEST</description>
    </item>
    <item>
      <title>Aviso de nivel naranja. Litoral norte de Valencia. Lluvias.</title>
      <description>Acumulados de 120 mm. 10:00 16-10-2025 CEST a 23:59 16-10-2025 CEST</description>
    </item>
    <item>
      <title>Aviso de nivel amarillo. Litoral norte de Valencia. Viento.</title>
      <description>Rachas de 70 km/h. 00:00 15-10-2025 CEST a 23:59 15-10-2025 CEST</description>
    </item>
  </channel>
</rss>`

type relay struct {
	server   *httptest.Server
	requests atomic.Int32
	failures int32
	status   int
	body     string
	lastT    atomic.Value
}

func newRelay(t *testing.T, failures int32, status int, body string) *relay {
	r := &relay{failures: failures, status: status, body: body}
	r.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		n := r.requests.Add(1)
		r.lastT.Store(req.URL.Query().Get("t"))
		if n <= r.failures {
			w.WriteHeader(r.status)
			_, _ = w.Write([]byte("<error>Error obteniendo avisos</error>"))
			return
		}
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(r.body))
	}))
	t.Cleanup(r.server.Close)
	return r
}

func testZoneConfig(feedURL string) *feed.Config {
	zoneConfig := &feed.Config{
		Name:           "litoral-norte-valencia",
		FeedURL:        feedURL,
		TargetZone:     "Litoral norte de Valencia",
		ExcludedMarker: "Costeros",
		Settings:       feed.ConfigSettings{Enabled: true},
	}
	feed.ApplyDefaults(zoneConfig)
	return zoneConfig
}

func newTestPipeline(clock clockwork.Clock, m *metrics.Metrics) *Pipeline {
	fetcher := fetch.NewFetcher(&http.Client{}, "weather-advices/test")
	parser := feed.NewParser(feed.NewRegexWindowExtractor(cest))
	return New(fetcher, parser, clock, m)
}

func testNow() time.Time {
	return time.Date(2025, 10, 16, 12, 0, 0, 0, cest)
}

func runAsync(p *Pipeline, zoneConfig *feed.Config) <-chan struct {
	records []feed.Record
	err     error
} {
	done := make(chan struct {
		records []feed.Record
		err     error
	}, 1)
	go func() {
		records, err := p.Run(context.Background(), zoneConfig)
		done <- struct {
			records []feed.Record
			err     error
		}{records, err}
	}()
	return done
}

func advance(t *testing.T, clock *clockwork.FakeClock, n int, delay time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < n; i++ {
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(delay)
	}
}

func TestPipeline_Run_ImmediateSuccess(t *testing.T) {
	r := newRelay(t, 0, 0, sampleFeed)
	clock := clockwork.NewFakeClockAt(testNow())
	m := metrics.NewForTesting()

	records, err := newTestPipeline(clock, m).Run(context.Background(), testZoneConfig(r.server.URL+"/api/avisos"))
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "lluvias", records[0].Phenomenon)
	assert.Equal(t, feed.SeveritySevere, records[0].Severity)
	assert.Equal(t, "bg-danger", records[0].Style)
	assert.Equal(t, int32(1), r.requests.Load())
	assert.Equal(t, strconv.FormatInt(testNow().UnixMilli(), 10), r.lastT.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchAttempts.WithLabelValues("litoral-norte-valencia", "success")))
}

func TestPipeline_Run_RecoversAfterTwoFailures(t *testing.T) {
	immediate := newRelay(t, 0, 0, sampleFeed)
	expected, err := newTestPipeline(clockwork.NewFakeClockAt(testNow()), metrics.NewForTesting()).
		Run(context.Background(), testZoneConfig(immediate.server.URL))
	require.NoError(t, err)

	r := newRelay(t, 2, http.StatusServiceUnavailable, sampleFeed)
	clock := clockwork.NewFakeClockAt(testNow())
	m := metrics.NewForTesting()
	zoneConfig := testZoneConfig(r.server.URL)

	done := runAsync(newTestPipeline(clock, m), zoneConfig)
	advance(t, clock, 2, zoneConfig.Settings.RetryDelay())

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, expected, res.records)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not finish")
	}

	assert.Equal(t, int32(3), r.requests.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchAttempts.WithLabelValues(zoneConfig.Name, "status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchAttempts.WithLabelValues(zoneConfig.Name, "success")))
}

func TestPipeline_Run_RetriesExhausted(t *testing.T) {
	r := newRelay(t, 100, http.StatusInternalServerError, sampleFeed)
	clock := clockwork.NewFakeClockAt(testNow())
	m := metrics.NewForTesting()
	zoneConfig := testZoneConfig(r.server.URL)
	zoneConfig.Settings.MaxRetries = 3

	done := runAsync(newTestPipeline(clock, m), zoneConfig)
	advance(t, clock, 2, zoneConfig.Settings.RetryDelay())

	select {
	case res := <-done:
		require.Error(t, res.err)
		assert.ErrorIs(t, res.err, retry.ErrRetriesExhausted)
		var statusErr *fetch.StatusError
		require.True(t, errors.As(res.err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not finish")
	}

	assert.Equal(t, int32(3), r.requests.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RetriesExhausted.WithLabelValues(zoneConfig.Name)))
}

func TestPipeline_Run_InvalidFeedIsNotRetried(t *testing.T) {
	r := newRelay(t, 0, 0, "<!DOCTYPE html><html><body>Request rejected</body></html>")
	zoneConfig := testZoneConfig(r.server.URL)

	_, err := newTestPipeline(clockwork.NewFakeClockAt(testNow()), metrics.NewForTesting()).Run(context.Background(), zoneConfig)
	assert.ErrorIs(t, err, feed.ErrInvalidFeedFormat)
	assert.Equal(t, int32(1), r.requests.Load())
}

func TestPipeline_Run_KeepsExistingQuery(t *testing.T) {
	var rawQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rawQuery.Store(req.URL.RawQuery)
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	_, err := newTestPipeline(clockwork.NewFakeClockAt(testNow()), metrics.NewForTesting()).
		Run(context.Background(), testZoneConfig(srv.URL+"/api/avisos?region=77"))
	require.NoError(t, err)

	assert.Equal(t, "region=77&t="+strconv.FormatInt(testNow().UnixMilli(), 10), rawQuery.Load())
}

func TestPipeline_Run_InvalidURL(t *testing.T) {
	_, err := newTestPipeline(clockwork.NewFakeClockAt(testNow()), metrics.NewForTesting()).
		Run(context.Background(), testZoneConfig("http://[::1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid feed URL")
}
