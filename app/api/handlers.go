package api

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/lysyi3m/weather-advices/app/cfg"
	"github.com/lysyi3m/weather-advices/app/feed"
	"github.com/lysyi3m/weather-advices/app/pipeline"
	"github.com/lysyi3m/weather-advices/app/tasks"
)

// Seconds a client should wait before asking again after a transient failure.
const retryAfterSeconds = 60

// NewHandler serves reports from store while they are younger than maxAge and
// runs the pipeline on demand otherwise. store may be nil.
func NewHandler(configCache *feed.ConfigCache, reporter ReporterInterface, store *tasks.ReportStore,
	clock clockwork.Clock, maxAge time.Duration) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Handler{
		configCache: configCache,
		reporter:    reporter,
		generator:   feed.NewGenerator(cfg.GetVersion()),
		store:       store,
		clock:       clock,
		maxAge:      maxAge,
	}
}

func (h *Handler) GetZoneAlerts(c *gin.Context) {
	name := c.Param("zone")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing zone parameter"})
		return
	}

	zoneConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Warn("Zone configuration not found", "zone", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Zone configuration not found"})
		return
	}

	if !zoneConfig.Settings.Enabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "Zone is disabled"})
		return
	}

	report, cached := h.cachedReport(zoneConfig.Name)
	if cached {
		c.Header("X-Report-Source", "cache")
	} else {
		report = h.reporter.Report(c.Request.Context(), zoneConfig)
		c.Header("X-Report-Source", "live")
	}

	c.Header("X-Alert-Count", strconv.Itoa(len(report.Alerts)))
	if report.Status == pipeline.StatusTransient {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		c.JSON(http.StatusServiceUnavailable, report)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetZoneFeed serves the zone's current alerts as RSS for feed readers.
func (h *Handler) GetZoneFeed(c *gin.Context) {
	name := c.Param("zone")

	zoneConfig, err := h.configCache.GetConfig(name)
	if err != nil || !zoneConfig.Settings.Enabled {
		c.String(http.StatusNotFound, "Feed not found")
		return
	}

	report, cached := h.cachedReport(zoneConfig.Name)
	if !cached {
		report = h.reporter.Report(c.Request.Context(), zoneConfig)
	}

	if report.Status == pipeline.StatusTransient {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		c.String(http.StatusServiceUnavailable, report.Message)
		return
	}

	rss, err := h.generator.Run(zoneConfig, report.Alerts, selfLink(c), report.Message, h.clock.Now())
	if err != nil {
		slog.Error("Failed to generate RSS", "zone", zoneConfig.Name, "error", err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Alert-Count", strconv.Itoa(len(report.Alerts)))
	c.String(http.StatusOK, rss)
}

func (h *Handler) GetAllAlerts(c *gin.Context) {
	zoneConfigs := h.configCache.GetEnabledConfigs()
	reports := h.reportAll(c.Request.Context(), zoneConfigs)

	c.JSON(http.StatusOK, gin.H{
		"zones": reports,
		"total": len(reports),
	})
}

func (h *Handler) ListZones(c *gin.Context) {
	zoneConfigs := h.configCache.GetConfigs()

	zones := make([]map[string]interface{}, 0, len(zoneConfigs))
	for _, zoneConfig := range h.sortedConfigs(zoneConfigs) {
		zones = append(zones, map[string]interface{}{
			"name":            zoneConfig.Name,
			"target_zone":     zoneConfig.TargetZone,
			"excluded_marker": zoneConfig.ExcludedMarker,
			"enabled":         zoneConfig.Settings.Enabled,
			"max_retries":     zoneConfig.Settings.MaxRetries,
			"timeout":         zoneConfig.Settings.Timeout().String(),
			"retry_delay":     zoneConfig.Settings.RetryDelay().String(),
			"on_invalid_feed": zoneConfig.Settings.OnInvalidFeed,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"zones": zones,
		"total": len(zones),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"timestamp":             h.clock.Now().In(time.Local).Format(time.RFC3339),
		"loaded_configurations": h.configCache.GetConfigCount(),
		"enabled_zones":         len(h.configCache.GetEnabledConfigs()),
		"background_refresh":    h.store != nil,
	})
}

func (h *Handler) cachedReport(zoneName string) (pipeline.Report, bool) {
	if h.store == nil {
		return pipeline.Report{}, false
	}
	stored, ok := h.store.Fresh(zoneName, h.clock.Now(), h.maxAge)
	if !ok {
		return pipeline.Report{}, false
	}
	return stored.Report.Current(h.clock.Now()), true
}

// reportAll answers from the store where possible and runs the rest together.
func (h *Handler) reportAll(ctx context.Context, zoneConfigs []*feed.Config) []pipeline.Report {
	reports := make([]pipeline.Report, len(zoneConfigs))

	var missing []*feed.Config
	var missingIdx []int
	for i, zoneConfig := range zoneConfigs {
		if report, ok := h.cachedReport(zoneConfig.Name); ok {
			reports[i] = report
			continue
		}
		missing = append(missing, zoneConfig)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		for j, report := range h.reporter.ReportAll(ctx, missing) {
			reports[missingIdx[j]] = report
		}
	}

	return reports
}

func selfLink(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.Path
}

func (h *Handler) sortedConfigs(zoneConfigs map[string]*feed.Config) []*feed.Config {
	sorted := make([]*feed.Config, 0, len(zoneConfigs))
	for _, zoneConfig := range zoneConfigs {
		sorted = append(sorted, zoneConfig)
	}
	slices.SortFunc(sorted, func(a, b *feed.Config) int { return strings.Compare(a.Name, b.Name) })
	return sorted
}
