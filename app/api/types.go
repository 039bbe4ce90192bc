package api

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lysyi3m/weather-advices/app/feed"
	"github.com/lysyi3m/weather-advices/app/pipeline"
	"github.com/lysyi3m/weather-advices/app/tasks"
)

type ReporterInterface interface {
	Report(ctx context.Context, zoneConfig *feed.Config) pipeline.Report
	ReportAll(ctx context.Context, zoneConfigs []*feed.Config) []pipeline.Report
}

var _ ReporterInterface = (*pipeline.Pipeline)(nil)

type Handler struct {
	configCache *feed.ConfigCache
	reporter    ReporterInterface
	generator   *feed.Generator
	store       *tasks.ReportStore // nil when background refresh is off
	clock       clockwork.Clock
	maxAge      time.Duration
}
