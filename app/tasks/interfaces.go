package tasks

import (
	"context"

	"github.com/lysyi3m/weather-advices/app/feed"
	"github.com/lysyi3m/weather-advices/app/pipeline"
)

// TaskSchedulerInterface keeps zone reports warm in the background.
//
//	scheduler := NewScheduler(configCache, reporter, store, clock, interval, workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// Reporter produces the report for a single zone.
type Reporter interface {
	Report(ctx context.Context, zoneConfig *feed.Config) pipeline.Report
}

var _ Reporter = (*pipeline.Pipeline)(nil)
