package tasks

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/lysyi3m/weather-advices/app/feed"
)

type RefreshZoneTask struct {
	Task
	ZoneConfig *feed.Config
	reporter   Reporter
	store      *ReportStore
	clock      clockwork.Clock
}

func NewRefreshZoneTask(zoneConfig *feed.Config, reporter Reporter, store *ReportStore, clock clockwork.Clock) *RefreshZoneTask {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RefreshZoneTask{
		Task:       NewTask(TaskTypeRefreshZone, zoneConfig.Name, clock),
		ZoneConfig: zoneConfig,
		reporter:   reporter,
		store:      store,
		clock:      clock,
	}
}

func (t *RefreshZoneTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	report := t.reporter.Report(ctx, t.ZoneConfig)

	// A cancelled run says nothing about the feed; keep the previous report.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	t.store.Put(report, t.clock.Now())

	slog.Debug("Task completed",
		"type", string(t.GetType()),
		"zone", t.ZoneName,
		"status", report.Status,
		"duration", t.GetDuration())

	return nil
}
