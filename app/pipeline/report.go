package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lysyi3m/weather-advices/app/feed"
	"github.com/lysyi3m/weather-advices/app/retry"
)

type Status string

const (
	StatusAlerts      Status = "alerts"
	StatusNoAlerts    Status = "no_alerts"
	StatusUnavailable Status = "unavailable" // the relay answered with something that is not a usable feed
	StatusTransient   Status = "transient"   // every attempt failed; worth retrying later
)

// Report is what the dashboard card receives for one zone.
type Report struct {
	Zone       string        `json:"zone"`
	TargetZone string        `json:"target_zone"`
	Status     Status        `json:"status"`
	Alerts     []feed.Record `json:"alerts"`
	Message    string        `json:"message,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Report runs the pipeline for a zone and never fails: errors become a neutral status.
func (p *Pipeline) Report(ctx context.Context, zoneConfig *feed.Config) Report {
	start := p.clock.Now()

	records, err := p.Run(ctx, zoneConfig)
	report := buildReport(zoneConfig, records, err)

	p.metrics.PipelineRuns.WithLabelValues(zoneConfig.Name, string(report.Status)).Inc()
	if err == nil {
		p.metrics.ActiveAlerts.WithLabelValues(zoneConfig.Name).Set(float64(len(records)))
	}

	logRun(zoneConfig, report, p.clock.Since(start))
	return report
}

// ReportAll runs one independent pipeline per zone concurrently. Output follows input order.
func (p *Pipeline) ReportAll(ctx context.Context, zoneConfigs []*feed.Config) []Report {
	reports := make([]Report, len(zoneConfigs))

	var wg sync.WaitGroup
	for i, zoneConfig := range zoneConfigs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i] = p.Report(ctx, zoneConfig)
		}()
	}
	wg.Wait()

	return reports
}

// Current drops alerts that expired after the report was built.
func (r Report) Current(now time.Time) Report {
	if r.Status != StatusAlerts {
		return r
	}

	alerts := make([]feed.Record, 0, len(r.Alerts))
	for _, alert := range r.Alerts {
		if !alert.ValidUntil.Before(now) {
			alerts = append(alerts, alert)
		}
	}

	r.Alerts = alerts
	if len(alerts) == 0 {
		r.Status = StatusNoAlerts
		r.Message = noAlertsMessage(r.TargetZone)
	}
	return r
}

func noAlertsMessage(targetZone string) string {
	return fmt.Sprintf("Sin alertas para %s", targetZone)
}

func buildReport(zoneConfig *feed.Config, records []feed.Record, err error) Report {
	report := Report{
		Zone:       zoneConfig.Name,
		TargetZone: zoneConfig.TargetZone,
		Alerts:     []feed.Record{},
	}

	switch {
	case err == nil && len(records) > 0:
		report.Status = StatusAlerts
		report.Alerts = records
	case err == nil:
		report.Status = StatusNoAlerts
		report.Message = noAlertsMessage(zoneConfig.TargetZone)
	case isTransient(err):
		report.Status = StatusTransient
		report.Message = "Error cargando avisos"
		report.Error = err.Error()
	default:
		report.Status = StatusUnavailable
		report.Message = "Datos no disponibles temporalmente"
		report.Error = err.Error()
	}

	return report
}

func isTransient(err error) bool {
	return errors.Is(err, retry.ErrRetriesExhausted) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
