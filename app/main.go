package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/lysyi3m/weather-advices/app/api"
	"github.com/lysyi3m/weather-advices/app/cfg"
	"github.com/lysyi3m/weather-advices/app/feed"
	"github.com/lysyi3m/weather-advices/app/fetch"
	"github.com/lysyi3m/weather-advices/app/metrics"
	"github.com/lysyi3m/weather-advices/app/pipeline"
	"github.com/lysyi3m/weather-advices/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting Weather Advices", "version", appCfg.Version)

	configCache := feed.NewConfigCache(appCfg.ZonesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load zone configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Zone configurations loaded",
		"dir", appCfg.ZonesDir,
		"count", configCache.GetConfigCount(),
		"enabled", len(configCache.GetEnabledConfigs()))

	clock := clockwork.NewRealClock()
	httpClient := &http.Client{Timeout: 30 * time.Second}
	fetcher := fetch.NewFetcher(httpClient, appCfg.UserAgent)
	parser := feed.NewParser(feed.NewRegexWindowExtractor(appCfg.Location()))

	p := pipeline.New(fetcher, parser, clock, metrics.New())

	if appCfg.Once {
		if err := runOnce(p, configCache); err != nil {
			slog.Error("Failed to write reports", "error", err)
			os.Exit(1)
		}
		return
	}

	var store *tasks.ReportStore
	if interval := appCfg.RefreshEvery(); interval > 0 {
		store = tasks.NewReportStore()
		scheduler := tasks.NewScheduler(configCache, p, store, clock, interval, appCfg.WorkerCount)
		scheduler.Start()
		defer scheduler.Stop()
		slog.Info("Background refresh started", "interval", interval, "workers", appCfg.WorkerCount)
	}

	// Stored reports are served until two refresh cycles have been missed
	apiHandler := api.NewHandler(configCache, p, store, clock, 2*appCfg.RefreshEvery())
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Weather Advices shutdown complete")
}

// runOnce reports every enabled zone to stdout as JSON.
func runOnce(p *pipeline.Pipeline, configCache *feed.ConfigCache) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reports := p.ReportAll(ctx, configCache.GetEnabledConfigs())

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reports)
}
