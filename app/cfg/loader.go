package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	ZonesDir     string `long:"zones-dir" env:"ZONES_DIR" default:"./zones" description:"Directory containing zone configuration files"`
	Port         string `long:"port" env:"PORT" default:"3000" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for /api endpoints (optional)"`
	Once         bool   `long:"once" description:"Run every enabled zone once, print the reports as JSON and exit"`

	// Background refresh
	RefreshInterval int `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"0" description:"Seconds between background zone refreshes (0 disables them)"`
	WorkerCount     int `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background refresh workers"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (compatible; weather-advices/1.0)" description:"User agent string for feed requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"Europe/Madrid" description:"Timezone of feed timestamps (e.g., Europe/Madrid, Atlantic/Canary)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses os.Args and the environment. It returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.RefreshInterval < 0 {
		return nil, fmt.Errorf("refresh interval must be non-negative, got %d", raw.RefreshInterval)
	}

	cfg := &Cfg{
		ZonesDir:     raw.ZonesDir,
		Port:         raw.Port,
		APIAccessKey: raw.APIAccessKey,
		Once:         raw.Once,

		RefreshInterval: raw.RefreshInterval,
		WorkerCount:     raw.WorkerCount,

		UserAgent:    raw.UserAgent,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	return cfg, nil
}

// Location resolves the configured timezone, falling back to time.Local.
func (c *Cfg) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", c.Timezone, "error", err)
		return time.Local
	}
	return loc
}

// RefreshEvery is zero when background refresh is disabled.
func (c *Cfg) RefreshEvery() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}
