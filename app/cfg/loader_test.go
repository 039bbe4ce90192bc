package cfg

import (
	"os"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

// unsetEnv removes variables for the test; an empty value would still override defaults.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	unsetEnv(t, "ZONES_DIR", "PORT", "API_ACCESS_KEY", "USER_AGENT", "TZ", "DEBUG", "REFRESH_INTERVAL", "WORKER_COUNT")

	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.ZonesDir != "./zones" {
		t.Errorf("Expected zones dir './zones', got '%s'", cfg.ZonesDir)
	}
	if cfg.Port != "3000" {
		t.Errorf("Expected port '3000', got '%s'", cfg.Port)
	}
	if cfg.Timezone != "Europe/Madrid" {
		t.Errorf("Expected timezone 'Europe/Madrid', got '%s'", cfg.Timezone)
	}
	if cfg.Debug {
		t.Error("Expected debug to be disabled")
	}
	if cfg.Once {
		t.Error("Expected once to be disabled")
	}
	if cfg.APIAccessKey != "" {
		t.Errorf("Expected empty API key, got '%s'", cfg.APIAccessKey)
	}
	if cfg.RefreshInterval != 0 || cfg.RefreshEvery() != 0 {
		t.Errorf("Expected background refresh disabled, got %d", cfg.RefreshInterval)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("Expected 2 workers, got %d", cfg.WorkerCount)
	}
}

func TestLoadArgsFlagsAndEnv(t *testing.T) {
	unsetEnv(t, "ZONES_DIR", "USER_AGENT", "TZ", "DEBUG", "WORKER_COUNT")
	t.Setenv("PORT", "9090")
	t.Setenv("REFRESH_INTERVAL", "300")
	t.Setenv("API_ACCESS_KEY", "secret")

	cfg, err := LoadArgs([]string{"--zones-dir", "/etc/zones", "--debug", "--once", "--timezone", "Atlantic/Canary"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.APIAccessKey != "secret" {
		t.Errorf("Expected API key 'secret', got '%s'", cfg.APIAccessKey)
	}
	if cfg.ZonesDir != "/etc/zones" {
		t.Errorf("Expected zones dir '/etc/zones', got '%s'", cfg.ZonesDir)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if !cfg.Once {
		t.Error("Expected once to be enabled")
	}
	if cfg.Timezone != "Atlantic/Canary" {
		t.Errorf("Expected timezone 'Atlantic/Canary', got '%s'", cfg.Timezone)
	}
	if cfg.RefreshEvery() != 5*time.Minute {
		t.Errorf("Expected 5m refresh interval, got %s", cfg.RefreshEvery())
	}
}

func TestLoadArgsUnknownFlag(t *testing.T) {
	if _, err := LoadArgs([]string{"--no-such-flag"}); err == nil {
		t.Error("Expected error for unknown flag")
	}
}

func TestLoadArgsNegativeRefreshInterval(t *testing.T) {
	unsetEnv(t, "REFRESH_INTERVAL")

	if _, err := LoadArgs([]string{"--refresh-interval=-5"}); err == nil {
		t.Error("Expected error for negative refresh interval")
	}
}

func TestLocation(t *testing.T) {
	if loc := (&Cfg{}).Location(); loc != time.Local {
		t.Errorf("Expected local location for empty timezone, got %v", loc)
	}
	if loc := (&Cfg{Timezone: "Not/AZone"}).Location(); loc != time.Local {
		t.Errorf("Expected local location for invalid timezone, got %v", loc)
	}
	if loc := (&Cfg{Timezone: "UTC"}).Location(); loc.String() != "UTC" {
		t.Errorf("Expected UTC, got %v", loc)
	}
}
