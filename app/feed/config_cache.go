package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxRetries   = 5
	DefaultTimeoutMs    = 2000
	DefaultRetryDelayMs = 1000
)

type ConfigCache struct {
	zonesDir string
	cache    map[string]*Config
	mu       sync.RWMutex
}

func NewConfigCache(zonesDir string) *ConfigCache {
	return &ConfigCache{
		zonesDir: zonesDir,
		cache:    make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.zonesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.zonesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		// Derive zone name from filename (remove .yml extension)
		fileName := filepath.Base(file)
		zoneName := fileName[:len(fileName)-4]

		config, err := cc.LoadConfig(zoneName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded", "zone", zoneName, "enabled", config.Settings.Enabled, "target_zone", config.TargetZone)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(zoneName string) (*Config, error) {
	configFile := cc.getConfigFilePath(zoneName)
	zoneConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	zoneConfig.Name = zoneName

	if err := cc.validateConfig(zoneConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.Put(zoneConfig)

	return zoneConfig, nil
}

// Put stores an already validated configuration.
func (cc *ConfigCache) Put(zoneConfig *Config) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[zoneConfig.Name] = zoneConfig
}

func (cc *ConfigCache) GetConfig(zoneName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	zoneConfig, ok := cc.cache[zoneName]
	if !ok {
		return nil, fmt.Errorf("zone config with name '%s' not found", zoneName)
	}
	return zoneConfig, nil
}

// GetEnabledConfigs returns enabled zones sorted by name.
func (cc *ConfigCache) GetEnabledConfigs() []*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabled := make([]*Config, 0, len(cc.cache))
	for _, v := range cc.cache {
		if v.Settings.Enabled {
			enabled = append(enabled, v)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i].Name < enabled[j].Name })
	return enabled
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	zoneConfig := Config{
		Settings: ConfigSettings{Enabled: true},
	}
	if err := yaml.Unmarshal(data, &zoneConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ApplyDefaults(&zoneConfig)

	return &zoneConfig, nil
}

// ApplyDefaults fills unset settings with the values the dashboard card used.
func ApplyDefaults(zoneConfig *Config) {
	if zoneConfig.Settings.MaxRetries == 0 {
		zoneConfig.Settings.MaxRetries = DefaultMaxRetries
	}
	if zoneConfig.Settings.TimeoutMs == 0 {
		zoneConfig.Settings.TimeoutMs = DefaultTimeoutMs
	}
	if zoneConfig.Settings.RetryDelayMs == 0 {
		zoneConfig.Settings.RetryDelayMs = DefaultRetryDelayMs
	}
	if zoneConfig.Settings.OnInvalidFeed == "" {
		zoneConfig.Settings.OnInvalidFeed = OnInvalidFeedError
	}
}

func (cc *ConfigCache) validateConfig(zoneConfig *Config) error {
	if zoneConfig == nil {
		return fmt.Errorf("zoneConfig is nil")
	}

	requiredFields := []struct {
		name  string
		value string
	}{
		{"zone name", zoneConfig.Name},
		{"feed URL", zoneConfig.FeedURL},
		{"target zone", zoneConfig.TargetZone},
	}

	for _, field := range requiredFields {
		if field.value == "" {
			return fmt.Errorf("%s is required", field.name)
		}
	}

	if zoneConfig.Settings.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}

	nonNegativeFields := map[string]int{
		"timeout":     zoneConfig.Settings.TimeoutMs,
		"retry delay": zoneConfig.Settings.RetryDelayMs,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	switch zoneConfig.Settings.OnInvalidFeed {
	case OnInvalidFeedEmpty, OnInvalidFeedError:
	default:
		return fmt.Errorf("invalid on_invalid_feed value: %s", zoneConfig.Settings.OnInvalidFeed)
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(zoneName string) string {
	return filepath.Join(cc.zonesDir, zoneName+".yml")
}
