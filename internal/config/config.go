package config

import "time"

// Config represents the main application configuration.
type Config struct {
	Scan    ScanConfig    `yaml:"scan"`
	Gateway GatewayConfig `yaml:"gateway"`
	Watcher WatcherConfig `yaml:"watcher"`
	Logging LoggingConfig `yaml:"logging"`

	// Runtime version information
	Version string `yaml:"-"`
}

// ScanConfig controls the project health scanner.
type ScanConfig struct {
	// Root directories walked when looking for projects. "~" is expanded.
	Dirs []string `yaml:"dirs"`

	// Maximum recursion depth below each root.
	MaxDepth int `yaml:"max_depth"`

	// Directory name patterns that never contain projects (doublestar syntax).
	Skip []string `yaml:"skip"`
}

// GatewayConfig controls how the mise binary is invoked.
type GatewayConfig struct {
	Binary        string        `yaml:"binary"`
	VersionsLimit int           `yaml:"versions_limit"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	CacheSize     int           `yaml:"cache_size"`
}

// WatcherConfig holds settings for the manifest drift watcher.
type WatcherConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMs int  `yaml:"debounce_ms"`
}

// Debounce returns the debounce interval.
func (w WatcherConfig) Debounce() time.Duration {
	if w.DebounceMs <= 0 {
		return DefaultDebounce
	}
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  bool   `yaml:"file"`
}

// DefaultConfig returns the default configuration. cwd, when non-empty, is
// appended to the scan roots.
func DefaultConfig(cwd string) *Config {
	dirs := []string{DefaultScanDir}
	if cwd != "" {
		dirs = append(dirs, cwd)
	}
	return &Config{
		Scan: ScanConfig{
			Dirs:     dirs,
			MaxDepth: DefaultMaxDepth,
			Skip:     append([]string(nil), DefaultSkipPatterns...),
		},
		Gateway: GatewayConfig{
			Binary:        DefaultBinary,
			VersionsLimit: DefaultVersionsLimit,
			CacheTTL:      DefaultCacheTTL,
			CacheSize:     DefaultCacheSize,
		},
		Watcher: WatcherConfig{
			Enabled:    true,
			DebounceMs: int(DefaultDebounce / time.Millisecond),
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// ClampDepth bounds a scan depth to the range accepted by the scan settings
// popup.
func ClampDepth(d int) int {
	if d < MinDepth {
		return MinDepth
	}
	if d > MaxDepth {
		return MaxDepth
	}
	return d
}
