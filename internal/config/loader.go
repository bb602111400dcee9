package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"misetui/internal/fileutil"
	"misetui/internal/logging"
)

// Load loads configuration from path (or the default location when path is
// empty), then applies environment overrides. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cwd, _ := os.Getwd()
	cfg := DefaultConfig(cwd)

	if path == "" {
		path = getConfigPath()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		} else {
			logging.Debug("config loaded", "path", path)
		}
	}

	loadFromEnv(cfg)
	cfg.normalize()
	return cfg, nil
}

// getConfigPath returns the path to the config file.
func getConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "misetui", "config.yaml")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "misetui", "config.yaml")
}

// GetConfigPath returns the path to the config file (exported for external use).
func GetConfigPath() string {
	return getConfigPath()
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadFromEnv loads configuration from environment variables.
func loadFromEnv(cfg *Config) {
	if dirs := os.Getenv("MISETUI_SCAN_DIRS"); dirs != "" {
		cfg.Scan.Dirs = filepath.SplitList(dirs)
	}

	if depth := os.Getenv("MISETUI_MAX_DEPTH"); depth != "" {
		if n, err := strconv.Atoi(depth); err == nil {
			cfg.Scan.MaxDepth = n
		} else {
			logging.Warn("ignoring invalid MISETUI_MAX_DEPTH", "value", depth)
		}
	}

	if bin := os.Getenv("MISETUI_MISE_BIN"); bin != "" {
		cfg.Gateway.Binary = bin
	}

	if level := os.Getenv("MISETUI_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

func (c *Config) normalize() {
	c.Scan.MaxDepth = ClampDepth(c.Scan.MaxDepth)
	if c.Gateway.Binary == "" {
		c.Gateway.Binary = DefaultBinary
	}
	if c.Gateway.VersionsLimit <= 0 {
		c.Gateway.VersionsLimit = DefaultVersionsLimit
	}
	if c.Gateway.CacheSize <= 0 {
		c.Gateway.CacheSize = DefaultCacheSize
	}
}

// ScanRoots returns the configured scan directories with "~" expanded and
// empty entries removed.
func (c *Config) ScanRoots() []string {
	roots := make([]string, 0, len(c.Scan.Dirs))
	for _, d := range c.Scan.Dirs {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		roots = append(roots, ExpandHome(d))
	}
	return roots
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// Save writes the configuration to the default config file.
func (c *Config) Save() error {
	configPath := getConfigPath()
	if configPath == "" {
		return fmt.Errorf("could not determine config path")
	}
	return c.SaveTo(configPath)
}

// SaveTo writes the configuration to path atomically with owner-only
// permissions.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fileutil.AtomicWrite(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
