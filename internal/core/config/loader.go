package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Load decodes the TOML file at path, applies defaults, resolves file paths
// relative to the config file and then applies environment overrides. Paths
// from the environment are taken as given. The result is not validated:
// callers apply their own overrides first and then call Validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	resolvePaths(&cfg, filepath.Dir(path))
	ApplyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = CurrentVersion
	}

	if strings.TrimSpace(cfg.Grammar.Start) == "" {
		cfg.Grammar.Start = "S"
	}

	if cfg.Search.Timeout <= 0 {
		cfg.Search.Timeout = 5 * time.Second
	}

	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}

	if strings.TrimSpace(cfg.DB.Driver) == "" {
		cfg.DB.Driver = "sqlite"
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "data/history.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 2 * time.Second
	}
	if strings.TrimSpace(cfg.DB.GrammarKey) == "" {
		cfg.DB.GrammarKey = "default"
	}

	if cfg.Limits.Rate > 0 && cfg.Limits.Burst <= 0 {
		cfg.Limits.Burst = 1
	}
}

// ResolveRelative joins value onto base unless value is empty or absolute.
func ResolveRelative(base, value string) string {
	value = strings.TrimSpace(value)
	if value == "" || filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(base, value)
}

func resolvePaths(cfg *Config, base string) {
	cfg.Grammar.GrammarFile = ResolveRelative(base, cfg.Grammar.GrammarFile)
	cfg.Grammar.LexiconFile = ResolveRelative(base, cfg.Grammar.LexiconFile)
	cfg.DB.Path = ResolveRelative(base, cfg.DB.Path)
}
