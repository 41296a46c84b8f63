package config

import "time"

const CurrentVersion = 1

type Config struct {
	Version       int           `toml:"version"`
	Grammar       Grammar       `toml:"grammar"`
	Search        Search        `toml:"search"`
	Watch         Watch         `toml:"watch"`
	DB            Database      `toml:"db"`
	Limits        Limits        `toml:"limits"`
	Observability Observability `toml:"observability"`
}

type Grammar struct {
	GrammarFile string `toml:"grammar_file"`
	LexiconFile string `toml:"lexicon_file"`
	Start       string `toml:"start"`
}

type Search struct {
	MaxSteps int           `toml:"max_steps"` // 0 disables the bound
	Memoize  *bool         `toml:"memoize"`
	Timeout  time.Duration `toml:"timeout"`
}

// MemoizeEnabled defaults to true when the key is absent.
func (s Search) MemoizeEnabled() bool {
	return s.Memoize == nil || *s.Memoize
}

type Watch struct {
	Enabled  bool          `toml:"enabled"`
	Debounce time.Duration `toml:"debounce"`
	Patterns []string      `toml:"patterns"` // extra files next to the rule files that trigger a reload
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Driver      string        `toml:"driver"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
	GrammarKey  string        `toml:"grammar_key"`
}

type Limits struct {
	Rate  float64 `toml:"rate"` // requests per second, 0 = unlimited
	Burst int     `toml:"burst"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// DefaultConfig returns a config with every default applied and no rule
// files set.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
