package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Validate runs every check and returns all failures.
func Validate(cfg *Config) []error {
	var errs []error
	for _, check := range []func(*Config) error{
		validateVersion,
		validateGrammar,
		validateSearch,
		validateWatch,
		validateDatabase,
		validateLimits,
	} {
		if err := check(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > CurrentVersion {
		return fmt.Errorf("unsupported config version %d; supported version is %d", cfg.Version, CurrentVersion)
	}
	return nil
}

func validateGrammar(cfg *Config) error {
	if strings.TrimSpace(cfg.Grammar.GrammarFile) == "" {
		return fmt.Errorf("grammar.grammar_file must not be empty")
	}
	if strings.TrimSpace(cfg.Grammar.LexiconFile) == "" {
		return fmt.Errorf("grammar.lexicon_file must not be empty")
	}
	if len(strings.Fields(cfg.Grammar.Start)) != 1 {
		return fmt.Errorf("grammar.start must be a single nonterminal name, got %q", cfg.Grammar.Start)
	}
	return nil
}

func validateSearch(cfg *Config) error {
	if cfg.Search.MaxSteps < 0 {
		return fmt.Errorf("search.max_steps must be >= 0, got %d", cfg.Search.MaxSteps)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	for _, pattern := range cfg.Watch.Patterns {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid watch pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	driver := strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	if driver != "sqlite" {
		return fmt.Errorf("db.driver must be sqlite, got %q", cfg.DB.Driver)
	}
	if cfg.DB.Enabled && strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	return nil
}

func validateLimits(cfg *Config) error {
	if cfg.Limits.Rate < 0 {
		return fmt.Errorf("limits.rate must be >= 0, got %v", cfg.Limits.Rate)
	}
	if cfg.Limits.Burst < 0 {
		return fmt.Errorf("limits.burst must be >= 0, got %d", cfg.Limits.Burst)
	}
	return nil
}
