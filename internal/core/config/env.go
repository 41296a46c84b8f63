package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: GRAMMARFSA_[SECTION]_[KEY] (e.g., GRAMMARFSA_SEARCH_MAX_STEPS).
func ApplyEnvOverrides(cfg *Config) {
	// Grammar
	setEnvString(&cfg.Grammar.GrammarFile, "GRAMMARFSA_GRAMMAR_GRAMMAR_FILE")
	setEnvString(&cfg.Grammar.LexiconFile, "GRAMMARFSA_GRAMMAR_LEXICON_FILE")
	setEnvString(&cfg.Grammar.Start, "GRAMMARFSA_GRAMMAR_START")

	// Search
	setEnvInt(&cfg.Search.MaxSteps, "GRAMMARFSA_SEARCH_MAX_STEPS")
	setEnvDuration(&cfg.Search.Timeout, "GRAMMARFSA_SEARCH_TIMEOUT")
	if val, ok := os.LookupEnv("GRAMMARFSA_SEARCH_MEMOIZE"); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", "GRAMMARFSA_SEARCH_MEMOIZE", "value", val)
			cfg.Search.Memoize = &b
		}
	}

	// Watch
	setEnvBool(&cfg.Watch.Enabled, "GRAMMARFSA_WATCH_ENABLED")
	setEnvDuration(&cfg.Watch.Debounce, "GRAMMARFSA_WATCH_DEBOUNCE")

	// Database
	setEnvBool(&cfg.DB.Enabled, "GRAMMARFSA_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "GRAMMARFSA_DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "GRAMMARFSA_DB_BUSY_TIMEOUT")

	// Limits
	setEnvFloat64(&cfg.Limits.Rate, "GRAMMARFSA_LIMITS_RATE")
	setEnvInt(&cfg.Limits.Burst, "GRAMMARFSA_LIMITS_BURST")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "GRAMMARFSA_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "GRAMMARFSA_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
