package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grammarfsa.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	content := `
version = 1

[grammar]
grammar_file = "rules/english.grammar"
lexicon_file = "/abs/english.lex"
start = "Sentence"

[search]
max_steps = 5000
memoize = false
timeout = "750ms"

[watch]
enabled = true
debounce = "1s"
patterns = ["*.grammar"]

[db]
enabled = true
path = "state/history.db"

[limits]
rate = 20
burst = 5

[observability]
metrics_addr = "127.0.0.1:9090"
`
	path := writeConfig(t, content)
	base := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "rules/english.grammar"), cfg.Grammar.GrammarFile)
	assert.Equal(t, "/abs/english.lex", cfg.Grammar.LexiconFile)
	assert.Equal(t, "Sentence", cfg.Grammar.Start)
	assert.Equal(t, 5000, cfg.Search.MaxSteps)
	assert.False(t, cfg.Search.MemoizeEnabled())
	assert.Equal(t, 750*time.Millisecond, cfg.Search.Timeout)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, []string{"*.grammar"}, cfg.Watch.Patterns)
	assert.True(t, cfg.DB.Enabled)
	assert.Equal(t, filepath.Join(base, "state/history.db"), cfg.DB.Path)
	assert.Equal(t, 20.0, cfg.Limits.Rate)
	assert.Equal(t, 5, cfg.Limits.Burst)
	assert.Equal(t, "127.0.0.1:9090", cfg.Observability.MetricsAddr)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
[grammar]
grammar_file = "g.grammar"
lexicon_file = "l.lex"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, "S", cfg.Grammar.Start)
	assert.True(t, cfg.Search.MemoizeEnabled())
	assert.Equal(t, 0, cfg.Search.MaxSteps)
	assert.Equal(t, 5*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
	assert.Empty(t, cfg.Watch.Patterns)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "default", cfg.DB.GrammarKey)
	assert.False(t, cfg.DB.Enabled)
}

func TestLoadError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "this is = = not toml"))
	assert.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing grammar file",
			content: "[grammar]\nlexicon_file = \"l.lex\"\n",
			want:    "grammar.grammar_file",
		},
		{
			name:    "missing lexicon file",
			content: "[grammar]\ngrammar_file = \"g.grammar\"\n",
			want:    "grammar.lexicon_file",
		},
		{
			name:    "start with spaces",
			content: "[grammar]\ngrammar_file = \"g\"\nlexicon_file = \"l\"\nstart = \"A B\"\n",
			want:    "grammar.start",
		},
		{
			name:    "negative steps",
			content: "[grammar]\ngrammar_file = \"g\"\nlexicon_file = \"l\"\n[search]\nmax_steps = -1\n",
			want:    "search.max_steps",
		},
		{
			name:    "future version",
			content: "version = 9\n[grammar]\ngrammar_file = \"g\"\nlexicon_file = \"l\"\n",
			want:    "unsupported config version",
		},
		{
			name:    "bad driver",
			content: "[grammar]\ngrammar_file = \"g\"\nlexicon_file = \"l\"\n[db]\ndriver = \"postgres\"\n",
			want:    "db.driver",
		},
		{
			name:    "bad pattern",
			content: "[grammar]\ngrammar_file = \"g\"\nlexicon_file = \"l\"\n[watch]\npatterns = [\"[\"]\n",
			want:    "invalid watch pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			require.NoError(t, err)
			err = errors.Join(Validate(cfg)...)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), "error %q should mention %q", err, tt.want)
		})
	}
}

func TestLoad_PartialConfigLeftForCallerOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[search]\nmax_steps = 100\n"))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Search.MaxSteps)
	assert.Empty(t, cfg.Grammar.GrammarFile)

	cfg.Grammar.GrammarFile = "g.grammar"
	cfg.Grammar.LexiconFile = "l.lex"
	assert.Empty(t, Validate(cfg))
}

func TestLoad_EnvPathsNotJoinedToConfigDir(t *testing.T) {
	t.Setenv("GRAMMARFSA_GRAMMAR_GRAMMAR_FILE", "env/rules.grammar")
	t.Setenv("GRAMMARFSA_DB_PATH", "env/history.db")
	path := writeConfig(t, `
[grammar]
grammar_file = "file.grammar"
lexicon_file = "file.lex"
`)
	base := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env/rules.grammar", cfg.Grammar.GrammarFile)
	assert.Equal(t, "env/history.db", cfg.DB.Path)
	assert.Equal(t, filepath.Join(base, "file.lex"), cfg.Grammar.LexiconFile)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.MaxSteps = -5
	errs := Validate(cfg)
	// grammar file missing + negative steps
	assert.Len(t, errs, 2)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GRAMMARFSA_GRAMMAR_START", "Top")
	t.Setenv("GRAMMARFSA_SEARCH_MAX_STEPS", "42")
	t.Setenv("GRAMMARFSA_SEARCH_MEMOIZE", "false")
	t.Setenv("GRAMMARFSA_LIMITS_RATE", "2.5")
	t.Setenv("GRAMMARFSA_WATCH_DEBOUNCE", "not-a-duration")

	cfg := DefaultConfig()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, "Top", cfg.Grammar.Start)
	assert.Equal(t, 42, cfg.Search.MaxSteps)
	assert.False(t, cfg.Search.MemoizeEnabled())
	assert.Equal(t, 2.5, cfg.Limits.Rate)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce, "unparsable overrides are ignored")
}

func TestResolveRelative(t *testing.T) {
	assert.Equal(t, "", ResolveRelative("/base", ""))
	assert.Equal(t, "/abs/x", ResolveRelative("/base", "/abs/x"))
	assert.Equal(t, filepath.Join("/base", "x"), ResolveRelative("/base", "x"))
}
