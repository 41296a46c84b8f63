package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"grammarfsa/internal/core/config"
	"grammarfsa/internal/core/errors"
	"grammarfsa/internal/core/watcher"
	"grammarfsa/internal/data/history"
	"grammarfsa/internal/engine/grammar"
	"grammarfsa/internal/engine/search"
	"grammarfsa/internal/engine/symbol"
	"grammarfsa/internal/shared/observability"
	"grammarfsa/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ReloadEvent describes one reload attempt.
type ReloadEvent struct {
	Paths  []string
	Err    error
	States int
	Edges  int
	At     time.Time
}

// compiled is swapped atomically so recognitions never see a half-built
// automaton.
type compiled struct {
	automaton *search.Automaton
	rules     int
	entries   int
	loadedAt  time.Time
}

type App struct {
	Config *config.Config

	current atomic.Pointer[compiled]
	history *history.Store
	limiter *util.Limiter

	reloadMu sync.Mutex

	watcherMu     sync.Mutex
	activeWatcher *watcher.Watcher

	handlerMu sync.RWMutex
	onReload  func(ReloadEvent)
}

// New loads and compiles the configured grammar. The history store is
// opened when db.enabled is set.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, errors.Wrap(stderrors.Join(errs...), errors.CodeValidationError, "invalid config")
	}

	a := &App{
		Config:  cfg,
		limiter: util.NewLimiter(cfg.Limits.Rate, cfg.Limits.Burst),
	}
	if err := a.Reload(context.Background()); err != nil {
		return nil, err
	}

	if cfg.DB.Enabled {
		store, err := history.Open(cfg.DB.Path, cfg.DB.BusyTimeout)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxPath, cfg.DB.Path)
		}
		a.history = store
	}
	return a, nil
}

// Automaton returns the automaton currently serving requests.
func (a *App) Automaton() *search.Automaton {
	c := a.current.Load()
	if c == nil {
		return nil
	}
	return c.automaton
}

func (a *App) History() *history.Store { return a.history }

func (a *App) SetReloadHandler(fn func(ReloadEvent)) {
	a.handlerMu.Lock()
	defer a.handlerMu.Unlock()
	a.onReload = fn
}

// Reload reads the rule files and compiles them. On failure the previous
// automaton keeps serving.
func (a *App) Reload(ctx context.Context) error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	_, span := observability.Tracer.Start(ctx, "app.Reload")
	defer span.End()

	next, err := a.compile()
	if err != nil {
		observability.ReloadsTotal.WithLabelValues(observability.ResultError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	a.current.Store(next)
	observability.ReloadsTotal.WithLabelValues(observability.ResultOK).Inc()

	g := next.automaton.Graph()
	span.SetAttributes(
		attribute.Int("states", g.StateCount()),
		attribute.Int("edges", g.EdgeCount()),
	)
	slog.Info("grammar loaded",
		"grammar", a.Config.Grammar.GrammarFile,
		"lexicon", a.Config.Grammar.LexiconFile,
		"start", a.Config.Grammar.Start,
		"rules", next.rules,
		"entries", next.entries,
		"states", g.StateCount(),
		"edges", g.EdgeCount(),
	)
	return nil
}

func (a *App) compile() (*compiled, error) {
	gc := a.Config.Grammar
	g, lex, err := grammar.LoadFiles(gc.GrammarFile, gc.LexiconFile)
	if err != nil {
		return nil, err
	}

	automaton, err := search.Compile(g, lex, symbol.NewNonTerminal(gc.Start),
		search.WithMaxSteps(a.Config.Search.MaxSteps),
		search.WithMemoization(a.Config.Search.MemoizeEnabled()),
	)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", gc.GrammarFile, err)
	}
	return &compiled{
		automaton: automaton,
		rules:     g.RuleCount(),
		entries:   lex.EntryCount(),
		loadedAt:  time.Now().UTC(),
	}, nil
}

func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	a.swapWatcher(nil)
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			return err
		}
		a.history = nil
	}
	return nil
}

func spanFail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
