package app

import (
	"context"
	"log/slog"
	"time"

	"grammarfsa/internal/core/watcher"
)

// StartWatcher reloads the grammar whenever the rule files change. Calling it
// again replaces the running watcher.
func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Watch.Patterns,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	if err := w.WatchFiles([]string{a.Config.Grammar.GrammarFile, a.Config.Grammar.LexiconFile}); err != nil {
		_ = w.Close()
		return err
	}
	a.swapWatcher(w)
	return nil
}

// swapWatcher installs next and closes the watcher it replaces.
func (a *App) swapWatcher(next *watcher.Watcher) {
	a.watcherMu.Lock()
	prev := a.activeWatcher
	a.activeWatcher = next
	a.watcherMu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
	}
}

func (a *App) HandleChanges(paths []string) {
	slog.Info("detected rule file changes", "count", len(paths))

	event := ReloadEvent{Paths: paths, At: time.Now()}
	if err := a.Reload(context.Background()); err != nil {
		slog.Error("reload failed, keeping previous grammar", "error", err)
		event.Err = err
	} else if automaton := a.Automaton(); automaton != nil {
		event.States = automaton.Graph().StateCount()
		event.Edges = automaton.Graph().EdgeCount()
	}

	a.handlerMu.RLock()
	fn := a.onReload
	a.handlerMu.RUnlock()
	if fn != nil {
		fn(event)
	}
}
