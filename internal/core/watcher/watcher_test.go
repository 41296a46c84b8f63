package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcher_RejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(100*time.Millisecond, nil, nil)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestNewWatcher_RejectsBadPattern(t *testing.T) {
	if _, err := NewWatcher(time.Millisecond, []string{"["}, func([]string) {}); err == nil {
		t.Fatal("expected error for invalid glob")
	}
}

func waitForPath(t *testing.T, ch <-chan []string, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case paths := <-ch:
			for _, p := range paths {
				if p == want {
					return
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for change to %s", want)
		}
	}
}

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()
	grammarFile := filepath.Join(tmpDir, "rules.grammar")
	if err := os.WriteFile(grammarFile, []byte("S -> a T\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changedFiles := make(chan []string, 10)
	w, err := NewWatcher(50*time.Millisecond, []string{"*.grammar", "*.lex"}, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.WatchFiles([]string{grammarFile}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(grammarFile, []byte("S -> b T\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForPath(t, changedFiles, grammarFile, 2*time.Second)

	// Files outside the patterns are ignored.
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.md"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-changedFiles:
		for _, p := range paths {
			if filepath.Base(p) == "notes.md" {
				t.Errorf("unmatched file triggered change: %v", paths)
			}
		}
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_SkipsUnchangedContent(t *testing.T) {
	tmpDir := t.TempDir()
	lexFile := filepath.Join(tmpDir, "words.lex")
	content := []byte("T -> b\n")
	if err := os.WriteFile(lexFile, content, 0o644); err != nil {
		t.Fatal(err)
	}

	changedFiles := make(chan []string, 10)
	w, err := NewWatcher(50*time.Millisecond, []string{"*.lex"}, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.WatchFiles([]string{lexFile}); err != nil {
		t.Fatal(err)
	}

	// Rewriting identical bytes is not a change.
	if err := os.WriteFile(lexFile, content, 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-changedFiles:
		t.Fatalf("unexpected change for identical content: %v", paths)
	case <-time.After(300 * time.Millisecond):
	}

	if err := os.WriteFile(lexFile, []byte("T -> c\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForPath(t, changedFiles, lexFile, 2*time.Second)
}

func TestWatcher_WatchedFileOutsidePatterns(t *testing.T) {
	tmpDir := t.TempDir()
	ruleFile := filepath.Join(tmpDir, "en.cfg")
	if err := os.WriteFile(ruleFile, []byte("S -> a T\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changedFiles := make(chan []string, 10)
	w, err := NewWatcher(50*time.Millisecond, []string{"*.grammar", "*.lex"}, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.WatchFiles([]string{ruleFile}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(ruleFile, []byte("S -> b T\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForPath(t, changedFiles, ruleFile, 2*time.Second)
}

func TestWatcher_NoPatternsIgnoresNeighbours(t *testing.T) {
	tmpDir := t.TempDir()
	ruleFile := filepath.Join(tmpDir, "rules")
	if err := os.WriteFile(ruleFile, []byte("S -> a T\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changedFiles := make(chan []string, 10)
	w, err := NewWatcher(50*time.Millisecond, nil, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.WatchFiles([]string{ruleFile}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("unrelated"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-changedFiles:
		t.Fatalf("unrelated file triggered change: %v", paths)
	case <-time.After(300 * time.Millisecond):
	}

	if err := os.WriteFile(ruleFile, []byte("S -> b T\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForPath(t, changedFiles, ruleFile, 2*time.Second)
}
