package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	coreapp "grammarfsa/internal/core/app"
	"grammarfsa/internal/core/config"
	"grammarfsa/internal/output"
	"grammarfsa/internal/shared/observability"
	"grammarfsa/internal/ui/tui"
)

const (
	exitOK       = 0
	exitRejected = 1
	exitSetup    = 2
)

// Run executes the command line and returns the process exit status:
// 0 when every input is accepted, 1 when any input is rejected or fails,
// 2 on setup errors.
func Run(args []string) int {
	return run(args, os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return exitSetup
	}

	if opts.version {
		fmt.Fprintf(stdout, "grammarfsa v%s\n", versionString)
		return exitOK
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose, stderr)
	defer cleanupLogs()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return exitSetup
	}
	applyOptions(cfg, opts)
	if errs := config.Validate(cfg); len(errs) > 0 {
		slog.Error("invalid configuration", "error", errors.Join(errs...))
		return exitSetup
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return exitSetup
	}
	defer shutdownWithTimeout(shutdownTracing)

	app, err := coreapp.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return exitSetup
	}
	defer shutdownWithTimeout(app.Close)

	if opts.export != "" {
		return exportAutomaton(app, opts.export, stdout)
	}
	if opts.recent > 0 {
		return printRecent(ctx, app, opts.recent, stdout)
	}

	if addr := strings.TrimSpace(cfg.Observability.MetricsAddr); addr != "" {
		server := NewObservabilityServer(addr, coreapp.NewHealthService(app))
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return exitSetup
		}
		defer shutdownWithTimeout(server.Stop)
	}

	if cfg.Watch.Enabled {
		if err := app.StartWatcher(); err != nil {
			slog.Error("failed to start watcher", "error", err)
			return exitSetup
		}
	}

	if opts.ui {
		if err := tui.Run(app); err != nil {
			slog.Error("failed to run UI", "error", err)
			return exitSetup
		}
		return exitOK
	}

	if len(opts.args) > 0 {
		return recognizeAll(ctx, app, opts.args, stdout)
	}
	return recognizeLines(ctx, app, stdin, stdout)
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == defaultConfigPath && errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file, using defaults", "path", path)
		return config.DefaultConfig(), nil
	}
	return nil, err
}

// applyOptions lets flags override the config file.
func applyOptions(cfg *config.Config, opts cliOptions) {
	if opts.grammarFile != "" {
		cfg.Grammar.GrammarFile = opts.grammarFile
	}
	if opts.lexiconFile != "" {
		cfg.Grammar.LexiconFile = opts.lexiconFile
	}
	if opts.start != "" {
		cfg.Grammar.Start = opts.start
	}
	if opts.maxSteps >= 0 {
		cfg.Search.MaxSteps = opts.maxSteps
	}
	if opts.watch {
		cfg.Watch.Enabled = true
	}
	if opts.history || opts.recent > 0 {
		cfg.DB.Enabled = true
	}
	if opts.metricsAddr != "" {
		cfg.Observability.MetricsAddr = opts.metricsAddr
	}
}

type recognizer interface {
	Recognize(ctx context.Context, input string) (coreapp.Outcome, error)
}

func recognizeAll(ctx context.Context, r recognizer, inputs []string, stdout io.Writer) int {
	status := exitOK
	for _, input := range inputs {
		if !report(ctx, r, input, stdout) {
			status = exitRejected
		}
	}
	return status
}

// recognizeLines treats every non-blank stdin line as one input.
func recognizeLines(ctx context.Context, r recognizer, stdin io.Reader, stdout io.Writer) int {
	status := exitOK
	sc := bufio.NewScanner(stdin)
	for sc.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !report(ctx, r, line, stdout) {
			status = exitRejected
		}
	}
	if err := sc.Err(); err != nil {
		slog.Error("failed to read input", "error", err)
		return exitSetup
	}
	return status
}

func report(ctx context.Context, r recognizer, input string, stdout io.Writer) bool {
	out, err := r.Recognize(ctx, input)
	if err != nil {
		slog.Warn("recognition failed", "input", input, "error", err)
		fmt.Fprintf(stdout, "error\t%s\n", input)
		return false
	}
	verdict := "reject"
	if out.Accepted {
		verdict = "accept"
	}
	slog.Debug("recognized", "id", out.ID, "input", input, "accepted", out.Accepted, "steps", out.Steps, "duration", out.Duration)
	fmt.Fprintf(stdout, "%s\t%s\n", verdict, input)
	return out.Accepted
}

func printRecent(ctx context.Context, app *coreapp.App, limit int, stdout io.Writer) int {
	store := app.History()
	key := app.Config.DB.GrammarKey
	records, err := store.Recent(ctx, key, limit)
	if err != nil {
		slog.Error("failed to read history", "error", err)
		return exitSetup
	}
	summary, err := store.Summary(ctx, key)
	if err != nil {
		slog.Error("failed to summarize history", "error", err)
		return exitSetup
	}

	fmt.Fprintf(stdout, "History for %s: %d total, %d accepted, %d rejected, %d failed, %.1f avg steps\n",
		key, summary.Total, summary.Accepted, summary.Rejected, summary.Failed, summary.AvgSteps)
	for _, rec := range records {
		verdict := "reject"
		switch {
		case rec.Error != "":
			verdict = "error"
		case rec.Accepted:
			verdict = "accept"
		}
		fmt.Fprintf(stdout, "%s\t%s\t%d steps\t%s\n",
			rec.Timestamp.Format(time.RFC3339), verdict, rec.Steps, rec.Input)
	}
	return exitOK
}

func exportAutomaton(app *coreapp.App, format string, stdout io.Writer) int {
	gen, err := output.NewGenerator(format, app.Automaton())
	if err != nil {
		slog.Error("failed to export automaton", "error", err)
		return exitSetup
	}
	text, err := gen.Generate()
	if err != nil {
		slog.Error("failed to export automaton", "format", format, "error", err)
		return exitSetup
	}
	fmt.Fprint(stdout, text)
	return exitOK
}

func shutdownWithTimeout(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		slog.Warn("shutdown failed", "error", err)
	}
}

func configureLogging(uiMode, verbose bool, stderr io.Writer) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	// stdout carries verdicts, so logs go to stderr.
	output := stderr
	var closeFn func() = func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "grammarfsa", "grammarfsa.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "grammarfsa", "grammarfsa.log")
	}

	return "grammarfsa.log"
}
