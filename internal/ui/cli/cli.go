package cli

import (
	"flag"
	"io"
)

const versionString = "1.0.0"
const defaultConfigPath = "./grammarfsa.toml"

type cliOptions struct {
	configPath  string
	grammarFile string
	lexiconFile string
	start       string
	maxSteps    int
	watch       bool
	ui          bool
	history     bool
	recent      int
	metricsAddr string
	export      string
	verbose     bool
	version     bool
	args        []string
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("grammarfsa", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.StringVar(&opts.grammarFile, "grammar", "", "Grammar rule file (overrides config)")
	fs.StringVar(&opts.lexiconFile, "lexicon", "", "Lexicon file (overrides config)")
	fs.StringVar(&opts.start, "start", "", "Start nonterminal (overrides config)")
	fs.IntVar(&opts.maxSteps, "max-steps", -1, "Search step bound, 0 = unbounded (overrides config)")
	fs.BoolVar(&opts.watch, "watch", false, "Reload rule files when they change")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode")
	fs.BoolVar(&opts.history, "history", false, "Record recognitions in the local history database")
	fs.IntVar(&opts.recent, "recent", 0, "Print the N most recent recorded recognitions and exit (requires --history)")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address (overrides config)")
	fs.StringVar(&opts.export, "export", "", "Print the compiled automaton as dot, mermaid, plantuml or tsv and exit")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
