package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// defaultDir is where the collector writes its dumps by default
const defaultDir = "out"

var ErrMalformedLine = errors.New("malformed line")

var cmd Cmd

// Cmd is the command line arguments.
type Cmd struct {
	// ConfigPath is the path to an optional YAML configuration file.
	ConfigPath   string
	Signature    string
	Suffix       string
	Exclude      []string
	Recursive    bool
	Workers      int
	Strict       bool
	NoCache      bool
	UplinkVLANs  []string
	JSONPath     string
	BaselinePath string
	Detailed     bool
	ExitCode     bool
	Verbose      bool
}

// ExitStatus makes the process exit with a status but no error message.
type ExitStatus int

func (e ExitStatus) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

var rootCmd = &cobra.Command{
	Use:   "nhscan [dir]",
	Short: "Find controllers routing local traffic through a next-hop",
	Long: `nhscan reads controller dumps ("show ip interface brief" followed by
"show datapath session table") from a directory and reports every
controller with sessions between two local subnets that are sent
through a next-hop. The directory defaults to "out".`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(c *cobra.Command, args []string) error {
		dir := defaultDir
		if len(args) > 0 {
			dir = args[0]
		}

		cfg, err := cmd.config(c.Flags().Changed)
		if err != nil {
			return err
		}

		logger, err := newLogger(cmd.Verbose)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer logger.Sync()

		affected, err := run(cfg, dir, cmd.options(), c.OutOrStdout(), logger.Sugar())
		if err != nil {
			return err
		}
		if cmd.ExitCode && affected > 0 {
			return ExitStatus(2)
		}
		return nil
	},
}

var signaturesCmd = &cobra.Command{
	Use:   "signatures",
	Short: "List the bug signatures nhscan knows about",
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, _ []string) {
		for _, s := range availableSignatures() {
			fmt.Fprintf(c.OutOrStdout(), "%-10s %s\n", s.Name(), s.Description())
		}
	},
}

func init() {
	defaults := DefaultConfig()

	flags := rootCmd.Flags()
	flags.StringVarP(&cmd.ConfigPath, "config", "c", "", "Path to a YAML configuration file")
	flags.StringVarP(&cmd.Signature, "signature", "s", defaults.Signature, "Bug signature to look for (see 'nhscan signatures')")
	flags.StringVar(&cmd.Suffix, "suffix", defaults.Suffix, "Only scan files whose names end with this suffix")
	flags.StringSliceVar(&cmd.Exclude, "exclude", nil, "Skip files matching these glob patterns (e.g. 'old/**,*.bak.log')")
	flags.BoolVarP(&cmd.Recursive, "recursive", "r", defaults.Recursive, "Descend into subdirectories")
	flags.IntVarP(&cmd.Workers, "workers", "w", defaults.Workers, "Number of files scanned in parallel")
	flags.BoolVar(&cmd.Strict, "strict", defaults.Strict, "Fail on the first malformed line or unreadable file")
	flags.BoolVar(&cmd.NoCache, "no-cache", false, "Disable the result cache, force a full re-scan")
	flags.StringSliceVar(&cmd.UplinkVLANs, "uplink-vlans", defaults.UplinkVLANs, "VLAN ids treated as uplinks by the uplink signature")
	flags.StringVar(&cmd.JSONPath, "json", "", "Write a JSON report to this file")
	flags.StringVar(&cmd.BaselinePath, "baseline", "", "Compare with a JSON report from an earlier run")
	flags.BoolVar(&cmd.Detailed, "detailed", false, "Also print a detailed markdown report")
	flags.BoolVar(&cmd.ExitCode, "exit-code", false, "Exit with status 2 when any controller is affected")
	flags.BoolVarP(&cmd.Verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(signaturesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var status ExitStatus
		if errors.As(err, &status) {
			os.Exit(int(status))
		}
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

// config merges defaults, the config file and explicitly set flags
func (m Cmd) config(changed func(name string) bool) (*Config, error) {
	cfg := DefaultConfig()
	if m.ConfigPath != "" {
		loaded, err := LoadConfig(m.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if changed("signature") {
		cfg.Signature = m.Signature
	}
	if changed("suffix") {
		cfg.Suffix = m.Suffix
	}
	if changed("exclude") {
		cfg.Exclude = m.Exclude
	}
	if changed("recursive") {
		cfg.Recursive = m.Recursive
	}
	if changed("workers") {
		cfg.Workers = m.Workers
	}
	if changed("strict") {
		cfg.Strict = m.Strict
	}
	if changed("no-cache") {
		cfg.Cache = !m.NoCache
	}
	if changed("uplink-vlans") {
		cfg.UplinkVLANs = m.UplinkVLANs
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (m Cmd) options() Options {
	return Options{
		JSONPath:     m.JSONPath,
		BaselinePath: m.BaselinePath,
		Detailed:     m.Detailed,
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Development = false
	config.DisableStacktrace = true
	if verbose {
		config.Level.SetLevel(zap.DebugLevel)
	} else {
		config.Level.SetLevel(zap.InfoLevel)
	}
	return config.Build()
}

// Options are the report settings that do not affect scanning
type Options struct {
	JSONPath     string
	BaselinePath string
	Detailed     bool
}

// run scans dir and writes the report to stdout. It returns the number
// of affected controllers.
func run(cfg *Config, dir string, opts Options, stdout io.Writer, log *zap.SugaredLogger) (int, error) {
	startTime := time.Now()

	sig, err := newSignature(cfg)
	if err != nil {
		return 0, err
	}

	var baseline *JSONOutput
	if opts.BaselinePath != "" {
		loaded, err := ReadJSONResults(opts.BaselinePath)
		if err != nil {
			return 0, fmt.Errorf("loading baseline: %w", err)
		}
		baseline = &loaded
	}

	files, err := collectFiles(dir, cfg.Suffix, cfg.Recursive, cfg.Exclude)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		log.Warnf("no %s files found in %s", cfg.Suffix, dir)
	}

	var cache *FileCache
	if cfg.Cache {
		cache = loadCache(dir, sig.Name(), cfg.cacheParams())
	}

	log.Debugf("scanning %d files for %q using %d workers", len(files), sig.Name(), cfg.Workers)
	runner := &Runner{
		Signature: sig,
		Dir:       dir,
		Workers:   cfg.Workers,
		Cache:     cache,
	}
	results := runner.Run(files)

	cacheHits := 0
	for _, r := range results {
		if r.Cached {
			cacheHits++
		}
	}
	if cfg.Cache && cacheHits < len(results) {
		if err := saveCache(dir, sig.Name(), cfg.cacheParams(), results); err != nil {
			log.Warnw("failed to save cache", "error", err)
		}
	}
	log.Debugf("scanned %d files (%d cached) in %s",
		len(results), cacheHits, time.Since(startTime).Round(time.Millisecond))

	if err := checkResults(results, cfg.Strict, log); err != nil {
		return 0, err
	}

	ignored, err := LoadIgnoredRows(dir)
	if err != nil {
		log.Warnw("ignoring unreadable ignore file", "error", err)
	}
	results, stats := FilterResults(results, ignored)
	if stats.IgnoredRows > 0 {
		log.Infof("ignored %d acknowledged rows (%d controllers cleared)", stats.IgnoredRows, stats.ClearedFiles)
	}

	reporter := NewReporter(stdout)
	affected := reporter.PrintResults(results)
	if opts.Detailed {
		reporter.PrintDetailed(results)
	}

	report := buildJSONOutput(dir, sig.Name(), results)
	if baseline != nil {
		reporter.PrintComparison(opts.BaselinePath, compareResults(*baseline, report))
	}

	reporter.PrintTotal(affected)

	if opts.JSONPath != "" {
		if err := WriteJSONResults(report, opts.JSONPath); err != nil {
			return affected, err
		}
		log.Infof("results written to %s", opts.JSONPath)
	}

	return affected, nil
}

// checkResults logs skipped files and lines. In strict mode the first
// one fails the run.
func checkResults(results []FileResult, strict bool, log *zap.SugaredLogger) error {
	for _, r := range results {
		if r.Err != nil {
			if strict {
				return r.Err
			}
			log.Warnw("skipping unreadable file", "file", r.Name, "error", r.Err)
			continue
		}
		for _, w := range r.Result.Warnings {
			if strict {
				return fmt.Errorf("%w: %s:%d: %s", ErrMalformedLine, r.Name, w.Line, w.Reason)
			}
			log.Warnw("malformed input", "file", r.Name, "line", w.Line, "reason", w.Reason)
		}
	}
	return nil
}
