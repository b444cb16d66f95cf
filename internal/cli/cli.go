// Package cli wires the toolkit together: scan, check, duplicates,
// missing, fix, and watch subcommands over a shared corpus scanner.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"loclint/internal/cache"
	"loclint/internal/config"
	"loclint/internal/locfile"
	"loclint/internal/repair"
	"loclint/internal/report"
	"loclint/internal/scanner"
	"loclint/internal/validate"
)

// app carries configuration and persistent flag values shared by every
// subcommand.
type app struct {
	cfg     *config.Config
	cache   *cache.ScanCache
	verbose bool
	output  string
	columns int
}

// Execute runs the CLI application. Exit code 0 means a clean run, 1
// means unresolved findings or an I/O failure, 2 means a usage error.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	a := &app{
		cfg:   config.Load(),
		cache: cache.NewScanCache(),
	}

	started := false
	rootCmd := &cobra.Command{
		Use:          "loclint",
		Short:        "Validate and repair Victoria 2 localisation CSV files",
		Long:         "A linter and repair kit for game-mod localisation CSV files:\nsemicolon-delimited rows, Windows-1252 text, CRCRLF line endings, and a\ntrailing end marker, checked and fixed the way the game engine loads them.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			started = true
			if a.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging and per-file report detail")
	pf.StringVarP(&a.output, "output", "o", "", "write the report to this file instead of stdout (.md renders Markdown)")
	pf.IntVar(&a.columns, "columns", a.cfg.Columns, "target fields per row, key and end marker included")

	rootCmd.AddCommand(scanCmd(a))
	rootCmd.AddCommand(checkCmd(a))
	rootCmd.AddCommand(duplicatesCmd(a))
	rootCmd.AddCommand(missingCmd(a))
	rootCmd.AddCommand(fixCmd(a))
	rootCmd.AddCommand(watchCmd(a))

	if err := rootCmd.Execute(); err != nil {
		// PersistentPreRun has not run yet for flag and argument
		// errors, so started distinguishes usage from runtime.
		if started {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// targetPath resolves the positional corpus argument, falling back to
// the configured localisation directory.
func targetPath(a *app, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.CorpusDir
}

func (a *app) scanCorpus(ctx context.Context, path string) (*scanner.Corpus, error) {
	return scanner.Scan(ctx, path, scanner.Options{
		Recursive: a.cfg.Recursive,
		Workers:   a.cfg.WorkerCount,
		Cache:     a.cache,
	})
}

func (a *app) validateConfig() validate.Config {
	cfg := validate.DefaultConfig()
	cfg.Columns = a.columns
	return cfg
}

// openReport returns the report destination. With --output the report
// goes to a file, rendered as Markdown when the name ends in .md.
func (a *app) openReport() (io.WriteCloser, report.Format, error) {
	if a.output == "" {
		return nopCloser{os.Stdout}, report.FormatText, nil
	}
	f, err := os.Create(a.output)
	if err != nil {
		return nil, "", fmt.Errorf("create report file: %w", err)
	}
	format := report.FormatText
	if strings.EqualFold(filepath.Ext(a.output), ".md") {
		format = report.FormatMarkdown
	}
	return f, format, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// parseKinds validates a --kinds flag value against the repairable
// violation kinds. Empty means all of them.
func parseKinds(names []string) (map[locfile.ViolationKind]bool, error) {
	if len(names) == 0 {
		return nil, nil
	}
	kinds := make(map[locfile.ViolationKind]bool, len(names))
	for _, name := range names {
		kind := locfile.ViolationKind(strings.TrimSpace(name))
		valid := false
		for _, k := range repair.RepairableKinds {
			if k == kind {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("unknown violation kind %q (valid: %s)", name, kindList())
		}
		kinds[kind] = true
	}
	return kinds, nil
}

func kindList() string {
	names := make([]string, len(repair.RepairableKinds))
	for i, k := range repair.RepairableKinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// repairPaths runs the repairer over paths one file at a time. A failed
// file is logged and counted; the rest continue.
func repairPaths(ctx context.Context, r *repair.Repairer, paths []string) ([]*repair.Result, int) {
	var results []*repair.Result
	failures := 0
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		res, err := r.Repair(path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Repair failed")
			failures++
			continue
		}
		results = append(results, res)
	}
	return results, failures
}

// violationFiles returns the distinct files behind a violation list, in
// first-seen order.
func violationFiles(violations []locfile.Violation) []string {
	seen := make(map[string]bool)
	var files []string
	for _, v := range violations {
		if seen[v.File] {
			continue
		}
		seen[v.File] = true
		files = append(files, v.File)
	}
	return files
}
