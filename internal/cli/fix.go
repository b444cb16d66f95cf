package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"loclint/internal/filewalker"
	"loclint/internal/repair"
	"loclint/internal/report"
	"loclint/internal/worker"
)

// repairBatchSize bounds how many files are repaired between progress
// log lines.
const repairBatchSize = 50

func fixCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [path]",
		Short: "Repair localisation files in place, backing up originals",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, _ := cmd.Flags().GetStringSlice("kinds")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			noBackup, _ := cmd.Flags().GetBool("no-backup")
			return runFix(a, targetPath(a, args), kinds, dryRun, noBackup)
		},
	}

	cmd.Flags().StringSlice("kinds", nil, "violation kinds to repair (default: all repairable)")
	cmd.Flags().Bool("dry-run", false, "preview repairs without writing")
	cmd.Flags().Bool("no-backup", false, "skip the .bak copy before rewriting")

	return cmd
}

// runFix handles the `fix` command.
func runFix(a *app, path string, kindNames []string, dryRun, noBackup bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	kinds, err := parseKinds(kindNames)
	if err != nil {
		return err
	}

	w := filewalker.New(filewalker.CSVExtensions, a.cfg.Recursive)
	entries, err := w.Walk(path)
	if err != nil {
		return fmt.Errorf("walk %s: %w", path, err)
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}

	log.Info().Int("files", len(paths)).Bool("dry_run", dryRun).Msg("Starting repair pass")

	r := repair.New(repair.Options{
		Columns:  a.columns,
		Kinds:    kinds,
		DryRun:   dryRun,
		NoBackup: noBackup,
		Cache:    a.cache,
	})

	var results []*repair.Result
	failures := 0
	changed := 0

	batches := worker.Batch(paths, repairBatchSize)
	for i, batch := range batches {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batchResults, batchFailures := repairPaths(ctx, r, batch)
		results = append(results, batchResults...)
		failures += batchFailures
		for _, res := range batchResults {
			if res.Changed {
				changed++
			}
		}

		if len(batches) > 1 {
			log.Info().
				Int("batch", i+1).
				Int("total_batches", len(batches)).
				Int("changed", changed).
				Msg("Repair progress")
		}
	}

	out, format, err := a.openReport()
	if err != nil {
		return err
	}
	defer out.Close()
	report.New(out, format).Repairs(results)

	log.Info().
		Int("files", len(paths)).
		Int("changed", changed).
		Int("failed", failures).
		Msg("Repair pass complete")

	if failures > 0 {
		return fmt.Errorf("%d files failed to repair", failures)
	}
	if dryRun && changed > 0 {
		return fmt.Errorf("dry-run: %d files need repairs", changed)
	}
	return nil
}
