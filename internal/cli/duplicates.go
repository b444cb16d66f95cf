package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"loclint/internal/duplicates"
	"loclint/internal/locfile"
	"loclint/internal/repair"
	"loclint/internal/report"
)

func duplicatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duplicates [path]",
		Short: "Report duplicate keys within and across localisation files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fix, _ := cmd.Flags().GetBool("fix")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return runDuplicates(a, targetPath(a, args), fix, dryRun)
		},
	}

	cmd.Flags().Bool("fix", false, "comment out shadowed within-file duplicates (cross-file conflicts are never auto-resolved)")
	cmd.Flags().Bool("dry-run", false, "with --fix, preview repairs without writing")

	return cmd
}

// runDuplicates handles the `duplicates` command.
func runDuplicates(a *app, path string, fix, dryRun bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	corpus, err := a.scanCorpus(ctx, path)
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}

	dupReport := duplicates.Detect(corpus.Index)

	out, format, err := a.openReport()
	if err != nil {
		return err
	}
	defer out.Close()
	rep := report.New(out, format)
	rep.Duplicates(dupReport)

	log.Info().
		Int("within_file", len(dupReport.WithinFile)).
		Int("cross_file", len(dupReport.CrossFile)).
		Msg("Duplicate detection complete")

	failures := 0
	if fix && len(dupReport.WithinFile) > 0 {
		r := repair.New(repair.Options{
			Columns: a.columns,
			Kinds:   map[locfile.ViolationKind]bool{locfile.DuplicateKeyWithinFile: true},
			DryRun:  dryRun,
			Cache:   a.cache,
		})

		seen := make(map[string]bool)
		var paths []string
		for _, d := range dupReport.WithinFile {
			if seen[d.File] {
				continue
			}
			seen[d.File] = true
			paths = append(paths, d.File)
		}

		var results []*repair.Result
		results, failures = repairPaths(ctx, r, paths)
		rep.Repairs(results)
	}

	// Cross-file findings are advisory; only within-file duplicates
	// left in place fail the run.
	if fix && !dryRun {
		if failures > 0 {
			return fmt.Errorf("%d files failed duplicate repair", failures)
		}
		return nil
	}
	if len(dupReport.WithinFile) > 0 {
		return fmt.Errorf("%d unresolved within-file duplicates", len(dupReport.WithinFile))
	}
	return nil
}
