package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"loclint/internal/locfile"
	"loclint/internal/repair"
	"loclint/internal/report"
	"loclint/internal/validate"
)

func checkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate localisation files against the formatting rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fix, _ := cmd.Flags().GetBool("fix")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			kinds, _ := cmd.Flags().GetStringSlice("kinds")
			return runCheck(a, targetPath(a, args), fix, dryRun, kinds)
		},
	}

	cmd.Flags().Bool("fix", false, "repair every repairable violation after reporting")
	cmd.Flags().Bool("dry-run", false, "with --fix, preview repairs without writing")
	cmd.Flags().StringSlice("kinds", nil, "violation kinds to repair (default: all repairable)")

	return cmd
}

// runCheck handles the `check` command.
func runCheck(a *app, path string, fix, dryRun bool, kindNames []string) error {
	ctx, cancel := setupContext()
	defer cancel()

	kinds, err := parseKinds(kindNames)
	if err != nil {
		return err
	}

	corpus, err := a.scanCorpus(ctx, path)
	if err != nil {
		return fmt.Errorf("check %s: %w", path, err)
	}

	vcfg := a.validateConfig()
	var violations []locfile.Violation
	for _, f := range corpus.Files {
		violations = append(violations, validate.Check(f, vcfg)...)
	}

	out, format, err := a.openReport()
	if err != nil {
		return err
	}
	defer out.Close()
	rep := report.New(out, format)
	rep.Violations(violations)

	if !fix {
		if n := len(violations) + len(corpus.Errors); n > 0 {
			return fmt.Errorf("%d violations, %d unreadable files", len(violations), len(corpus.Errors))
		}
		return nil
	}

	r := repair.New(repair.Options{
		Columns: a.columns,
		Kinds:   kinds,
		DryRun:  dryRun,
		Cache:   a.cache,
	})
	results, failures := repairPaths(ctx, r, violationFiles(violations))
	rep.Repairs(results)

	if dryRun {
		if len(violations) > 0 {
			return fmt.Errorf("dry-run: %d violations remain", len(violations))
		}
		return nil
	}

	// Re-validate what was touched; selective --kinds repairs can
	// leave violations of other kinds standing.
	recheck, err := a.scanCorpus(ctx, path)
	if err != nil {
		return fmt.Errorf("re-check %s: %w", path, err)
	}
	var remaining []locfile.Violation
	for _, f := range recheck.Files {
		remaining = append(remaining, validate.Check(f, vcfg)...)
	}

	log.Info().
		Int("before", len(violations)).
		Int("after", len(remaining)).
		Int("failed_files", failures).
		Msg("Check with repair complete")

	if n := len(remaining) + len(recheck.Errors) + failures; n > 0 {
		return fmt.Errorf("%d violations remain, %d files failed", len(remaining)+len(recheck.Errors), failures)
	}
	return nil
}
