package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"loclint/internal/missing"
	"loclint/internal/report"
)

func missingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "missing [path]",
		Short: "Report script-referenced keys with no localisation entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scripts, _ := cmd.Flags().GetString("scripts")
			stubs, _ := cmd.Flags().GetString("stubs")
			return runMissing(a, targetPath(a, args), scripts, stubs)
		},
	}

	cmd.Flags().String("scripts", "", "directory of game script files to extract key references from")
	cmd.Flags().String("stubs", "", "write stub rows for the missing keys to this file")

	return cmd
}

// runMissing handles the `missing` command.
func runMissing(a *app, path, scriptsDir, stubsPath string) error {
	if scriptsDir == "" {
		scriptsDir = a.cfg.ScriptsDir
	}
	if scriptsDir == "" {
		return errors.New("no scripts directory: pass --scripts or set LOCLINT_SCRIPTS_DIR")
	}

	ctx, cancel := setupContext()
	defer cancel()

	corpus, err := a.scanCorpus(ctx, path)
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}

	missReport, err := missing.Scan(ctx, scriptsDir, corpus.Index, a.cfg.WorkerCount)
	if err != nil {
		return fmt.Errorf("scan scripts %s: %w", scriptsDir, err)
	}

	out, format, err := a.openReport()
	if err != nil {
		return err
	}
	defer out.Close()
	rep := report.New(out, format)
	rep.Missing(missReport)

	if stubsPath != "" && !missReport.Empty() {
		if err := missing.WriteStubs(stubsPath, missReport, a.columns); err != nil {
			return fmt.Errorf("write stubs: %w", err)
		}
		log.Info().Str("file", stubsPath).Int("keys", len(missReport.Missing)).Msg("Stub rows written")
	}

	log.Info().
		Int("script_files", missReport.ScriptFiles).
		Int("referenced", missReport.References).
		Int("missing", len(missReport.Missing)).
		Msg("Missing-key scan complete")

	if !missReport.Empty() {
		return fmt.Errorf("%d missing localisation keys", len(missReport.Missing))
	}
	return nil
}
