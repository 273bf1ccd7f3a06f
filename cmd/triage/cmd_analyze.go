package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"triage/internal/intake"
	"triage/internal/metrics"
	"triage/internal/report"
	"triage/internal/store"
	"triage/internal/wiring"
)

var analyzeFlags struct {
	runID  string
	name   string
	dryRun bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <bundle>",
	Short: "Classify every failure in a bundle and store the run",
	Long: `Reads a YAML or JSON failure bundle, classifies each failure and stores the
run with its evidence records. With a workspace, locator failures are checked
against the change history of the automation and product repositories.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.runID, "run-id", "", "Run id (default: the bundle's, else generated)")
	f.StringVar(&analyzeFlags.name, "name", "", "Run name (default: the bundle's)")
	f.BoolVar(&analyzeFlags.dryRun, "dry-run", false, "Print the run without storing it")
	addOutputFlag(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	mode, asJSON, err := outputMode(cmd)
	if err != nil {
		return err
	}
	b, err := wiring.NewBuilder(cfg, metrics.Nop{})
	if err != nil {
		return err
	}

	var st store.Store
	if !analyzeFlags.dryRun {
		if st, err = openStore(); err != nil {
			return err
		}
		defer st.Close()
	}

	run, err := wiring.Analyze(cmd.Context(), b, intake.FileSource{}, args[0], analyzeFlags.runID, analyzeFlags.name, st)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return report.JSON(out, run)
	}
	if err := report.Run(out, run, nil, mode); err != nil {
		return err
	}
	if st != nil {
		fmt.Fprintf(out, "\nStored run %s. Inspect a record with 'triage show %s <record-id>'.\n", run.ID, run.ID)
	}
	return nil
}
