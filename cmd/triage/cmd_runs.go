package main

import (
	"github.com/spf13/cobra"

	"triage/internal/report"
)

var runsFlags struct {
	limit int
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsFlags.limit, "limit", 20, "Maximum runs to list (0 = all)")
	addOutputFlag(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	mode, asJSON, err := outputMode(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(runsFlags.limit)
	if err != nil {
		return err
	}
	if asJSON {
		return report.JSON(cmd.OutOrStdout(), runs)
	}
	return report.Runs(cmd.OutOrStdout(), runs, mode)
}
