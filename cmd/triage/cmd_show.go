package main

import (
	"github.com/spf13/cobra"

	"triage/internal/report"
	"triage/internal/store"
)

var showCmd = &cobra.Command{
	Use:   "show <run-id> [record-id]",
	Short: "Show a stored run, or one record with its full evidence",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runShow,
}

func init() {
	addOutputFlag(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	mode, asJSON, err := outputMode(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runID := args[0]
	overrides, err := st.ListOverrides(runID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		run, err := st.GetRun(runID)
		if err != nil {
			return err
		}
		if asJSON {
			return report.JSON(out, struct {
				Run       any              `json:"run"`
				Overrides []store.Override `json:"overrides"`
			}{run, overrides})
		}
		return report.Run(out, run, overrides, mode)
	}

	rec, err := st.GetRecord(runID, args[1])
	if err != nil {
		return err
	}
	var override *store.Override
	if o, ok := store.Latest(overrides)[args[1]]; ok {
		override = &o
	}
	if asJSON {
		return report.JSON(out, struct {
			Record   any             `json:"record"`
			Override *store.Override `json:"override,omitempty"`
		}{rec, override})
	}
	return report.Record(out, rec, override, mode)
}
