package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"triage/internal/display"
	"triage/internal/wiring"
)

var overrideFlags struct {
	category string
	reason   string
}

var overrideCmd = &cobra.Command{
	Use:   "override <run-id> <record-id>",
	Short: "Record a reviewed verdict for one record",
	Long: `Stores a reviewed category next to a record. The original record is kept
unchanged; 'triage show' displays both.`,
	Args: cobra.ExactArgs(2),
	RunE: runOverride,
}

func init() {
	f := overrideCmd.Flags()
	f.StringVar(&overrideFlags.category, "category", "", "Reviewed category (product, automation, infrastructure, ...)")
	f.StringVar(&overrideFlags.reason, "reason", "", "Why the verdict changed")

	_ = overrideCmd.MarkFlagRequired("category")
	_ = overrideCmd.MarkFlagRequired("reason")
}

func runOverride(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	o, err := wiring.Override(st, args[0], args[1], overrideFlags.category, overrideFlags.reason)
	if err != nil {
		return fmt.Errorf("override: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Override #%d: %s/%s -> %s\n", o.ID, o.RunID, o.RecordID, display.CategoryWithCode(o.Category))
	return nil
}
