// triage classifies failed CI test runs as product, automation or
// infrastructure problems and keeps the evidence behind every verdict.
//
// Usage:
//
//	triage analyze <bundle> [--workspace=<path>] [--run-id=<id>] [--dry-run]
//	triage show <run-id> [record-id]
//	triage runs [--limit=<n>]
//	triage override <run-id> <record-id> --category=<c> --reason=<text>
//	triage schema [bundle|run] [--validate=<file>]
//	triage serve [--metrics-addr=<addr>]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"triage/internal/config"
	"triage/internal/format"
	"triage/internal/logging"
	"triage/internal/store"
	"triage/internal/tracing"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	v          = config.New()
	cfg        config.Config
	configPath string
	stopTraces tracing.ShutdownFunc
)

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Evidence-based triage of failed test runs",
	Long: "triage decides whether a failed test points at the product, the automation\n" +
		"or the infrastructure, and records the evidence and confidence behind each call.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Config file (default "+config.DefaultFile+" when present)")
	f.String("db", store.DefaultDBPath, "Store DB path")
	f.String("workspace", "", "Workspace file naming the automation and product repositories")
	f.String("log-level", "info", "Log level: debug, info, warn, error")
	f.String("log-format", "text", "Log format: text or json")
	f.String("tracing", "none", "Trace exporter: none or stdout")
	f.Int("workers", 0, "Failures analysed in parallel (default GOMAXPROCS)")

	for flag, key := range map[string]string{
		"db":         config.KeyDB,
		"workspace":  config.KeyWorkspace,
		"log-level":  config.KeyLogLevel,
		"log-format": config.KeyLogFormat,
		"tracing":    config.KeyTracing,
		"workers":    config.KeyWorkers,
	} {
		_ = v.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(overrideCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func setup(*cobra.Command, []string) error {
	var err error
	if cfg, err = config.Load(v, configPath); err != nil {
		return err
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		return err
	}
	stopTraces, err = tracing.Setup("triage", cfg.Tracing, os.Stderr)
	return err
}

func teardown(cmd *cobra.Command, _ []string) error {
	if stopTraces == nil {
		return nil
	}
	return stopTraces(context.WithoutCancel(cmd.Context()))
}

// outputMode reads the shared --output flag: "json" or a table mode.
func outputMode(cmd *cobra.Command) (mode format.Mode, asJSON bool, err error) {
	s, _ := cmd.Flags().GetString("output")
	if s == "json" {
		return format.ASCII, true, nil
	}
	mode, err = format.ParseMode(s)
	return mode, false, err
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "table", "Output: table, markdown, csv or json")
}

func openStore() (store.Store, error) {
	st, err := store.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
