package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"triage/internal/config"
	"triage/internal/logging"
	mcpserver "triage/internal/mcp"
	"triage/internal/metrics"
	"triage/internal/wiring"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing analyze_failure, analyze_run,
list_runs, get_run, get_record and override_verdict.

With --metrics-addr, Prometheus metrics are served on /metrics at that address.
The server exits when its parent process goes away.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("metrics-addr", "", "Listen address for /metrics (empty disables)")
	_ = v.BindPFlag(config.KeyMetricsAddr, serveCmd.Flags().Lookup("metrics-addr"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logging.New("serve")
	m := metrics.New()
	b, err := wiring.NewBuilder(cfg, m)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if addr := cfg.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics listener stopped", "addr", addr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = hs.Shutdown(shutdownCtx)
		}()
		log.Info("serving metrics", "addr", addr)
	}

	mcpserver.Version = version
	srv := mcpserver.NewServer(b, st)
	mcpserver.WatchParent(ctx, cancel, 2*time.Second)

	log.Info("starting triage MCP server over stdio (parent watchdog active)")
	return srv.Run(ctx)
}
