package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jihwankim/kinda/pkg/metrics"
	"github.com/jihwankim/kinda/pkg/shutdown"
)

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Serve Prometheus exposition format for the chaos engine and pipeline",
	Long: `Starts an HTTP server mounting Metrics.Handler() at /metrics, for a
Prometheus scraper to poll. Stops cleanly on SIGINT/SIGTERM or on the
presence of a stop file, via pkg/shutdown's controller.`,
	RunE: runServeMetrics,
}

func init() {
	serveMetricsCmd.Flags().String("addr", ":9090", "listen address")
	serveMetricsCmd.Flags().String("stop-file", "", "path polled for a manual stop request (default: /tmp/kinda-stop)")
}

func runServeMetrics(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	stopFile, _ := cmd.Flags().GetString("stop-file")

	m := metrics.New()
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	ctrl := shutdown.New(shutdown.Config{
		StopFile:             stopFile,
		EnableSignalHandlers: true,
		CallbackTimeout:      5 * time.Second,
	})
	ctrl.OnStop(func(shutdownCtx context.Context) {
		srv.Shutdown(shutdownCtx)
	})
	ctrl.Start(ctx)

	fmt.Fprintf(stdout, "serving metrics on %s/metrics\n", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve-metrics: %w", err)
	}
	return nil
}
