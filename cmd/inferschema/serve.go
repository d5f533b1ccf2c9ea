package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/inferschema"
	"github.com/aretw0/inferschema/internal/cli"
	"github.com/aretw0/inferschema/internal/presentation/tui"
	httpAdapter "github.com/aretw0/inferschema/pkg/adapters/http"
	"github.com/aretw0/inferschema/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the catalog over HTTP: record listing and registration, payload
decoding, OpenAPI export, Prometheus metrics and a change event stream.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		metrics := observability.NewMetrics(nil)
		streams := httpAdapter.NewStreamManager()

		e, err := setup(ctx, cmd, metrics.Hooks(), streams.Hooks())
		if err != nil {
			return err
		}
		defer e.close()

		if e.holder.Path() != "" {
			if err := e.holder.WatchFile(); err != nil {
				e.logger.Warn("config hot reload disabled", "error", err)
			}
			defer e.holder.Stop()
		}

		port := e.holder.Get().HTTP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		handler := httpAdapter.NewHandler(e.catalog,
			httpAdapter.WithStreams(streams),
			httpAdapter.WithMetrics(metrics.Handler()),
			httpAdapter.WithLogger(e.logger),
		)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		out := cmd.OutOrStdout()
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(out, strings.TrimSpace(inferschema.Version))
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			cli.PrintSystemMessage(out, "Listening on %s", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			if sc, ok := ctx.(*cli.SignalContext); ok && sc.Signal() != nil {
				cli.PrintSystemMessage(out, "Shutting down (%v)", sc.Signal())
			}

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				e.logger.Error("graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			cli.PrintSystemMessage(out, "Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Skip the banner")
}
