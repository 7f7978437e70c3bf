package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rggbconv/internal/server"
	"github.com/cwbudde/rggbconv/internal/store"
)

var (
	serveAddr    string
	serveDataDir string
	serveNoSave  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run benchmarks through an HTTP API",
	Long: `Starts an HTTP server that accepts benchmark jobs as JSON configs,
streams their progress over SSE and serves the saved reports.

Endpoints:
  POST   /api/v1/jobs                 submit a job (bench config JSON)
  GET    /api/v1/jobs                 list jobs
  GET    /api/v1/jobs/{id}            job status and report
  GET    /api/v1/jobs/{id}/stream     progress events (SSE)
  GET    /api/v1/jobs/{id}/benchfmt   results in Go benchmark format
  DELETE /api/v1/jobs/{id}            cancel a job
  GET    /api/v1/reports              list saved runs
  GET    /api/v1/reports/{id}         a saved report`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "./data", "Base directory for run storage")
	serveCmd.Flags().BoolVar(&serveNoSave, "no-save", false, "Keep results in memory only")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	var runStore *store.FSStore
	if !serveNoSave {
		var err error
		runStore, err = store.NewFSStore(serveDataDir)
		if err != nil {
			return fmt.Errorf("failed to create run store: %w", err)
		}
	}

	srv := server.NewServer(serveAddr, runStore)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
