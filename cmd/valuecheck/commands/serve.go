package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmallet/valuecheck/internal/server"
)

var servePort int

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Starts the HTTP server exposing the scoring and cache API.

Endpoints:
  GET    /api/health               - Health check
  GET    /api/version              - Build information
  GET    /api/stocks/{ticker}      - Resolve and score one stock
  POST   /api/stocks/batch         - Resolve and score up to 10 stocks
  POST   /api/score                - Score caller-supplied ratios
  GET    /api/profiles             - Scoring profile catalog
  DELETE /api/cache/{ticker}       - Invalidate one cached ticker
  DELETE /api/cache                - Clear the cache

Example:
  valuecheck serve
  valuecheck serve --port 9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort > 0 {
		a.Config.Server.Port = servePort
	}

	srv := server.NewServer(a)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
	}

	a.Logger.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
