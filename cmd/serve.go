package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/workerlist/internal/api"
	"github.com/JakeFAU/workerlist/internal/clock"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the worker listing HTTP server",
		Long: `Serves the worker listing page at /workers, the JSON API under /api/v1,
health probes and Prometheus metrics. Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.GetConfig()
	logger := appInstance.GetLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiServer, err := api.NewServer(appInstance.GetSource(), clock.System{}, cfg, logger.Named("api"))
	if err != nil {
		return fmt.Errorf("init api server: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return serveUntilDone(ctx, srv, logger)
}

// serveUntilDone runs srv until ctx ends or the listener fails, then shuts it down.
func serveUntilDone(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err, ok := <-errCh:
		if ok {
			logger.Error("http server error", zap.Error(err))
			serveErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return serveErr
}
