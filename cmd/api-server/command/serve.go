package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		storeKind string
		migrate   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, storeKind, migrate, logger)
			if err != nil {
				return err
			}
			defer a.close(logger)

			dispatchCtx, stopDispatch := context.WithCancel(context.Background())
			go a.dispatcher.Run(dispatchCtx)

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
				Handler:           a.router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				logger.Info("http_server_starting", "addr", srv.Addr, "store", storeKind, "env", cfg.GoEnv)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				stopDispatch()
				a.dispatcher.Wait()
				return err
			case <-ctx.Done():
			}

			logger.Info("http_server_stopping", "timeout", cfg.ShutdownTimeout)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			shutdownErr := srv.Shutdown(shutdownCtx)

			// handlers are done, flush what they queued
			stopDispatch()
			a.dispatcher.Wait()
			logger.Info("http_server_stopped")

			return shutdownErr
		},
	}

	cmd.Flags().StringVar(&storeKind, "store", storePostgres, "storage backend: postgres or memory")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply schema migrations on startup (postgres only)")
	return cmd
}
