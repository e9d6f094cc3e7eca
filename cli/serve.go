package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"option-explorer/controllers"
	"option-explorer/services"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Serve option chains, price history, charts and dashboards over HTTP.",
		Example: `  option-explorer serve
  option-explorer serve --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port, _ := cmd.Flags().GetInt("port"); port > 0 {
				app.Config.Server.Port = port
			}
			return app.serve(cmd.Context())
		},
	}

	cmd.Flags().Int("port", 0, "listen port (overrides server.port)")
	return cmd
}

func (app *App) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if app.Storage != nil && app.Config.Storage.Retention > 0 {
		if _, err := app.Storage.CleanupOldData(time.Now().Add(-app.Config.Storage.Retention)); err != nil {
			app.Logger.WithError(err).Warn("Failed to prune lookup journal")
		}
	}

	gin.SetMode(app.Config.Server.GinMode)

	defaults := app.defaults()
	dashboard := services.NewDashboardService(app.Options, app.History, app.Recorder, app.Logger)
	router := controllers.NewRouter(
		controllers.NewOptionsController(app.Options, app.History, defaults, app.Logger),
		controllers.NewDashboardController(dashboard, defaults),
		controllers.NewLookupController(app.Recorder),
		app.Logger,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.WithField("addr", server.Addr).Info("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.Logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
