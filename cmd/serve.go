package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sheetfolio/config"
	"sheetfolio/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio page over HTTP",
	Long: `Start an HTTP server that renders the portfolio page.

Every request to / runs one full load of the four sheets; nothing is cached
between requests. JSON, health and Prometheus endpoints are served alongside:
- GET /api/page
- GET /api/history (when history.db is set)
- GET /healthz
- GET /metrics`,
	Example: `
  # Start server on the configured port
  sheetfolio serve

  # Start with explicit port and history database
  sheetfolio serve --port 9090 --db ./sheetfolio.db
`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"port":   config.KeyServerPort,
			"db":     config.KeyHistoryDB,
			"static": config.KeyServerStaticDir,
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		server := newHTTPServer(a)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		a.logger.Info("listening", zap.String("url", fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port)))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			a.logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func newHTTPServer(a *app) *http.Server {
	opts := web.Options{
		Loader:    a.loader,
		Renderer:  a.renderer,
		Metrics:   a.metrics,
		Gatherer:  a.registry,
		StaticDir: a.cfg.Server.StaticDir,
		Logger:    a.logger.Named("http"),
	}
	if a.store != nil {
		opts.History = a.store
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           web.NewServer(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "HTTP port for the web server")
	serveCmd.Flags().String("db", "", "Path to SQLite history database (empty disables history)")
	serveCmd.Flags().String("static", "", "Directory served under /static/")
}
