package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/internal/config"
	"github.com/reoring/formskema/internal/logging"
	"github.com/reoring/formskema/middleware"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form pipeline over HTTP",
		Long: `Starts an HTTP server exposing:

  POST /forms    classify a JSON or YAML form body
  GET  /schema   JSON Schema of the form
  GET  /metrics  Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger, err := logging.New(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			handler, err := newRouter(cfg, logger, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serverErrors := make(chan error, 1)
			go func() {
				logger.Info("listening", zap.String("addr", srv.Addr))
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serve: %w", err)
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					_ = srv.Close()
					return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
				}
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address; overrides server.addr from the config")
	return cmd
}

// newRouter wires the form handler, the schema document and the metrics
// endpoint. Metrics are registered with reg only.
func newRouter(cfg config.Config, logger *zap.Logger, reg *prometheus.Registry) (http.Handler, error) {
	val, err := cfg.Validator()
	if err != nil {
		return nil, err
	}
	metrics, err := middleware.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	doc, err := formDocument()
	if err != nil {
		return nil, err
	}

	accepted := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, _ := middleware.FormFromContext(r.Context())
		logger.Info("form accepted", zap.String("username", f.Username()))
		middleware.WriteJSON(w, http.StatusOK, map[string]any{
			"type":  formskema.OutcomeForm.String(),
			"value": f,
		})
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Method(http.MethodPost, "/forms", middleware.ValidateForm(accepted,
		middleware.WithValidator(val),
		middleware.WithLogger(logger),
		middleware.WithMetrics(metrics),
		middleware.WithSourceOptions(cfg.SourceOptions()),
	))
	r.Get("/schema", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, doc)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r, nil
}
