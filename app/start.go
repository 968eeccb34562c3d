package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	armylisthandlers "github.com/Black-And-White-Club/armylists/app/modules/armylist/infrastructure/handlers"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Handler builds the HTTP API. The metrics route is mounted on the API router only
// when no separate metrics address is configured.
func (app *App) Handler() http.Handler {
	cfg := app.Config.Server
	handlers := armylisthandlers.NewHTTPHandlers(app.Pipeline, app.Standings, app.Factory, app.Logger, app.Tracer, cfg.MaxUploadBytes)

	opts := armylisthandlers.RouterOptions{
		UploadsPerSecond: cfg.RateLimit,
		UploadBurst:      cfg.RateBurst,
	}
	if app.Config.Observability.MetricsAddress == "" {
		opts.Metrics = app.Registry
	}
	return armylisthandlers.NewRouter(handlers, opts)
}

// Serve runs the HTTP API until ctx is cancelled, then drains in-flight requests.
func (app *App) Serve(ctx context.Context) error {
	servers := []*http.Server{{
		Addr:              app.Config.Server.Address,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if addr := app.Config.Observability.MetricsAddress; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
		servers = append(servers, &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			app.Logger.InfoContext(gctx, "Starting HTTP server", attr.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen on %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("Shutting down HTTP servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.Logger.Error("HTTP server shutdown failed", attr.String("address", srv.Addr), attr.Error(err))
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
