package armylisthandlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions tunes the HTTP surface around the handlers.
type RouterOptions struct {
	// UploadsPerSecond is the per-client budget for /api. Zero disables throttling.
	UploadsPerSecond float64
	UploadBurst      int
	// Metrics, when set, is served on /metrics.
	Metrics prometheus.Gatherer
}

// NewRouter mounts the API under /api, plus /healthz and the optional /metrics.
func NewRouter(h *HTTPHandlers, opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if opts.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}))
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		if opts.UploadsPerSecond > 0 {
			r.Use(throttle(newUploadLimits(opts.UploadsPerSecond, opts.UploadBurst), h.logger))
		}
		r.Post("/armies/parse", h.HandleParseArmies)
		r.Post("/events/score", h.HandleScoreEvent)
	})
	return r
}
