package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	importerhandler "clearance/internal/importer/handler"
	overridehandler "clearance/internal/override/handler"
	"clearance/internal/platform/metrics"
	"clearance/internal/platform/middleware"
	riskhandler "clearance/internal/risk/handler"
	"clearance/pkg/platform/httputil"
)

// Handlers groups the module handlers mounted on the public router.
type Handlers struct {
	Importer *importerhandler.Handler
	Risk     *riskhandler.Handler
	Override *overridehandler.Handler
	// RequireOfficer guards override submissions; nil leaves them open.
	RequireOfficer func(http.Handler) http.Handler
	// Metrics serves the Prometheus exposition; nil disables /metrics.
	Metrics http.Handler
	// HTTPMetrics records per-route request metrics when set.
	HTTPMetrics *metrics.Metrics
}

// NewRouter wires every public endpoint behind the shared middleware chain.
// Transport concerns live here; handlers only translate to service calls.
func NewRouter(h Handlers, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.AccessLog(logger))
	r.Use(chimw.Recoverer)
	if h.HTTPMetrics != nil {
		r.Use(h.HTTPMetrics.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	if h.Importer != nil {
		h.Importer.Register(r)
	}
	if h.Risk != nil {
		h.Risk.Register(r)
	}
	if h.Override != nil {
		h.Override.Register(r, h.RequireOfficer)
	}
	return r
}

// PrometheusHandler exposes the default registry.
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}
