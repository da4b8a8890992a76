// Package http assembles the API surface: middleware chain, route tree and
// operational endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	adminhandler "multigremial/internal/admin/handler"
	geohandler "multigremial/internal/geo/handler"
	gremiohandler "multigremial/internal/gremio/handler"
	integrantehandler "multigremial/internal/integrante/handler"
	"multigremial/internal/platform/metrics"
	"multigremial/internal/platform/middleware"
	registrohandler "multigremial/internal/registro/handler"
)

const requestTimeout = 60 * time.Second

// Handlers groups everything the router mounts.
type Handlers struct {
	Admin      *adminhandler.Handler
	Gremio     *gremiohandler.Handler
	Integrante *integrantehandler.Handler
	Registro   *registrohandler.Handler
	Geo        *geohandler.Handler
}

// New builds the router. corsOrigin is the single allowed browser origin.
func New(h Handlers, logger *slog.Logger, m *metrics.Metrics, corsOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(m.Latency)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/admin", func(r chi.Router) {
		h.Admin.Register(r)
		r.Route("/gremios", h.Gremio.Register)
		r.Route("/integrantes", h.Integrante.Register)
		r.Route("/registros", func(r chi.Router) {
			// Static geo paths are mounted alongside the /{id} routes; chi
			// resolves the static segment first.
			h.Geo.Register(r)
			h.Registro.Register(r)
		})
	})

	return r
}
