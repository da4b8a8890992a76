package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"multigremial/internal/geo"
	"multigremial/pkg/platform/httputil"
)

type Handler struct {
	cache *geo.Cache
}

func New(cache *geo.Cache) *Handler {
	return &Handler{cache: cache}
}

// Register mounts the reference-data routes on r. Callers mount this inside
// /api/admin/registros, where the static paths win over the /{id} routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/regiones", h.category(geo.CategoryRegiones))
	r.Get("/comunas", h.category(geo.CategoryComunas))
}

func (h *Handler) category(category string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := h.cache.Get(r.Context(), category)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}
