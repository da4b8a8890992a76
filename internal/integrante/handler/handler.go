package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"multigremial/internal/integrante/service"
	dErrors "multigremial/pkg/domain-errors"
	"multigremial/pkg/platform/httputil"
)

type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the member routes on r. Callers mount this under
// /api/admin/integrantes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/{gremioId}", h.list)
	r.Post("/{gremioId}", h.create)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	gremioID, ok := pathGremioID(w, r)
	if !ok {
		return
	}
	integrantes, err := h.service.List(r.Context(), gremioID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, integrantes)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	gremioID, ok := pathGremioID(w, r)
	if !ok {
		return
	}

	var input service.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo JSON inválido"))
		return
	}

	integrante, err := h.service.Create(r.Context(), gremioID, input)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(r.Context(), "create integrante failed", "gremio_id", gremioID, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, integrante)
}

func pathGremioID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "gremioId"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "gremioId inválido"))
		return uuid.Nil, false
	}
	return id, true
}
