// Package handler exposes gremio CRUD over HTTP. Create and update accept
// multipart bodies carrying scalar fields, a JSON-encoded member list, and
// file parts for the logo, the carta de adhesión and member photos.
package handler

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"multigremial/internal/gremio/service"
	dErrors "multigremial/pkg/domain-errors"
	"multigremial/pkg/platform/httputil"
)

// maxUploadBytes caps the in-memory portion of a multipart body.
const maxUploadBytes = 32 << 20

type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the gremio routes on r. Callers mount this under
// /api/admin/gremios.
func (h *Handler) Register(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.getByID)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, err := parseGremioForm(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	id, err := h.service.Create(r.Context(), input)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(r.Context(), "create gremio failed", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"ok":       true,
		"gremioId": id,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	gremios, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list gremios failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, gremios)
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	gremio, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, gremio)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	input, err := parseGremioForm(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	gremio, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(r.Context(), "update gremio failed", "gremio_id", id, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"gremio": gremio,
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "id inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// parseGremioForm reads the multipart body into a GremioInput. Photo parts are
// matched by key shape: integranteFoto_<i> and integranteFotoNew_<i> key by
// list position, integranteFotoId_<id> keys by stored member id.
func parseGremioForm(r *http.Request) (service.GremioInput, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return service.GremioInput{}, dErrors.New(dErrors.CodeBadRequest, "cuerpo multipart inválido")
	}

	input := service.GremioInput{
		Nombre:         r.FormValue("nombre"),
		Rut:            r.FormValue("rut"),
		Rubro:          r.FormValue("rubro"),
		Region:         r.FormValue("region"),
		Descripcion:    r.FormValue("descripcion"),
		FotosPorIndice: map[int]service.Upload{},
		FotosPorID:     map[uuid.UUID]service.Upload{},
	}

	members, err := service.ParseIntegrantes(r.FormValue("integrantes"))
	if err != nil {
		return service.GremioInput{}, err
	}
	input.Integrantes = members

	if up, err := formFile(r, "logo"); err != nil {
		return service.GremioInput{}, err
	} else if up != nil {
		input.Logo = up
	}
	if up, err := formFile(r, "cartaAdhesion"); err != nil {
		return service.GremioInput{}, err
	} else if up != nil {
		input.Carta = up
	}

	for key, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(key, "integranteFotoNew_"):
			idx, err := strconv.Atoi(strings.TrimPrefix(key, "integranteFotoNew_"))
			if err != nil {
				continue
			}
			up, err := readPart(headers[0])
			if err != nil {
				return service.GremioInput{}, err
			}
			input.FotosPorIndice[idx] = *up
		case strings.HasPrefix(key, "integranteFotoId_"):
			memberID, err := uuid.Parse(strings.TrimPrefix(key, "integranteFotoId_"))
			if err != nil {
				continue
			}
			up, err := readPart(headers[0])
			if err != nil {
				return service.GremioInput{}, err
			}
			input.FotosPorID[memberID] = *up
		case strings.HasPrefix(key, "integranteFoto_"):
			idx, err := strconv.Atoi(strings.TrimPrefix(key, "integranteFoto_"))
			if err != nil {
				continue
			}
			up, err := readPart(headers[0])
			if err != nil {
				return service.GremioInput{}, err
			}
			input.FotosPorIndice[idx] = *up
		}
	}

	return input, nil
}

func formFile(r *http.Request, key string) (*service.Upload, error) {
	headers, ok := r.MultipartForm.File[key]
	if !ok || len(headers) == 0 {
		return nil, nil
	}
	return readPart(headers[0])
}

func readPart(header *multipart.FileHeader) (*service.Upload, error) {
	f, err := header.Open()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "no se pudo leer el archivo adjunto")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "no se pudo leer el archivo adjunto")
	}
	return &service.Upload{Filename: header.Filename, Content: content}, nil
}
