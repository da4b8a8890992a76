// Package handler exposes administrator authentication endpoints. Only the
// email and password change routes sit behind the auth gate; login issues the
// token that gate verifies.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	adminservice "multigremial/internal/admin/service"
	"multigremial/internal/platform/middleware"
	dErrors "multigremial/pkg/domain-errors"
	"multigremial/pkg/platform/httputil"
)

// Service is the admin auth contract this handler consumes.
type Service interface {
	Login(ctx context.Context, email, password string) (*adminservice.LoginResult, error)
	ChangeEmail(ctx context.Context, adminID uuid.UUID, newEmail string) error
	ChangePassword(ctx context.Context, adminID uuid.UUID, currentPassword, newPassword string) error
}

type Handler struct {
	logger    *slog.Logger
	admin     Service
	validator middleware.TokenValidator
}

func New(admin Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, admin: admin, validator: validator}
}

// Register mounts the admin auth routes relative to /api/admin.
func (h *Handler) Register(r chi.Router) {
	r.Post("/login", h.handleLogin)

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth(h.validator, h.logger))
		protected.Put("/cambiar-email", h.handleChangeEmail)
		protected.Put("/cambiar-password", h.handleChangePassword)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.admin.Login(ctx, req.Email, req.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "login failed",
				"error", err.Error(),
				"request_id", middleware.GetRequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

type changeEmailRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleChangeEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	adminID, ok := h.adminIDFromContext(w, ctx)
	if !ok {
		return
	}

	var req changeEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.admin.ChangeEmail(ctx, adminID, req.Email); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "change email failed",
				"error", err.Error(),
				"request_id", middleware.GetRequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Email actualizado"})
}

type changePasswordRequest struct {
	PasswordActual string `json:"passwordActual"`
	PasswordNueva  string `json:"passwordNueva"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	adminID, ok := h.adminIDFromContext(w, ctx)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.admin.ChangePassword(ctx, adminID, req.PasswordActual, req.PasswordNueva); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "change password failed",
				"error", err.Error(),
				"request_id", middleware.GetRequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Contraseña actualizada"})
}

func (h *Handler) adminIDFromContext(w http.ResponseWriter, ctx context.Context) (uuid.UUID, bool) {
	raw := middleware.GetAdminID(ctx)
	if raw == "" {
		// Should never happen once RequireAuth has run.
		h.logger.ErrorContext(ctx, "admin id missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return uuid.Nil, false
	}
	adminID, err := uuid.Parse(raw)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token inválido"))
		return uuid.Nil, false
	}
	return adminID, true
}
