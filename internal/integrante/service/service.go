// Package service covers the standalone member endpoints: listing a gremio's
// integrantes and appending a single one outside the reconcile flow.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"multigremial/internal/gremio/models"
	dErrors "multigremial/pkg/domain-errors"
	"multigremial/pkg/platform/sentinel"
	pstrings "multigremial/pkg/platform/strings"
)

// Store is the slice of gremio persistence this service needs.
type Store interface {
	ListIntegrantes(ctx context.Context, gremioID uuid.UUID) ([]models.Integrante, error)
	InsertIntegrante(ctx context.Context, it *models.Integrante) error
}

type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput is the JSON body of a member append.
type CreateInput struct {
	Nombre   string `json:"nombre"`
	Telefono string `json:"telefono"`
	Correo   string `json:"correo"`
	FotoURL  string `json:"fotoUrl"`
	Cargo    string `json:"cargo"`
}

// List returns the members of a gremio, failing with NotFound when the gremio
// does not exist.
func (s *Service) List(ctx context.Context, gremioID uuid.UUID) ([]models.Integrante, error) {
	integrantes, err := s.store.ListIntegrantes(ctx, gremioID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "gremio no encontrado")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list integrantes")
	}
	return integrantes, nil
}

// Create validates and appends one member to an existing gremio.
func (s *Service) Create(ctx context.Context, gremioID uuid.UUID, input CreateInput) (*models.Integrante, error) {
	nombre, ok := pstrings.CleanRequired(input.Nombre)
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "nombre requerido")
	}

	correo := pstrings.Clean(input.Correo)
	if correo != nil && !pstrings.LooksLikeEmail(*correo) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "correo inválido")
	}

	cargo := models.Cargo(strings.TrimSpace(input.Cargo))
	if cargo == "" {
		cargo = models.CargoMiembro
	}
	if !cargo.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("cargo inválido %q", input.Cargo))
	}

	// Existence check up front so a missing gremio answers NotFound instead of
	// surfacing as a constraint violation.
	if _, err := s.List(ctx, gremioID); err != nil {
		return nil, err
	}

	it := &models.Integrante{
		ID:       uuid.New(),
		GremioID: gremioID,
		Nombre:   nombre,
		Telefono: pstrings.Clean(input.Telefono),
		Correo:   correo,
		FotoURL:  pstrings.Clean(input.FotoURL),
		Cargo:    cargo,
	}
	if err := s.store.InsertIntegrante(ctx, it); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "gremio no encontrado")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create integrante")
	}

	s.logger.InfoContext(ctx, "integrante added", "gremio_id", gremioID, "integrante_id", it.ID)
	return it, nil
}
