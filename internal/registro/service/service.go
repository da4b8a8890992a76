// Package service implements the public self-registration flow: create with
// validation, filtered listing, partial update and delete.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"multigremial/internal/platform/metrics"
	"multigremial/internal/registro/models"
	dErrors "multigremial/pkg/domain-errors"
	"multigremial/pkg/platform/sentinel"
	pstrings "multigremial/pkg/platform/strings"
)

const fechaLayout = "2006-01-02"

// Store is the persistence contract for registrants.
type Store interface {
	Create(ctx context.Context, r *models.Registrado) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Registrado, error)
	List(ctx context.Context, filter models.Filter) ([]models.Registrado, error)
	Update(ctx context.Context, r *models.Registrado) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput is the JSON body of a registration. Every field is free text at
// the boundary; normalization and validation happen here.
type CreateInput struct {
	Nombres            string `json:"nombres"`
	Apellidos          string `json:"apellidos"`
	Genero             string `json:"genero"`
	FechaNacimiento    string `json:"fechaNacimiento"`
	Rut                string `json:"rut"`
	Telefono           string `json:"telefono"`
	Email              string `json:"email"`
	Region             string `json:"region"`
	Comuna             string `json:"comuna"`
	TipoEmpresa        string `json:"tipoEmpresa"`
	NumeroTrabajadores string `json:"numeroTrabajadores"`
	Rubro              string `json:"rubro"`
	AsesoriaSobre      string `json:"asesoriaSobre"`
}

// UpdateInput patches a registrant. Nil means the field was not supplied and
// keeps its stored value; a supplied empty string clears an optional field.
type UpdateInput struct {
	Nombres            *string `json:"nombres"`
	Apellidos          *string `json:"apellidos"`
	Genero             *string `json:"genero"`
	FechaNacimiento    *string `json:"fechaNacimiento"`
	Rut                *string `json:"rut"`
	Telefono           *string `json:"telefono"`
	Email              *string `json:"email"`
	Region             *string `json:"region"`
	Comuna             *string `json:"comuna"`
	TipoEmpresa        *string `json:"tipoEmpresa"`
	NumeroTrabajadores *string `json:"numeroTrabajadores"`
	Rubro              *string `json:"rubro"`
	AsesoriaSobre      *string `json:"asesoriaSobre"`
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Registrado, error) {
	nombres, okNombres := pstrings.CleanRequired(input.Nombres)
	apellidos, okApellidos := pstrings.CleanRequired(input.Apellidos)
	if !okNombres || !okApellidos {
		return nil, dErrors.New(dErrors.CodeBadRequest, "nombres y apellidos son obligatorios")
	}

	genero, err := parseGenero(input.Genero)
	if err != nil {
		return nil, err
	}
	fecha, err := parseFecha(input.FechaNacimiento)
	if err != nil {
		return nil, err
	}
	email, err := parseEmail(input.Email)
	if err != nil {
		return nil, err
	}

	registrado := &models.Registrado{
		ID:                 uuid.New(),
		Nombres:            nombres,
		Apellidos:          apellidos,
		Genero:             genero,
		FechaNacimiento:    fecha,
		Rut:                pstrings.Clean(input.Rut),
		Telefono:           pstrings.Clean(input.Telefono),
		Email:              email,
		Region:             pstrings.Clean(input.Region),
		Comuna:             pstrings.Clean(input.Comuna),
		TipoEmpresa:        pstrings.Clean(input.TipoEmpresa),
		NumeroTrabajadores: pstrings.Clean(input.NumeroTrabajadores),
		Rubro:              pstrings.Clean(input.Rubro),
		AsesoriaSobre:      pstrings.Clean(input.AsesoriaSobre),
	}
	if err := s.store.Create(ctx, registrado); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create registrado")
	}

	s.metrics.IncrementRegistrosCreated()
	s.logger.InfoContext(ctx, "registro created", "registro_id", registrado.ID)
	return registrado, nil
}

func (s *Service) List(ctx context.Context, filter models.Filter) ([]models.Registrado, error) {
	registrados, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrados")
	}
	return registrados, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Registrado, error) {
	registrado, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registro no encontrado")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registrado")
	}
	return registrado, nil
}

// Update merges the supplied fields over the stored row. Required fields
// cannot be cleared.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Registrado, error) {
	registrado, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Nombres != nil {
		nombres, ok := pstrings.CleanRequired(*input.Nombres)
		if !ok {
			return nil, dErrors.New(dErrors.CodeBadRequest, "nombres no puede quedar vacío")
		}
		registrado.Nombres = nombres
	}
	if input.Apellidos != nil {
		apellidos, ok := pstrings.CleanRequired(*input.Apellidos)
		if !ok {
			return nil, dErrors.New(dErrors.CodeBadRequest, "apellidos no puede quedar vacío")
		}
		registrado.Apellidos = apellidos
	}
	if input.Genero != nil {
		genero, err := parseGenero(*input.Genero)
		if err != nil {
			return nil, err
		}
		registrado.Genero = genero
	}
	if input.FechaNacimiento != nil {
		fecha, err := parseFecha(*input.FechaNacimiento)
		if err != nil {
			return nil, err
		}
		registrado.FechaNacimiento = fecha
	}
	if input.Email != nil {
		email, err := parseEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		registrado.Email = email
	}
	if input.Rut != nil {
		registrado.Rut = pstrings.Clean(*input.Rut)
	}
	if input.Telefono != nil {
		registrado.Telefono = pstrings.Clean(*input.Telefono)
	}
	if input.Region != nil {
		registrado.Region = pstrings.Clean(*input.Region)
	}
	if input.Comuna != nil {
		registrado.Comuna = pstrings.Clean(*input.Comuna)
	}
	if input.TipoEmpresa != nil {
		registrado.TipoEmpresa = pstrings.Clean(*input.TipoEmpresa)
	}
	if input.NumeroTrabajadores != nil {
		registrado.NumeroTrabajadores = pstrings.Clean(*input.NumeroTrabajadores)
	}
	if input.Rubro != nil {
		registrado.Rubro = pstrings.Clean(*input.Rubro)
	}
	if input.AsesoriaSobre != nil {
		registrado.AsesoriaSobre = pstrings.Clean(*input.AsesoriaSobre)
	}

	if err := s.store.Update(ctx, registrado); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registro no encontrado")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update registrado")
	}
	return registrado, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "registro no encontrado")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete registrado")
	}
	s.logger.InfoContext(ctx, "registro deleted", "registro_id", id)
	return nil
}

func parseGenero(raw string) (*models.Genero, error) {
	cleaned := pstrings.Clean(raw)
	if cleaned == nil {
		return nil, nil
	}
	genero := models.Genero(*cleaned)
	if !genero.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "género inválido")
	}
	return &genero, nil
}

func parseFecha(raw string) (*time.Time, error) {
	cleaned := pstrings.Clean(raw)
	if cleaned == nil {
		return nil, nil
	}
	fecha, err := time.Parse(fechaLayout, *cleaned)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "fecha de nacimiento inválida")
	}
	return &fecha, nil
}

func parseEmail(raw string) (*string, error) {
	cleaned := pstrings.Clean(raw)
	if cleaned == nil {
		return nil, nil
	}
	if !pstrings.LooksLikeEmail(*cleaned) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email inválido")
	}
	return cleaned, nil
}
