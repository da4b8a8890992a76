// Package service implements gremio CRUD and the member reconciliation that
// turns a submitted member list into insert/update/delete operations against
// the stored set.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"multigremial/internal/gremio/models"
	"multigremial/internal/platform/metrics"
	"multigremial/internal/storage"
	dErrors "multigremial/pkg/domain-errors"
	"multigremial/pkg/platform/sentinel"
	pstrings "multigremial/pkg/platform/strings"
	"multigremial/pkg/platform/tx"
)

// Store is the persistence contract for gremios and their integrantes. All
// mutating calls join a context transaction when one is present.
type Store interface {
	CreateGremio(ctx context.Context, g *models.Gremio) error
	FindGremioByID(ctx context.Context, id uuid.UUID) (*models.Gremio, error)
	ListGremios(ctx context.Context) ([]models.Gremio, error)
	UpdateGremio(ctx context.Context, g *models.Gremio) error
	DeleteGremio(ctx context.Context, id uuid.UUID) error

	InsertIntegrante(ctx context.Context, it *models.Integrante) error
	// UpdateIntegrante is scoped to (id, gremioID) so a submission can never
	// mutate another gremio's member.
	UpdateIntegrante(ctx context.Context, it *models.Integrante) error
	DeleteIntegrantes(ctx context.Context, gremioID uuid.UUID, ids []uuid.UUID) error
	ListIntegrantes(ctx context.Context, gremioID uuid.UUID) ([]models.Integrante, error)
}

// Service orchestrates validation, uploads and persistence for gremios.
type Service struct {
	store    Store
	uploader storage.Uploader
	runner   tx.Runner
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) { s.runner = r }
}

func New(store Store, uploader storage.Uploader, opts ...Option) *Service {
	s := &Service{
		store:    store,
		uploader: uploader,
		runner:   tx.NopRunner{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the payload, uploads any files, and persists the gremio
// with its members inside one transaction. Returns the new gremio id.
func (s *Service) Create(ctx context.Context, input GremioInput) (uuid.UUID, error) {
	fields, err := normalizeGremioFields(input)
	if err != nil {
		return uuid.Nil, err
	}

	members, err := normalizeIntegrantes(input.Integrantes)
	if err != nil {
		return uuid.Nil, err
	}

	logoURL, cartaURL, err := s.uploadGremioFiles(ctx, input)
	if err != nil {
		return uuid.Nil, err
	}

	// Resolve member photos before opening the transaction so an upload
	// failure leaves nothing persisted.
	fotoURLs := make([]*string, len(members))
	for i := range members {
		if up, ok := input.FotosPorIndice[i]; ok {
			url, err := s.uploader.Upload(ctx, up.Content, up.Filename, storage.FolderFotos, storage.KindImage)
			if err != nil {
				return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to upload member photo")
			}
			fotoURLs[i] = &url
		}
	}

	gremio := &models.Gremio{
		ID:          uuid.New(),
		Nombre:      fields.nombre,
		Rut:         fields.rut,
		Rubro:       fields.rubro,
		Region:      fields.region,
		Descripcion: fields.descripcion,
		LogoURL:     logoURL,
		CartaPdfURL: cartaURL,
	}

	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.CreateGremio(txCtx, gremio); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create gremio")
		}
		for i, m := range members {
			it := &models.Integrante{
				ID:       uuid.New(),
				GremioID: gremio.ID,
				Nombre:   m.nombre,
				Telefono: m.telefono,
				Correo:   m.correo,
				FotoURL:  fotoURLs[i],
				Cargo:    m.cargo,
			}
			if err := s.store.InsertIntegrante(txCtx, it); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create integrante")
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.metrics.IncrementGremiosCreated()
	s.logger.InfoContext(ctx, "gremio created", "gremio_id", gremio.ID, "integrantes", len(members))
	return gremio.ID, nil
}

// List returns all gremios with their members eagerly attached.
func (s *Service) List(ctx context.Context) ([]models.Gremio, error) {
	gremios, err := s.store.ListGremios(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list gremios")
	}
	return gremios, nil
}

// GetByID returns one gremio with members attached.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Gremio, error) {
	gremio, err := s.store.FindGremioByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "gremio no encontrado")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load gremio")
	}
	return gremio, nil
}

// Delete removes the gremio and, by ownership, all its members.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteGremio(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete gremio")
	}
	s.logger.InfoContext(ctx, "gremio deleted", "gremio_id", id)
	return nil
}

// Update reconciles the submitted member list against the stored one:
//   - stored members absent from the submission are deleted
//   - submitted members carrying an id are updated, scoped to this gremio
//   - submitted members without an id are inserted
//
// Photo resolution for an existing member tries, in order: a new upload keyed
// to its id, the previously stored URL, a client-supplied URL, null. The
// client-supplied fallback is deliberate: the admin UI round-trips the stored
// URL when a member is re-submitted unchanged. New members try an upload keyed
// to their list position, then a client URL, then null. Logo and carta are
// replaced only when a new file arrives.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input GremioInput) (*models.Gremio, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := normalizeGremioFields(input)
	if err != nil {
		return nil, err
	}

	members, err := normalizeIntegrantes(input.Integrantes)
	if err != nil {
		return nil, err
	}

	newLogoURL, newCartaURL, err := s.uploadGremioFiles(ctx, input)
	if err != nil {
		return nil, err
	}

	currentByID := make(map[uuid.UUID]models.Integrante, len(current.Integrantes))
	for _, it := range current.Integrantes {
		currentByID[it.ID] = it
	}

	submittedIDs := make(map[uuid.UUID]struct{}, len(members))
	for _, m := range members {
		if m.id != nil {
			submittedIDs[*m.id] = struct{}{}
		}
	}

	var toDelete []uuid.UUID
	for _, it := range current.Integrantes {
		if _, keep := submittedIDs[it.ID]; !keep {
			toDelete = append(toDelete, it.ID)
		}
	}

	// Resolve all photo URLs before the transaction opens.
	fotoURLs := make([]*string, len(members))
	for i, m := range members {
		url, err := s.resolveFotoURL(ctx, input, m, i, currentByID)
		if err != nil {
			return nil, err
		}
		fotoURLs[i] = url
	}

	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		updated := *current
		updated.Nombre = fields.nombre
		updated.Rut = fields.rut
		updated.Rubro = fields.rubro
		updated.Region = fields.region
		updated.Descripcion = fields.descripcion
		if newLogoURL != nil {
			updated.LogoURL = newLogoURL
		}
		if newCartaURL != nil {
			updated.CartaPdfURL = newCartaURL
		}
		if err := s.store.UpdateGremio(txCtx, &updated); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update gremio")
		}

		if len(toDelete) > 0 {
			if err := s.store.DeleteIntegrantes(txCtx, id, toDelete); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete integrantes")
			}
		}

		for i, m := range members {
			if m.id != nil {
				it := &models.Integrante{
					ID:       *m.id,
					GremioID: id,
					Nombre:   m.nombre,
					Telefono: m.telefono,
					Correo:   m.correo,
					FotoURL:  fotoURLs[i],
					Cargo:    m.cargo,
				}
				if err := s.store.UpdateIntegrante(txCtx, it); err != nil {
					return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update integrante")
				}
				continue
			}
			it := &models.Integrante{
				ID:       uuid.New(),
				GremioID: id,
				Nombre:   m.nombre,
				Telefono: m.telefono,
				Correo:   m.correo,
				FotoURL:  fotoURLs[i],
				Cargo:    m.cargo,
			}
			if err := s.store.InsertIntegrante(txCtx, it); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create integrante")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "gremio reconciled",
		"gremio_id", id,
		"submitted", len(members),
		"deleted", len(toDelete),
	)
	return s.GetByID(ctx, id)
}

func (s *Service) resolveFotoURL(ctx context.Context, input GremioInput, m normalizedIntegrante, idx int, currentByID map[uuid.UUID]models.Integrante) (*string, error) {
	if m.id != nil {
		if up, ok := input.FotosPorID[*m.id]; ok {
			url, err := s.uploader.Upload(ctx, up.Content, up.Filename, storage.FolderFotos, storage.KindImage)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to upload member photo")
			}
			return &url, nil
		}
		if existing, ok := currentByID[*m.id]; ok && existing.FotoURL != nil {
			return existing.FotoURL, nil
		}
		return m.fotoURL, nil
	}

	if up, ok := input.FotosPorIndice[idx]; ok {
		url, err := s.uploader.Upload(ctx, up.Content, up.Filename, storage.FolderFotos, storage.KindImage)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to upload member photo")
		}
		return &url, nil
	}
	return m.fotoURL, nil
}

func (s *Service) uploadGremioFiles(ctx context.Context, input GremioInput) (logoURL, cartaURL *string, err error) {
	if input.Logo != nil {
		url, err := s.uploader.Upload(ctx, input.Logo.Content, input.Logo.Filename, storage.FolderLogos, storage.KindImage)
		if err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to upload logo")
		}
		logoURL = &url
	}
	if input.Carta != nil {
		url, err := s.uploader.Upload(ctx, input.Carta.Content, input.Carta.Filename, storage.FolderCartas, storage.KindRaw)
		if err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to upload carta de adhesión")
		}
		cartaURL = &url
	}
	return logoURL, cartaURL, nil
}

type gremioFields struct {
	nombre      string
	rut         *string
	rubro       string
	region      string
	descripcion *string
}

func normalizeGremioFields(input GremioInput) (gremioFields, error) {
	nombre, okNombre := pstrings.CleanRequired(input.Nombre)
	rubro, okRubro := pstrings.CleanRequired(input.Rubro)
	region, okRegion := pstrings.CleanRequired(input.Region)
	if !okNombre || !okRubro || !okRegion {
		return gremioFields{}, dErrors.New(dErrors.CodeBadRequest, "datos obligatorios faltantes")
	}
	return gremioFields{
		nombre:      nombre,
		rut:         pstrings.Clean(input.Rut),
		rubro:       rubro,
		region:      region,
		descripcion: pstrings.Clean(input.Descripcion),
	}, nil
}

type normalizedIntegrante struct {
	id       *uuid.UUID
	nombre   string
	telefono *string
	correo   *string
	fotoURL  *string
	cargo    models.Cargo
}

func normalizeIntegrantes(submitted []SubmittedIntegrante) ([]normalizedIntegrante, error) {
	out := make([]normalizedIntegrante, 0, len(submitted))
	for i, m := range submitted {
		nombre := strings.TrimSpace(m.Nombre)
		if nombre == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("integrante %d sin nombre", i+1))
		}

		correo := pstrings.Clean(m.Correo)
		if correo != nil && !pstrings.LooksLikeEmail(*correo) {
			return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("correo inválido para integrante %q", nombre))
		}

		cargo := models.Cargo(strings.TrimSpace(m.Cargo))
		if cargo == "" {
			cargo = models.CargoMiembro
		}
		if !cargo.Valid() {
			return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("cargo inválido %q", m.Cargo))
		}

		out = append(out, normalizedIntegrante{
			id:       m.ID,
			nombre:   nombre,
			telefono: pstrings.Clean(m.Telefono),
			correo:   correo,
			fotoURL:  pstrings.Clean(m.FotoURL),
			cargo:    cargo,
		})
	}
	return out, nil
}
