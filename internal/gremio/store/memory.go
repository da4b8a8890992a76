// Package store provides gremio/integrante persistence with in-memory and
// PostgreSQL implementations behind the service's Store interface.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"multigremial/internal/gremio/models"
	"multigremial/pkg/platform/sentinel"
)

// InMemoryStore keeps gremios and integrantes in maps. It backs tests and
// local development; clarity over performance.
type InMemoryStore struct {
	mu          sync.RWMutex
	gremios     map[uuid.UUID]models.Gremio
	integrantes map[uuid.UUID]models.Integrante
	// order preserves insertion sequence per gremio so listings are stable.
	order map[uuid.UUID][]uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		gremios:     make(map[uuid.UUID]models.Gremio),
		integrantes: make(map[uuid.UUID]models.Integrante),
		order:       make(map[uuid.UUID][]uuid.UUID),
	}
}

func (s *InMemoryStore) CreateGremio(_ context.Context, g *models.Gremio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
	stored := *g
	stored.Integrantes = nil
	s.gremios[g.ID] = stored
	return nil
}

func (s *InMemoryStore) FindGremioByID(_ context.Context, id uuid.UUID) (*models.Gremio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.gremios[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	g.Integrantes = s.membersOf(id)
	return &g, nil
}

func (s *InMemoryStore) ListGremios(_ context.Context) ([]models.Gremio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Gremio, 0, len(s.gremios))
	for id, g := range s.gremios {
		g.Integrantes = s.membersOf(id)
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) UpdateGremio(_ context.Context, g *models.Gremio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.gremios[g.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored.Nombre = g.Nombre
	stored.Rut = g.Rut
	stored.Rubro = g.Rubro
	stored.Region = g.Region
	stored.Descripcion = g.Descripcion
	stored.LogoURL = g.LogoURL
	stored.CartaPdfURL = g.CartaPdfURL
	stored.UpdatedAt = time.Now()
	s.gremios[g.ID] = stored
	return nil
}

func (s *InMemoryStore) DeleteGremio(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gremios[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.gremios, id)
	for _, itID := range s.order[id] {
		delete(s.integrantes, itID)
	}
	delete(s.order, id)
	return nil
}

func (s *InMemoryStore) InsertIntegrante(_ context.Context, it *models.Integrante) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gremios[it.GremioID]; !ok {
		return sentinel.ErrNotFound
	}
	now := time.Now()
	it.CreatedAt = now
	it.UpdatedAt = now
	s.integrantes[it.ID] = *it
	s.order[it.GremioID] = append(s.order[it.GremioID], it.ID)
	return nil
}

func (s *InMemoryStore) UpdateIntegrante(_ context.Context, it *models.Integrante) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.integrantes[it.ID]
	if !ok || stored.GremioID != it.GremioID {
		// Scoped update: silently affects nothing outside this gremio.
		return nil
	}
	stored.Nombre = it.Nombre
	stored.Telefono = it.Telefono
	stored.Correo = it.Correo
	stored.FotoURL = it.FotoURL
	stored.Cargo = it.Cargo
	stored.UpdatedAt = time.Now()
	s.integrantes[it.ID] = stored
	return nil
}

func (s *InMemoryStore) DeleteIntegrantes(_ context.Context, gremioID uuid.UUID, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if it, ok := s.integrantes[id]; ok && it.GremioID == gremioID {
			drop[id] = struct{}{}
			delete(s.integrantes, id)
		}
	}
	kept := s.order[gremioID][:0]
	for _, id := range s.order[gremioID] {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	s.order[gremioID] = kept
	return nil
}

func (s *InMemoryStore) ListIntegrantes(_ context.Context, gremioID uuid.UUID) ([]models.Integrante, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.gremios[gremioID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.membersOf(gremioID), nil
}

// membersOf assumes the caller holds at least the read lock.
func (s *InMemoryStore) membersOf(gremioID uuid.UUID) []models.Integrante {
	ids := s.order[gremioID]
	out := make([]models.Integrante, 0, len(ids))
	for _, id := range ids {
		if it, ok := s.integrantes[id]; ok {
			out = append(out, it)
		}
	}
	return out
}
