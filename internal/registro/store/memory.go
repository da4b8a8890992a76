// Package store provides registrant persistence with in-memory and PostgreSQL
// implementations behind the service's Store interface.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"multigremial/internal/registro/models"
	"multigremial/pkg/platform/sentinel"
	pstrings "multigremial/pkg/platform/strings"
)

type InMemoryStore struct {
	mu          sync.RWMutex
	registrados map[uuid.UUID]models.Registrado
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{registrados: make(map[uuid.UUID]models.Registrado)}
}

func (s *InMemoryStore) Create(_ context.Context, r *models.Registrado) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	s.registrados[r.ID] = *r
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Registrado, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.registrados[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *InMemoryStore) List(_ context.Context, filter models.Filter) ([]models.Registrado, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Registrado, 0, len(s.registrados))
	for _, r := range s.registrados {
		if matches(r, filter) {
			out = append(out, r)
		}
	}
	// Newest first.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, r *models.Registrado) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.registrados[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := *r
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now()
	s.registrados[r.ID] = updated
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrados[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.registrados, id)
	return nil
}

func matches(r models.Registrado, f models.Filter) bool {
	if f.Q != "" {
		q := foldForSearch(f.Q)
		if !containsFold(r.Nombres, q) &&
			!containsFold(r.Apellidos, q) &&
			!containsFoldPtr(r.Email, q) &&
			!containsFoldPtr(r.Rut, q) {
			return false
		}
	}
	if f.Region != "" && (r.Region == nil || *r.Region != f.Region) {
		return false
	}
	if f.Genero != "" && (r.Genero == nil || string(*r.Genero) != f.Genero) {
		return false
	}
	if f.Rubro != "" && (r.Rubro == nil || *r.Rubro != f.Rubro) {
		return false
	}
	return true
}

// foldForSearch lowercases and strips accents so "garcia" matches "García",
// mirroring the accent-insensitive collation of the original data set.
func foldForSearch(s string) string {
	return strings.ToLower(pstrings.FoldAccents(s))
}

func containsFold(s, foldedQ string) bool {
	return strings.Contains(foldForSearch(s), foldedQ)
}

func containsFoldPtr(s *string, foldedQ string) bool {
	return s != nil && containsFold(*s, foldedQ)
}
