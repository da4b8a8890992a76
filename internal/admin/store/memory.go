// Package store provides administrator persistence. The in-memory variant
// backs tests and local development; PostgreSQL is the production backend.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"multigremial/internal/admin/models"
	"multigremial/pkg/platform/sentinel"
)

type InMemoryAdminStore struct {
	mu     sync.RWMutex
	admins map[uuid.UUID]models.Admin
}

func NewInMemoryAdminStore() *InMemoryAdminStore {
	return &InMemoryAdminStore{admins: make(map[uuid.UUID]models.Admin)}
}

// Seed inserts an administrator, mirroring the out-of-band migration that
// creates the account in production.
func (s *InMemoryAdminStore) Seed(admin models.Admin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now
	s.admins[admin.ID] = admin
}

func (s *InMemoryAdminStore) FindByID(_ context.Context, id uuid.UUID) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if admin, ok := s.admins[id]; ok {
		return &admin, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryAdminStore) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, admin := range s.admins {
		if strings.EqualFold(admin.Email, email) {
			return &admin, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryAdminStore) UpdateEmail(_ context.Context, id uuid.UUID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	admin, ok := s.admins[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	admin.Email = email
	admin.UpdatedAt = time.Now()
	s.admins[id] = admin
	return nil
}

func (s *InMemoryAdminStore) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	admin, ok := s.admins[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	admin.PasswordHash = hash
	admin.UpdatedAt = time.Now()
	s.admins[id] = admin
	return nil
}
