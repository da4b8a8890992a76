//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multigremial/internal/gremio/models"
	"multigremial/internal/gremio/store"
	"multigremial/pkg/platform/sentinel"
	"multigremial/pkg/testutil/containers"
)

func newPostgresStore(t *testing.T) *store.PostgresStore {
	t.Helper()
	pc := containers.NewPostgresContainer(t)

	schema, err := os.ReadFile("../../../migrations/001_init.sql")
	require.NoError(t, err)
	require.NoError(t, pc.Apply(context.Background(), string(schema)))

	return store.NewPostgres(pc.DB)
}

func TestPostgresStore_GremioLifecycle(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	rut := "76.123.456-7"
	g := &models.Gremio{
		ID:     uuid.New(),
		Nombre: "Gremio Portuario",
		Rut:    &rut,
		Rubro:  "Logística",
		Region: "Valparaíso",
	}
	require.NoError(t, s.CreateGremio(ctx, g))
	assert.False(t, g.CreatedAt.IsZero())

	it := &models.Integrante{
		ID:       uuid.New(),
		GremioID: g.ID,
		Nombre:   "Ana Soto",
		Cargo:    models.CargoPresidente,
	}
	require.NoError(t, s.InsertIntegrante(ctx, it))

	found, err := s.FindGremioByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gremio Portuario", found.Nombre)
	require.NotNil(t, found.Rut)
	require.Len(t, found.Integrantes, 1)
	assert.Equal(t, it.ID, found.Integrantes[0].ID)

	found.Nombre = "Gremio Portuario V Región"
	require.NoError(t, s.UpdateGremio(ctx, found))

	listed, err := s.ListGremios(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Gremio Portuario V Región", listed[0].Nombre)
	require.Len(t, listed[0].Integrantes, 1)

	require.NoError(t, s.DeleteGremio(ctx, g.ID))
	_, err = s.FindGremioByID(ctx, g.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresStore_ScopedMemberMutations(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	a := &models.Gremio{ID: uuid.New(), Nombre: "A", Rubro: "R", Region: "RM"}
	b := &models.Gremio{ID: uuid.New(), Nombre: "B", Rubro: "R", Region: "RM"}
	require.NoError(t, s.CreateGremio(ctx, a))
	require.NoError(t, s.CreateGremio(ctx, b))

	itA := &models.Integrante{ID: uuid.New(), GremioID: a.ID, Nombre: "De A", Cargo: models.CargoMiembro}
	itB := &models.Integrante{ID: uuid.New(), GremioID: b.ID, Nombre: "De B", Cargo: models.CargoMiembro}
	require.NoError(t, s.InsertIntegrante(ctx, itA))
	require.NoError(t, s.InsertIntegrante(ctx, itB))

	// Update scoped to the wrong gremio must not touch the row.
	cross := *itA
	cross.GremioID = b.ID
	cross.Nombre = "Secuestrado"
	require.NoError(t, s.UpdateIntegrante(ctx, &cross))

	members, err := s.ListIntegrantes(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "De A", members[0].Nombre)

	// Bulk delete only removes rows owned by the named gremio.
	require.NoError(t, s.DeleteIntegrantes(ctx, a.ID, []uuid.UUID{itA.ID, itB.ID}))

	membersA, err := s.ListIntegrantes(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, membersA)

	membersB, err := s.ListIntegrantes(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, membersB, 1)
}

func TestPostgresStore_ListIntegrantesMissingGremio(t *testing.T) {
	s := newPostgresStore(t)
	_, err := s.ListIntegrantes(context.Background(), uuid.New())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
