//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multigremial/internal/registro/models"
	"multigremial/internal/registro/store"
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

func TestPostgresStore_SearchIgnoresCaseAndAccents(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	rut := "12.345.678-9"
	seed := []models.Registrado{
		{ID: uuid.New(), Nombres: "María José", Apellidos: "García Pérez"},
		{ID: uuid.New(), Nombres: "Pedro", Apellidos: "Gallardo", Rut: &rut},
	}
	for i := range seed {
		require.NoError(t, s.Create(ctx, &seed[i]))
	}

	got, err := s.List(ctx, models.Filter{Q: "garcia"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "García Pérez", got[0].Apellidos)

	got, err = s.List(ctx, models.Filter{Q: "marÍa"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "María José", got[0].Nombres)

	got, err = s.List(ctx, models.Filter{Q: "345.678"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pedro", got[0].Nombres)
}

func TestPostgresStore_FiltersCombineWithAnd(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	region := "Valparaíso"
	rubro := "Pesca"
	genero := models.GeneroFemenino
	seed := []models.Registrado{
		{ID: uuid.New(), Nombres: "Rosa", Apellidos: "Muñoz", Region: &region, Rubro: &rubro, Genero: &genero},
		{ID: uuid.New(), Nombres: "Jorge", Apellidos: "Soto", Region: &region},
	}
	for i := range seed {
		require.NoError(t, s.Create(ctx, &seed[i]))
	}

	got, err := s.List(ctx, models.Filter{Region: region, Rubro: rubro})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Rosa", got[0].Nombres)

	got, err = s.List(ctx, models.Filter{Region: region, Genero: "Masculino"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
