package geo_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multigremial/internal/geo"
	dErrors "multigremial/pkg/domain-errors"
)

func TestCache_FetchesOnceWithinTTL(t *testing.T) {
	var calls int
	fetch := func(_ context.Context, category string) (json.RawMessage, error) {
		calls++
		return json.RawMessage(`[{"nombre":"Valparaíso"}]`), nil
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := geo.NewCache(fetch, geo.WithClock(func() time.Time { return now }))

	first, err := cache.Get(context.Background(), geo.CategoryRegiones)
	require.NoError(t, err)

	now = now.Add(23 * time.Hour)
	second, err := cache.Get(context.Background(), geo.CategoryRegiones)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.JSONEq(t, string(first), string(second))
}

func TestCache_RefreshesAfterTTL(t *testing.T) {
	var calls int
	fetch := func(_ context.Context, _ string) (json.RawMessage, error) {
		calls++
		return json.RawMessage(`[]`), nil
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := geo.NewCache(fetch, geo.WithClock(func() time.Time { return now }))

	_, err := cache.Get(context.Background(), geo.CategoryComunas)
	require.NoError(t, err)

	now = now.Add(24*time.Hour + time.Minute)
	_, err = cache.Get(context.Background(), geo.CategoryComunas)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestCache_CategoriesAreIndependent(t *testing.T) {
	fetch := func(_ context.Context, category string) (json.RawMessage, error) {
		return json.RawMessage(`"` + category + `"`), nil
	}
	cache := geo.NewCache(fetch)

	regiones, err := cache.Get(context.Background(), geo.CategoryRegiones)
	require.NoError(t, err)
	comunas, err := cache.Get(context.Background(), geo.CategoryComunas)
	require.NoError(t, err)

	assert.Equal(t, `"regiones"`, string(regiones))
	assert.Equal(t, `"comunas"`, string(comunas))
}

func TestCache_NoStaleOnError(t *testing.T) {
	var fail bool
	fetch := func(_ context.Context, _ string) (json.RawMessage, error) {
		if fail {
			return nil, errors.New("upstream down")
		}
		return json.RawMessage(`[]`), nil
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := geo.NewCache(fetch, geo.WithClock(func() time.Time { return now }))

	_, err := cache.Get(context.Background(), geo.CategoryRegiones)
	require.NoError(t, err)

	// Once the entry is stale a failing upstream must surface, not the old
	// payload.
	now = now.Add(25 * time.Hour)
	fail = true
	_, err = cache.Get(context.Background(), geo.CategoryRegiones)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestClient_FetchesCategoryPath(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/regiones", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"codigo":"05","nombre":"Valparaíso"}]`))
	}))
	defer upstream.Close()

	client := geo.NewClient(upstream.URL)
	payload, err := client.Fetch(context.Background(), geo.CategoryRegiones)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"codigo":"05","nombre":"Valparaíso"}]`, string(payload))
}

func TestClient_NonOKStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	client := geo.NewClient(upstream.URL)
	_, err := client.Fetch(context.Background(), geo.CategoryComunas)
	require.Error(t, err)
}
