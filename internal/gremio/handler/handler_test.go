package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multigremial/internal/gremio/handler"
	"multigremial/internal/gremio/models"
	"multigremial/internal/gremio/service"
	"multigremial/internal/gremio/store"
	"multigremial/internal/storage"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(store.NewInMemoryStore(), storage.NewInMemoryUploader())
	h := handler.New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Route("/api/admin/gremios", h.Register)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type formFile struct {
	key, filename string
	content       []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.key, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func createGremio(t *testing.T, srv *httptest.Server, fields map[string]string, files ...formFile) string {
	t.Helper()
	body, contentType := multipartBody(t, fields, files...)
	resp, err := http.Post(srv.URL+"/api/admin/gremios", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		OK       bool   `json:"ok"`
		GremioID string `json:"gremioId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.True(t, created.OK)
	require.NotEmpty(t, created.GremioID)
	return created.GremioID
}

func TestCreateAndGetGremio(t *testing.T) {
	srv := newServer(t)

	id := createGremio(t, srv, map[string]string{
		"nombre":      "Gremio Hotelero",
		"rubro":       "Turismo",
		"region":      "Valparaíso",
		"integrantes": `[{"nombre":"Ana Soto","cargo":"Presidente"},{"nombre":"Luis Rojas"}]`,
	},
		formFile{key: "logo", filename: "logo.png", content: []byte("png")},
		formFile{key: "integranteFoto_0", filename: "ana.jpg", content: []byte("jpg")},
	)

	resp, err := http.Get(srv.URL + "/api/admin/gremios/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var gremio models.Gremio
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&gremio))
	assert.Equal(t, "Gremio Hotelero", gremio.Nombre)
	require.NotNil(t, gremio.LogoURL)
	require.Len(t, gremio.Integrantes, 2)
	assert.Equal(t, models.CargoPresidente, gremio.Integrantes[0].Cargo)
	assert.NotNil(t, gremio.Integrantes[0].FotoURL)
	assert.Nil(t, gremio.Integrantes[1].FotoURL)
}

func TestCreateGremio_MissingFields(t *testing.T) {
	srv := newServer(t)

	body, contentType := multipartBody(t, map[string]string{"nombre": "Solo nombre"})
	resp, err := http.Post(srv.URL+"/api/admin/gremios", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateGremio_MalformedIntegrantesJSON(t *testing.T) {
	srv := newServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"nombre":      "G",
		"rubro":       "R",
		"region":      "RM",
		"integrantes": `[{"nombre":`,
	})
	resp, err := http.Post(srv.URL+"/api/admin/gremios", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListGremios(t *testing.T) {
	srv := newServer(t)

	createGremio(t, srv, map[string]string{"nombre": "Uno", "rubro": "R", "region": "RM"})
	createGremio(t, srv, map[string]string{"nombre": "Dos", "rubro": "R", "region": "RM"})

	resp, err := http.Get(srv.URL + "/api/admin/gremios")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var gremios []models.Gremio
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&gremios))
	assert.Len(t, gremios, 2)
}

func TestUpdateGremio_Reconciles(t *testing.T) {
	srv := newServer(t)

	id := createGremio(t, srv, map[string]string{
		"nombre":      "Gremio Naviero",
		"rubro":       "Transporte",
		"region":      "Biobío",
		"integrantes": `[{"nombre":"A"},{"nombre":"B"}]`,
	})

	resp, err := http.Get(srv.URL + "/api/admin/gremios/" + id)
	require.NoError(t, err)
	var current models.Gremio
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&current))
	resp.Body.Close()
	require.Len(t, current.Integrantes, 2)
	keepID := current.Integrantes[1].ID

	integrantes := fmt.Sprintf(`[{"id":%q,"nombre":"B editado","cargo":"Presidente"},{"nombre":"C"}]`, keepID)
	body, contentType := multipartBody(t, map[string]string{
		"nombre":      "Gremio Naviero",
		"rubro":       "Transporte",
		"region":      "Biobío",
		"integrantes": integrantes,
	},
		formFile{key: "integranteFotoId_" + keepID.String(), filename: "b.jpg", content: []byte("jpg")},
		formFile{key: "integranteFotoNew_1", filename: "c.jpg", content: []byte("jpg")},
	)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/admin/gremios/"+id, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated struct {
		OK     bool          `json:"ok"`
		Gremio models.Gremio `json:"gremio"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	require.True(t, updated.OK)
	require.Len(t, updated.Gremio.Integrantes, 2)

	byName := map[string]models.Integrante{}
	for _, it := range updated.Gremio.Integrantes {
		byName[it.Nombre] = it
	}
	require.Contains(t, byName, "B editado")
	require.Contains(t, byName, "C")
	assert.Equal(t, keepID, byName["B editado"].ID)
	assert.NotNil(t, byName["B editado"].FotoURL)
	assert.NotNil(t, byName["C"].FotoURL)
}

func TestDeleteGremio(t *testing.T) {
	srv := newServer(t)

	id := createGremio(t, srv, map[string]string{"nombre": "Efímero", "rubro": "R", "region": "RM"})

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/admin/gremios/"+id, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/admin/gremios/" + id)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGremio_InvalidID(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/api/admin/gremios/not-a-uuid")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
