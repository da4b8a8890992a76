package storage_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multigremial/internal/storage"
	"multigremial/pkg/platform/sentinel"
)

func TestHTTPUploader_PostsMultipartAndReturnsSecureURL(t *testing.T) {
	var gotPath, gotPreset, gotFolder, gotFilename string
	var gotContent []byte

	blobHost := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotPreset = r.FormValue("upload_preset")
		gotFolder = r.FormValue("folder")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotContent, err = io.ReadAll(file)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://blobs.example.com/logo.png"}`))
	}))
	defer blobHost.Close()

	u := storage.NewHTTPUploader(blobHost.URL, "unsigned-preset")
	url, err := u.Upload(context.Background(), []byte("png-bytes"), "logo.png", storage.FolderLogos, storage.KindImage)
	require.NoError(t, err)

	assert.Equal(t, "https://blobs.example.com/logo.png", url)
	assert.Equal(t, "/image/upload", gotPath)
	assert.Equal(t, "unsigned-preset", gotPreset)
	assert.Equal(t, storage.FolderLogos, gotFolder)
	assert.Equal(t, "logo.png", gotFilename)
	assert.Equal(t, []byte("png-bytes"), gotContent)
}

func TestHTTPUploader_NonOKStatusIsUnavailable(t *testing.T) {
	blobHost := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("quota exceeded"))
	}))
	defer blobHost.Close()

	u := storage.NewHTTPUploader(blobHost.URL, "preset")
	_, err := u.Upload(context.Background(), []byte("x"), "f.pdf", storage.FolderCartas, storage.KindRaw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrUnavailable))
	// The upstream detail must survive for the logs.
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestHTTPUploader_TransportErrorKeepsRootCause(t *testing.T) {
	blobHost := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	blobHost.Close()

	u := storage.NewHTTPUploader(blobHost.URL, "preset")
	_, err := u.Upload(context.Background(), []byte("x"), "logo.png", storage.FolderLogos, storage.KindImage)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrUnavailable))
	assert.Contains(t, err.Error(), "connect")
}
