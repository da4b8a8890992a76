package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"multigremial/pkg/platform/sentinel"
)

// HTTPUploader posts blobs to an unsigned upload endpoint (cloudinary-style:
// POST {base}/{kind}/upload with multipart fields file, upload_preset and
// folder; the response carries the public secure_url).
type HTTPUploader struct {
	baseURL string
	preset  string
	client  *http.Client
}

func NewHTTPUploader(baseURL, preset string) *HTTPUploader {
	return &HTTPUploader{
		baseURL: baseURL,
		preset:  preset,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

func (u *HTTPUploader) Upload(ctx context.Context, content []byte, filename, folder string, kind Kind) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := mw.WriteField("upload_preset", u.preset); err != nil {
		return "", fmt.Errorf("write preset field: %w", err)
	}
	if err := mw.WriteField("folder", folder); err != nil {
		return "", fmt.Errorf("write folder field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	url := fmt.Sprintf("%s/%s/upload", u.baseURL, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %v: %w", folder, err, sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload %s: status %d: %s: %w", folder, resp.StatusCode, detail, sentinel.ErrUnavailable)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if parsed.SecureURL == "" {
		return "", fmt.Errorf("upload %s: empty secure_url in response", folder)
	}
	return parsed.SecureURL, nil
}
