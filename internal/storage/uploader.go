// Package storage defines the blob-hosting port used for guild logos,
// adhesion letters and member photos. Implementations return the public URL
// of the stored object.
package storage

import "context"

// Kind selects the host-side processing pipeline.
type Kind string

const (
	// KindImage is for logos and member photos.
	KindImage Kind = "image"
	// KindRaw is for adhesion letters (PDF) stored without processing.
	KindRaw Kind = "raw"
)

// Folders used by the guild module; kept here so both implementations and
// tests agree on placement.
const (
	FolderLogos  = "multigremial/gremios/logos"
	FolderCartas = "multigremial/gremios/cartas"
	FolderFotos  = "multigremial/integrantes/fotos"
)

// Uploader stores a blob and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, content []byte, filename, folder string, kind Kind) (string, error)
}
