package service

import (
	"encoding/json"

	"github.com/google/uuid"

	dErrors "multigremial/pkg/domain-errors"
)

// Upload is a file received at the boundary, not yet pushed to blob storage.
type Upload struct {
	Filename string
	Content  []byte
}

// SubmittedIntegrante is one entry of the JSON-encoded member list inside the
// multipart body. A nil ID marks a new member; a present ID refers to a
// stored row of this gremio.
type SubmittedIntegrante struct {
	ID       *uuid.UUID `json:"id"`
	Nombre   string     `json:"nombre"`
	Telefono string     `json:"telefono"`
	Correo   string     `json:"correo"`
	FotoURL  string     `json:"fotoUrl"`
	Cargo    string     `json:"cargo"`
}

// GremioInput carries the full multipart payload of a create or update call.
// Scalar fields are raw form values; normalization happens in the service.
type GremioInput struct {
	Nombre      string
	Rut         string
	Rubro       string
	Region      string
	Descripcion string

	Logo  *Upload
	Carta *Upload

	Integrantes []SubmittedIntegrante
	// FotosPorIndice holds photos keyed by position in the submitted list
	// (integranteFoto_<i> on create, integranteFotoNew_<i> on update).
	FotosPorIndice map[int]Upload
	// FotosPorID holds photos keyed by existing member id
	// (integranteFotoId_<id>, update only).
	FotosPorID map[uuid.UUID]Upload
}

// ParseIntegrantes decodes the JSON-encoded member list field. Malformed JSON
// is a BadRequest; valid JSON that is not a list coerces to an empty list; an
// absent field means no members.
func ParseIntegrantes(raw string) ([]SubmittedIntegrante, error) {
	if raw == "" {
		return nil, nil
	}
	var probe any
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "integrantes inválidos (JSON mal formado)")
	}
	if _, isList := probe.([]any); !isList {
		// Valid JSON that is not a list coerces to no members.
		return nil, nil
	}
	var parsed []SubmittedIntegrante
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "integrantes inválidos (JSON mal formado)")
	}
	return parsed, nil
}
