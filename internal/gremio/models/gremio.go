package models

import (
	"time"

	"github.com/google/uuid"
)

// Cargo is the role a member holds inside a gremio.
type Cargo string

const (
	CargoPresidente     Cargo = "Presidente"
	CargoVicepresidente Cargo = "Vicepresidente"
	CargoMiembro        Cargo = "Miembro"
)

// Valid reports whether c is one of the known roles.
func (c Cargo) Valid() bool {
	switch c {
	case CargoPresidente, CargoVicepresidente, CargoMiembro:
		return true
	}
	return false
}

// Gremio is an organization owning zero or more integrantes. Deleting a
// gremio deletes its integrantes in the same logical operation.
type Gremio struct {
	ID          uuid.UUID    `json:"id"`
	Nombre      string       `json:"nombre"`
	Rut         *string      `json:"rut"`
	Rubro       string       `json:"rubro"`
	Region      string       `json:"region"`
	Descripcion *string      `json:"descripcion"`
	LogoURL     *string      `json:"logoUrl"`
	CartaPdfURL *string      `json:"cartaPdfUrl"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Integrantes []Integrante `json:"integrantes"`
}

// Integrante belongs to exactly one gremio.
type Integrante struct {
	ID        uuid.UUID `json:"id"`
	GremioID  uuid.UUID `json:"gremioId"`
	Nombre    string    `json:"nombre"`
	Telefono  *string   `json:"telefono"`
	Correo    *string   `json:"correo"`
	FotoURL   *string   `json:"fotoUrl"`
	Cargo     Cargo     `json:"cargo"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
