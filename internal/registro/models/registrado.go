package models

import (
	"time"

	"github.com/google/uuid"
)

// Genero is the self-reported gender of a registrant.
type Genero string

const (
	GeneroMasculino Genero = "Masculino"
	GeneroFemenino  Genero = "Femenino"
	GeneroOtro      Genero = "Otro"
)

func (g Genero) Valid() bool {
	switch g {
	case GeneroMasculino, GeneroFemenino, GeneroOtro:
		return true
	}
	return false
}

// Registrado is a public self-registration submission. It has no foreign keys;
// everything beyond nombres and apellidos is optional free text.
type Registrado struct {
	ID                 uuid.UUID  `json:"id"`
	Nombres            string     `json:"nombres"`
	Apellidos          string     `json:"apellidos"`
	Genero             *Genero    `json:"genero"`
	FechaNacimiento    *time.Time `json:"fechaNacimiento"`
	Rut                *string    `json:"rut"`
	Telefono           *string    `json:"telefono"`
	Email              *string    `json:"email"`
	Region             *string    `json:"region"`
	Comuna             *string    `json:"comuna"`
	TipoEmpresa        *string    `json:"tipoEmpresa"`
	NumeroTrabajadores *string    `json:"numeroTrabajadores"`
	Rubro              *string    `json:"rubro"`
	AsesoriaSobre      *string    `json:"asesoriaSobre"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Filter narrows a registrant listing. Q is a case-insensitive substring match
// over nombres, apellidos, email and rut; the rest are exact matches.
type Filter struct {
	Q      string
	Region string
	Genero string
	Rubro  string
}
