package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin is the single administrator account. It is seeded out-of-band; this
// API only ever reads it and mutates email/password.
type Admin struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicAdmin is the identity slice returned by login. The hash never leaves
// the service layer.
type PublicAdmin struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
