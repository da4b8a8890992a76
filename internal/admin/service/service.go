// Package service implements administrator authentication: login with token
// issuance, email change and password change. Login failures never disclose
// whether the email or the password was wrong.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"multigremial/internal/admin/models"
	dErrors "multigremial/pkg/domain-errors"
	"multigremial/pkg/platform/sentinel"
	pstrings "multigremial/pkg/platform/strings"
)

// TokenTTL is the lifetime of issued admin tokens.
const TokenTTL = 8 * time.Hour

// AdminStore is the persistence contract this service needs.
type AdminStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// TokenIssuer issues signed admin tokens.
type TokenIssuer interface {
	GenerateAdminToken(adminID uuid.UUID, expiresIn time.Duration) (string, error)
}

// Service orchestrates admin credential operations.
type Service struct {
	admins AdminStore
	tokens TokenIssuer
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(admins AdminStore, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{admins: admins, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult carries the issued token plus the minimal public identity.
type LoginResult struct {
	Token   string             `json:"token"`
	Usuario models.PublicAdmin `json:"usuario"`
}

// Login verifies credentials and issues an 8-hour token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	normalized := pstrings.Lower(email)
	if normalized == nil || password == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "faltan datos")
	}

	admin, err := s.admins.FindByEmail(ctx, *normalized)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "credenciales inválidas")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load admin")
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "credenciales inválidas")
	}

	token, err := s.tokens.GenerateAdminToken(admin.ID, TokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}

	return &LoginResult{
		Token:   token,
		Usuario: models.PublicAdmin{ID: admin.ID, Email: admin.Email},
	}, nil
}

// ChangeEmail updates the authenticated administrator's email after checking
// shape, identity and uniqueness.
func (s *Service) ChangeEmail(ctx context.Context, adminID uuid.UUID, newEmail string) error {
	normalized := pstrings.Lower(newEmail)
	if normalized == nil {
		return dErrors.New(dErrors.CodeBadRequest, "email requerido")
	}
	if !pstrings.LooksLikeEmail(*normalized) {
		return dErrors.New(dErrors.CodeBadRequest, "email inválido")
	}

	admin, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "admin no encontrado")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load admin")
	}

	if strings.EqualFold(admin.Email, *normalized) {
		return dErrors.New(dErrors.CodeBadRequest, "ese email ya es tuyo")
	}

	if existing, err := s.admins.FindByEmail(ctx, *normalized); err == nil && existing.ID != adminID {
		return dErrors.New(dErrors.CodeConflict, "el email ya está en uso")
	} else if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email")
	}

	if err := s.admins.UpdateEmail(ctx, adminID, *normalized); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update email")
	}

	s.logger.InfoContext(ctx, "admin email updated", "admin_id", adminID)
	return nil
}

// ChangePassword verifies the current password before re-hashing and storing
// the new one.
func (s *Service) ChangePassword(ctx context.Context, adminID uuid.UUID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return dErrors.New(dErrors.CodeBadRequest, "datos incompletos")
	}

	admin, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "admin no encontrado")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load admin")
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(currentPassword)) != nil {
		return dErrors.New(dErrors.CodeBadRequest, "contraseña actual incorrecta")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	if err := s.admins.UpdatePasswordHash(ctx, adminID, string(hash)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update password")
	}

	s.logger.InfoContext(ctx, "admin password updated", "admin_id", adminID)
	return nil
}
