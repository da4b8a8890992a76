package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"multigremial/internal/admin/models"
	"multigremial/internal/admin/store"
	"multigremial/internal/jwttoken"
	dErrors "multigremial/pkg/domain-errors"
)

func newTestService(t *testing.T) (*Service, uuid.UUID) {
	t.Helper()
	admins := store.NewInMemoryAdminStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreta123"), bcrypt.MinCost)
	require.NoError(t, err)

	adminID := uuid.New()
	admins.Seed(models.Admin{ID: adminID, Email: "admin@multigremial.cl", PasswordHash: string(hash)})

	return New(admins, jwttoken.NewService("test-key")), adminID
}

func TestLogin(t *testing.T) {
	svc, adminID := newTestService(t)
	ctx := context.Background()

	t.Run("success normalizes email and issues token", func(t *testing.T) {
		res, err := svc.Login(ctx, "  ADMIN@Multigremial.CL ", "secreta123")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, adminID, res.Usuario.ID)
		assert.Equal(t, "admin@multigremial.cl", res.Usuario.Email)

		claims, err := jwttoken.NewService("test-key").ValidateToken(res.Token)
		require.NoError(t, err)
		assert.Equal(t, adminID.String(), claims.AdminID)
		assert.Equal(t, jwttoken.RolAdmin, claims.Rol)
		assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, errWrongPass := svc.Login(ctx, "admin@multigremial.cl", "nope")
		_, errWrongMail := svc.Login(ctx, "otro@multigremial.cl", "secreta123")

		require.Error(t, errWrongPass)
		require.Error(t, errWrongMail)
		assert.Equal(t, errWrongPass.Error(), errWrongMail.Error())
		assert.True(t, dErrors.HasCode(errWrongPass, dErrors.CodeUnauthorized))
		assert.True(t, dErrors.HasCode(errWrongMail, dErrors.CodeUnauthorized))
	})

	t.Run("missing fields are bad request", func(t *testing.T) {
		_, err := svc.Login(ctx, "", "x")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		_, err = svc.Login(ctx, "a@b.cl", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestChangeEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("updates after normalization", func(t *testing.T) {
		svc, adminID := newTestService(t)
		require.NoError(t, svc.ChangeEmail(ctx, adminID, "  Nuevo@Multigremial.CL "))

		res, err := svc.Login(ctx, "nuevo@multigremial.cl", "secreta123")
		require.NoError(t, err)
		assert.Equal(t, "nuevo@multigremial.cl", res.Usuario.Email)
	})

	t.Run("rejects empty and malformed", func(t *testing.T) {
		svc, adminID := newTestService(t)
		assert.True(t, dErrors.HasCode(svc.ChangeEmail(ctx, adminID, "  "), dErrors.CodeBadRequest))
		assert.True(t, dErrors.HasCode(svc.ChangeEmail(ctx, adminID, "no-es-email"), dErrors.CodeBadRequest))
	})

	t.Run("rejects own current email", func(t *testing.T) {
		svc, adminID := newTestService(t)
		err := svc.ChangeEmail(ctx, adminID, "Admin@Multigremial.cl")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects email used by another admin", func(t *testing.T) {
		admins := store.NewInMemoryAdminStore()
		adminID := uuid.New()
		admins.Seed(models.Admin{ID: adminID, Email: "a@multigremial.cl", PasswordHash: "x"})
		admins.Seed(models.Admin{ID: uuid.New(), Email: "b@multigremial.cl", PasswordHash: "x"})
		svc := New(admins, jwttoken.NewService("test-key"))

		err := svc.ChangeEmail(ctx, adminID, "b@multigremial.cl")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("unknown admin is not found", func(t *testing.T) {
		svc, _ := newTestService(t)
		err := svc.ChangeEmail(ctx, uuid.New(), "x@y.cl")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("rehashes and persists", func(t *testing.T) {
		svc, adminID := newTestService(t)
		require.NoError(t, svc.ChangePassword(ctx, adminID, "secreta123", "nueva456"))

		_, err := svc.Login(ctx, "admin@multigremial.cl", "secreta123")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

		_, err = svc.Login(ctx, "admin@multigremial.cl", "nueva456")
		assert.NoError(t, err)
	})

	t.Run("wrong current password", func(t *testing.T) {
		svc, adminID := newTestService(t)
		err := svc.ChangePassword(ctx, adminID, "incorrecta", "nueva456")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, adminID := newTestService(t)
		assert.True(t, dErrors.HasCode(svc.ChangePassword(ctx, adminID, "", "x"), dErrors.CodeBadRequest))
		assert.True(t, dErrors.HasCode(svc.ChangePassword(ctx, adminID, "x", ""), dErrors.CodeBadRequest))
	})
}
