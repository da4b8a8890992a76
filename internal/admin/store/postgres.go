package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"multigremial/internal/admin/models"
	"multigremial/pkg/platform/sentinel"
)

// PostgresAdminStore persists administrators in the admins table. Email
// comparisons are case-insensitive via LOWER().
type PostgresAdminStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresAdminStore {
	return &PostgresAdminStore{db: db}
}

func (s *PostgresAdminStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM admins
		WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresAdminStore) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM admins
		WHERE LOWER(email) = LOWER($1)
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, email))
}

func (s *PostgresAdminStore) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	query := `
		UPDATE admins
		SET email = $2, updated_at = NOW()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, email)
	if err != nil {
		return fmt.Errorf("update admin email: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresAdminStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	query := `
		UPDATE admins
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresAdminStore) scanOne(row *sql.Row) (*models.Admin, error) {
	var a models.Admin
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan admin: %w", err)
	}
	return &a, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
