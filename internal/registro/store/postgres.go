package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"multigremial/internal/registro/models"
	"multigremial/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const registradoColumns = `
	id, nombres, apellidos, genero, fecha_nacimiento, rut, telefono, email,
	region, comuna, tipo_empresa, numero_trabajadores, rubro, asesoria_sobre,
	created_at, updated_at
`

func (s *PostgresStore) Create(ctx context.Context, r *models.Registrado) error {
	query := `
		INSERT INTO registrados (
			id, nombres, apellidos, genero, fecha_nacimiento, rut, telefono, email,
			region, comuna, tipo_empresa, numero_trabajadores, rubro, asesoria_sobre,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		r.ID, r.Nombres, r.Apellidos, generoValue(r.Genero), r.FechaNacimiento,
		r.Rut, r.Telefono, r.Email, r.Region, r.Comuna,
		r.TipoEmpresa, r.NumeroTrabajadores, r.Rubro, r.AsesoriaSobre,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert registrado: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Registrado, error) {
	query := `SELECT ` + registradoColumns + ` FROM registrados WHERE id = $1`
	r, err := scanRegistrado(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query registrado: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]models.Registrado, error) {
	var conditions []string
	var args []any

	if filter.Q != "" {
		// unaccent on both sides keeps the search accent-insensitive, matching
		// the collation the original data set was queried under.
		pattern := "%" + filter.Q + "%"
		args = append(args, pattern)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(unaccent(nombres) ILIKE unaccent($%d) OR unaccent(apellidos) ILIKE unaccent($%d) OR unaccent(email) ILIKE unaccent($%d) OR unaccent(rut) ILIKE unaccent($%d))", n, n, n, n))
	}
	if filter.Region != "" {
		args = append(args, filter.Region)
		conditions = append(conditions, fmt.Sprintf("region = $%d", len(args)))
	}
	if filter.Genero != "" {
		args = append(args, filter.Genero)
		conditions = append(conditions, fmt.Sprintf("genero = $%d", len(args)))
	}
	if filter.Rubro != "" {
		args = append(args, filter.Rubro)
		conditions = append(conditions, fmt.Sprintf("rubro = $%d", len(args)))
	}

	query := `SELECT ` + registradoColumns + ` FROM registrados`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query registrados: %w", err)
	}
	defer rows.Close()

	out := []models.Registrado{}
	for rows.Next() {
		r, err := scanRegistrado(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registrado: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrados: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, r *models.Registrado) error {
	query := `
		UPDATE registrados
		SET nombres = $2, apellidos = $3, genero = $4, fecha_nacimiento = $5,
		    rut = $6, telefono = $7, email = $8, region = $9, comuna = $10,
		    tipo_empresa = $11, numero_trabajadores = $12, rubro = $13,
		    asesoria_sobre = $14, updated_at = NOW()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		r.ID, r.Nombres, r.Apellidos, generoValue(r.Genero), r.FechaNacimiento,
		r.Rut, r.Telefono, r.Email, r.Region, r.Comuna,
		r.TipoEmpresa, r.NumeroTrabajadores, r.Rubro, r.AsesoriaSobre,
	)
	if err != nil {
		return fmt.Errorf("update registrado: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM registrados WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registrado: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistrado(row rowScanner) (*models.Registrado, error) {
	var r models.Registrado
	var genero sql.NullString
	var fecha sql.NullTime
	err := row.Scan(
		&r.ID, &r.Nombres, &r.Apellidos, &genero, &fecha, &r.Rut, &r.Telefono, &r.Email,
		&r.Region, &r.Comuna, &r.TipoEmpresa, &r.NumeroTrabajadores, &r.Rubro, &r.AsesoriaSobre,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if genero.Valid {
		g := models.Genero(genero.String)
		r.Genero = &g
	}
	if fecha.Valid {
		r.FechaNacimiento = &fecha.Time
	}
	return &r, nil
}

func generoValue(g *models.Genero) any {
	if g == nil {
		return nil
	}
	return string(*g)
}
