package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"multigremial/internal/gremio/models"
	"multigremial/pkg/platform/sentinel"
	txcontext "multigremial/pkg/platform/tx"
)

// PostgresStore persists gremios and integrantes. Writes pick up a context
// transaction when the service opened one, so create/reconcile are atomic.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) CreateGremio(ctx context.Context, g *models.Gremio) error {
	query := `
		INSERT INTO gremios (id, nombre, rut, rubro, region, descripcion, logo_url, carta_pdf_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		g.ID, g.Nombre, g.Rut, g.Rubro, g.Region, g.Descripcion, g.LogoURL, g.CartaPdfURL,
	).Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert gremio: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindGremioByID(ctx context.Context, id uuid.UUID) (*models.Gremio, error) {
	query := `
		SELECT id, nombre, rut, rubro, region, descripcion, logo_url, carta_pdf_url, created_at, updated_at
		FROM gremios
		WHERE id = $1
	`
	var g models.Gremio
	err := s.execer(ctx).QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.Nombre, &g.Rut, &g.Rubro, &g.Region, &g.Descripcion, &g.LogoURL, &g.CartaPdfURL, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query gremio: %w", err)
	}

	integrantes, err := s.ListIntegrantes(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Integrantes = integrantes
	return &g, nil
}

func (s *PostgresStore) ListGremios(ctx context.Context) ([]models.Gremio, error) {
	query := `
		SELECT
			g.id, g.nombre, g.rut, g.rubro, g.region, g.descripcion, g.logo_url, g.carta_pdf_url, g.created_at, g.updated_at,
			i.id, i.nombre, i.telefono, i.correo, i.foto_url, i.cargo, i.created_at, i.updated_at
		FROM gremios g
		LEFT JOIN integrantes i ON i.gremio_id = g.id
		ORDER BY g.created_at, g.id, i.created_at, i.id
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query gremios: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*models.Gremio)
	ordered := []*models.Gremio{}

	for rows.Next() {
		var g models.Gremio
		var itID uuid.NullUUID
		var itNombre, itTelefono, itCorreo, itFoto, itCargo sql.NullString
		var itCreated, itUpdated sql.NullTime

		if err := rows.Scan(
			&g.ID, &g.Nombre, &g.Rut, &g.Rubro, &g.Region, &g.Descripcion, &g.LogoURL, &g.CartaPdfURL, &g.CreatedAt, &g.UpdatedAt,
			&itID, &itNombre, &itTelefono, &itCorreo, &itFoto, &itCargo, &itCreated, &itUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan gremio row: %w", err)
		}

		entry, seen := byID[g.ID]
		if !seen {
			g.Integrantes = []models.Integrante{}
			entry = &g
			byID[g.ID] = entry
			ordered = append(ordered, entry)
		}

		if itID.Valid {
			it := models.Integrante{
				ID:       itID.UUID,
				GremioID: entry.ID,
				Nombre:   itNombre.String,
				Cargo:    models.Cargo(itCargo.String),
			}
			if itTelefono.Valid {
				it.Telefono = &itTelefono.String
			}
			if itCorreo.Valid {
				it.Correo = &itCorreo.String
			}
			if itFoto.Valid {
				it.FotoURL = &itFoto.String
			}
			if itCreated.Valid {
				it.CreatedAt = itCreated.Time
			}
			if itUpdated.Valid {
				it.UpdatedAt = itUpdated.Time
			}
			entry.Integrantes = append(entry.Integrantes, it)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gremio rows: %w", err)
	}

	out := make([]models.Gremio, len(ordered))
	for i, g := range ordered {
		out[i] = *g
	}
	return out, nil
}

func (s *PostgresStore) UpdateGremio(ctx context.Context, g *models.Gremio) error {
	query := `
		UPDATE gremios
		SET nombre = $2, rut = $3, rubro = $4, region = $5, descripcion = $6,
		    logo_url = $7, carta_pdf_url = $8, updated_at = NOW()
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		g.ID, g.Nombre, g.Rut, g.Rubro, g.Region, g.Descripcion, g.LogoURL, g.CartaPdfURL,
	)
	if err != nil {
		return fmt.Errorf("update gremio: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteGremio(ctx context.Context, id uuid.UUID) error {
	// Ownership is enforced here as well as by the FK cascade, so the memory
	// and postgres stores behave identically.
	if _, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM integrantes WHERE gremio_id = $1`, id); err != nil {
		return fmt.Errorf("delete integrantes of gremio: %w", err)
	}
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM gremios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete gremio: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) InsertIntegrante(ctx context.Context, it *models.Integrante) error {
	query := `
		INSERT INTO integrantes (id, gremio_id, nombre, telefono, correo, foto_url, cargo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		it.ID, it.GremioID, it.Nombre, it.Telefono, it.Correo, it.FotoURL, it.Cargo,
	).Scan(&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert integrante: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateIntegrante(ctx context.Context, it *models.Integrante) error {
	query := `
		UPDATE integrantes
		SET nombre = $3, telefono = $4, correo = $5, foto_url = $6, cargo = $7, updated_at = NOW()
		WHERE id = $1 AND gremio_id = $2
	`
	// Affecting zero rows is not an error: the scope guard simply made a
	// cross-gremio id a no-op.
	_, err := s.execer(ctx).ExecContext(ctx, query,
		it.ID, it.GremioID, it.Nombre, it.Telefono, it.Correo, it.FotoURL, it.Cargo,
	)
	if err != nil {
		return fmt.Errorf("update integrante: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteIntegrantes(ctx context.Context, gremioID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM integrantes WHERE gremio_id = $1 AND id = ANY($2)`
	if _, err := s.execer(ctx).ExecContext(ctx, query, gremioID, pq.Array(ids)); err != nil {
		return fmt.Errorf("delete integrantes: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListIntegrantes(ctx context.Context, gremioID uuid.UUID) ([]models.Integrante, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM gremios WHERE id = $1)`, gremioID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check gremio exists: %w", err)
	}
	if !exists {
		return nil, sentinel.ErrNotFound
	}

	query := `
		SELECT id, gremio_id, nombre, telefono, correo, foto_url, cargo, created_at, updated_at
		FROM integrantes
		WHERE gremio_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, gremioID)
	if err != nil {
		return nil, fmt.Errorf("query integrantes: %w", err)
	}
	defer rows.Close()

	integrantes := []models.Integrante{}
	for rows.Next() {
		var it models.Integrante
		if err := rows.Scan(
			&it.ID, &it.GremioID, &it.Nombre, &it.Telefono, &it.Correo, &it.FotoURL, &it.Cargo, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan integrante: %w", err)
		}
		integrantes = append(integrantes, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate integrantes: %w", err)
	}
	return integrantes, nil
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
