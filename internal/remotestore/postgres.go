package remotestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/modcatalog/internal/dbx"
	"github.com/dmitrijs2005/modcatalog/internal/models"
)

// PostgresTable is the remote modules table.
type PostgresTable struct {
	db dbx.DBTX
}

func NewPostgresTable(db dbx.DBTX) *PostgresTable {
	return &PostgresTable{db: db}
}

// Upsert inserts r or replaces every column of the existing row with the same id.
func (t *PostgresTable) Upsert(ctx context.Context, r models.RemoteModule) error {
	query := `INSERT INTO modules (id, model, brand, price, description, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET model = EXCLUDED.model,
			brand = EXCLUDED.brand,
			price = EXCLUDED.price,
			description = EXCLUDED.description,
			image_url = EXCLUDED.image_url,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at`

	_, err := t.db.ExecContext(ctx, query,
		r.ID, r.Model, r.Brand, r.Price,
		toNull(r.Description), toNull(r.ImageURL),
		r.CreatedAt.UTC(), r.UpdatedAt.UTC())
	if err != nil {
		return classifyPG("upsert", fmt.Errorf("upsert %s: %w", r.ID, err))
	}
	return nil
}

// Delete removes the row with the given id; a missing row is not an error.
func (t *PostgresTable) Delete(ctx context.Context, id string) error {
	if _, err := t.db.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id); err != nil {
		return classifyPG("delete", fmt.Errorf("delete %s: %w", id, err))
	}
	return nil
}

// ListAll returns every row, newest first.
func (t *PostgresTable) ListAll(ctx context.Context) ([]models.RemoteModule, error) {
	query := `SELECT id, model, brand, price, description, image_url, created_at, updated_at
		FROM modules ORDER BY created_at DESC`

	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classifyPG("list", err)
	}
	defer rows.Close()

	result := make([]models.RemoteModule, 0)
	for rows.Next() {
		var (
			r                     models.RemoteModule
			description, imageURL sql.NullString
			updatedAt             sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.Model, &r.Brand, &r.Price, &description, &imageURL, &r.CreatedAt, &updatedAt); err != nil {
			return nil, classifyPG("list", fmt.Errorf("scan: %w", err))
		}
		r.Description = fromNull(description)
		r.ImageURL = fromNull(imageURL)
		r.UpdatedAt = updatedAt.Time
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPG("list", err)
	}
	return result, nil
}

// Ping checks that the table is reachable and readable.
func (t *PostgresTable) Ping(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, `SELECT 1 FROM modules LIMIT 1`); err != nil {
		return classifyPG("ping", err)
	}
	return nil
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
