package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/modcatalog/internal/common"
	"github.com/dmitrijs2005/modcatalog/internal/dbx"
	"github.com/dmitrijs2005/modcatalog/internal/models"
)

// timeLayout is fixed-width so created_at sorts lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// SQLiteStore implements the local store over a dbx.DBTX (either *sql.DB or *sql.Tx).
type SQLiteStore struct {
	db dbx.DBTX
}

// New returns a SQLiteStore bound to the given DBTX.
func New(db dbx.DBTX) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Put upserts a module by id.
func (s *SQLiteStore) Put(ctx context.Context, m models.Module) error {
	query := `INSERT INTO modules (id, brand, model, price, description, image_data, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET brand = excluded.brand,
				model = excluded.model,
				price = excluded.price,
				description = excluded.description,
				image_data = excluded.image_data,
				created_at = excluded.created_at
	`
	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.Brand, m.Model, m.Price, nullable(m.Description), nullable(m.ImageData),
		m.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("%w: failed to upsert module: %w", common.ErrLocalStorage, err)
	}
	return nil
}

// WithTx runs fn against a store bound to a single transaction. When the
// store is already bound to a transaction fn runs directly on it.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(ctx context.Context, store *SQLiteStore) error) error {
	b, ok := s.db.(dbx.TxBeginner)
	if !ok {
		return fn(ctx, s)
	}

	err := dbx.WithTx(ctx, b, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, New(tx))
	})
	if err != nil && !errors.Is(err, common.ErrLocalStorage) {
		return fmt.Errorf("%w: %w", common.ErrLocalStorage, err)
	}
	return err
}

// PutAll upserts every module in one transaction: either all of them land or
// none does.
func (s *SQLiteStore) PutAll(ctx context.Context, ms []models.Module) error {
	return s.WithTx(ctx, func(ctx context.Context, store *SQLiteStore) error {
		for _, m := range ms {
			if err := store.Put(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetAll returns every module in scan (insertion) order.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]models.Module, error) {
	query := `SELECT id, brand, model, price, description, image_data, created_at FROM modules ORDER BY rowid`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to select modules: %w", common.ErrLocalStorage, err)
	}
	defer rows.Close()

	result := make([]models.Module, 0)
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrLocalStorage, err)
	}
	return result, nil
}

// Get returns a single module or common.ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Module, error) {
	query := `SELECT id, brand, model, price, description, image_data, created_at FROM modules WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)

	m, err := scanModule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Delete removes a module. Deleting an unknown id is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: failed to delete module: %w", common.ErrLocalStorage, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanModule(row scanner) (models.Module, error) {
	var (
		m                      models.Module
		description, imageData sql.NullString
		createdAt              string
	)
	if err := row.Scan(&m.ID, &m.Brand, &m.Model, &m.Price, &description, &imageData, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return m, err
		}
		return m, fmt.Errorf("%w: scan failed: %w", common.ErrLocalStorage, err)
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return m, fmt.Errorf("%w: bad created_at %q for %s: %w", common.ErrLocalStorage, createdAt, m.ID, err)
	}

	m.Description = description.String
	m.ImageData = imageData.String
	m.CreatedAt = models.Timestamp(t)
	return m, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
