package remotestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/modcatalog/internal/models"
	"github.com/dmitrijs2005/modcatalog/internal/remotestore/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Table is the row side of the remote store.
type Table interface {
	Upsert(ctx context.Context, r models.RemoteModule) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]models.RemoteModule, error)
	Ping(ctx context.Context) error
}

// Blobs is the image side of the remote store.
type Blobs interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
}

// Store combines the remote table and the image bucket.
type Store struct {
	table Table
	blobs Blobs
}

// New returns a Store. blobs may be nil, in which case uploads fail with
// ProblemNotConfigured.
func New(table Table, blobs Blobs) *Store {
	return &Store{table: table, blobs: blobs}
}

func (s *Store) Upsert(ctx context.Context, r models.RemoteModule) error {
	return s.table.Upsert(ctx, r)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.table.Delete(ctx, id)
}

func (s *Store) ListAll(ctx context.Context) ([]models.RemoteModule, error) {
	return s.table.ListAll(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.table.Ping(ctx)
}

// UploadBlob stores an image and returns its public URL.
func (s *Store) UploadBlob(ctx context.Context, data []byte, key, contentType string) (string, error) {
	if s.blobs == nil {
		return "", &Error{Op: "upload", Problem: ProblemNotConfigured, Err: errors.New("no bucket configured")}
	}
	return s.blobs.Upload(ctx, data, key, contentType)
}

// Open returns a pgx-backed handle for dsn. No connection is made until first
// use.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, &Error{Op: "open", Problem: ProblemNotConfigured, Err: err}
	}
	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	goose.SetBaseFS(fsys)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Bootstrap creates the modules table when it does not exist yet. A failure
// is reported as ProblemSchemaBootstrap; the store stays usable if the table
// was created some other way.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return classifyPG("bootstrap", err)
	}
	if err := gooseUpContext(ctx, db, migrations.Migrations); err != nil {
		return &Error{Op: "bootstrap", Problem: ProblemSchemaBootstrap, Err: fmt.Errorf("migrations: %w", err)}
	}
	return nil
}
