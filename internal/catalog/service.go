// Package catalog is the application service behind the REPL: create, edit,
// delete, list and search modules, plus bulk import and image bookkeeping.
// Persistence goes through the sync engine; reads come from the local store.
package catalog

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/modcatalog/internal/logging"
	"github.com/dmitrijs2005/modcatalog/internal/models"
	"github.com/dmitrijs2005/modcatalog/internal/syncer"
	"github.com/google/uuid"
)

// Reader is the read side of the local store.
type Reader interface {
	GetAll(ctx context.Context) ([]models.Module, error)
	Get(ctx context.Context, id string) (*models.Module, error)
}

// Writer persists modules in both stores.
type Writer interface {
	Push(ctx context.Context, m models.Module) (syncer.Outcome, error)
	PushDelete(ctx context.Context, id string) (syncer.Outcome, error)
}

type Service struct {
	store Reader
	sync  Writer
	log   logging.Logger
	now   func() time.Time
	newID func() (string, error)
}

type Option func(*Service)

func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.newID = gen }
}

func NewService(store Reader, sync Writer, opts ...Option) *Service {
	s := &Service{
		store: store,
		sync:  sync,
		log:   logging.Nop(),
		now:   time.Now,
		newID: newUUIDv7,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newUUIDv7 returns a time-ordered id: millisecond prefix, random suffix.
func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Insert validates d, assigns an id and creation time, and saves the module.
// The error is non-nil only for invalid input or a local store failure.
func (s *Service) Insert(ctx context.Context, d models.Draft) (models.Module, syncer.Outcome, error) {
	if err := d.Validate(); err != nil {
		return models.Module{}, syncer.Outcome{}, err
	}

	id, err := s.newID()
	if err != nil {
		return models.Module{}, syncer.Outcome{}, err
	}

	m := models.NewModule(id, models.Timestamp(s.now()), d)
	out, err := s.sync.Push(ctx, m)
	if err != nil {
		return models.Module{}, syncer.Outcome{}, err
	}

	s.log.Info(ctx, "module inserted", "id", m.ID, "model", m.Model, "state", out.State)
	return m, out, nil
}

// Update replaces the user-editable fields of the module with m.ID. The
// stored id and creation time are kept whatever m carries.
func (s *Service) Update(ctx context.Context, m models.Module) (models.Module, syncer.Outcome, error) {
	d := m.Draft()
	if err := d.Validate(); err != nil {
		return models.Module{}, syncer.Outcome{}, err
	}

	existing, err := s.store.Get(ctx, m.ID)
	if err != nil {
		return models.Module{}, syncer.Outcome{}, err
	}

	updated := models.NewModule(existing.ID, existing.CreatedAt, d)
	out, err := s.sync.Push(ctx, updated)
	if err != nil {
		return models.Module{}, syncer.Outcome{}, err
	}

	s.log.Info(ctx, "module updated", "id", updated.ID, "state", out.State)
	return updated, out, nil
}

// Delete removes id locally and, best effort, remotely.
func (s *Service) Delete(ctx context.Context, id string) (syncer.Outcome, error) {
	out, err := s.sync.PushDelete(ctx, id)
	if err != nil {
		return syncer.Outcome{}, err
	}
	s.log.Info(ctx, "module deleted", "id", id, "state", out.State)
	return out, nil
}

// List returns every module, newest first. Modules with equal creation times
// keep their store order.
func (s *Service) List(ctx context.Context) ([]models.Module, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(all, func(a, b models.Module) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return all, nil
}

// Search returns the modules whose brand, model, price or description
// contains q, ignoring case, in List order. Only an empty q matches
// everything; whitespace in q is matched like any other character.
func (s *Service) Search(ctx context.Context, q string) ([]models.Module, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	if q == "" {
		return all, nil
	}
	q = strings.ToLower(q)

	result := make([]models.Module, 0)
	for _, m := range all {
		if Matches(m, q) {
			result = append(result, m)
		}
	}
	return result, nil
}

// Matches reports whether m matches the already lower-cased query q.
func Matches(m models.Module, q string) bool {
	return strings.Contains(strings.ToLower(m.Brand), q) ||
		strings.Contains(strings.ToLower(m.Model), q) ||
		strings.Contains(FormatPrice(m.Price), q) ||
		strings.Contains(strings.ToLower(m.Description), q)
}

// FormatPrice renders p as its shortest decimal form: 120, 99.5, 0.1.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// GetByID returns the module with the given id or common.ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Module, error) {
	return s.store.Get(ctx, id)
}
