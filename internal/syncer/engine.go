// Package syncer keeps the local store and the remote store in step.
//
// Writes are an explicit two-phase, best-effort commit: phase one writes the
// local store and must succeed; phase two mirrors the write to the remote
// store and may fail without undoing phase one. Reads at startup go the other
// way: Pull copies the remote snapshot over the local store, remote wins.
//
// There is no retry queue. A record whose remote write failed stays local
// and is reported as pending sync until the next successful write of the
// same id.
package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/modcatalog/internal/common"
	"github.com/dmitrijs2005/modcatalog/internal/datauri"
	"github.com/dmitrijs2005/modcatalog/internal/logging"
	"github.com/dmitrijs2005/modcatalog/internal/models"
)

// Local is the durable on-device store.
type Local interface {
	Put(ctx context.Context, m models.Module) error
	PutAll(ctx context.Context, ms []models.Module) error
	Delete(ctx context.Context, id string) error
}

// Remote is the shared cloud store.
type Remote interface {
	Upsert(ctx context.Context, r models.RemoteModule) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]models.RemoteModule, error)
	UploadBlob(ctx context.Context, data []byte, key, contentType string) (string, error)
	Ping(ctx context.Context) error
}

// State is where a record stands after a write.
type State string

const (
	StateSynced            State = "synced"
	StatePendingSync       State = "pending_sync"
	StateDeletedEverywhere State = "deleted_everywhere"
	StateRemoteOrphan      State = "remote_orphan"
)

// Outcome reports the remote half of a write. Err is the classified remote
// error when State is StatePendingSync or StateRemoteOrphan.
type Outcome struct {
	State State
	Err   error
}

// Synced reports whether the remote store acknowledged the write.
func (o Outcome) Synced() bool {
	return o.State == StateSynced || o.State == StateDeletedEverywhere
}

// PullReport summarises a Pull.
type PullReport struct {
	Fetched int
	Applied int

	// Skipped is set when no remote store is configured.
	Skipped bool

	// RemoteErr is set when the remote snapshot could not be read. The local
	// store is left untouched in that case.
	RemoteErr error
}

const defaultRemoteTimeout = 10 * time.Second

type Engine struct {
	local         Local
	remote        Remote
	log           logging.Logger
	now           func() time.Time
	remoteTimeout time.Duration
}

type Option func(*Engine)

// WithRemote enables phase two. Without it the engine runs local-only.
func WithRemote(r Remote) Option {
	return func(e *Engine) { e.remote = r }
}

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock sets the clock used for remote updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRemoteTimeout bounds every remote call. Zero keeps the default.
func WithRemoteTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.remoteTimeout = d
		}
	}
}

func New(local Local, opts ...Option) *Engine {
	e := &Engine{
		local:         local,
		log:           logging.Nop(),
		now:           time.Now,
		remoteTimeout: defaultRemoteTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RemoteEnabled reports whether a remote store is configured.
func (e *Engine) RemoteEnabled() bool {
	return e.remote != nil
}

// Ping checks the remote store within the remote timeout.
func (e *Engine) Ping(ctx context.Context) error {
	if e.remote == nil {
		return common.ErrRemoteDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, e.remoteTimeout)
	defer cancel()
	return e.remote.Ping(ctx)
}

// Pull copies the remote snapshot into the local store in one local
// transaction. Remote rows overwrite local rows with the same id; local-only
// rows are kept. Only a local failure is returned as an error.
func (e *Engine) Pull(ctx context.Context) (PullReport, error) {
	var rep PullReport
	if e.remote == nil {
		rep.Skipped = true
		return rep, nil
	}

	rctx, cancel := context.WithTimeout(ctx, e.remoteTimeout)
	rows, err := e.remote.ListAll(rctx)
	cancel()
	if err != nil {
		e.log.Warn(ctx, "pull: remote snapshot unavailable", "err", err, "hint", hintOf(err))
		rep.RemoteErr = err
		return rep, nil
	}
	rep.Fetched = len(rows)
	if len(rows) == 0 {
		e.log.Info(ctx, "pull: remote store is empty")
		return rep, nil
	}

	ms := make([]models.Module, 0, len(rows))
	for _, r := range rows {
		ms = append(ms, r.ToLocal())
	}
	if err := e.local.PutAll(ctx, ms); err != nil {
		return rep, err
	}
	rep.Applied = len(ms)

	e.log.Info(ctx, "pull: completed", "fetched", rep.Fetched, "applied", rep.Applied)
	return rep, nil
}

// Push writes m locally, then mirrors it remotely. The error is non-nil only
// when the local write failed, in which case nothing was sent remotely.
func (e *Engine) Push(ctx context.Context, m models.Module) (Outcome, error) {
	if err := e.commitLocal(ctx, m); err != nil {
		return Outcome{}, err
	}

	if e.remote == nil {
		return Outcome{State: StatePendingSync, Err: common.ErrRemoteDisabled}, nil
	}

	if err := e.commitRemote(ctx, m); err != nil {
		e.log.Warn(ctx, "remote write failed; record kept locally", "id", m.ID, "err", err, "hint", hintOf(err))
		return Outcome{State: StatePendingSync, Err: err}, nil
	}

	e.log.Debug(ctx, "record synced", "id", m.ID)
	return Outcome{State: StateSynced}, nil
}

// PushDelete removes id locally, then remotely. A remote failure leaves a
// remote orphan that the next Pull will bring back.
func (e *Engine) PushDelete(ctx context.Context, id string) (Outcome, error) {
	if err := e.local.Delete(ctx, id); err != nil {
		return Outcome{}, err
	}

	if e.remote == nil {
		return Outcome{State: StateRemoteOrphan, Err: common.ErrRemoteDisabled}, nil
	}

	rctx, cancel := context.WithTimeout(ctx, e.remoteTimeout)
	defer cancel()
	if err := e.remote.Delete(rctx, id); err != nil {
		e.log.Warn(ctx, "remote delete failed", "id", id, "err", err, "hint", hintOf(err))
		return Outcome{State: StateRemoteOrphan, Err: err}, nil
	}
	return Outcome{State: StateDeletedEverywhere}, nil
}

func (e *Engine) commitLocal(ctx context.Context, m models.Module) error {
	return e.local.Put(ctx, m)
}

// commitRemote uploads an inline image (falling back to the data URI when the
// upload fails) and upserts the row. Each call gets its own remote timeout.
func (e *Engine) commitRemote(ctx context.Context, m models.Module) error {
	if m.HasInlineImage() {
		if url, ok := e.uploadImage(ctx, m); ok {
			m.ImageData = url
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.remoteTimeout)
	defer cancel()
	return e.remote.Upsert(ctx, models.ToRemote(m, models.Timestamp(e.now())))
}

func (e *Engine) uploadImage(ctx context.Context, m models.Module) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, e.remoteTimeout)
	defer cancel()

	data, mime, err := datauri.Decode(m.ImageData)
	if err != nil {
		e.log.Warn(ctx, "inline image is not a valid data uri", "id", m.ID, "err", err)
		return "", false
	}

	key := m.ID + "." + datauri.Extension(mime)
	url, err := e.remote.UploadBlob(ctx, data, key, mime)
	if err != nil {
		e.log.Warn(ctx, "image upload failed; keeping inline image", "id", m.ID, "err", err, "hint", hintOf(err))
		return "", false
	}
	return url, true
}

func hintOf(err error) string {
	var h interface{ Hint() string }
	if errors.As(err, &h) {
		return h.Hint()
	}
	return ""
}
