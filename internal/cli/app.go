package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/modcatalog/internal/catalog"
	"github.com/dmitrijs2005/modcatalog/internal/config"
	"github.com/dmitrijs2005/modcatalog/internal/localstore"
	"github.com/dmitrijs2005/modcatalog/internal/logging"
	"github.com/dmitrijs2005/modcatalog/internal/remotestore"
	"github.com/dmitrijs2005/modcatalog/internal/syncer"
	"github.com/dmitrijs2005/modcatalog/internal/vision"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
	ModeLocal   Mode = "local only"
)

// identifier is the part of the vision client the shell uses.
type identifier interface {
	Enabled() bool
	Identify(ctx context.Context, image []byte, knownModels []string) (string, error)
}

type App struct {
	config  *config.Config
	catalog *catalog.Service
	engine  *syncer.Engine
	vision  identifier
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	now     func() time.Time
	closers []io.Closer

	mu   sync.RWMutex
	mode Mode
}

// NewApp opens the local store and, when configured, the remote store, and
// wires the catalog on top of them. A remote store that cannot be reached or
// bootstrapped is not fatal; the shell starts offline.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := localstore.Open(ctx, c.LocalDSN)
	if err != nil {
		return nil, err
	}
	app := &App{
		config:  c,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		now:     time.Now,
		closers: []io.Closer{db},
		mode:    ModeLocal,
	}

	local := localstore.New(db)
	opts := []syncer.Option{
		syncer.WithLogger(log),
		syncer.WithRemoteTimeout(c.RemoteTimeout),
	}
	if c.RemoteEnabled() {
		remote, rdb, err := openRemote(ctx, c, log)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.closers = append(app.closers, rdb)
		opts = append(opts, syncer.WithRemote(remote))
		app.mode = ModeOffline
	}

	app.engine = syncer.New(local, opts...)
	app.catalog = catalog.NewService(local, app.engine, catalog.WithLogger(log))
	app.vision = vision.New(vision.Config{
		APIKey:  c.VisionAPIKey,
		BaseURL: c.VisionBaseURL,
		Logger:  log,
	})
	return app, nil
}

func openRemote(ctx context.Context, c *config.Config, log logging.Logger) (*remotestore.Store, *sql.DB, error) {
	rdb, err := remotestore.Open(c.RemoteDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("remote store: %w", err)
	}

	bctx, cancel := context.WithTimeout(ctx, c.RemoteTimeout)
	defer cancel()
	if err := remotestore.Bootstrap(bctx, rdb); err != nil {
		log.Warn(ctx, "remote schema bootstrap failed", "err", err, "hint", remotestore.Hint(err))
	}

	var blobs remotestore.Blobs
	s3cfg := remotestore.S3Config{
		Region:        c.S3Region,
		AccessKey:     c.S3AccessKey,
		SecretKey:     c.S3SecretKey,
		Endpoint:      c.S3BaseEndpoint,
		Bucket:        c.S3Bucket,
		PublicBaseURL: c.S3PublicBaseURL,
	}
	if s3cfg.Enabled() {
		b, err := remotestore.NewS3Blobs(ctx, s3cfg)
		if err != nil {
			log.Warn(ctx, "image bucket unavailable; images stay inline", "err", err)
		} else {
			blobs = b
		}
	}

	return remotestore.New(remotestore.NewPostgresTable(rdb), blobs), rdb, nil
}

// Close releases the database handles.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "connection mode changed", "mode", string(mode))
	}
}

// Run pulls the remote snapshot, tidies brands, then serves the shell on
// stdin until EOF, "exit" or ctx cancellation.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.startup(ctx); err != nil {
		return err
	}

	if a.engine.RemoteEnabled() {
		wctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go a.StartOnlineStatusWatcher(wctx, a.config.OnlineCheckInterval)
	}

	fmt.Fprintln(a.out, "Module catalog (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

// startup runs the initial pull and the brand fix-up. Only a local storage
// failure stops the shell.
func (a *App) startup(ctx context.Context) error {
	if a.engine.RemoteEnabled() {
		a.checkOnline(ctx)
	}

	rep, err := a.engine.Pull(ctx)
	if err != nil {
		return fmt.Errorf("initial sync: %w", err)
	}
	printPullReport(a.out, rep)

	n, err := a.catalog.FixAppleBrands(ctx)
	if err != nil {
		return fmt.Errorf("brand fix-up: %w", err)
	}
	if n > 0 {
		fmt.Fprintf(a.out, "Corrected the brand of %d iPhone module(s).\n", n)
	}
	return nil
}

func (a *App) checkOnline(ctx context.Context) {
	if err := a.engine.Ping(ctx); err != nil {
		a.log.Debug(ctx, "remote ping failed", "err", err)
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// StartOnlineStatusWatcher pings the remote store every interval and keeps
// the mode in step until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	return string(a.Mode())
}
