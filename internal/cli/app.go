package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lazypower/lifehack/internal/client"
	"github.com/lazypower/lifehack/internal/config"
	"github.com/lazypower/lifehack/internal/core"
	"github.com/lazypower/lifehack/internal/engine"
	"github.com/lazypower/lifehack/internal/store"
	"github.com/lazypower/lifehack/internal/widget"
	"github.com/spf13/cobra"
)

// app bundles what every command needs: config, database and the state manager.
type app struct {
	cfg    config.Config
	db     *store.DB
	mgr    *engine.Manager
	loc    *time.Location
	logger *slog.Logger
	sink   *widget.FileSink
	syncer *widget.Syncer
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// openDB is a helper that opens the database for CLI commands.
func openDB(cfg config.Config) (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(dbPath)
}

// openApp loads config, opens the database and the state manager. With
// exclusive set it refuses to load state while a server owns the database.
func openApp(ctx context.Context, exclusive bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if exclusive {
		if err := checkNoServer(ctx, cfg, db.Path); err != nil {
			db.Close()
			return nil, err
		}
	}
	a, err := newApp(ctx, cfg, db, newLogger(os.Stderr, verbose))
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func newApp(ctx context.Context, cfg config.Config, db *store.DB, logger *slog.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	now := func() time.Time { return time.Now().In(loc) }

	mgr, err := engine.Open(ctx, store.NewStateStore(db), engine.Options{Now: now, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	a := &app{cfg: cfg, db: db, mgr: mgr, loc: loc, logger: logger}
	if cfg.Widget.Enabled {
		a.sink = widget.NewFileSink(cfg.WidgetDir())
		a.syncer = widget.NewSyncer(a.sink, now, logger)
	}
	return a, nil
}

// mirrorWidget keeps the widget in step after one-shot commands. Failures
// are logged only.
func (a *app) mirrorWidget() {
	a.mgr.OnChange(func(doc core.Document) {
		if a.syncer == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := a.syncer.Sync(ctx, doc.ActiveItems); err != nil {
			a.logger.Warn("widget sync failed", "error", err)
		}
	})
}

func (a *app) Close() error {
	a.mgr.Stop()
	return a.db.Close()
}

// withApp wraps a read-only command body with openApp/Close.
func withApp(fn func(ctx context.Context, a *app, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, false, fn)
	}
}

// withWriteApp is withApp for commands that change state. It refuses to run
// while a server owns the same database, and mirrors the widget afterwards.
func withWriteApp(fn func(ctx context.Context, a *app, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, true, fn)
	}
}

func runWithApp(cmd *cobra.Command, args []string, write bool, fn func(ctx context.Context, a *app, out io.Writer, args []string) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, write)
	if err != nil {
		return err
	}
	defer a.Close()
	if write {
		a.mirrorWidget()
	}
	return fn(ctx, a, cmd.OutOrStdout(), args)
}

// checkNoServer fails when a running server reports the same database: its
// in-memory state would overwrite anything written here.
func checkNoServer(ctx context.Context, cfg config.Config, dbPath string) error {
	c := client.New("http://" + cfg.ListenAddr())
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	h, err := c.Health(ctx)
	if err != nil || h.DBPath != dbPath {
		return nil
	}
	return fmt.Errorf("lifehack serve is running on %s with this database; stop it or use its HTTP API", c.URL())
}
