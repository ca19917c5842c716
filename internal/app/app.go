package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/macrograph/internal/bridge/socketio"
	"github.com/specialistvlad/macrograph/internal/config"
	"github.com/specialistvlad/macrograph/internal/ctxlog"
	"github.com/specialistvlad/macrograph/internal/scenestore"
	"github.com/specialistvlad/macrograph/internal/scenestore/postgres"
	"github.com/specialistvlad/macrograph/internal/session"
	"github.com/specialistvlad/macrograph/modules/script"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	cfg     *Config
	model   *config.Model
	session *session.Session
	scenes  scenestore.Store
	closers []io.Closer
}

// NewApp loads configuration through loader and builds a ready App. logW
// receives logs, outW receives command output.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	model, err := loader.Load(ctx, cfg.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyOverrides(model, cfg)

	logger := newLogger(model.Log.Level, model.Log.Format, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Configuration loaded.", "paths", len(cfg.ConfigPaths), "declared_macros", len(model.Macros))

	decls := declarations(model.Macros)
	if err := script.Validate(decls); err != nil {
		return nil, fmt.Errorf("invalid macro declarations: %w", err)
	}

	a := &App{
		outW:   outW,
		logger: logger,
		cfg:    cfg,
		model:  model,
	}

	a.session = session.New(session.Options{Logger: logger, TaskTimeout: model.Bridge.TaskTimeout})
	a.session.Registry().Observe(func(name string) {
		logger.Info("Macro available.", "name", name)
	})
	a.session.Registry().Load(coreModules(a.session, decls)...)

	if a.scenes, err = a.openSceneStore(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.attachRuntime(ctx)
	return a, nil
}

func applyOverrides(m *config.Model, cfg *Config) {
	if cfg.LogLevel != "" {
		m.Log.Level = cfg.LogLevel
	}
	if cfg.LogFormat != "" {
		m.Log.Format = cfg.LogFormat
	}
	if cfg.Listen != "" {
		m.Server.Listen = cfg.Listen
	}
}

func (a *App) openSceneStore(ctx context.Context) (scenestore.Store, error) {
	sc := a.model.SceneStore
	a.logger.Debug("Opening scene store.", "driver", sc.Driver)
	switch sc.Driver {
	case "", config.StoreMemory:
		return scenestore.NewMemory(), nil
	case config.StoreFile:
		s, err := scenestore.NewFile(sc.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorePostgres:
		s, err := postgres.Open(ctx, sc.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown scene_store driver %q", sc.Driver)
	}
}

// attachRuntime connects the bridge to the configured runtime. A runtime
// that cannot be reached leaves the bridge detached.
func (a *App) attachRuntime(ctx context.Context) {
	bc := a.model.Bridge
	if bc.URL == "" {
		a.logger.Debug("No execution runtime configured.")
		return
	}
	client, err := socketio.Dial(ctx, a.session.Bridge(), socketio.Options{
		URL:                bc.URL,
		Namespace:          bc.Namespace,
		InsecureSkipVerify: bc.InsecureSkipVerify,
		ExecuteEvent:       bc.ExecuteEvent,
		ResultEvent:        bc.ResultEvent,
		ConnectTimeout:     bc.ConnectTimeout,
	})
	if err != nil {
		a.logger.Warn("Execution runtime unreachable, continuing without it.", "url", bc.URL, "error", err)
		return
	}
	a.session.Bridge().Attach(client)
	a.closers = append(a.closers, client)
}

// Session returns the application's session. This is primarily for testing.
func (a *App) Session() *session.Session {
	return a.session
}

// Close releases the runtime connection and the scene store.
func (a *App) Close(ctx context.Context) error {
	if a.session != nil {
		_ = a.session.Close(ctxlog.WithLogger(ctx, a.logger))
	}
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
