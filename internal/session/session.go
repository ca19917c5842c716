// Package session ties the macro engine together. A Session is constructed
// once per process or editing session and owns every piece of mutable engine
// state: the macro registry, the bridge with its task counter and callback
// table, and the path resolver. Nothing is kept in package-level variables.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/macrograph/internal/bridge"
	"github.com/specialistvlad/macrograph/internal/ctxlog"
	"github.com/specialistvlad/macrograph/internal/element"
	"github.com/specialistvlad/macrograph/internal/graphpath"
	"github.com/specialistvlad/macrograph/internal/macro"
)

var (
	// ErrElementNotFound is returned when the input element is not in the scene.
	ErrElementNotFound = errors.New("session: element not found in scene")
	// ErrNoScene is returned when a request carries no scene snapshot.
	ErrNoScene = errors.New("session: no scene snapshot")
)

// Options configures a Session.
type Options struct {
	Logger      *slog.Logger
	TaskTimeout time.Duration
}

// Request names a macro and the elements it runs against.
type Request struct {
	Macro    string
	Scene    *element.Snapshot
	InputID  string
	OutputID string // optional
	Label    string
}

// Session is the orchestrator value passed to every engine operation.
type Session struct {
	id       string
	logger   *slog.Logger
	registry *macro.Registry
	bridge   *bridge.Bridge
	resolver *graphpath.Resolver
}

// New creates a session with an empty registry and no runtime attached.
func New(opts Options) *Session {
	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session", id)

	s := &Session{
		id:       id,
		logger:   logger,
		registry: macro.New(logger),
		bridge:   bridge.New(bridge.Options{TaskTimeout: opts.TaskTimeout, Logger: logger}),
		resolver: graphpath.NewResolver(logger),
	}
	logger.Debug("Session created.", "task_timeout", opts.TaskTimeout.String())
	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Registry returns the session's macro registry.
func (s *Session) Registry() *macro.Registry { return s.registry }

// Bridge returns the session's execution bridge.
func (s *Session) Bridge() *bridge.Bridge { return s.bridge }

// Resolver returns the session's path resolver.
func (s *Session) Resolver() *graphpath.Resolver { return s.resolver }

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Execute resolves the request's elements from its scene and runs the macro.
// A missing output element is tolerated; the handler then sees a zero Output.
func (s *Session) Execute(ctx context.Context, req Request) (macro.Result, error) {
	if req.Scene == nil {
		return macro.Result{}, ErrNoScene
	}
	input, ok := req.Scene.Get(req.InputID)
	if !ok {
		return macro.Result{}, fmt.Errorf("%w: input %q", ErrElementNotFound, req.InputID)
	}

	var output element.Element
	if req.OutputID != "" {
		if out, ok := req.Scene.Get(req.OutputID); ok {
			output = out
		} else {
			s.logger.Warn("Output element not in scene, continuing without it.", "output", req.OutputID)
		}
	}

	ctx = ctxlog.WithLogger(ctx, s.logger)
	return s.registry.Execute(ctx, req.Macro, macro.Invocation{
		Input:  input,
		Output: output,
		Label:  req.Label,
		Scene:  req.Scene,
	})
}

// Close detaches the runtime. Tasks still pending stay pending until their
// callers give up or their deadlines fire.
func (s *Session) Close(ctx context.Context) error {
	s.bridge.Attach(nil)
	if n := s.bridge.Outstanding(); n > 0 {
		ctxlog.FromContext(ctx).Warn("Session closed with outstanding tasks.", "session", s.id, "outstanding", n)
	}
	s.logger.Debug("Session closed.")
	return nil
}
