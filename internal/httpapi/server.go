// Package httpapi exposes a session over HTTP: macro listing and execution,
// the runtime's result delivery endpoint, and scene uploads.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/specialistvlad/macrograph/internal/bridge"
	"github.com/specialistvlad/macrograph/internal/element"
	"github.com/specialistvlad/macrograph/internal/graphpath"
	"github.com/specialistvlad/macrograph/internal/macro"
	"github.com/specialistvlad/macrograph/internal/scenestore"
	"github.com/specialistvlad/macrograph/internal/session"
)

// Server routes HTTP requests to a session.
type Server struct {
	app     *fiber.App
	session *session.Session
	scenes  scenestore.Store
	logger  *slog.Logger
}

// ExecuteRequest is the body of POST /macros/:name/execute. The scene is
// either inline (an Excalidraw document or element array) or named by
// SceneID in the scene store.
type ExecuteRequest struct {
	Scene   json.RawMessage `json:"scene,omitempty"`
	SceneID string          `json:"sceneId,omitempty"`
	Input   string          `json:"input"`
	Output  string          `json:"output,omitempty"`
	Label   string          `json:"label,omitempty"`
}

// New builds the server and its routes.
func New(s *session.Session, scenes scenestore.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		app:     fiber.New(fiber.Config{AppName: "macrograph"}),
		session: s,
		scenes:  scenes,
		logger:  logger.With("component", "httpapi"),
	}

	srv.app.Get("/health", srv.health)
	srv.app.Get("/macros", srv.listMacros)
	srv.app.Post("/macros/:name/execute", srv.execute)
	srv.app.Post("/tasks/:id/result", srv.deliver)
	srv.app.Put("/scenes/:id", srv.putScene)
	return srv
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	s.logger.Info("HTTP API listening.", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP API.")
		return s.app.Shutdown()
	}
}

func (s *Server) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "ok",
		"session":     s.session.ID(),
		"outstanding": s.session.Bridge().Outstanding(),
	})
}

func (s *Server) listMacros(c fiber.Ctx) error {
	r := s.session.Registry()
	names := r.Names()
	descriptions := make(map[string]string, len(names))
	for _, name := range names {
		if d := r.Description(name); d != "" {
			descriptions[name] = d
		}
	}
	return c.JSON(fiber.Map{"macros": names, "descriptions": descriptions})
}

func (s *Server) execute(c fiber.Ctx) error {
	var req ExecuteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if req.Input == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "input is required"})
	}

	scene, err := s.loadScene(c.Context(), req)
	if err != nil {
		return s.fail(c, err)
	}

	res, err := s.session.Execute(c.Context(), session.Request{
		Macro:    c.Params("name"),
		Scene:    scene,
		InputID:  req.Input,
		OutputID: req.Output,
		Label:    req.Label,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(res)
}

func (s *Server) loadScene(ctx context.Context, req ExecuteRequest) (*element.Snapshot, error) {
	switch {
	case len(req.Scene) > 0:
		return scenestore.Decode(req.Scene)
	case req.SceneID != "":
		if s.scenes == nil {
			return nil, scenestore.ErrSceneNotFound
		}
		return s.scenes.Load(ctx, req.SceneID)
	default:
		return nil, session.ErrNoScene
	}
}

func (s *Server) deliver(c fiber.Ctx) error {
	var outcome bridge.Outcome
	if err := c.Bind().JSON(&outcome); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	routed, err := s.session.Bridge().DeliverRaw(c.Params("id"), outcome)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"routed": routed})
}

func (s *Server) putScene(c fiber.Ctx) error {
	if s.scenes == nil {
		return c.Status(http.StatusNotImplemented).JSON(fiber.Map{"error": "no scene store configured"})
	}
	doc := append([]byte(nil), c.Body()...)
	if err := s.scenes.Save(c.Context(), c.Params("id"), doc); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *Server) fail(c fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed.", "path", c.Path(), "status", status, "error", err)
	} else {
		s.logger.Debug("Request rejected.", "path", c.Path(), "status", status, "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	var remoteErr *bridge.RemoteError
	var resolutionErr *graphpath.ResolutionError
	switch {
	case errors.Is(err, macro.ErrNotRegistered),
		errors.Is(err, session.ErrElementNotFound),
		errors.Is(err, scenestore.ErrSceneNotFound):
		return http.StatusNotFound
	case errors.Is(err, element.ErrInvalidScene),
		errors.Is(err, scenestore.ErrInvalidID),
		errors.Is(err, session.ErrNoScene):
		return http.StatusBadRequest
	case errors.Is(err, bridge.ErrEnvironmentUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, bridge.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway
	case errors.As(err, &resolutionErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
