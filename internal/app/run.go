package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/specialistvlad/macrograph/internal/ctxlog"
	"github.com/specialistvlad/macrograph/internal/element"
	"github.com/specialistvlad/macrograph/internal/httpapi"
	"github.com/specialistvlad/macrograph/internal/scenestore"
	"github.com/specialistvlad/macrograph/internal/session"
)

// Run performs the configured action: list macros, execute one macro, or
// serve the HTTP API until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "mode", a.cfg.mode())

	switch {
	case a.cfg.List:
		r := a.session.Registry()
		for _, name := range r.Names() {
			if d := r.Description(name); d != "" {
				fmt.Fprintf(a.outW, "%s\t%s\n", name, d)
				continue
			}
			fmt.Fprintln(a.outW, name)
		}
		return nil
	case a.cfg.Serve:
		return httpapi.New(a.session, a.scenes, a.logger).Serve(ctx, a.model.Server.Listen)
	default:
		return a.execute(ctx)
	}
}

func (a *App) execute(ctx context.Context) error {
	scene, err := a.loadScene(ctx)
	if err != nil {
		return err
	}

	res, err := a.session.Execute(ctx, session.Request{
		Macro:    a.cfg.Macro,
		Scene:    scene,
		InputID:  a.cfg.Input,
		OutputID: a.cfg.Output,
		Label:    a.cfg.Label,
	})
	if err != nil {
		return err
	}

	if res.IsText() {
		fmt.Fprintln(a.outW, res.Text)
		return nil
	}
	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Elements)
}

func (a *App) loadScene(ctx context.Context) (*element.Snapshot, error) {
	if a.cfg.SceneID != "" {
		return a.scenes.Load(ctx, a.cfg.SceneID)
	}
	doc, err := os.ReadFile(a.cfg.ScenePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	return scenestore.Decode(doc)
}
