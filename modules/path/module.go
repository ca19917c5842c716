// Package path provides the "path" macro, which answers with the input
// element's position in the scene hierarchy.
package path

import (
	"context"

	"github.com/specialistvlad/macrograph/internal/graphpath"
	"github.com/specialistvlad/macrograph/internal/macro"
)

// Name is the macro name this module registers.
const Name = "path"

// Module implements the macro.Module interface for this package.
type Module struct {
	Resolver *graphpath.Resolver
}

// Run joins the resolved segments of the input element. The output element,
// when present, contributes its connector label.
func (m *Module) Run(_ context.Context, inv macro.Invocation) (macro.Result, error) {
	p, err := m.Resolver.ResolvePath(inv.Scene, inv.Input, inv.OutputRef())
	if err != nil {
		return macro.Result{}, err
	}
	return macro.Text(p), nil
}

// Register registers the macro with the registry.
func (m *Module) Register(r *macro.Registry) {
	r.Register(Name, m.Run)
	r.Describe(Name, "Answers with the input element's path.")
}
