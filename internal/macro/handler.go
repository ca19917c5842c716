package macro

import (
	"context"

	"github.com/specialistvlad/macrograph/internal/element"
)

// Invocation is the argument set a handler runs against.
type Invocation struct {
	Input  element.Element
	Output element.Element // zero value when the caller named no output
	Label  string
	Scene  *element.Snapshot
}

// HasOutput reports whether an output element was supplied.
func (inv Invocation) HasOutput() bool {
	return inv.Output.ID != ""
}

// OutputRef returns a pointer to the output element, or nil without one.
func (inv Invocation) OutputRef() *element.Element {
	if !inv.HasOutput() {
		return nil
	}
	out := inv.Output
	return &out
}

// Handler runs a macro. It may block, e.g. while waiting on the bridge, and
// must honour ctx.
type Handler func(ctx context.Context, inv Invocation) (Result, error)

// Module bundles handlers that are registered together.
type Module interface {
	Register(r *Registry)
}

// Kinds of Result.
const (
	KindText     = "text"
	KindElements = "elements"
)

// Result is what a macro produces: either plain text or an ordered list of
// new elements for the surface to insert.
type Result struct {
	Kind     string            `json:"kind"`
	Text     string            `json:"text,omitempty"`
	Elements []element.Element `json:"elements,omitempty"`
}

// Text returns a text result.
func Text(s string) Result {
	return Result{Kind: KindText, Text: s}
}

// Elements returns an element-list result.
func Elements(elems ...element.Element) Result {
	return Result{Kind: KindElements, Elements: elems}
}

// IsText reports whether r carries text.
func (r Result) IsText() bool {
	return r.Kind == KindText
}
