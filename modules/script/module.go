// Package script provides the macros that turn text elements into new
// macros. The source is never evaluated here: the registered handler forwards
// it to the execution runtime through the bridge on every call.
package script

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/specialistvlad/macrograph/internal/bridge"
	"github.com/specialistvlad/macrograph/internal/ctxlog"
	"github.com/specialistvlad/macrograph/internal/element"
	"github.com/specialistvlad/macrograph/internal/macro"
)

// Runtime tags understood by the execution runtime.
const (
	RuntimeDeno   = "deno"
	RuntimePython = "python"
)

// AnonymousDeno names deno sources without a named function.
const AnonymousDeno = "AnonymousDeno"

var (
	// ErrNotText is returned when the input element is not a text element.
	ErrNotText = errors.New("script: input is not a text element")
	// ErrNoFunctionName is returned for python sources without a def.
	ErrNoFunctionName = errors.New("script: cannot find function name")
	// ErrUnknownRuntime is returned for runtime tags other than deno/js/python.
	ErrUnknownRuntime = errors.New("script: unknown runtime")
)

var (
	denoFunc   = regexp.MustCompile(`function (\w+)\(`)
	pythonFunc = regexp.MustCompile(`def (\w+)\(`)
)

// Declaration is a script macro known ahead of time, e.g. from config.
type Declaration struct {
	Name        string
	Runtime     string
	Code        string
	Description string
}

// Module implements the macro.Module interface for this package.
type Module struct {
	Bridge   *bridge.Bridge
	Declared []Declaration
}

// Register registers the deno, js and python definers plus every declared
// macro. Declarations must have passed Validate.
func (m *Module) Register(r *macro.Registry) {
	for _, name := range []string{RuntimeDeno, "js"} {
		r.Register(name, m.definer(r, RuntimeDeno))
		r.Describe(name, "Registers the input's JavaScript function as a macro.")
	}
	r.Register(RuntimePython, m.definer(r, RuntimePython))
	r.Describe(RuntimePython, "Registers the input's Python function as a macro.")

	for _, d := range m.Declared {
		runtime, _ := CanonicalRuntime(d.Runtime)
		r.Register(d.Name, m.Forward(runtime, PrepareSource(runtime, d.Code)))
		r.Describe(d.Name, d.Description)
	}
}

// definer returns the handler that registers the input element's source as
// a new macro and reports the name it was registered under. Deno answers
// with text; python answers with a new text element for the surface to
// place.
func (m *Module) definer(r *macro.Registry, runtime string) macro.Handler {
	return func(ctx context.Context, inv macro.Invocation) (macro.Result, error) {
		if inv.Input.Type != element.TypeText {
			return macro.Result{}, fmt.Errorf("%w: got %q", ErrNotText, inv.Input.Type)
		}
		name, err := FunctionName(runtime, inv.Input.Text)
		if err != nil {
			return macro.Result{}, err
		}

		r.Register(name, m.Forward(runtime, PrepareSource(runtime, inv.Input.Text)))
		ctxlog.FromContext(ctx).Info("Script macro defined.", "name", name, "runtime", runtime)
		if runtime == RuntimePython {
			return macro.Elements(element.Element{
				ID:   uuid.NewString(),
				Type: element.TypeText,
				Text: name + " defined",
			}), nil
		}
		return macro.Text(name + " registered"), nil
	}
}

// Forward returns a handler that sends code to the runtime along with the
// invocation's input element and label, and waits for the answer.
func (m *Module) Forward(runtime, code string) macro.Handler {
	return func(ctx context.Context, inv macro.Invocation) (macro.Result, error) {
		input := inv.Input
		p, err := m.Bridge.Submit(ctx, bridge.Request{
			Code:     code,
			Input:    &input,
			Argument: inv.Label,
			Runtime:  runtime,
		})
		if err != nil {
			return macro.Result{}, err
		}
		data, err := p.Wait(ctx)
		if err != nil {
			return macro.Result{}, err
		}
		return macro.Text(data), nil
	}
}

// FunctionName extracts the name a source is registered under.
func FunctionName(runtime, source string) (string, error) {
	switch runtime {
	case RuntimeDeno:
		if m := denoFunc.FindStringSubmatch(source); m != nil {
			return m[1], nil
		}
		return AnonymousDeno, nil
	case RuntimePython:
		if m := pythonFunc.FindStringSubmatch(source); m != nil {
			return m[1], nil
		}
		return "", ErrNoFunctionName
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRuntime, runtime)
	}
}

// PrepareSource returns the code sent to the runtime. Python sources get a
// trailing call to their function so the runtime prints its result.
func PrepareSource(runtime, source string) string {
	if runtime != RuntimePython {
		return source
	}
	name, err := FunctionName(runtime, source)
	if err != nil {
		return source
	}
	return source + "\n\nprint(" + name + "())"
}

// CanonicalRuntime maps a runtime tag to deno or python. "js" and the empty
// tag mean deno.
func CanonicalRuntime(tag string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "", RuntimeDeno, "js", "javascript":
		return RuntimeDeno, nil
	case RuntimePython, "py":
		return RuntimePython, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRuntime, tag)
	}
}

// Validate checks declarations before they are registered.
func Validate(decls []Declaration) error {
	var errs []error
	for _, d := range decls {
		if strings.TrimSpace(d.Name) == "" {
			errs = append(errs, errors.New("script: declared macro without a name"))
			continue
		}
		if _, err := CanonicalRuntime(d.Runtime); err != nil {
			errs = append(errs, fmt.Errorf("macro %q: %w", d.Name, err))
		}
		if strings.TrimSpace(d.Code) == "" {
			errs = append(errs, fmt.Errorf("macro %q: empty code", d.Name))
		}
	}
	return errors.Join(errs...)
}
