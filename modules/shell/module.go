// Package shell provides the "sh" macro. The input element's text is run as
// a shell script by the execution runtime; the script's standard output is
// the result.
package shell

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/macrograph/internal/bridge"
	"github.com/specialistvlad/macrograph/internal/ctxlog"
	"github.com/specialistvlad/macrograph/internal/macro"
)

// Name is the macro name this module registers.
const Name = "sh"

// ErrNotText is returned when the input element is not a text element.
var ErrNotText = errors.New("shell: input is not a text element")

// Script is the runtime function that runs input.text with sh. A non-zero
// exit fails the task with the script's standard error.
const Script = `async function runShell(input) {
  const command = new Deno.Command("sh", {
    args: ["-c", input.text],
    stdout: "piped",
    stderr: "piped",
  });
  const { code, stdout, stderr } = await command.output();
  const decoder = new TextDecoder();
  if (code !== 0) {
    throw new Error(decoder.decode(stderr) || "exit status " + code);
  }
  return decoder.decode(stdout);
}
`

// Module implements the macro.Module interface for this package.
type Module struct {
	Bridge *bridge.Bridge
}

// Register registers the macro with the registry.
func (m *Module) Register(r *macro.Registry) {
	r.Register(Name, m.Run)
	r.Describe(Name, "Runs the input text as a shell script in the runtime.")
}

// Run sends the input element to the runtime together with Script. The
// invocation label is passed along as the argument.
func (m *Module) Run(ctx context.Context, inv macro.Invocation) (macro.Result, error) {
	if !inv.Input.IsText() {
		return macro.Result{}, fmt.Errorf("%w: got %q", ErrNotText, inv.Input.Type)
	}
	ctxlog.FromContext(ctx).Debug("Running shell script through the runtime.", "bytes", len(inv.Input.Text))

	input := inv.Input
	p, err := m.Bridge.Submit(ctx, bridge.Request{
		Code:     Script,
		Input:    &input,
		Argument: inv.Label,
		Runtime:  "deno",
	})
	if err != nil {
		return macro.Result{}, err
	}
	out, err := p.Wait(ctx)
	if err != nil {
		return macro.Result{}, err
	}
	return macro.Text(out), nil
}
