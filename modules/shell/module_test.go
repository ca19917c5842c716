package shell_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/specialistvlad/macrograph/internal/bridge"
	"github.com/specialistvlad/macrograph/internal/macro"
	tu "github.com/specialistvlad/macrograph/internal/testutil"
	"github.com/specialistvlad/macrograph/modules/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRegistry wires the sh macro to a runtime that upper-cases the script
// text, or fails when the script contains "exit 1".
func newRegistry(t *testing.T) (*macro.Registry, *tu.FakeRuntime) {
	t.Helper()
	logger, _ := tu.NewLogger(t)
	b := bridge.New(bridge.Options{Logger: logger})
	rt := &tu.FakeRuntime{
		Reply: func(env bridge.Envelope) (bridge.Outcome, bool) {
			var in struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal([]byte(env.Input), &in); err != nil {
				return bridge.Outcome{Success: false, Error: err.Error()}, true
			}
			if strings.Contains(in.Text, "exit 1") {
				return bridge.Outcome{Success: false, Error: "exit status 1"}, true
			}
			return bridge.Outcome{Success: true, Data: strings.ToUpper(in.Text)}, true
		},
		Deliver: b.DeliverResult,
	}
	b.Attach(rt)

	r := macro.New(logger)
	r.Load(&shell.Module{Bridge: b})
	return r, rt
}

func TestShell_RunsInputThroughRuntime(t *testing.T) {
	r, rt := newRegistry(t)

	res, err := r.Execute(context.Background(), "SH", macro.Invocation{Input: tu.Text("in", "echo hi"), Label: "arg"})
	require.NoError(t, err)
	assert.Equal(t, "ECHO HI", res.Text)

	env, ok := rt.Last()
	require.True(t, ok)
	assert.Equal(t, shell.Script, env.Code)
	assert.Equal(t, "deno", env.Runtime)
	assert.Equal(t, "arg", env.Argument)
	assert.NotEmpty(t, r.Description("sh"))
}

func TestShell_Errors(t *testing.T) {
	t.Run("non-text input", func(t *testing.T) {
		r, rt := newRegistry(t)
		_, err := r.Execute(context.Background(), "sh", macro.Invocation{Input: tu.Rect("box")})
		assert.ErrorIs(t, err, shell.ErrNotText)
		assert.Empty(t, rt.Sent())
	})

	t.Run("script failure", func(t *testing.T) {
		r, _ := newRegistry(t)
		_, err := r.Execute(context.Background(), "sh", macro.Invocation{Input: tu.Text("in", "exit 1")})
		var remote *bridge.RemoteError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, "exit status 1", remote.Message)
	})

	t.Run("runtime down", func(t *testing.T) {
		r, rt := newRegistry(t)
		rt.SetDown(true)
		_, err := r.Execute(context.Background(), "sh", macro.Invocation{Input: tu.Text("in", "ls")})
		assert.ErrorIs(t, err, bridge.ErrEnvironmentUnavailable)
	})
}
