package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/macrograph/internal/bridge"
	"github.com/specialistvlad/macrograph/internal/macro"
	"github.com/specialistvlad/macrograph/internal/session"
	tu "github.com/specialistvlad/macrograph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	logger, _ := tu.NewLogger(t)
	return session.New(session.Options{Logger: logger})
}

func TestSessions_AreIndependent(t *testing.T) {
	a := newSession(t)
	b := newSession(t)

	assert.NotEqual(t, a.ID(), b.ID())

	a.Registry().Register("only-a", func(context.Context, macro.Invocation) (macro.Result, error) {
		return macro.Text("a"), nil
	})
	_, ok := b.Registry().Lookup("only-a")
	assert.False(t, ok)
}

func TestExecute_ResolvesElements(t *testing.T) {
	s := newSession(t)
	scene := tu.Scene(tu.Text("in", "hello"), tu.Text("out", ""))

	var got macro.Invocation
	s.Registry().Register("capture", func(_ context.Context, inv macro.Invocation) (macro.Result, error) {
		got = inv
		return macro.Text(inv.Input.Text), nil
	})

	res, err := s.Execute(context.Background(), session.Request{
		Macro: "capture", Scene: scene, InputID: "in", OutputID: "out", Label: "x",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, "out", got.Output.ID)
	assert.Same(t, scene, got.Scene)
}

func TestExecute_MissingElements(t *testing.T) {
	s := newSession(t)
	s.Registry().Register("noop", func(_ context.Context, inv macro.Invocation) (macro.Result, error) {
		return macro.Text(inv.Output.ID), nil
	})
	scene := tu.Scene(tu.Text("in", ""))

	_, err := s.Execute(context.Background(), session.Request{Macro: "noop", Scene: scene, InputID: "ghost"})
	assert.ErrorIs(t, err, session.ErrElementNotFound)

	res, err := s.Execute(context.Background(), session.Request{Macro: "noop", Scene: scene, InputID: "in", OutputID: "ghost"})
	require.NoError(t, err)
	assert.Equal(t, "", res.Text, "missing output yields a zero element")

	_, err = s.Execute(context.Background(), session.Request{Macro: "noop", InputID: "in"})
	assert.ErrorIs(t, err, session.ErrNoScene)
}

func TestExecute_UnregisteredMacro(t *testing.T) {
	s := newSession(t)
	_, err := s.Execute(context.Background(), session.Request{
		Macro: "nope", Scene: tu.Scene(tu.Text("in", "")), InputID: "in",
	})
	assert.ErrorIs(t, err, macro.ErrNotRegistered)
}

// A handler that resolves a path and forwards it through the bridge exercises
// the whole control flow: registry, resolver, bridge and delivery.
func TestExecute_EndToEndThroughBridge(t *testing.T) {
	s := newSession(t)
	s.Bridge().Attach(tu.NewEchoRuntime(s.Bridge()))

	s.Registry().Register("remote-path", func(ctx context.Context, inv macro.Invocation) (macro.Result, error) {
		path, err := s.Resolver().ResolvePath(inv.Scene, inv.Input, inv.OutputRef())
		if err != nil {
			return macro.Result{}, err
		}
		p, err := s.Bridge().Submit(ctx, bridge.Request{Code: "identity", Input: &inv.Input, Argument: path})
		if err != nil {
			return macro.Result{}, err
		}
		data, err := p.Wait(ctx)
		if err != nil {
			return macro.Result{}, err
		}
		return macro.Text(data), nil
	})

	scene := tu.Scene(
		tu.Text("1", "/root"),
		tu.Arrow("C", "1", "2"),
		tu.Text("2", "/child"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := s.Execute(ctx, session.Request{Macro: "remote-path", Scene: scene, InputID: "2"})
	require.NoError(t, err)
	assert.Equal(t, "/root/child", res.Text)
	assert.Equal(t, 0, s.Bridge().Outstanding())
}

func TestClose_DetachesRuntime(t *testing.T) {
	s := newSession(t)
	s.Bridge().Attach(&tu.FakeRuntime{})

	require.NoError(t, s.Close(context.Background()))

	_, err := s.Bridge().Submit(context.Background(), bridge.Request{Code: "x"})
	assert.ErrorIs(t, err, bridge.ErrEnvironmentUnavailable)
}
