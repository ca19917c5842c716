package graphpath_test

import (
	"fmt"
	"testing"

	"github.com/specialistvlad/macrograph/internal/element"
	"github.com/specialistvlad/macrograph/internal/graphpath"
	tu "github.com/specialistvlad/macrograph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) *graphpath.Resolver {
	t.Helper()
	logger, _ := tu.NewLogger(t)
	return graphpath.NewResolver(logger)
}

func mustGet(t *testing.T, scene *element.Snapshot, id string) element.Element {
	t.Helper()
	e, ok := scene.Get(id)
	require.True(t, ok, "element %q missing from scene", id)
	return e
}

// rootChildScene is A(1, "/root") -C-> B(2, "/child") -D[label "extra"]-> 3.
func rootChildScene() *element.Snapshot {
	return tu.Scene(
		tu.Text("1", "/root"),
		tu.Arrow("C", "1", "2"),
		tu.Text("2", "/child"),
		tu.Labelled(tu.Arrow("D", "2", "3"), "L"),
		tu.Text("L", "extra"),
		tu.Text("3", "target"),
	)
}

func TestResolve_DirectChain(t *testing.T) {
	scene := rootChildScene()
	r := newResolver(t)

	segments, err := r.Resolve(scene, mustGet(t, scene, "2"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/root", "/child"}, segments)
}

func TestResolve_WithDestinationLabel(t *testing.T) {
	scene := rootChildScene()
	r := newResolver(t)

	dest := mustGet(t, scene, "3")
	segments, err := r.Resolve(scene, mustGet(t, scene, "2"), &dest)
	require.NoError(t, err)
	assert.Equal(t, []string{"/root", "/child", "extra"}, segments)

	path, err := r.ResolvePath(scene, mustGet(t, scene, "2"), &dest)
	require.NoError(t, err)
	assert.Equal(t, "/root/childextra", path)
}

func TestResolve_DestinationWithoutLabelAddsNothing(t *testing.T) {
	scene := tu.Scene(
		tu.Text("1", "/a"),
		tu.Arrow("C", "1", "2"),
		tu.Text("2", "b"),
	)
	r := newResolver(t)

	dest := mustGet(t, scene, "2")
	segments, err := r.Resolve(scene, mustGet(t, scene, "1"), &dest)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a"}, segments)
}

func TestResolve_IntermediateLabelsBecomeSegments(t *testing.T) {
	scene := tu.Scene(
		tu.Text("1", "https://example.com"),
		tu.Labelled(tu.Arrow("C", "1", "2"), "L"),
		tu.Text("L", "/api"),
		tu.Text("2", "/users"),
	)
	r := newResolver(t)

	path, err := r.ResolvePath(scene, mustGet(t, scene, "2"), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api/users", path)
}

func TestResolve_Isolated(t *testing.T) {
	scene := tu.Scene(tu.Text("solo", "/---alone"))
	r := newResolver(t)

	segments, err := r.Resolve(scene, mustGet(t, scene, "solo"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/alone"}, segments)
}

func TestResolve_ParentFallback(t *testing.T) {
	t.Run("parent without parent lends its incoming connector and text", func(t *testing.T) {
		scene := tu.Scene(
			tu.Text("root", "~/docs"),
			tu.Arrow("C", "root", "dir"),
			tu.Text("dir", "/--notes"),
			tu.WithParent(tu.Text("file", "/todo.md"), "dir"),
		)
		r := newResolver(t)

		segments, err := r.Resolve(scene, mustGet(t, scene, "file"), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"~/docs", "/notes", "/todo.md"}, segments)
	})

	t.Run("parent with its own parent is walked through a synthesized relation", func(t *testing.T) {
		scene := tu.Scene(
			tu.Text("root", "~/src"),
			tu.WithParent(tu.Text("dir", "/pkg"), "root"),
			tu.WithParent(tu.Text("file", "/main.go"), "dir"),
		)
		r := newResolver(t)

		segments, err := r.Resolve(scene, mustGet(t, scene, "file"), nil)
		require.NoError(t, err)
		// dir has a parent, so file -> dir is synthesized; dir's parent has
		// none, so root's text is borrowed.
		assert.Equal(t, []string{"~/src", "/pkg", "/main.go"}, segments)
	})

	t.Run("dangling parent degrades to own segment", func(t *testing.T) {
		scene := tu.Scene(tu.WithParent(tu.Text("file", "/x"), "missing"))
		r := newResolver(t)

		segments, err := r.Resolve(scene, mustGet(t, scene, "file"), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"/x"}, segments)
	})

	t.Run("parent reference suppresses group fallback", func(t *testing.T) {
		scene := tu.Scene(
			tu.Text("box", "/boxed", "g"),
			tu.WithParent(tu.Text("file", "/x", "g"), "missing"),
		)
		r := newResolver(t)

		segments, err := r.Resolve(scene, mustGet(t, scene, "file"), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"/x"}, segments)
	})
}

func TestResolve_GroupContainerFallback(t *testing.T) {
	t.Run("text container", func(t *testing.T) {
		scene := tu.Scene(
			tu.Text("root", "~"),
			tu.Arrow("C", "root", "folder"),
			tu.Text("folder", "/-projects", "g"),
			tu.Text("item", "/readme", "g"),
		)
		r := newResolver(t)

		segments, err := r.Resolve(scene, mustGet(t, scene, "item"), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"~", "/projects", "/readme"}, segments)
	})

	t.Run("rectangle container without text", func(t *testing.T) {
		scene := tu.Scene(
			tu.Text("root", "/base"),
			tu.Arrow("C", "root", "box"),
			tu.Rect("box", "g"),
			tu.Text("item", "/leaf", "g"),
		)
		r := newResolver(t)

		segments, err := r.Resolve(scene, mustGet(t, scene, "item"), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"/base", "/leaf"}, segments)
	})

	t.Run("target is never its own container", func(t *testing.T) {
		scene := tu.Scene(tu.Text("item", "/self", "g"))
		r := newResolver(t)

		segments, err := r.Resolve(scene, mustGet(t, scene, "item"), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"/self"}, segments)
	})

	t.Run("plain text siblings are not containers", func(t *testing.T) {
		scene := tu.Scene(
			tu.Text("note", "just a note", "g"),
			tu.Text("item", "/leaf", "g"),
		)
		r := newResolver(t)

		segments, err := r.Resolve(scene, mustGet(t, scene, "item"), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"/leaf"}, segments)
	})
}

func TestResolve_DanglingBindingsDegrade(t *testing.T) {
	scene := tu.Scene(
		tu.Arrow("C", "ghost", "2"),
		tu.Text("2", "/child"),
	)
	r := newResolver(t)

	segments, err := r.Resolve(scene, mustGet(t, scene, "2"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/child"}, segments)
}

func TestResolve_NonTextStartEndsWalk(t *testing.T) {
	scene := tu.Scene(
		tu.Rect("r"),
		tu.Arrow("C", "r", "2"),
		tu.Text("2", "/child"),
	)
	r := newResolver(t)

	segments, err := r.Resolve(scene, mustGet(t, scene, "2"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/child"}, segments)
}

func TestResolve_CycleFails(t *testing.T) {
	t.Run("connector cycle", func(t *testing.T) {
		scene := tu.Scene(
			tu.Text("a", "/a"),
			tu.Text("b", "/b"),
			tu.Arrow("ab", "a", "b"),
			tu.Arrow("ba", "b", "a"),
		)
		r := newResolver(t)

		_, err := r.Resolve(scene, mustGet(t, scene, "b"), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, graphpath.ErrCycle)

		var resErr *graphpath.ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, []string{"b", "a", "b"}, resErr.Chain)
	})

	t.Run("self loop", func(t *testing.T) {
		scene := tu.Scene(
			tu.Text("a", "/a"),
			tu.Arrow("aa", "a", "a"),
		)
		r := newResolver(t)

		_, err := r.Resolve(scene, mustGet(t, scene, "a"), nil)
		assert.ErrorIs(t, err, graphpath.ErrCycle)
	})

	t.Run("parent cycle", func(t *testing.T) {
		scene := tu.Scene(
			tu.WithParent(tu.Text("a", "/a"), "b"),
			tu.WithParent(tu.Text("b", "/b"), "a"),
		)
		r := newResolver(t)

		_, err := r.Resolve(scene, mustGet(t, scene, "a"), nil)
		assert.ErrorIs(t, err, graphpath.ErrCycle)
	})
}

func TestResolve_LongChain(t *testing.T) {
	const depth = 500

	var elems []element.Element
	prev := ""
	for i := 0; i < depth; i++ {
		id := fmt.Sprintf("n%d", i)
		elems = append(elems, tu.Text(id, "/x"))
		if prev != "" {
			elems = append(elems, tu.Arrow("c"+id, prev, id))
		}
		prev = id
	}
	scene := tu.Scene(elems...)

	segments, err := newResolver(t).Resolve(scene, mustGet(t, scene, prev), nil)
	require.NoError(t, err)
	assert.Len(t, segments, depth)
}
