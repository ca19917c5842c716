package graphpath

import (
	"log/slog"

	"github.com/specialistvlad/macrograph/internal/element"
)

// Resolver walks scene snapshots. It holds no per-call state and is safe for
// concurrent use.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a Resolver logging through logger.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger.With("component", "graphpath")}
}

// relation is an ancestor link: a connector, or one synthesized from a
// parent reference.
type relation struct {
	start string
	end   string
}

// Resolve returns the path segments of target within scene. When dest is not
// nil, the label of the connector from target to dest is appended.
func (r *Resolver) Resolve(scene *element.Snapshot, target element.Element, dest *element.Element) ([]string, error) {
	w := &walk{
		scene:   scene,
		visited: make(map[string]struct{}),
	}
	segments, err := w.resolve(target, dest)
	if err != nil {
		r.logger.Warn("Path resolution failed.", "target", target.ID, "error", err)
		return nil, err
	}
	r.logger.Debug("Path resolved.", "target", target.ID, "segments", len(segments))
	return segments, nil
}

// ResolvePath is Resolve followed by Join.
func (r *Resolver) ResolvePath(scene *element.Snapshot, target element.Element, dest *element.Element) (string, error) {
	segments, err := r.Resolve(scene, target, dest)
	if err != nil {
		return "", err
	}
	return Join(segments), nil
}

type walk struct {
	scene   *element.Snapshot
	visited map[string]struct{}
	chain   []string
}

func (w *walk) resolve(target element.Element, dest *element.Element) ([]string, error) {
	w.chain = append(w.chain, target.ID)
	if _, seen := w.visited[target.ID]; seen {
		return nil, &ResolutionError{Chain: append([]string(nil), w.chain...)}
	}
	w.visited[target.ID] = struct{}{}

	var segments []string

	rel, found := w.incoming(target)
	var extra string
	if !found {
		rel, found, extra = w.fallback(target)
	}

	if found {
		if start, ok := w.scene.Get(rel.start); ok && start.IsText() {
			var next *element.Element
			if end, ok := w.scene.Get(rel.end); ok {
				next = &end
			}
			ancestors, err := w.resolve(start, next)
			if err != nil {
				return nil, err
			}
			segments = append(segments, ancestors...)
		}
	}

	if extra != "" {
		segments = append(segments, extra)
	}
	if target.Text != "" {
		segments = append(segments, NormalizeSegment(target.Text))
	}

	if dest != nil {
		if label, ok := w.outgoingLabel(target, *dest); ok {
			segments = append(segments, label)
		}
	}
	return segments, nil
}

func (w *walk) incoming(e element.Element) (relation, bool) {
	c, ok := w.scene.IncomingTo(e.ID)
	if !ok {
		return relation{}, false
	}
	return relation{start: c.StartID(), end: c.EndID()}, true
}

// fallback finds an ancestor link for an element without an incoming
// connector. It returns the relation, whether one was found, and the
// normalized text of the element the relation was borrowed from, if any.
func (w *walk) fallback(target element.Element) (relation, bool, string) {
	if parentID := target.ParentID(); parentID != "" {
		parent, ok := w.scene.Get(parentID)
		if !ok {
			return relation{}, false, ""
		}
		if parent.ParentID() != "" {
			return relation{start: parent.ID, end: target.ID}, true, ""
		}
		rel, found := w.incoming(parent)
		return rel, found, w.borrowedText(parent)
	}

	for _, groupID := range target.GroupIDs {
		container, ok := w.container(groupID, target.ID)
		if !ok {
			continue
		}
		rel, found := w.incoming(container)
		return rel, found, w.borrowedText(container)
	}
	return relation{}, false, ""
}

// container returns the first member of groupID, other than self, that acts
// as a path container: a rectangle or a text starting with the separator.
func (w *walk) container(groupID, self string) (element.Element, bool) {
	for _, m := range w.scene.GroupMembers(groupID) {
		if m.ID == self {
			continue
		}
		if m.Type == element.TypeRectangle || (m.IsText() && IsContainerText(m.Text)) {
			return m, true
		}
	}
	return element.Element{}, false
}

func (w *walk) borrowedText(e element.Element) string {
	if e.Text == "" {
		return ""
	}
	return NormalizeSegment(e.Text)
}

func (w *walk) outgoingLabel(from, to element.Element) (string, bool) {
	if to.ID == "" {
		return "", false
	}
	c, ok := w.scene.OutgoingTo(from.ID, to.ID)
	if !ok {
		return "", false
	}
	label, ok := w.scene.LabelOf(c)
	if !ok {
		return "", false
	}
	return label.Text, true
}
