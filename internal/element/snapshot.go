package element

// Snapshot is an immutable, value-level copy of a scene together with the
// indexes the path resolver needs. Element order is the scene order, which
// decides ties whenever several elements qualify for the same relation.
//
// A Snapshot never hands out references into its own storage; every accessor
// returns copies, so it is safe to share between goroutines.
type Snapshot struct {
	elements []Element
	byID     map[string]int
	incoming map[string][]int // end element id -> connector positions
	outgoing map[string][]int // start element id -> connector positions
	groups   map[string][]int // group id -> member positions
	labels   map[string]int   // container id -> text label position
}

// NewSnapshot copies elems into a new Snapshot. Deleted elements are dropped.
// When two elements share an id the first one wins.
func NewSnapshot(elems []Element) *Snapshot {
	s := &Snapshot{
		elements: make([]Element, 0, len(elems)),
		byID:     make(map[string]int, len(elems)),
		incoming: make(map[string][]int),
		outgoing: make(map[string][]int),
		groups:   make(map[string][]int),
		labels:   make(map[string]int),
	}

	for _, e := range elems {
		if e.IsDeleted {
			continue
		}
		if _, dup := s.byID[e.ID]; dup {
			continue
		}
		pos := len(s.elements)
		s.elements = append(s.elements, e.Clone())
		s.byID[e.ID] = pos

		if e.IsConnector() {
			if end := e.EndID(); end != "" {
				s.incoming[end] = append(s.incoming[end], pos)
			}
			if start := e.StartID(); start != "" {
				s.outgoing[start] = append(s.outgoing[start], pos)
			}
		}
		for _, g := range e.GroupIDs {
			s.groups[g] = append(s.groups[g], pos)
		}
		if e.IsText() && e.ContainerID != "" {
			if _, taken := s.labels[e.ContainerID]; !taken {
				s.labels[e.ContainerID] = pos
			}
		}
	}
	return s
}

// Len returns the number of live elements.
func (s *Snapshot) Len() int {
	return len(s.elements)
}

// Get returns a copy of the element with the given id.
func (s *Snapshot) Get(id string) (Element, bool) {
	pos, ok := s.byID[id]
	if !ok {
		return Element{}, false
	}
	return s.elements[pos].Clone(), true
}

// All returns copies of all elements in scene order.
func (s *Snapshot) All() []Element {
	out := make([]Element, len(s.elements))
	for i, e := range s.elements {
		out[i] = e.Clone()
	}
	return out
}

// IncomingTo returns the first connector, in scene order, whose end binding
// references id.
func (s *Snapshot) IncomingTo(id string) (Element, bool) {
	return s.first(s.incoming[id])
}

// OutgoingTo returns the first connector that starts at from and ends at to.
func (s *Snapshot) OutgoingTo(from, to string) (Element, bool) {
	for _, pos := range s.outgoing[from] {
		if s.elements[pos].EndID() == to {
			return s.elements[pos].Clone(), true
		}
	}
	return Element{}, false
}

// GroupMembers returns copies of all members of groupID in scene order.
func (s *Snapshot) GroupMembers(groupID string) []Element {
	positions := s.groups[groupID]
	out := make([]Element, 0, len(positions))
	for _, pos := range positions {
		out = append(out, s.elements[pos].Clone())
	}
	return out
}

// LabelOf returns the text label bound to the given element. A text entry in
// the element's bound relations wins; otherwise a text element naming it as
// its container is used.
func (s *Snapshot) LabelOf(e Element) (Element, bool) {
	for _, ref := range e.BoundElements {
		if ref.Type != TypeText {
			continue
		}
		if label, ok := s.Get(ref.ID); ok && label.IsText() {
			return label, true
		}
	}
	if pos, ok := s.labels[e.ID]; ok {
		return s.elements[pos].Clone(), true
	}
	return Element{}, false
}

func (s *Snapshot) first(positions []int) (Element, bool) {
	if len(positions) == 0 {
		return Element{}, false
	}
	return s.elements[positions[0]].Clone(), true
}
