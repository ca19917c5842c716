package testutil

import "github.com/specialistvlad/macrograph/internal/element"

// Text builds a text element.
func Text(id, text string, groups ...string) element.Element {
	return element.Element{ID: id, Type: element.TypeText, Text: text, GroupIDs: groups}
}

// Rect builds a rectangle element.
func Rect(id string, groups ...string) element.Element {
	return element.Element{ID: id, Type: element.TypeRectangle, GroupIDs: groups}
}

// Arrow builds a connector from start to end. Empty ids leave that end unbound.
func Arrow(id, start, end string) element.Element {
	e := element.Element{ID: id, Type: element.TypeArrow}
	if start != "" {
		e.StartBinding = &element.Binding{ElementID: start}
	}
	if end != "" {
		e.EndBinding = &element.Binding{ElementID: end}
	}
	return e
}

// Labelled attaches a bound text label to a connector.
func Labelled(connector element.Element, labelID string) element.Element {
	connector.BoundElements = append(connector.BoundElements, element.BoundRef{ID: labelID, Type: element.TypeText})
	return connector
}

// WithParent sets the explicit parent reference of e.
func WithParent(e element.Element, parentID string) element.Element {
	e.CustomData = element.CustomData{"parentId": parentID}
	return e
}

// Scene builds a snapshot from elems.
func Scene(elems ...element.Element) *element.Snapshot {
	return element.NewSnapshot(elems)
}
