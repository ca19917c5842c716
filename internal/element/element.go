package element

import "encoding/json"

// Type enumerates the kinds of elements found on the drawing surface.
type Type string

const (
	TypeText      Type = "text"
	TypeArrow     Type = "arrow"
	TypeLine      Type = "line"
	TypeFrame     Type = "frame"
	TypeRectangle Type = "rectangle"
	TypeEllipse   Type = "ellipse"
	TypeDiamond   Type = "diamond"
	TypeImage     Type = "image"
)

// Binding references the element a connector end is attached to.
type Binding struct {
	ElementID string `json:"elementId"`
}

// BoundRef is a relation record stored on an element, e.g. an arrow bound to
// a shape or a text label bound to an arrow.
type BoundRef struct {
	ID   string `json:"id"`
	Type Type   `json:"type"`
}

// CustomData is the free-form metadata users attach to an element. Only
// parentId means anything to the engine; other keys are carried untouched.
type CustomData map[string]any

// ParentID returns the parentId entry when it is a string.
func (d CustomData) ParentID() string {
	id, _ := d["parentId"].(string)
	return id
}

// Element is a single node of the graph.
type Element struct {
	ID            string     `json:"id"`
	Type          Type       `json:"type"`
	X             float64    `json:"x"`
	Y             float64    `json:"y"`
	Width         float64    `json:"width"`
	Height        float64    `json:"height"`
	Text          string     `json:"text,omitempty"`
	FontSize      float64    `json:"fontSize,omitempty"`
	GroupIDs      []string   `json:"groupIds"`
	FrameID       string     `json:"frameId,omitempty"`
	ContainerID   string     `json:"containerId,omitempty"`
	BoundElements []BoundRef `json:"boundElements,omitempty"`
	StartBinding  *Binding   `json:"startBinding,omitempty"`
	EndBinding    *Binding   `json:"endBinding,omitempty"`
	CustomData    CustomData `json:"customData,omitempty"`
	IsDeleted     bool       `json:"isDeleted,omitempty"`

	// raw is the document the element was decoded from, if any.
	raw json.RawMessage
}

// UnmarshalJSON decodes the fields the engine reads and keeps the complete
// document for Raw.
func (e *Element) UnmarshalJSON(data []byte) error {
	type plain Element
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Element(p)
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON encodes the modelled fields. An empty group list is written as
// [] so consumers can always treat groupIds as an array.
func (e Element) MarshalJSON() ([]byte, error) {
	type plain Element
	p := plain(e)
	if p.GroupIDs == nil {
		p.GroupIDs = []string{}
	}
	return json.Marshal(p)
}

// Raw returns a copy of the document e was decoded from, or nil for elements
// built in code.
func (e Element) Raw() json.RawMessage {
	if e.raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), e.raw...)
}

// IsConnector reports whether the element is a directed edge.
func (e Element) IsConnector() bool {
	return e.Type == TypeArrow || e.Type == TypeLine
}

// IsText reports whether the element is a text element.
func (e Element) IsText() bool {
	return e.Type == TypeText
}

// ParentID returns the explicit parent reference, or "" when there is none.
func (e Element) ParentID() string {
	return e.CustomData.ParentID()
}

// StartID returns the id the start binding points at, or "".
func (e Element) StartID() string {
	if e.StartBinding == nil {
		return ""
	}
	return e.StartBinding.ElementID
}

// EndID returns the id the end binding points at, or "".
func (e Element) EndID() string {
	if e.EndBinding == nil {
		return ""
	}
	return e.EndBinding.ElementID
}

// InGroup reports whether the element is a member of groupID.
func (e Element) InGroup(groupID string) bool {
	for _, g := range e.GroupIDs {
		if g == groupID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy that shares no slices, maps or pointers with e.
func (e Element) Clone() Element {
	c := e
	if e.GroupIDs != nil {
		c.GroupIDs = append([]string(nil), e.GroupIDs...)
	}
	if e.BoundElements != nil {
		c.BoundElements = append([]BoundRef(nil), e.BoundElements...)
	}
	if e.StartBinding != nil {
		b := *e.StartBinding
		c.StartBinding = &b
	}
	if e.EndBinding != nil {
		b := *e.EndBinding
		c.EndBinding = &b
	}
	if e.CustomData != nil {
		c.CustomData = cloneValue(map[string]any(e.CustomData)).(map[string]any)
	}
	if e.raw != nil {
		c.raw = append(json.RawMessage(nil), e.raw...)
	}
	return c
}

// cloneValue deep-copies a decoded JSON value.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[k] = cloneValue(x)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, x := range t {
			s[i] = cloneValue(x)
		}
		return s
	default:
		return v
	}
}
