package element

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidScene is returned when scene JSON cannot be decoded.
var ErrInvalidScene = errors.New("element: invalid scene")

// Scene mirrors the Excalidraw scene file layout. Only the parts the engine
// reads are decoded.
type Scene struct {
	Type     string    `json:"type"`
	Version  int       `json:"version"`
	Source   string    `json:"source,omitempty"`
	Elements []Element `json:"elements"`
}

// DecodeScene reads an Excalidraw scene document and returns its snapshot.
func DecodeScene(r io.Reader) (*Snapshot, error) {
	var scene Scene
	if err := json.NewDecoder(r).Decode(&scene); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	if scene.Type != "" && scene.Type != "excalidraw" {
		return nil, fmt.Errorf("%w: unexpected document type %q", ErrInvalidScene, scene.Type)
	}
	return NewSnapshot(scene.Elements), nil
}

// DecodeElements decodes a bare JSON array of elements into a snapshot.
func DecodeElements(data []byte) (*Snapshot, error) {
	var elems []Element
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	return NewSnapshot(elems), nil
}

// Marshal serializes a single element into the transport-neutral text form
// handed to the external runtime. Elements decoded from a scene are written
// back exactly as they were received.
func Marshal(e Element) (string, error) {
	if len(e.raw) > 0 {
		return string(e.raw), nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("element: marshal %q: %w", e.ID, err)
	}
	return string(b), nil
}
