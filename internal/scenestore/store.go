// Package scenestore keeps named scene documents so macros can be executed
// against a scene by id. A document is either an Excalidraw scene or a bare
// JSON array of elements; it is validated on save and decoded into an
// immutable snapshot on load.
package scenestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/specialistvlad/macrograph/internal/element"
)

var (
	// ErrSceneNotFound is returned by Load for unknown ids.
	ErrSceneNotFound = errors.New("scenestore: scene not found")
	// ErrInvalidID is returned for ids outside [A-Za-z0-9_.-]{1,128}.
	ErrInvalidID = errors.New("scenestore: invalid scene id")
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

// Store persists scene documents.
type Store interface {
	Load(ctx context.Context, id string) (*element.Snapshot, error)
	Save(ctx context.Context, id string, doc []byte) error
}

// ValidateID checks that id is safe to use as a key or file name.
func ValidateID(id string) error {
	if !validID.MatchString(id) || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Decode turns a stored document into a snapshot.
func Decode(doc []byte) (*element.Snapshot, error) {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return element.DecodeElements(trimmed)
	}
	return element.DecodeScene(bytes.NewReader(trimmed))
}
