package scenestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/macrograph/internal/element"
)

// Extension is appended to scene ids to form file names.
const Extension = ".excalidraw"

// File stores each scene as <dir>/<id>.excalidraw.
type File struct {
	dir string
}

// NewFile creates a file store rooted at dir, creating dir if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("scenestore: create %s: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(id string) string {
	return filepath.Join(f.dir, id+Extension)
}

// Load implements Store.
func (f *File) Load(_ context.Context, id string) (*element.Snapshot, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	doc, err := os.ReadFile(f.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrSceneNotFound, id)
		}
		return nil, fmt.Errorf("scenestore: read %q: %w", id, err)
	}
	return Decode(doc)
}

// Save implements Store. The document is written to a temporary file and
// renamed into place.
func (f *File) Save(_ context.Context, id string, doc []byte) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if _, err := Decode(doc); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("scenestore: save %q: %w", id, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("scenestore: save %q: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("scenestore: save %q: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), f.path(id)); err != nil {
		return fmt.Errorf("scenestore: save %q: %w", id, err)
	}
	return nil
}
