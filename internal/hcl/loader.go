package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/macrograph/internal/config"
	"github.com/specialistvlad/macrograph/internal/ctxlog"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	environ func() []string
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a loader that evaluates env.<NAME> against the process
// environment.
func NewLoader() *Loader {
	return &Loader{environ: os.Environ}
}

// NewLoaderWithEnv creates a loader with a fixed environment, given as
// KEY=VALUE pairs.
func NewLoaderWithEnv(environ []string) *Loader {
	return &Loader{environ: func() []string { return environ }}
}

// Load parses every .hcl file under paths, in order, and merges the blocks
// over config.Default. Later files win for single blocks; macro blocks
// accumulate and a repeated name replaces the earlier declaration.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := config.Default()
	evalCtx := newEvalContext(l.environ())
	parser := hclparse.NewParser()
	macroIndex := make(map[string]int)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := merge(model, &root, macroIndex); err != nil {
			return nil, fmt.Errorf("in HCL file %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.", "files", len(files), "macros", len(model.Macros))
	return model, nil
}

func merge(m *config.Model, root *fileRoot, macroIndex map[string]int) error {
	if b := root.Log; b != nil {
		setString(&m.Log.Level, b.Level)
		setString(&m.Log.Format, b.Format)
	}
	if b := root.Bridge; b != nil {
		setString(&m.Bridge.URL, b.URL)
		setString(&m.Bridge.Namespace, b.Namespace)
		setString(&m.Bridge.ExecuteEvent, b.ExecuteEvent)
		setString(&m.Bridge.ResultEvent, b.ResultEvent)
		if b.InsecureSkipVerify != nil {
			m.Bridge.InsecureSkipVerify = *b.InsecureSkipVerify
		}
		if d, ok, err := durationValue("task_timeout", b.TaskTimeout); err != nil {
			return err
		} else if ok {
			m.Bridge.TaskTimeout = d
		}
		if d, ok, err := durationValue("connect_timeout", b.ConnectTimeout); err != nil {
			return err
		} else if ok {
			m.Bridge.ConnectTimeout = d
		}
	}
	if b := root.Server; b != nil {
		setString(&m.Server.Listen, b.Listen)
	}
	if b := root.SceneStore; b != nil {
		m.SceneStore = config.SceneStore{Driver: b.Driver, Dir: b.Dir, DSN: b.DSN}
	}
	for _, b := range root.Macros {
		decl := config.Macro{Name: b.Name, Runtime: b.Runtime, Code: b.Code, Description: b.Description}
		if i, ok := macroIndex[b.Name]; ok {
			m.Macros[i] = decl
			continue
		}
		macroIndex[b.Name] = len(m.Macros)
		m.Macros = append(m.Macros, decl)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return allFiles, nil
}
