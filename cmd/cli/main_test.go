package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/macrograph/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_ConfigError(t *testing.T) {
	t.Parallel()

	invalidHCL := `
		log {
			level = "debug"
		// Missing closing brace here
	`
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600))

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"-list", filePath})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load configuration")
	require.Contains(t, err.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ExecutesMacro(t *testing.T) {
	t.Parallel()

	scene := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(scene, []byte(`[
		{"id":"a","type":"text","text":"~/notes"},
		{"id":"c","type":"arrow","startBinding":{"elementId":"a"},"endBinding":{"elementId":"b"}},
		{"id":"b","type":"text","text":"/---today.md"}
	]`), 0o600))

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-scene", scene, "-macro", "path", "-input", "b"})

	require.NoError(t, err)
	require.Equal(t, "~/notes/today.md\n", out.String())
}
