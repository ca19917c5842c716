package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/macrograph/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.hcl", `
log {
  level  = "debug"
  format = "json"
}

bridge {
  url                  = env.RUNTIME_URL
  namespace            = "/macros"
  insecure_skip_verify = true
  task_timeout         = "45s"
  connect_timeout      = 5
}

server {
  listen = "127.0.0.1:9000"
}

scene_store {
  driver = "postgres"
  dsn    = "postgres://${env.DB_USER}@localhost/scenes"
}

macro "shout" {
  runtime     = "deno"
  description = "Upper-cases its input."
  code        = <<-JS
    function shout(input) { return input.text.toUpperCase() }
  JS
}
`)

	l := NewLoaderWithEnv([]string{"RUNTIME_URL=http://localhost:3000", "DB_USER=galaxy"})
	m, err := l.Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, config.Log{Level: "debug", Format: "json"}, m.Log)
	assert.Equal(t, "http://localhost:3000", m.Bridge.URL)
	assert.Equal(t, "/macros", m.Bridge.Namespace)
	assert.True(t, m.Bridge.InsecureSkipVerify)
	assert.Equal(t, 45*time.Second, m.Bridge.TaskTimeout)
	assert.Equal(t, 5*time.Second, m.Bridge.ConnectTimeout)
	assert.Equal(t, "127.0.0.1:9000", m.Server.Listen)
	assert.Equal(t, config.StorePostgres, m.SceneStore.Driver)
	assert.Equal(t, "postgres://galaxy@localhost/scenes", m.SceneStore.DSN)

	require.Len(t, m.Macros, 1)
	assert.Equal(t, "shout", m.Macros[0].Name)
	assert.Equal(t, "Upper-cases its input.", m.Macros[0].Description)
	assert.Contains(t, m.Macros[0].Code, "function shout(input)")
}

func TestLoad_DefaultsAndMissingPaths(t *testing.T) {
	m, err := NewLoaderWithEnv(nil).Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), m)
}

func TestLoad_SingleBlock(t *testing.T) {
	p := writeFile(t, t.TempDir(), "server.hcl", `server { listen = ":9000" }`)

	m, err := NewLoaderWithEnv(nil).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, ":9000", m.Server.Listen)
	assert.Equal(t, config.Default().Log, m.Log)
}

func TestLoad_LaterFilesOverride(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.hcl", `
log { level = "warn" }
macro "job" { code = "function a() {}" }
macro "other" { code = "function o() {}" }
`)
	b := writeFile(t, dir, "b.hcl", `
log { format = "json" }
macro "job" {
  runtime = "python"
  code    = "def b():\n    return 1"
}
`)

	m, err := NewLoaderWithEnv(nil).Load(context.Background(), a, b)
	require.NoError(t, err)

	assert.Equal(t, "warn", m.Log.Level)
	assert.Equal(t, "json", m.Log.Format)
	require.Len(t, m.Macros, 2)
	assert.Equal(t, "job", m.Macros[0].Name)
	assert.Equal(t, "python", m.Macros[0].Runtime)
	assert.Equal(t, "other", m.Macros[1].Name)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "syntax", content: `log {`, wantErr: "failed to parse"},
		{name: "unknown attribute", content: `colour = "red"`, wantErr: `argument named "colour"`},
		{name: "unknown block", content: `widget {}`, wantErr: `type "widget"`},
		{name: "unknown attribute in block", content: `server { port = 1 }`, wantErr: `argument named "port"`},
		{name: "missing required", content: `macro "x" {}`, wantErr: "failed to decode"},
		{name: "bad duration", content: `bridge { task_timeout = "soon" }`, wantErr: "task_timeout"},
		{name: "wrong duration type", content: `bridge { task_timeout = true }`, wantErr: "task_timeout"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "bad.hcl", tc.content)
			_, err := NewLoaderWithEnv(nil).Load(context.Background(), p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestFindAllHCLFiles_SkipsOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", "")
	writeFile(t, dir, "notes.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "b.hcl", "")

	files, err := findAllHCLFiles([]string{dir, filepath.Join(dir, "a.hcl")})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
