package config

import "time"

// Model is the unified representation of the application configuration.
type Model struct {
	Log        Log
	Bridge     Bridge
	Server     Server
	SceneStore SceneStore
	Macros     []Macro
}

// Log selects the slog handler.
type Log struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// Bridge configures the execution runtime connection. An empty URL leaves
// the bridge detached; macros that need the runtime then fail fast.
type Bridge struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ExecuteEvent       string
	ResultEvent        string
	TaskTimeout        time.Duration // zero waits indefinitely
	ConnectTimeout     time.Duration
}

// Server configures the HTTP API.
type Server struct {
	Listen string
}

// Scene store drivers.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// SceneStore selects where named scenes are kept.
type SceneStore struct {
	Driver string
	Dir    string // file driver
	DSN    string // postgres driver
}

// Macro is a script macro declared in configuration.
type Macro struct {
	Name        string
	Runtime     string
	Code        string
	Description string
}

// Default returns the configuration used when no file sets a value.
func Default() *Model {
	return &Model{
		Log:        Log{Level: "info", Format: "text"},
		Bridge:     Bridge{ConnectTimeout: 15 * time.Second},
		Server:     Server{Listen: ":8080"},
		SceneStore: SceneStore{Driver: StoreMemory},
	}
}
