// Package app contains the core application logic. It wires configuration,
// the session, the runtime transport, scene storage and the HTTP API
// together, decoupled from any specific entrypoint like a CLI.
package app
