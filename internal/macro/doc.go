// Package macro provides the registry that maps macro names to their Go
// handlers and dispatches invocations to them.
//
// Names are case-insensitive: "Fetch", "fetch" and " FETCH " address the same
// entry. Registering a name again replaces the previous handler. Handlers are
// only ever added through Register, either directly or by a Module; user
// authored logic is never compiled into a handler in-process; it is forwarded
// to the external runtime by the handlers in the script module instead.
package macro
