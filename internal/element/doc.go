// Package element defines the read-only view of the editable graph that the
// macro engine works on: elements, connector bindings, group memberships and
// immutable scene snapshots decoded from Excalidraw scene JSON.
//
// The engine never creates or mutates elements. Everything it sees arrives as
// a Snapshot, a value-level copy taken when the caller hands the scene over,
// so later edits on the drawing surface cannot leak into a running macro.
package element
