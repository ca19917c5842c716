// Package bridge forwards code payloads to an external, out-of-process
// execution environment and correlates its asynchronous answers back to the
// callers waiting on them.
//
// A Bridge owns the task counter and the callback table of one session.
// Submit allocates a task id, registers a one-shot callback and hands the
// envelope to the attached Environment. The runtime answers later through
// DeliverResult, the only inbound entry point, which routes the outcome to the
// matching Pending and forgets the id.
//
// Task ids come from a single monotonic counter and are never reused for the
// lifetime of the Bridge.
package bridge
