package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/macrograph/internal/bridge"
)

// FakeRuntime is an in-memory bridge.Environment. It records every envelope
// and, when Reply is set, answers each one asynchronously through Deliver.
type FakeRuntime struct {
	mu      sync.Mutex
	down    bool
	sendErr error
	sent    []bridge.Envelope

	// Reply computes the outcome for an envelope. Returning false leaves the
	// task pending.
	Reply func(bridge.Envelope) (bridge.Outcome, bool)
	// Deliver is called with Reply's outcome, usually Bridge.DeliverResult.
	Deliver func(bridge.TaskID, bridge.Outcome) bool
}

// NewEchoRuntime returns a runtime that answers every task with its argument,
// or with its code when the argument is empty.
func NewEchoRuntime(b *bridge.Bridge) *FakeRuntime {
	return &FakeRuntime{
		Reply: func(env bridge.Envelope) (bridge.Outcome, bool) {
			data := env.Argument
			if data == "" {
				data = env.Code
			}
			return bridge.Outcome{Success: true, Data: data}, true
		},
		Deliver: b.DeliverResult,
	}
}

// SetDown toggles availability.
func (r *FakeRuntime) SetDown(down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.down = down
}

// FailSends makes every Send return err.
func (r *FakeRuntime) FailSends(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sendErr = err
}

// Available implements bridge.Environment.
func (r *FakeRuntime) Available() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.down
}

// Send implements bridge.Environment.
func (r *FakeRuntime) Send(_ context.Context, env bridge.Envelope) error {
	r.mu.Lock()
	if r.sendErr != nil {
		err := r.sendErr
		r.mu.Unlock()
		return err
	}
	r.sent = append(r.sent, env)
	reply, deliver := r.Reply, r.Deliver
	r.mu.Unlock()

	if reply != nil && deliver != nil {
		if outcome, ok := reply(env); ok {
			go deliver(env.TaskID, outcome)
		}
	}
	return nil
}

// Sent returns a copy of every envelope received so far.
func (r *FakeRuntime) Sent() []bridge.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bridge.Envelope(nil), r.sent...)
}

// Last returns the most recent envelope.
func (r *FakeRuntime) Last() (bridge.Envelope, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return bridge.Envelope{}, false
	}
	return r.sent[len(r.sent)-1], true
}
