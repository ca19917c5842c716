package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/macrograph/internal/callback"
)

// Options configures a Bridge.
type Options struct {
	// TaskTimeout bounds how long a task may wait for its delivery. Zero
	// leaves tasks pending until delivered or abandoned by their caller.
	TaskTimeout time.Duration
	Logger      *slog.Logger
}

// Bridge correlates submitted tasks with the runtime's deliveries.
type Bridge struct {
	mu  sync.RWMutex
	env Environment

	next      atomic.Uint64
	callbacks *callback.Table[TaskID, Outcome]
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a Bridge with no environment attached.
func New(opts Options) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		callbacks: callback.New[TaskID, Outcome](),
		timeout:   opts.TaskTimeout,
		logger:    logger.With("component", "bridge"),
	}
}

// Attach sets the environment tasks are forwarded to. Passing nil detaches it.
func (b *Bridge) Attach(env Environment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.env = env
}

func (b *Bridge) environment() (Environment, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.env == nil || !b.env.Available() {
		return nil, false
	}
	return b.env, true
}

// Submit forwards req to the runtime and returns the pending result. It fails
// with ErrEnvironmentUnavailable, without allocating a task id, when there is
// no usable runtime.
func (b *Bridge) Submit(ctx context.Context, req Request) (*Pending, error) {
	env, ok := b.environment()
	if !ok {
		return nil, ErrEnvironmentUnavailable
	}

	input, err := serializeInput(req.Input)
	if err != nil {
		return nil, err
	}

	id := TaskID(b.next.Add(1))
	p := newPending(id, b)
	if err := b.callbacks.Register(id, p.resolve); err != nil {
		return nil, fmt.Errorf("bridge: register task %s: %w", id, err)
	}
	if b.timeout > 0 {
		p.startTimer(b.timeout)
	}

	logger := b.logger.With("task_id", id.String())
	logger.Debug("Submitting task to execution environment.", "runtime", req.Runtime, "code_bytes", len(req.Code))

	envelope := Envelope{
		TaskID:   id,
		Code:     req.Code,
		Input:    input,
		Argument: req.Argument,
		Runtime:  req.Runtime,
	}
	if err := env.Send(ctx, envelope); err != nil {
		b.callbacks.Remove(id)
		p.finish("", err)
		logger.Error("Failed to forward task.", "error", err)
		return nil, fmt.Errorf("bridge: send task %s: %w", id, err)
	}
	return p, nil
}

// DeliverResult is the single entry point the runtime calls. It completes the
// task's pending result and forgets the id. Deliveries for unknown or already
// consumed ids are logged and ignored; the return value reports whether the
// delivery was routed.
func (b *Bridge) DeliverResult(id TaskID, outcome Outcome) bool {
	if !b.callbacks.Invoke(id, outcome) {
		b.logger.Warn("Discarding delivery for unknown task.", "task_id", id.String(), "success", outcome.Success)
		return false
	}
	b.logger.Debug("Delivery routed.", "task_id", id.String(), "success", outcome.Success)
	return true
}

// DeliverRaw parses a wire task id and delivers outcome for it.
func (b *Bridge) DeliverRaw(rawID any, outcome Outcome) (bool, error) {
	id, err := ParseTaskID(rawID)
	if err != nil {
		b.logger.Warn("Discarding delivery with malformed task id.", "task_id", fmt.Sprint(rawID), "error", err)
		return false, err
	}
	return b.DeliverResult(id, outcome), nil
}

// Outstanding returns the number of tasks still waiting for a delivery.
func (b *Bridge) Outstanding() int {
	return b.callbacks.Len()
}

// abandon drops a task on behalf of its caller or its deadline. It reports
// whether the task was still pending.
func (b *Bridge) abandon(id TaskID) bool {
	return b.callbacks.Remove(id)
}
