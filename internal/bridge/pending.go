package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Pending is the future result of a submitted task.
type Pending struct {
	id     TaskID
	bridge *Bridge
	done   chan struct{}

	mu    sync.Mutex
	timer *time.Timer
	once  sync.Once
	data  string
	err   error
}

func newPending(id TaskID, b *Bridge) *Pending {
	return &Pending{id: id, bridge: b, done: make(chan struct{})}
}

// ID returns the task id.
func (p *Pending) ID() TaskID {
	return p.id
}

// Done is closed once the task has completed in any way.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the task completes or ctx is done. Cancelling ctx abandons
// the task: its callback entry is removed and a late delivery is ignored.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		if p.bridge.abandon(p.id) {
			p.finish("", ctx.Err())
		}
		// Either we just finished it, or a delivery took the entry first and
		// is about to finish it.
		<-p.done
	}
	return p.data, p.err
}

func (p *Pending) resolve(o Outcome) {
	if o.Success {
		p.finish(o.Data, nil)
		return
	}
	p.finish("", &RemoteError{TaskID: p.id, Message: o.Error})
}

func (p *Pending) startTimer(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timer = time.AfterFunc(d, func() {
		if !p.bridge.abandon(p.id) {
			return
		}
		p.bridge.logger.Warn("Task deadline expired.", "task_id", p.id.String(), "timeout", d.String())
		p.finish("", fmt.Errorf("%w: task %s after %s", ErrTimeout, p.id, d))
	})
}

func (p *Pending) finish(data string, err error) {
	p.once.Do(func() {
		p.mu.Lock()
		if p.timer != nil {
			p.timer.Stop()
		}
		p.mu.Unlock()

		p.data, p.err = data, err
		close(p.done)
	})
}
