package state

import (
	"context"
	"sync"
	"time"
)

// Holder serializes access to one State for callers on many goroutines
// (HTTP handlers, pollers). Update runs under the lock; network effects run
// outside it, so a slow request never blocks readers.
type Holder struct {
	ctx    context.Context
	runner *Runner

	mu       sync.Mutex
	st       State
	onChange []func()
}

// NewHolder starts from st. Delayed effects are cancelled with ctx.
func NewHolder(ctx context.Context, runner *Runner, st State) *Holder {
	return &Holder{ctx: ctx, runner: runner, st: st}
}

// OnChange registers fn to run after each completed dispatch.
func (h *Holder) OnChange(fn func()) {
	h.mu.Lock()
	h.onChange = append(h.onChange, fn)
	h.mu.Unlock()
}

func (h *Holder) Snapshot() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.st
}

// TakeNotices drains queued notices.
func (h *Holder) TakeNotices() []Notice {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Notice
	h.st, out = h.st.TakeNotices()
	return out
}

// Dispatch applies ev and runs the resulting effects, returning the state
// once no immediate effects remain.
func (h *Holder) Dispatch(ctx context.Context, ev Event) State {
	st, _ := h.DispatchTrace(ctx, ev)
	return st
}

// DispatchTrace is Dispatch that also returns the server responses ev led
// to, in order. Callers read their own outcome from them rather than from
// the shared state, which other dispatches may have changed meanwhile.
func (h *Holder) DispatchTrace(ctx context.Context, ev Event) (State, []Event) {
	var results []Event
	queue := []Event{ev}
	for len(queue) > 0 {
		h.mu.Lock()
		next, effs := Update(h.st, queue[0])
		h.st = next
		h.mu.Unlock()
		queue = queue[1:]

		for _, eff := range effs {
			if d := Delay(eff); d > 0 {
				h.later(Immediate(eff), d)
				continue
			}
			res := h.runner.Run(ctx, eff)
			results = append(results, res)
			queue = append(queue, res)
		}
	}
	h.changed()
	return h.Snapshot(), results
}

func (h *Holder) later(eff Effect, d time.Duration) {
	go func() {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-h.ctx.Done():
			return
		case <-t.C:
		}
		h.Dispatch(h.ctx, h.runner.Run(h.ctx, eff))
	}()
}

func (h *Holder) changed() {
	h.mu.Lock()
	fns := append([]func(){}, h.onChange...)
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
