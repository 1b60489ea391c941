package router

import (
	"context"
	"sync"
	"time"

	"github.com/termweave/termweave/internal/bridge"
	"github.com/termweave/termweave/internal/otel"
)

// Resizer debounces resize requests per process. During interactive
// window dragging the host terminal emits a burst of sizes; only the
// size that survives an idle window reaches the PTY, so each process
// sees a short ordered sequence ending in the final dimensions.
type Resizer struct {
	bridge bridge.Bridge
	delay  time.Duration

	mu      sync.Mutex
	pending map[bridge.Handle]*time.Timer
	closed  bool

	metrics *otel.Metrics
}

// NewResizer creates a resizer forwarding to b after delay of
// quiescence per handle.
func NewResizer(b bridge.Bridge, delay time.Duration, metrics *otel.Metrics) *Resizer {
	return &Resizer{
		bridge:  b,
		delay:   delay,
		pending: make(map[bridge.Handle]*time.Timer),
		metrics: metrics,
	}
}

// Request schedules a resize for the handle, replacing any resize
// still waiting for the same handle.
func (r *Resizer) Request(h bridge.Handle, cols, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	if t, ok := r.pending[h]; ok {
		t.Stop()
		r.metrics.RecordResizeCoalesced(context.Background())
	}
	r.pending[h] = time.AfterFunc(r.delay, func() {
		r.fire(h, cols, rows)
	})
}

func (r *Resizer) fire(h bridge.Handle, cols, rows int) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	delete(r.pending, h)
	r.mu.Unlock()

	r.bridge.Resize(h, cols, rows)
	r.metrics.RecordResizeForwarded(context.Background())
}

// Cancel drops any pending resize for the handle, for panes being
// closed before their timer fires.
func (r *Resizer) Cancel(h bridge.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.pending[h]; ok {
		t.Stop()
		delete(r.pending, h)
	}
}

// Close stops all pending timers. Requests after Close are ignored.
func (r *Resizer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for h, t := range r.pending {
		t.Stop()
		delete(r.pending, h)
	}
}
