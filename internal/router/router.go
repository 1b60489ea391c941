// Package router moves bridge events to panes and coalesces resize
// bursts before they reach the PTYs.
package router

import (
	"context"

	"github.com/termweave/termweave/internal/bridge"
	"github.com/termweave/termweave/internal/otel"
)

// Router consumes the bridge's event stream and dispatches each event
// to the pane owning its handle. Events whose handle resolves to no
// pane, which happens when output races a pane close, are dropped.
type Router struct {
	// Lookup resolves a handle to its owning tab and pane.
	Lookup func(h bridge.Handle) (tabID, paneID string, ok bool)
	// OnOutput delivers process output for a pane.
	OnOutput func(tabID, paneID string, data []byte)
	// OnExit records a process exit. It reports false when no pane
	// owned the handle anymore.
	OnExit func(h bridge.Handle) bool

	Metrics *otel.Metrics
}

// Run reads events until the stream closes or ctx is cancelled. It is
// meant to run on its own goroutine; callbacks are invoked serially
// from that goroutine in event order.
func (r *Router) Run(ctx context.Context, events <-chan bridge.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.dispatch(ctx, ev)
		}
	}
}

func (r *Router) dispatch(ctx context.Context, ev bridge.Event) {
	switch ev.Kind {
	case bridge.EventOutput:
		tabID, paneID, ok := r.Lookup(ev.Handle)
		if !ok {
			r.Metrics.RecordDropped(ctx)
			return
		}
		r.Metrics.RecordOutput(ctx, paneID, len(ev.Data))
		if r.OnOutput != nil {
			r.OnOutput(tabID, paneID, ev.Data)
		}
	case bridge.EventExit:
		if r.OnExit == nil || !r.OnExit(ev.Handle) {
			r.Metrics.RecordDropped(ctx)
		}
	}
}
