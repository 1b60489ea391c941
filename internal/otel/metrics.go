package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "termweave"

// Metrics holds all OTEL metric instruments for termweave.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// Session lifecycle counters
	TabsOpened  metric.Int64Counter
	TabsClosed  metric.Int64Counter
	PanesOpened metric.Int64Counter
	PanesClosed metric.Int64Counter

	// Process lifecycle counters
	ProcessesSpawned metric.Int64Counter
	SpawnFailures    metric.Int64Counter
	ProcessExits     metric.Int64Counter

	// Routing counters
	OutputBytes      metric.Int64Counter
	DroppedEvents    metric.Int64Counter
	ResizesForwarded metric.Int64Counter
	ResizesCoalesced metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TabsOpened, err = meter.Int64Counter("session.tabs.opened",
		metric.WithDescription("Total tabs created"))
	if err != nil {
		return nil, err
	}

	m.TabsClosed, err = meter.Int64Counter("session.tabs.closed",
		metric.WithDescription("Total tabs closed"))
	if err != nil {
		return nil, err
	}

	m.PanesOpened, err = meter.Int64Counter("session.panes.opened",
		metric.WithDescription("Total panes created, including the initial pane of every tab"))
	if err != nil {
		return nil, err
	}

	m.PanesClosed, err = meter.Int64Counter("session.panes.closed",
		metric.WithDescription("Total panes closed, including panes removed by closing a tab"))
	if err != nil {
		return nil, err
	}

	m.ProcessesSpawned, err = meter.Int64Counter("process.spawned",
		metric.WithDescription("Total shell processes started by the PTY bridge"))
	if err != nil {
		return nil, err
	}

	m.SpawnFailures, err = meter.Int64Counter("process.spawn_failures",
		metric.WithDescription("Total shell spawn attempts that failed"))
	if err != nil {
		return nil, err
	}

	m.ProcessExits, err = meter.Int64Counter("process.exits",
		metric.WithDescription("Total process exit events observed"))
	if err != nil {
		return nil, err
	}

	m.OutputBytes, err = meter.Int64Counter("routing.output_bytes",
		metric.WithDescription("Total process output bytes routed to panes"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}

	m.DroppedEvents, err = meter.Int64Counter("routing.dropped_events",
		metric.WithDescription("Total bridge events dropped because no pane owned the handle"))
	if err != nil {
		return nil, err
	}

	m.ResizesForwarded, err = meter.Int64Counter("routing.resizes.forwarded",
		metric.WithDescription("Total resize requests forwarded to the bridge after debouncing"))
	if err != nil {
		return nil, err
	}

	m.ResizesCoalesced, err = meter.Int64Counter("routing.resizes.coalesced",
		metric.WithDescription("Total resize requests superseded within the debounce window"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordTabOpened records a tab creation along with its initial pane.
func (m *Metrics) RecordTabOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.TabsOpened.Add(ctx, 1)
	m.PanesOpened.Add(ctx, 1)
}

// RecordTabClosed records a tab close and the panes removed with it.
func (m *Metrics) RecordTabClosed(ctx context.Context, panes int) {
	if m == nil {
		return
	}
	m.TabsClosed.Add(ctx, 1)
	m.PanesClosed.Add(ctx, int64(panes))
}

// RecordPaneOpened records a pane created by a split.
func (m *Metrics) RecordPaneOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.PanesOpened.Add(ctx, 1)
}

// RecordPaneClosed records an individually closed pane.
func (m *Metrics) RecordPaneClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.PanesClosed.Add(ctx, 1)
}

// RecordSpawn records the outcome of a process spawn attempt.
func (m *Metrics) RecordSpawn(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.ProcessesSpawned.Add(ctx, 1)
	} else {
		m.SpawnFailures.Add(ctx, 1)
	}
}

// RecordExit records a process exit event.
func (m *Metrics) RecordExit(ctx context.Context) {
	if m == nil {
		return
	}
	m.ProcessExits.Add(ctx, 1)
}

// RecordOutput records routed output bytes for a pane.
func (m *Metrics) RecordOutput(ctx context.Context, paneID string, n int) {
	if m == nil {
		return
	}
	m.OutputBytes.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("pane.id", paneID),
	))
}

// RecordDropped records a bridge event with no owning pane.
func (m *Metrics) RecordDropped(ctx context.Context) {
	if m == nil {
		return
	}
	m.DroppedEvents.Add(ctx, 1)
}

// RecordResizeForwarded records a resize sent to the bridge.
func (m *Metrics) RecordResizeForwarded(ctx context.Context) {
	if m == nil {
		return
	}
	m.ResizesForwarded.Add(ctx, 1)
}

// RecordResizeCoalesced records a resize superseded before sending.
func (m *Metrics) RecordResizeCoalesced(ctx context.Context) {
	if m == nil {
		return
	}
	m.ResizesCoalesced.Add(ctx, 1)
}
