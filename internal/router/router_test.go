package router

import (
	"context"
	"testing"
	"time"

	"github.com/termweave/termweave/internal/bridge"
)

func TestRouter_RoutesOutputToOwningPane(t *testing.T) {
	events := make(chan bridge.Event, 4)
	var gotTab, gotPane string
	var gotData []byte

	r := &Router{
		Lookup: func(h bridge.Handle) (string, string, bool) {
			if h == "h-1" {
				return "tab-1", "pane-1", true
			}
			return "", "", false
		},
		OnOutput: func(tabID, paneID string, data []byte) {
			gotTab, gotPane, gotData = tabID, paneID, data
		},
	}

	events <- bridge.Event{Kind: bridge.EventOutput, Handle: "h-1", Data: []byte("hello")}
	close(events)
	r.Run(context.Background(), events)

	if gotTab != "tab-1" || gotPane != "pane-1" || string(gotData) != "hello" {
		t.Errorf("got (%q, %q, %q), want (tab-1, pane-1, hello)", gotTab, gotPane, gotData)
	}
}

func TestRouter_DropsEventsForUnknownHandles(t *testing.T) {
	events := make(chan bridge.Event, 4)
	delivered := 0

	r := &Router{
		Lookup:   func(bridge.Handle) (string, string, bool) { return "", "", false },
		OnOutput: func(string, string, []byte) { delivered++ },
	}

	events <- bridge.Event{Kind: bridge.EventOutput, Handle: "h-gone", Data: []byte("x")}
	close(events)
	r.Run(context.Background(), events)

	if delivered != 0 {
		t.Errorf("delivered: got %d, want 0", delivered)
	}
}

func TestRouter_ExitEventsGoToExitHandler(t *testing.T) {
	events := make(chan bridge.Event, 4)
	var exited []bridge.Handle
	outputs := 0

	r := &Router{
		Lookup:   func(bridge.Handle) (string, string, bool) { return "tab-1", "pane-1", true },
		OnOutput: func(string, string, []byte) { outputs++ },
		OnExit: func(h bridge.Handle) bool {
			exited = append(exited, h)
			return true
		},
	}

	events <- bridge.Event{Kind: bridge.EventExit, Handle: "h-1"}
	close(events)
	r.Run(context.Background(), events)

	if len(exited) != 1 || exited[0] != "h-1" {
		t.Errorf("exits: got %v, want [h-1]", exited)
	}
	if outputs != 0 {
		t.Errorf("outputs: got %d, want 0", outputs)
	}
}

func TestRouter_StopsOnContextCancel(t *testing.T) {
	events := make(chan bridge.Event)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	r := &Router{Lookup: func(bridge.Handle) (string, string, bool) { return "", "", false }}
	go func() {
		r.Run(ctx, events)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("router did not stop on cancel")
	}
}
