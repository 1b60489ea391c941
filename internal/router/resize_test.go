package router

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/termweave/termweave/internal/bridge"
)

type resizeCall struct {
	h          bridge.Handle
	cols, rows int
}

// fakeBridge records resize calls and ignores everything else.
type fakeBridge struct {
	mu      sync.Mutex
	resizes []resizeCall
}

func (f *fakeBridge) CreateProcess(context.Context, int, int) (bridge.Handle, error) {
	return "", nil
}
func (f *fakeBridge) Write(bridge.Handle, []byte) {}
func (f *fakeBridge) Terminate(bridge.Handle)     {}
func (f *fakeBridge) Events() <-chan bridge.Event { return nil }
func (f *fakeBridge) Resize(h bridge.Handle, cols, rows int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resizes = append(f.resizes, resizeCall{h: h, cols: cols, rows: rows})
}

func (f *fakeBridge) calls() []resizeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]resizeCall, len(f.resizes))
	copy(out, f.resizes)
	return out
}

func waitForResizes(t *testing.T, fb *fakeBridge, want int) []resizeCall {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if calls := fb.calls(); len(calls) >= want {
			return calls
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d resizes, got %d", want, len(fb.calls()))
	return nil
}

func TestResizer_BurstCoalescesToLastSize(t *testing.T) {
	fb := &fakeBridge{}
	r := NewResizer(fb, 30*time.Millisecond, nil)
	defer r.Close()

	r.Request("h-1", 80, 24)
	r.Request("h-1", 100, 30)
	r.Request("h-1", 120, 40)

	calls := waitForResizes(t, fb, 1)
	time.Sleep(60 * time.Millisecond)
	calls = fb.calls()

	if len(calls) != 1 {
		t.Fatalf("resizes: got %d, want 1", len(calls))
	}
	if calls[0] != (resizeCall{h: "h-1", cols: 120, rows: 40}) {
		t.Errorf("resize: got %+v, want final 120x40", calls[0])
	}
}

func TestResizer_HandlesDebounceIndependently(t *testing.T) {
	fb := &fakeBridge{}
	r := NewResizer(fb, 20*time.Millisecond, nil)
	defer r.Close()

	r.Request("h-1", 80, 24)
	r.Request("h-2", 40, 12)

	calls := waitForResizes(t, fb, 2)
	seen := map[bridge.Handle]resizeCall{}
	for _, c := range calls {
		seen[c.h] = c
	}
	if seen["h-1"].cols != 80 || seen["h-2"].cols != 40 {
		t.Errorf("calls: got %v, want one resize per handle", calls)
	}
}

func TestResizer_CancelDropsPendingResize(t *testing.T) {
	fb := &fakeBridge{}
	r := NewResizer(fb, 30*time.Millisecond, nil)
	defer r.Close()

	r.Request("h-1", 80, 24)
	r.Cancel("h-1")

	time.Sleep(80 * time.Millisecond)
	if calls := fb.calls(); len(calls) != 0 {
		t.Errorf("resizes after cancel: got %v, want none", calls)
	}
}

func TestResizer_CloseStopsEverything(t *testing.T) {
	fb := &fakeBridge{}
	r := NewResizer(fb, 30*time.Millisecond, nil)

	r.Request("h-1", 80, 24)
	r.Close()
	r.Request("h-2", 40, 12)

	time.Sleep(80 * time.Millisecond)
	if calls := fb.calls(); len(calls) != 0 {
		t.Errorf("resizes after close: got %v, want none", calls)
	}
}
