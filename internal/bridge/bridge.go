// Package bridge defines the contract between the session core and
// the host's pseudo-terminal processes, and provides the local
// implementation backed by creack/pty.
//
// The core never interprets the byte streams flowing through a
// bridge. It only routes them: each pane is bound to at most one
// process handle, and events arriving on the bridge's stream are
// resolved back to panes by handle.
package bridge

import (
	"context"
	"fmt"
)

// Handle identifies one running process for the lifetime of a bridge.
// Handles are opaque and never survive a restart; persisted state
// must not contain them.
type Handle string

// EventKind discriminates bridge events.
type EventKind int

const (
	// EventOutput carries bytes the process wrote to its terminal.
	EventOutput EventKind = iota
	// EventExit signals that the process terminated. Delivered at
	// most once per handle, after its final output.
	EventExit
)

// Event is one notification from a bridge. Output events for a given
// handle are delivered in write order; there is no ordering guarantee
// across handles.
type Event struct {
	Kind   EventKind
	Handle Handle
	Data   []byte
}

// Bridge spawns and talks to pseudo-terminal processes.
//
// Write, Resize, and Terminate are asynchronous requests that no-op
// on stale handles; Terminate is idempotent. None of them block on
// the process.
type Bridge interface {
	// CreateProcess starts a shell process with the given initial
	// terminal size and returns its handle. Fails with *SpawnError
	// when the host cannot start a shell.
	CreateProcess(ctx context.Context, cols, rows int) (Handle, error)

	// Write sends input bytes to the process.
	Write(h Handle, data []byte)

	// Resize updates the process's terminal size.
	Resize(h Handle, cols, rows int)

	// Terminate requests process termination. Fire and forget: exit
	// is reported later through the event stream.
	Terminate(h Handle)

	// Events returns the stream of output and exit notifications.
	Events() <-chan Event
}

// SpawnError reports a failure to start a shell process.
type SpawnError struct {
	Shell string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Shell, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
