package bridge

import (
	"context"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"github.com/google/uuid"
)

const eventBuffer = 256

// PTY is the local Bridge implementation. Each CreateProcess starts a
// shell on its own pseudo-terminal; one goroutine per process pumps
// output into the shared event stream and a second reports exit.
type PTY struct {
	shell string

	mu     sync.Mutex
	procs  map[Handle]*ptyProc
	events chan Event
	closed bool
}

type ptyProc struct {
	cmd  *exec.Cmd
	file *os.File

	writeMu sync.Mutex
	exit    sync.Once
}

// NewPTY creates a bridge that spawns the given shell. An empty shell
// falls back to the user's login shell from the system user database,
// then to a fixed list of common shells.
func NewPTY(shell string) *PTY {
	if shell == "" {
		shell = defaultShell()
	}
	return &PTY{
		shell:  shell,
		procs:  make(map[Handle]*ptyProc),
		events: make(chan Event, eventBuffer),
	}
}

// CreateProcess starts a new shell with the given terminal size.
func (b *PTY) CreateProcess(ctx context.Context, cols, rows int) (Handle, error) {
	cmd := exec.CommandContext(ctx, b.shell)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	file, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: clampDim(cols),
		Rows: clampDim(rows),
	})
	if err != nil {
		return "", &SpawnError{Shell: b.shell, Err: err}
	}

	h := Handle(uuid.NewString())
	p := &ptyProc{cmd: cmd, file: file}

	b.mu.Lock()
	b.procs[h] = p
	b.mu.Unlock()

	go b.readLoop(h, p)
	go b.waitLoop(h, p)

	return h, nil
}

// readLoop pumps process output into the event stream until the
// pseudo-terminal closes.
func (b *PTY) readLoop(h Handle, p *ptyProc) {
	buf := make([]byte, 4096)
	for {
		n, err := p.file.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			b.emit(Event{Kind: EventOutput, Handle: h, Data: data})
		}
		if err != nil {
			return
		}
	}
}

// waitLoop reaps the process and emits the exit event exactly once.
func (b *PTY) waitLoop(h Handle, p *ptyProc) {
	_ = p.cmd.Wait()
	p.exit.Do(func() {
		b.mu.Lock()
		delete(b.procs, h)
		b.mu.Unlock()
		_ = p.file.Close()
		b.emit(Event{Kind: EventExit, Handle: h})
	})
}

func (b *PTY) emit(e Event) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return
	}
	b.events <- e
}

// Write sends input to the process. Stale handles are ignored.
func (b *PTY) Write(h Handle, data []byte) {
	p := b.lookup(h)
	if p == nil {
		return
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_, _ = p.file.Write(data)
}

// Resize updates the process's terminal size. Stale handles are ignored.
func (b *PTY) Resize(h Handle, cols, rows int) {
	p := b.lookup(h)
	if p == nil {
		return
	}
	_ = pty.Setsize(p.file, &pty.Winsize{Cols: clampDim(cols), Rows: clampDim(rows)})
}

// Terminate kills the process. Idempotent: repeated calls and calls
// with stale handles are no-ops. The exit event is emitted by the
// wait goroutine once the process is reaped.
func (b *PTY) Terminate(h Handle) {
	p := b.lookup(h)
	if p == nil {
		return
	}
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

// Events returns the shared event stream.
func (b *PTY) Events() <-chan Event {
	return b.events
}

// Close terminates all remaining processes and stops accepting
// events. Used on shutdown; events already queued stay readable.
func (b *PTY) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	procs := make([]*ptyProc, 0, len(b.procs))
	for _, p := range b.procs {
		procs = append(procs, p)
	}
	b.mu.Unlock()

	for _, p := range procs {
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
	}
}

func (b *PTY) lookup(h Handle) *ptyProc {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.procs[h]
}

func clampDim(v int) uint16 {
	if v < 1 {
		return 1
	}
	if v > 0xffff {
		return 0xffff
	}
	return uint16(v)
}

// defaultShell resolves the user's shell from /etc/passwd, falling
// back to common locations. Environment lookups happen in the config
// layer, not here.
func defaultShell() string {
	if u, err := user.Current(); err == nil {
		if shell := shellFromPasswd(u.Username); shell != "" {
			if _, err := os.Stat(shell); err == nil {
				return shell
			}
		}
	}
	for _, shell := range []string{"/bin/bash", "/usr/bin/bash", "/bin/zsh", "/usr/bin/zsh", "/bin/sh"} {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

func shellFromPasswd(username string) string {
	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 7 && fields[0] == username {
			return fields[6]
		}
	}
	return ""
}
