package tui

import "strings"

// scrollbackLimit bounds the bytes kept per pane. Older output falls
// off the front at a line boundary.
const scrollbackLimit = 64 * 1024

// scrollback accumulates a pane's raw output and serves the tail as
// display lines.
type scrollback struct {
	data []byte
}

func (s *scrollback) Append(b []byte) {
	s.data = append(s.data, b...)
	if len(s.data) <= scrollbackLimit {
		return
	}
	cut := len(s.data) - scrollbackLimit
	if nl := indexByte(s.data[cut:], '\n'); nl >= 0 {
		cut += nl + 1
	}
	s.data = s.data[cut:]
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// Tail returns the last n display lines, each clamped to width runes.
// Escape sequences and carriage returns are stripped; the multiplexer
// renders plain text and leaves full terminal emulation to the shell's
// own redraws.
func (s *scrollback) Tail(n, width int) []string {
	if n <= 0 {
		return nil
	}
	text := stripControl(string(s.data))
	all := strings.Split(text, "\n")
	if len(all) > 0 && all[len(all)-1] == "" {
		all = all[:len(all)-1]
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	out := make([]string, len(all))
	for i, line := range all {
		r := []rune(line)
		if width > 0 && len(r) > width {
			r = r[len(r)-width:]
		}
		out[i] = string(r)
	}
	return out
}

// stripControl removes ANSI escape sequences and non-printing control
// bytes except newline.
func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inEscape := false
	inOSC := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inOSC:
			// OSC ends with BEL or ST (ESC \)
			if c == '\a' {
				inOSC = false
			} else if c == '\x1b' && i+1 < len(s) && s[i+1] == '\\' {
				inOSC = false
				i++
			}
		case inEscape:
			if c >= '@' && c <= '~' {
				inEscape = false
			}
		case c == '\x1b':
			if i+1 < len(s) && s[i+1] == ']' {
				inOSC = true
				i++
			} else {
				inEscape = true
			}
		case c == '\n':
			b.WriteByte(c)
		case c == '\r', c == '\a':
			// drop
		case c < 0x20 && c != '\t':
			// drop other control bytes
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
