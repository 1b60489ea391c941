package tui

import (
	"strings"
	"testing"
)

func TestScrollback_TailReturnsLastLines(t *testing.T) {
	var sb scrollback
	sb.Append([]byte("one\ntwo\nthree\nfour\n"))

	got := sb.Tail(2, 80)
	if len(got) != 2 || got[0] != "three" || got[1] != "four" {
		t.Errorf("tail: got %v, want [three four]", got)
	}
}

func TestScrollback_ClampsLineWidth(t *testing.T) {
	var sb scrollback
	sb.Append([]byte("abcdefghij\n"))

	got := sb.Tail(1, 4)
	if len(got) != 1 || got[0] != "ghij" {
		t.Errorf("tail: got %v, want the last 4 runes", got)
	}
}

func TestScrollback_TrimsAtLineBoundary(t *testing.T) {
	var sb scrollback
	line := strings.Repeat("x", 100) + "\n"
	for i := 0; i < scrollbackLimit/len(line)+10; i++ {
		sb.Append([]byte(line))
	}

	if len(sb.data) > scrollbackLimit {
		t.Errorf("buffer size %d exceeds limit %d", len(sb.data), scrollbackLimit)
	}
	// After trimming, the buffer still starts at a line boundary.
	got := sb.Tail(1, 200)
	if len(got) != 1 || len(got[0]) != 100 {
		t.Errorf("tail after trim: got %q", got)
	}
}

func TestStripControl(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"color codes", "\x1b[31mred\x1b[0m", "red"},
		{"cursor moves", "a\x1b[2Jb", "ab"},
		{"osc title", "\x1b]0;title\ax", "x"},
		{"carriage return dropped", "line\r\n", "line\n"},
		{"bell dropped", "ding\a", "ding"},
		{"tab kept", "a\tb", "a\tb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripControl(tt.in); got != tt.want {
				t.Errorf("stripControl(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
