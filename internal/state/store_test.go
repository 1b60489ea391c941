package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/termweave/termweave/internal/layout"
	"github.com/termweave/termweave/internal/session"
)

func sampleSnapshot() session.Snapshot {
	exited := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	return session.Snapshot{
		ActiveTabID: "tab-2",
		TabCounter:  2,
		PaneCounter: 3,
		Tabs: []session.TabSnapshot{
			{
				ID:   "tab-1",
				Name: "Terminal 1",
				Root: &layout.Split{
					Direction: layout.Vertical,
					Ratio:     0.5,
					A:         &layout.Leaf{PaneID: "pane-1"},
					B:         &layout.Leaf{PaneID: "pane-2"},
				},
				ActivePaneID: "pane-2",
				Panes: []session.PaneSnapshot{
					{ID: "pane-1", Title: "Pane 1"},
					{ID: "pane-2", Title: "Pane 2", Exited: true, ExitedAt: exited},
				},
			},
			{
				ID:           "tab-2",
				Name:         "build",
				Root:         &layout.Leaf{PaneID: "pane-3"},
				ActivePaneID: "pane-3",
				Panes:        []session.PaneSnapshot{{ID: "pane-3", Title: "Pane 3"}},
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewStore(path)

	orig := sampleSnapshot()
	if err := store.Save(orig); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("load: state file not found after save")
	}

	if got.ActiveTabID != orig.ActiveTabID {
		t.Errorf("active tab: got %q, want %q", got.ActiveTabID, orig.ActiveTabID)
	}
	if got.TabCounter != orig.TabCounter || got.PaneCounter != orig.PaneCounter {
		t.Errorf("counters: got %d/%d, want %d/%d",
			got.TabCounter, got.PaneCounter, orig.TabCounter, orig.PaneCounter)
	}
	if len(got.Tabs) != len(orig.Tabs) {
		t.Fatalf("tabs: got %d, want %d", len(got.Tabs), len(orig.Tabs))
	}
	for i := range orig.Tabs {
		if got.Tabs[i].ID != orig.Tabs[i].ID || got.Tabs[i].Name != orig.Tabs[i].Name {
			t.Errorf("tab %d: got %s/%q, want %s/%q", i,
				got.Tabs[i].ID, got.Tabs[i].Name, orig.Tabs[i].ID, orig.Tabs[i].Name)
		}
		if !layout.Equal(got.Tabs[i].Root, orig.Tabs[i].Root) {
			t.Errorf("tab %d: tree shape changed in round trip", i)
		}
		if got.Tabs[i].ActivePaneID != orig.Tabs[i].ActivePaneID {
			t.Errorf("tab %d: active pane got %q, want %q", i,
				got.Tabs[i].ActivePaneID, orig.Tabs[i].ActivePaneID)
		}
		for j, p := range orig.Tabs[i].Panes {
			gp := got.Tabs[i].Panes[j]
			if gp.ID != p.ID || gp.Title != p.Title || gp.Exited != p.Exited {
				t.Errorf("tab %d pane %d: got %+v, want %+v", i, j, gp, p)
			}
			if !gp.ExitedAt.Equal(p.ExitedAt) {
				t.Errorf("tab %d pane %d: exited at got %v, want %v", i, j, gp.ExitedAt, p.ExitedAt)
			}
		}
	}
}

func TestFileNeverContainsHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)

	if err := store.Save(sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(strings.ToLower(string(data)), "handle") {
		t.Error("state file mentions process handles")
	}
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"))
	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a missing file")
	}
}

func TestLoad_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewStore(path).Load(); err == nil {
		t.Error("expected an error for corrupt state")
	}
}

func TestLoad_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"version": 99, "tabs": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewStore(path).Load(); err == nil {
		t.Error("expected an error for an unsupported version")
	}
}

func TestLoad_RejectsBadLayout(t *testing.T) {
	tests := []struct {
		name string
		node string
	}{
		{"unknown type", `{"type": "circle"}`},
		{"leaf without pane", `{"type": "leaf"}`},
		{"bad direction", `{"type": "split", "direction": "diagonal", "ratio": 0.5,
			"a": {"type": "leaf", "pane_id": "pane-1"}, "b": {"type": "leaf", "pane_id": "pane-2"}}`},
		{"ratio out of range", `{"type": "split", "direction": "vertical", "ratio": 1.5,
			"a": {"type": "leaf", "pane_id": "pane-1"}, "b": {"type": "leaf", "pane_id": "pane-2"}}`},
		{"split missing child", `{"type": "split", "direction": "vertical", "ratio": 0.5,
			"a": {"type": "leaf", "pane_id": "pane-1"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"version": 1, "tabs": [{"id": "tab-1", "name": "t", "active_pane_id": "pane-1",
				"panes": [{"id": "pane-1", "title": "p"}], "layout": ` + tt.node + `}]}`
			path := filepath.Join(t.TempDir(), "session.json")
			if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, err := NewStore(path).Load(); err == nil {
				t.Errorf("expected an error for layout %s", tt.node)
			}
		})
	}
}

func TestSave_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	store := NewStore(path)

	if err := store.Save(sampleSnapshot()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	second := sampleSnapshot()
	second.ActiveTabID = "tab-1"
	if err := store.Save(second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("state dir entries: got %d, want 1", len(entries))
	}

	// The file is well-formed JSON holding the second snapshot.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var fs fileState
	if err := json.Unmarshal(data, &fs); err != nil {
		t.Fatalf("state file not valid JSON: %v", err)
	}
	if fs.ActiveTabID != "tab-1" {
		t.Errorf("active tab: got %q, want tab-1", fs.ActiveTabID)
	}
}
