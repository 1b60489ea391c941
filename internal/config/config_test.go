package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TERMWEAVE_SHELL", "TERMWEAVE_COLS", "TERMWEAVE_ROWS",
		"TERMWEAVE_RESIZE_DEBOUNCE", "TERMWEAVE_STATE_FILE", "TERMWEAVE_AUTOSAVE",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_HEADERS",
		"SHELL",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Cols != 80 {
		t.Errorf("Cols: got %d, want %d", cfg.Cols, 80)
	}
	if cfg.Rows != 24 {
		t.Errorf("Rows: got %d, want %d", cfg.Rows, 24)
	}
	if cfg.ResizeDebounce != "75ms" {
		t.Errorf("ResizeDebounce: got %q, want %q", cfg.ResizeDebounce, "75ms")
	}
	if cfg.Autosave != "30s" {
		t.Errorf("Autosave: got %q, want %q", cfg.Autosave, "30s")
	}
	if cfg.StateFile == "" {
		t.Error("StateFile: got empty, want a default path")
	}
}

func TestParseDurationOrDisable(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMs  int64
		wantErr bool
	}{
		{"empty returns fallback", "", 5000, false},
		{"zero disables", "0", 0, false},
		{"off disables", "off", 0, false},
		{"disable disables", "disable", 0, false},
		{"valid duration", "30s", 30000, false},
		{"valid short duration", "500ms", 500, false},
		{"invalid", "not-a-duration", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDurationOrDisable(tt.input, 5*time.Second)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDurationOrDisable(%q): error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got.Milliseconds() != tt.wantMs {
				t.Errorf("parseDurationOrDisable(%q) = %v, want %dms", tt.input, got, tt.wantMs)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create a temp directory with a config file
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".termweave.yaml")
	content := `shell: /bin/zsh
cols: 120
rows: 40
resize_debounce: "100ms"
autosave: "1m"
state_file: /tmp/tw-test.json
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	// Change to temp dir so Load() finds the config
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Shell != "/bin/zsh" {
		t.Errorf("Shell: got %q, want %q", cfg.Shell, "/bin/zsh")
	}
	if cfg.Cols != 120 {
		t.Errorf("Cols: got %d, want %d", cfg.Cols, 120)
	}
	if cfg.Rows != 40 {
		t.Errorf("Rows: got %d, want %d", cfg.Rows, 40)
	}
	if cfg.ResizeDebounceDuration != 100*time.Millisecond {
		t.Errorf("ResizeDebounceDuration: got %v, want %v", cfg.ResizeDebounceDuration, 100*time.Millisecond)
	}
	if cfg.AutosaveDuration != time.Minute {
		t.Errorf("AutosaveDuration: got %v, want %v", cfg.AutosaveDuration, time.Minute)
	}
	if cfg.StateFile != "/tmp/tw-test.json" {
		t.Errorf("StateFile: got %q, want %q", cfg.StateFile, "/tmp/tw-test.json")
	}
	if cfg.ConfigFile != ".termweave.yaml" {
		t.Errorf("ConfigFile: got %q, want %q", cfg.ConfigFile, ".termweave.yaml")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".termweave.yaml")
	content := `shell: /bin/zsh
cols: 120
autosave: "1m"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	clearConfigEnv(t)

	// Env should override file
	t.Setenv("TERMWEAVE_SHELL", "/bin/fish")
	t.Setenv("TERMWEAVE_COLS", "200")
	t.Setenv("TERMWEAVE_AUTOSAVE", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Shell != "/bin/fish" {
		t.Errorf("Shell: got %q, want %q (env should override file)", cfg.Shell, "/bin/fish")
	}
	if cfg.Cols != 200 {
		t.Errorf("Cols: got %d, want %d (env should override file)", cfg.Cols, 200)
	}
	if cfg.AutosaveDuration != 0 {
		t.Errorf("AutosaveDuration: got %v, want 0 (env should override file)", cfg.AutosaveDuration)
	}
}

func TestShellFallsBackToEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	clearConfigEnv(t)
	t.Setenv("SHELL", "/usr/bin/fish")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Shell != "/usr/bin/fish" {
		t.Errorf("Shell: got %q, want %q (SHELL fallback)", cfg.Shell, "/usr/bin/fish")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	clearConfigEnv(t)
	t.Setenv("TERMWEAVE_RESIZE_DEBOUNCE", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail on an invalid resize debounce")
	}
}
