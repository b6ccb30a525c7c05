package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if got := cfg.ListenAddr(); got != "127.0.0.1:8787" {
		t.Errorf("ListenAddr() = %q, want 127.0.0.1:8787", got)
	}
	if cfg.AI.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", cfg.AI.Provider)
	}
	if cfg.AI.QuizLength != 10 {
		t.Errorf("quiz length = %d, want 10", cfg.AI.QuizLength)
	}
	if got := cfg.DecayInterval(); got != 10*time.Second {
		t.Errorf("DecayInterval() = %v, want 10s", got)
	}
	if got := cfg.UsernameDebounce(); got != 500*time.Millisecond {
		t.Errorf("UsernameDebounce() = %v, want 500ms", got)
	}
	if got := cfg.HintDebounce(); got != time.Second {
		t.Errorf("HintDebounce() = %v, want 1s", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8787 {
		t.Errorf("port = %d, want 8787", cfg.Server.Port)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookself.toml")
	content := `
[server]
port = 9000

[ai]
provider = "anthropic"
anthropic_key = "k"

[decay]
interval_seconds = 60
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.AI.Provider != "anthropic" {
		t.Errorf("provider = %q, want anthropic", cfg.AI.Provider)
	}
	if cfg.DecayInterval() != time.Minute {
		t.Errorf("DecayInterval() = %v, want 1m", cfg.DecayInterval())
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Bind != "127.0.0.1" {
		t.Errorf("bind = %q, want 127.0.0.1", cfg.Server.Bind)
	}
	if cfg.Setup.UsernameDebounceMS != 500 {
		t.Errorf("username debounce = %d, want 500", cfg.Setup.UsernameDebounceMS)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	os.WriteFile(path, []byte("[[[not toml"), 0o644)

	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed TOML")
	}
}
