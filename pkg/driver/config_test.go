package driver

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"visualg/interpreter-go/pkg/ast"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visualg.yml")
	writeFile(t, path, `
log_level: debug
input_timeout: 30s
random:
  min: 10
  max: 20
  seed: 7
echo: true
breakpoints: [3, 8]
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.Level())
	}
	if cfg.InputTimeout.Duration != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v", cfg.InputTimeout)
	}
	if cfg.Random != (RandomConfig{Min: 10, Max: 20, Seed: 7}) {
		t.Fatalf("unexpected random config %+v", cfg.Random)
	}
	if !cfg.Echo || !cfg.Color {
		t.Fatalf("expected echo set and color defaulted on, got %+v", cfg)
	}
	if cfg.DebugServer.Addr != DefaultConfig().DebugServer.Addr {
		t.Fatalf("unset keys must keep defaults, got %q", cfg.DebugServer.Addr)
	}
	locs := cfg.BreakpointLocations()
	if len(locs) != 2 || locs[1] != ast.Line(8) {
		t.Fatalf("unexpected breakpoints %v", locs)
	}
	if cfg.Path != path {
		t.Fatalf("expected path %s, got %s", path, cfg.Path)
	}
}

func TestLoadConfigTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visualg.toml")
	writeFile(t, path, `
log_level = "info"
color = false

[debug_server]
addr = ":9000"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Level() != slog.LevelInfo || cfg.Color || cfg.DebugServer.Addr != ":9000" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Random.Max != 100 {
		t.Fatalf("expected default random range, got %+v", cfg.Random)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "visualg.yml")
	writeFile(t, yml, "colour: true\n")
	if _, err := LoadConfig(yml); err == nil {
		t.Fatalf("expected unknown YAML key to fail")
	}
	tml := filepath.Join(dir, "visualg.toml")
	writeFile(t, tml, "colour = true\n")
	_, err := LoadConfig(tml)
	if err == nil || !strings.Contains(err.Error(), "colour") {
		t.Fatalf("expected unknown TOML key to be named, got %v", err)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visualg.yml")
	writeFile(t, path, `
log_level: loud
random: {min: 5, max: 1}
breakpoints: [0]
`)
	_, err := LoadConfig(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Issues) != 3 {
		t.Fatalf("expected 3 issues, got %v", verr.Issues)
	}
}

func TestLoadConfigEmptyFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visualg.yml")
	writeFile(t, path, "")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogLevel != "warn" || cfg.Random.Max != 100 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visualg.yml")
	writeFile(t, path, "input_timeout: soon\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected duration parse error")
	}
}

func TestFindConfigWalksUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "visualg.toml"), "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if got != filepath.Join(root, "visualg.toml") {
		t.Fatalf("unexpected config path %s", got)
	}

	// YAML wins over TOML in the same directory.
	writeFile(t, filepath.Join(root, "visualg.yml"), "")
	if got, _ := FindConfig(nested); got != filepath.Join(root, "visualg.yml") {
		t.Fatalf("expected visualg.yml, got %s", got)
	}
}

func TestFindConfigNotFound(t *testing.T) {
	if _, err := FindConfig(t.TempDir()); !errors.Is(err, ErrConfigNotFound) {
		// A config in a parent of the temp dir would make this test meaningless.
		if err == nil {
			t.Skip("a visualg config exists above the temp directory")
		}
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}
