package interpreter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"visualg/interpreter-go/pkg/astdoc"
	"visualg/interpreter-go/pkg/runtime"
	"visualg/interpreter-go/pkg/typechecker"
)

// fixtureManifest describes how to run testdata/fixtures/<name>/program.yml.
type fixtureManifest struct {
	Description string   `yaml:"description"`
	Input       []string `yaml:"input"`
	Expect      struct {
		Stdout      string   `yaml:"stdout"`
		Error       string   `yaml:"error"`
		Diagnostics []string `yaml:"diagnostics"`
	} `yaml:"expect"`
}

// fixtureIO parses queued lines as whatever kind each leia asks for.
type fixtureIO struct {
	mu    sync.Mutex
	lines []string
}

func (f *fixtureIO) RequestInput(_ context.Context, req runtime.InputRequest) <-chan *runtime.InputValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan *runtime.InputValue, 1)
	if len(f.lines) == 0 {
		close(ch)
		return ch
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	val, err := runtime.ParseInput(line, req.ExpectedType)
	if err != nil {
		close(ch)
		return ch
	}
	ch <- val
	return ch
}

func (f *fixtureIO) Emit(runtime.OutputEvent) {}

func TestFixtures(t *testing.T) {
	root := filepath.Join("testdata", "fixtures")
	walkFixtures(t, root, func(dir string) {
		t.Run(filepath.Base(dir), func(t *testing.T) {
			runFixture(t, dir)
		})
	})
}

func walkFixtures(t *testing.T, dir string, fn func(string)) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && entry.Name() == "program.yml" {
			fn(dir)
		}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			walkFixtures(t, filepath.Join(dir, entry.Name()), fn)
		}
	}
}

func readManifest(t *testing.T, dir string) fixtureManifest {
	t.Helper()
	manifestPath := filepath.Join(dir, "manifest.yml")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fixtureManifest{}
		}
		t.Fatalf("read manifest %s: %v", manifestPath, err)
	}
	var manifest fixtureManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("parse manifest %s: %v", manifestPath, err)
	}
	return manifest
}

func runFixture(t *testing.T, dir string) {
	t.Helper()
	manifest := readManifest(t, dir)
	parsed, err := astdoc.DecodeFile(filepath.Join(dir, "program.yml"))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !parsed.OK() {
		t.Fatalf("decode diagnostics: %v", parsed.Diagnostics)
	}

	checked := typechecker.New().CheckProgram(parsed.Program)
	if len(manifest.Expect.Diagnostics) > 0 {
		checkFixtureDiagnostics(t, manifest.Expect.Diagnostics, checked.Diagnostics)
		return
	}
	if !checked.OK() {
		t.Fatalf("unexpected typechecker diagnostics: %v", checked.Diagnostics)
	}

	interp := New(&fixtureIO{lines: manifest.Input})
	state := interp.Run(context.Background(), parsed.Program)
	if manifest.Expect.Error != "" {
		if state.Kind != CompletedExceptionally {
			t.Fatalf("expected %s, run ended in %s", manifest.Expect.Error, state)
		}
		var exc *runtime.TypeException
		if !errors.As(state.Err, &exc) || exc.Kind.String() != manifest.Expect.Error {
			t.Fatalf("expected %s, got %v", manifest.Expect.Error, state.Err)
		}
	} else if state.Kind != CompletedSuccessfully {
		t.Fatalf("run ended in %s: %v", state, state.Err)
	}
	if got := interp.Output(); got != manifest.Expect.Stdout {
		t.Fatalf("stdout mismatch\nwant %q\ngot  %q", manifest.Expect.Stdout, got)
	}
}

// checkFixtureDiagnostics matches each expected fragment against the
// diagnostic at the same position.
func checkFixtureDiagnostics(t *testing.T, expected []string, diags []typechecker.Diagnostic) {
	t.Helper()
	if len(diags) != len(expected) {
		t.Fatalf("expected %d diagnostics, got %v", len(expected), diags)
	}
	for i, want := range expected {
		if !strings.Contains(diags[i].Message, want) {
			t.Fatalf("diagnostic %d: expected %q in %q", i, want, diags[i].Message)
		}
	}
}
