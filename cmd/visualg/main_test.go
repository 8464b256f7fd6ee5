package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"visualg/interpreter-go/pkg/debugger"
)

const doubleProgram = `
type: Algoritimo
name: dobro
declarations:
  - {type: VariableDeclaration, names: [n], varType: inteiro}
commands:
  - {type: Read, loc: [4, 1], targets: [{type: Id, name: n}]}
  - type: Write
    loc: [5, 1]
    newLine: true
    items:
      - type: Binary
        operator: "*"
        left: {type: Id, name: n}
        right: {type: IntLiteral, value: 2}
`

const divideProgram = `
type: Algoritimo
name: divide
declarations:
  - {type: VariableDeclaration, names: [x], varType: inteiro}
commands:
  - type: Assignment
    loc: [3, 1]
    target: {type: Id, name: x}
    value: {type: Binary, operator: "/", left: {type: IntLiteral, value: 1}, right: {type: IntLiteral, value: 0}}
`

const brokenProgram = `
type: Algoritimo
name: broken
declarations:
  - {type: VariableDeclaration, names: [s], varType: caractere}
commands:
  - type: Assignment
    loc: [3, 1]
    target: {type: Id, loc: [3, 1], name: s}
    value: {type: IntLiteral, value: 1}
  - {type: Assignment, loc: [4, 1], target: {type: Id, loc: [4, 1], name: nada}, value: {type: IntLiteral, value: 1}}
`

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

type result struct {
	code   int
	stdout string
	stderr string
}

func invoke(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	dir := t.TempDir()
	cfg := writeFile(t, dir, "visualg.yml", "color: false\n")
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), append([]string{"--config", cfg}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestVersion(t *testing.T) {
	res := invoke(t, "", "version")
	if res.code != 0 || strings.TrimSpace(res.stdout) != cliToolVersion {
		t.Fatalf("unexpected version output %+v", res)
	}
}

func TestCheckReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	res := invoke(t, "", "check", writeFile(t, dir, "broken.yml", brokenProgram))
	if res.code != 1 {
		t.Fatalf("expected exit 1, got %+v", res)
	}
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two diagnostics, got %q", res.stdout)
	}
	if !strings.HasPrefix(lines[0], "3:1: typechecker:") || !strings.Contains(lines[1], "'nada' not declared") {
		t.Fatalf("unexpected diagnostics %q", res.stdout)
	}
}

func TestCheckAcceptsValidProgram(t *testing.T) {
	dir := t.TempDir()
	res := invoke(t, "", "check", writeFile(t, dir, "dobro.yml", doubleProgram))
	if res.code != 0 || res.stdout != "dobro: ok\n" {
		t.Fatalf("unexpected check result %+v", res)
	}
}

func TestCheckMissingFile(t *testing.T) {
	res := invoke(t, "", "check", filepath.Join(t.TempDir(), "missing.yml"))
	if res.code != 1 || !strings.Contains(res.stderr, "read program") {
		t.Fatalf("expected read failure, got %+v", res)
	}
}

func TestRunExecutesWithConsoleInput(t *testing.T) {
	dir := t.TempDir()
	res := invoke(t, "21\n", "run", writeFile(t, dir, "dobro.yml", doubleProgram))
	want := " 42\n\n*** Fim da execucao ***\n"
	if res.code != 0 || res.stdout != want {
		t.Fatalf("expected %q, got %+v", want, res)
	}
}

func TestRunReportsRuntimeFailure(t *testing.T) {
	dir := t.TempDir()
	res := invoke(t, "", "run", writeFile(t, dir, "divide.yml", divideProgram))
	if res.code != 1 {
		t.Fatalf("expected exit 1, got %+v", res)
	}
	if !strings.Contains(res.stdout, "division by zero (linha 3)\n*** Execucao terminada ***") {
		t.Fatalf("unexpected failure output %q", res.stdout)
	}
}

func TestRunRefusesInvalidProgram(t *testing.T) {
	dir := t.TempDir()
	res := invoke(t, "", "run", writeFile(t, dir, "broken.yml", brokenProgram))
	if res.code != 1 || res.stdout != "" || !strings.Contains(res.stderr, "'nada' not declared") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "visualg.toml", "colour = true\n")
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--config", cfg, "version"}, strings.NewReader(""), &stdout, &stderr)
	if code != 1 || !strings.Contains(stderr.String(), "colour") {
		t.Fatalf("expected unknown key failure, got %d %q", code, stderr.String())
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDebugServerServesSessions(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "visualg.yml", "color: false\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var stdout, stderr syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- execute(ctx, []string{"--config", cfg, "debug-server", "--addr", "127.0.0.1:0"}, strings.NewReader(""), &stdout, &stderr)
	}()

	addrPattern := regexp.MustCompile(`ws://(\S+)`)
	var url string
	deadline := time.Now().Add(5 * time.Second)
	for url == "" {
		if m := addrPattern.FindStringSubmatch(stdout.String()); m != nil {
			url = m[0]
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %q", stderr.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	if err := conn.WriteJSON(debugger.Message{Type: debugger.RequestSnapshot, Seq: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg debugger.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	var resp debugger.ResponsePayload
	if err := json.Unmarshal(msg.Payload, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != debugger.EventResponse || !resp.Success || resp.RequestSeq != 1 {
		t.Fatalf("unexpected reply %+v %+v", msg, resp)
	}
	conn.Close()

	cancel()
	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("expected clean shutdown, got %d: %s", code, stderr.String())
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("server did not shut down")
	}
}
