package debugger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"visualg/interpreter-go/pkg/ast"
	"visualg/interpreter-go/pkg/astdoc"
	"visualg/interpreter-go/pkg/interpreter"
	"visualg/interpreter-go/pkg/runtime"
	"visualg/interpreter-go/pkg/typechecker"
)

var (
	// ErrInvalidProgram is returned by Launch when decoding or checking fails.
	ErrInvalidProgram = errors.New("debugger: program has errors")
	// ErrNoPendingInput is returned by Input when nothing is waiting for a value.
	ErrNoPendingInput = errors.New("debugger: no input requested")
)

type pendingInput struct {
	req runtime.InputRequest
	ch  chan *runtime.InputValue
}

// Session owns one interpreter and forwards everything it does as events.
type Session struct {
	ID string

	interp *interpreter.Interpreter
	sink   func(Event)
	logger *slog.Logger

	mu      sync.Mutex
	pending *pendingInput
}

type SessionOption func(*sessionConfig)

type sessionConfig struct {
	logger      *slog.Logger
	interpOpts  []interpreter.Option
	breakpoints []ast.Location
}

func WithLogger(logger *slog.Logger) SessionOption {
	return func(c *sessionConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInterpreterOptions passes options through to every session interpreter.
func WithInterpreterOptions(opts ...interpreter.Option) SessionOption {
	return func(c *sessionConfig) { c.interpOpts = append(c.interpOpts, opts...) }
}

// WithBreakpoints sets the breakpoints a new session starts with.
func WithBreakpoints(locs []ast.Location) SessionOption {
	return func(c *sessionConfig) { c.breakpoints = append(c.breakpoints, locs...) }
}

// NewSession creates a session that reports events to sink. sink may be
// called from the interpreter goroutine.
func NewSession(sink func(Event), opts ...SessionOption) *Session {
	cfg := sessionConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Session{ID: uuid.New().String(), sink: sink}
	s.logger = cfg.logger.With("session", s.ID)
	interpOpts := append([]interpreter.Option{interpreter.WithLogger(s.logger)}, cfg.interpOpts...)
	s.interp = interpreter.New(s, interpOpts...)
	s.interp.SetBreakpoints(cfg.breakpoints)
	s.interp.OnStateChange(func(state interpreter.State) {
		s.send(EventState, statePayload(state))
	})
	s.interp.OnSnapshot(func(ps interpreter.ProgramState) {
		s.send(EventStopped, snapshotPayload(ps))
	})
	return s
}

func (s *Session) send(typ string, payload any) {
	if s.sink != nil {
		s.sink(Event{Type: typ, Payload: payload})
	}
}

// Launch decodes and checks document, then starts it. Problems are sent as
// a diagnostics event and reported as ErrInvalidProgram.
func (s *Session) Launch(ctx context.Context, document []byte) error {
	parsed := astdoc.Decode(document)
	if len(parsed.Diagnostics) > 0 || parsed.Program == nil {
		diags := make([]DiagnosticPayload, 0, len(parsed.Diagnostics))
		for _, d := range parsed.Diagnostics {
			diags = append(diags, DiagnosticPayload{Line: d.Location.StartLine, Column: d.Location.StartColumn, Message: d.Message})
		}
		s.send(EventDiagnostics, diags)
		return ErrInvalidProgram
	}
	checked := typechecker.New().CheckProgram(parsed.Program)
	if !checked.OK() {
		diags := make([]DiagnosticPayload, 0, len(checked.Diagnostics))
		for _, d := range checked.Diagnostics {
			diags = append(diags, DiagnosticPayload{Line: d.Location.StartLine, Column: d.Location.StartColumn, Message: d.Message})
		}
		s.send(EventDiagnostics, diags)
		return ErrInvalidProgram
	}
	if state := s.interp.State(); state.Terminal() {
		s.clearPending()
	}
	if err := s.interp.Start(ctx, parsed.Program); err != nil {
		return err
	}
	s.logger.Info("program launched", "program", parsed.Program.Name)
	return nil
}

// SetBreakpoints replaces the breakpoints with whole-line locations.
func (s *Session) SetBreakpoints(lines []int) {
	locs := make([]ast.Location, 0, len(lines))
	for _, line := range lines {
		locs = append(locs, ast.Line(line))
	}
	s.interp.SetBreakpoints(locs)
	s.logger.Debug("breakpoints set", "lines", lines)
}

func (s *Session) Continue() { s.interp.Continue() }
func (s *Session) Step()     { s.interp.Step() }
func (s *Session) Stop()     { s.interp.Stop() }

// Reset stops any run and clears its bindings; breakpoints stay.
func (s *Session) Reset() {
	s.interp.Reset()
	s.clearPending()
}

// Input answers the pending input request, parsing value as the requested type.
func (s *Session) Input(value string) error {
	s.mu.Lock()
	pending := s.pending
	s.mu.Unlock()
	if pending == nil {
		return ErrNoPendingInput
	}
	parsed, err := runtime.ParseInput(value, pending.req.ExpectedType)
	if err != nil {
		return fmt.Errorf("input for %s: %w", pending.req.VariableName, err)
	}
	s.mu.Lock()
	if s.pending != pending {
		s.mu.Unlock()
		return ErrNoPendingInput
	}
	s.pending = nil
	s.mu.Unlock()
	pending.ch <- parsed
	return nil
}

func (s *Session) Snapshot() SnapshotPayload {
	return snapshotPayload(s.interp.Snapshot())
}

func (s *Session) State() interpreter.State {
	return s.interp.State()
}

// Close stops the run and waits for the interpreter goroutine to finish.
func (s *Session) Close() {
	s.interp.Stop()
	s.interp.Wait()
	s.clearPending()
}

func (s *Session) clearPending() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

// RequestInput implements runtime.IO by asking the client for a value.
func (s *Session) RequestInput(_ context.Context, req runtime.InputRequest) <-chan *runtime.InputValue {
	ch := make(chan *runtime.InputValue, 1)
	s.mu.Lock()
	s.pending = &pendingInput{req: req, ch: ch}
	s.mu.Unlock()
	s.send(EventInputRequest, InputRequestPayload{Variable: req.VariableName, Type: req.ExpectedType.String()})
	return ch
}

// Emit implements runtime.IO.
func (s *Session) Emit(event runtime.OutputEvent) {
	s.send(EventOutput, outputPayload(event))
}
