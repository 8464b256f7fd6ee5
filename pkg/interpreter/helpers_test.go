package interpreter

import (
	"context"
	"sync"
	"testing"
	"time"

	"visualg/interpreter-go/pkg/runtime"
)

// scriptedIO answers input requests from a fixed queue and records output.
// With hold set, requests are never answered.
type scriptedIO struct {
	mu       sync.Mutex
	inputs   []*runtime.InputValue
	events   []runtime.OutputEvent
	requests []runtime.InputRequest
	hold     bool
}

func newScriptedIO(inputs ...*runtime.InputValue) *scriptedIO {
	return &scriptedIO{inputs: inputs}
}

func (s *scriptedIO) RequestInput(_ context.Context, req runtime.InputRequest) <-chan *runtime.InputValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	ch := make(chan *runtime.InputValue, 1)
	if s.hold {
		return ch
	}
	if len(s.inputs) == 0 {
		close(ch)
		return ch
	}
	ch <- s.inputs[0]
	s.inputs = s.inputs[1:]
	return ch
}

func (s *scriptedIO) Emit(event runtime.OutputEvent) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
}

func (s *scriptedIO) Events() []runtime.OutputEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]runtime.OutputEvent(nil), s.events...)
}

func (s *scriptedIO) Requests() []runtime.InputRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]runtime.InputRequest(nil), s.requests...)
}

// watchStates buffers every transition of interp.
func watchStates(interp *Interpreter) <-chan State {
	states := make(chan State, 64)
	interp.OnStateChange(func(s State) {
		states <- s
	})
	return states
}

func waitForState(t *testing.T, states <-chan State, kind StateKind) State {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case s := <-states:
			if s.Kind == kind {
				return s
			}
		case <-timeout:
			t.Fatalf("timed out waiting for state %s", kind)
			return State{}
		}
	}
}

func globalValue(t *testing.T, interp *Interpreter, program, name string) runtime.Value {
	t.Helper()
	scope, ok := interp.Snapshot().Stack[program]
	if !ok {
		t.Fatalf("snapshot has no scope %q", program)
	}
	val, ok := scope[name]
	if !ok {
		t.Fatalf("snapshot scope %q has no variable %q", program, name)
	}
	return val
}
