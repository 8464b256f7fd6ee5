// Package debugger exposes an interpreter run over a small JSON protocol.
// Every message is {type, seq, payload}; clients send requests and receive
// a response per request plus asynchronous events.
package debugger

import (
	"encoding/json"
	"sort"

	"visualg/interpreter-go/pkg/interpreter"
	"visualg/interpreter-go/pkg/runtime"
)

// Request types.
const (
	RequestLaunch         = "launch"
	RequestSetBreakpoints = "setBreakpoints"
	RequestContinue       = "continue"
	RequestStep           = "step"
	RequestStop           = "stop"
	RequestReset          = "reset"
	RequestInput          = "input"
	RequestSnapshot       = "snapshot"
)

// Event types.
const (
	EventResponse     = "response"
	EventOutput       = "output"
	EventState        = "state"
	EventStopped      = "stopped"
	EventInputRequest = "inputRequest"
	EventDiagnostics  = "diagnostics"
	EventError        = "error"
)

// Message is the wire envelope for both directions.
type Message struct {
	Type    string          `json:"type"`
	Seq     int             `json:"seq"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is produced by a Session; the transport assigns seq on send.
type Event struct {
	Type    string
	Payload any
}

type LaunchPayload struct {
	// Document is an AST document in YAML or JSON.
	Document string `json:"document"`
}

type BreakpointsPayload struct {
	Lines []int `json:"lines"`
}

type InputPayload struct {
	Value string `json:"value"`
}

type ResponsePayload struct {
	RequestSeq int    `json:"request_seq"`
	Command    string `json:"command"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Body       any    `json:"body,omitempty"`
}

type OutputPayload struct {
	Text   string `json:"text,omitempty"`
	Clear  bool   `json:"clear,omitempty"`
	Color  string `json:"color,omitempty"`
	Target string `json:"target,omitempty"`
}

type StatePayload struct {
	State string `json:"state"`
	Line  int    `json:"line,omitempty"`
	Error string `json:"error,omitempty"`
}

type SnapshotPayload struct {
	Line  int                       `json:"line"`
	Stack map[string]map[string]any `json:"stack"`
}

type InputRequestPayload struct {
	Variable string `json:"variable"`
	Type     string `json:"type"`
}

type DiagnosticPayload struct {
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statePayload(s interpreter.State) StatePayload {
	out := StatePayload{State: s.Kind.String(), Line: s.Line}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return out
}

func snapshotPayload(ps interpreter.ProgramState) SnapshotPayload {
	stack := make(map[string]map[string]any, len(ps.Stack))
	for scope, vars := range ps.Stack {
		encoded := make(map[string]any, len(vars))
		for name, val := range vars {
			encoded[name] = encodeValue(val)
		}
		stack[scope] = encoded
	}
	return SnapshotPayload{Line: ps.CurrentLine, Stack: stack}
}

func outputPayload(event runtime.OutputEvent) OutputPayload {
	switch e := event.(type) {
	case runtime.TextEvent:
		return OutputPayload{Text: e.Text}
	case runtime.ClearEvent:
		return OutputPayload{Clear: true}
	case runtime.ChangeColorEvent:
		return OutputPayload{Color: e.Color, Target: e.Target.String()}
	}
	return OutputPayload{}
}

// encodeValue turns a runtime value into plain JSON data. Registro fields
// keep declaration order through an ordered list of pairs.
func encodeValue(v runtime.Value) any {
	switch val := v.(type) {
	case runtime.IntegerValue:
		return val.Val
	case runtime.RealValue:
		return val.Val
	case runtime.BoolValue:
		return val.Val
	case runtime.StringValue:
		return val.Val
	case *runtime.ArrayValue:
		items := make([]any, len(val.Elements))
		for i, el := range val.Elements {
			items[i] = encodeValue(el)
		}
		return map[string]any{"lower": val.Lower, "elements": items}
	case *runtime.RecordValue:
		order := val.Order
		if len(order) == 0 {
			for name := range val.Fields {
				order = append(order, name)
			}
			sort.Strings(order)
		}
		fields := make([]map[string]any, 0, len(order))
		for _, name := range order {
			fields = append(fields, map[string]any{"name": name, "value": encodeValue(val.Fields[name])})
		}
		return map[string]any{"type": val.TypeName, "fields": fields}
	}
	return nil
}
