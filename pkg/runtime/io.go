package runtime

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// InputRequest asks the I/O collaborator for a value to store in VariableName.
type InputRequest struct {
	VariableName string
	ExpectedType Kind
}

// InputValue is a scalar answer to an InputRequest.
type InputValue struct {
	Value Value
}

func (v InputValue) Kind() Kind {
	if v.Value == nil {
		return KindText
	}
	return v.Value.Kind()
}

func IntInput(v int64) *InputValue    { return &InputValue{Value: IntegerValue{Val: v}} }
func RealInput(v float64) *InputValue { return &InputValue{Value: RealValue{Val: v}} }
func BoolInput(v bool) *InputValue    { return &InputValue{Value: BoolValue{Val: v}} }
func TextInput(v string) *InputValue  { return &InputValue{Value: StringValue{Val: v}} }

// ParseInput performs the type-directed parse of one input token.
func ParseInput(token string, expected Kind) (*InputValue, error) {
	token = strings.TrimSpace(token)
	switch expected {
	case KindInteger:
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an inteiro", token)
		}
		return IntInput(n), nil
	case KindReal:
		f, err := strconv.ParseFloat(strings.Replace(token, ",", ".", 1), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a real", token)
		}
		return RealInput(f), nil
	case KindBool:
		switch strings.ToLower(token) {
		case "verdadeiro", "v", "true", "sim", "s":
			return BoolInput(true), nil
		case "falso", "f", "false", "nao", "n":
			return BoolInput(false), nil
		}
		return nil, fmt.Errorf("%q is not a logico", token)
	case KindText:
		return TextInput(token), nil
	default:
		return nil, fmt.Errorf("cannot read a value of type %s", expected)
	}
}

// ColorTarget selects which layer a ChangeColor event paints.
type ColorTarget int

const (
	Foreground ColorTarget = iota
	Background
)

func (t ColorTarget) String() string {
	if t == Background {
		return "background"
	}
	return "foreground"
}

// OutputEvent is the interpreter's only channel for observable output.
type OutputEvent interface {
	outputEvent()
}

type TextEvent struct {
	Text string
}

type ClearEvent struct{}

type ChangeColorEvent struct {
	Color  string
	Target ColorTarget
}

func (TextEvent) outputEvent()        {}
func (ClearEvent) outputEvent()       {}
func (ChangeColorEvent) outputEvent() {}

// IO is the collaborator the interpreter reads from and writes to.
//
// RequestInput returns a channel that eventually yields the answer; a nil
// value or a channel closed without a value means no input is available.
type IO interface {
	RequestInput(ctx context.Context, req InputRequest) <-chan *InputValue
	Emit(event OutputEvent)
}
