package runtime

import (
	"fmt"

	"visualg/interpreter-go/pkg/ast"
)

// ExceptionKind categorizes fatal runtime failures.
type ExceptionKind int

const (
	WrongNumberOfArguments ExceptionKind = iota
	FunctionNotFound
	ProcedureNotFound
	VariableNotFound
	TypeNotFound
	InvalidAssignment
	MissingInput
	InvalidIndex
	IndexOutOfBounds
	InvalidOperand
	DivisionByZero
	StackOverflow
)

func (k ExceptionKind) String() string {
	switch k {
	case WrongNumberOfArguments:
		return "WrongNumberOfArguments"
	case FunctionNotFound:
		return "FunctionNotFound"
	case ProcedureNotFound:
		return "ProcedureNotFound"
	case VariableNotFound:
		return "VariableNotFound"
	case TypeNotFound:
		return "TypeNotFound"
	case InvalidAssignment:
		return "InvalidAssignment"
	case MissingInput:
		return "MissingInput"
	case InvalidIndex:
		return "InvalidIndex"
	case IndexOutOfBounds:
		return "IndexOutOfBounds"
	case InvalidOperand:
		return "InvalidOperand"
	case DivisionByZero:
		return "DivisionByZero"
	case StackOverflow:
		return "StackOverflow"
	default:
		return fmt.Sprintf("ExceptionKind(%d)", int(k))
	}
}

// TypeException is a fatal runtime error raised while executing a program.
type TypeException struct {
	Kind     ExceptionKind
	Message  string
	Location ast.Location
}

func NewTypeException(kind ExceptionKind, format string, args ...any) *TypeException {
	return &TypeException{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *TypeException) Error() string {
	if e.Location.IsZero() {
		return e.Message
	}
	return fmt.Sprintf("%s (linha %d)", e.Message, e.Location.StartLine)
}

// At records where the failure happened unless a location is already set.
func (e *TypeException) At(loc ast.Location) *TypeException {
	if e.Location.IsZero() {
		e.Location = loc
	}
	return e
}

// InvalidOperandError names the operator and both operand kinds. Either
// operand may be nil when a procedure call stood in for a value.
func InvalidOperandError(op ast.Operator, left, right Value) *TypeException {
	return NewTypeException(InvalidOperand, "invalid operands for '%s': %s and %s", op, KindName(left), KindName(right))
}

func InvalidUnaryOperandError(op ast.Operator, operand Value) *TypeException {
	return NewTypeException(InvalidOperand, "invalid operand for '%s': %s", op, KindName(operand))
}

// UnsupportedOperationError reports a node the interpreter cannot execute.
type UnsupportedOperationError struct {
	Node     ast.NodeType
	Location ast.Location
}

func (e *UnsupportedOperationError) Error() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("unsupported operation: %s", e.Node)
	}
	return fmt.Sprintf("unsupported operation: %s (linha %d)", e.Node, e.Location.StartLine)
}
