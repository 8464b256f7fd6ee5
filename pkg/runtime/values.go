package runtime

import (
	"fmt"
	"strings"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInteger Kind = iota
	KindReal
	KindBool
	KindText
	KindArray
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "inteiro"
	case KindReal:
		return "real"
	case KindBool:
		return "logico"
	case KindText:
		return "caractere"
	case KindArray:
		return "vetor"
	case KindRecord:
		return "registro"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// IsNumeric reports whether values of this kind take part in arithmetic.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindReal
}

// KindName names the kind of v, or "nothing" for a missing value.
func KindName(v Value) string {
	if v == nil {
		return "nothing"
	}
	return v.Kind().String()
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type IntegerValue struct {
	Val int64
}

func (v IntegerValue) Kind() Kind { return KindInteger }

type RealValue struct {
	Val float64
}

func (v RealValue) Kind() Kind { return KindReal }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindText }

//-----------------------------------------------------------------------------
// Composites
//-----------------------------------------------------------------------------

// ArrayValue holds one dimension; further dimensions nest as element arrays.
type ArrayValue struct {
	Lower    int
	Elements []Value
}

func (v *ArrayValue) Kind() Kind { return KindArray }

// Upper returns the highest valid index.
func (v *ArrayValue) Upper() int {
	return v.Lower + len(v.Elements) - 1
}

// Index maps a source index onto the element slice.
func (v *ArrayValue) Index(i int64) (int, bool) {
	pos := int(i) - v.Lower
	if i < int64(v.Lower) || pos >= len(v.Elements) {
		return 0, false
	}
	return pos, true
}

type RecordValue struct {
	TypeName string
	Fields   map[string]Value
	Order    []string
}

func (v *RecordValue) Kind() Kind { return KindRecord }

// Field fetches a field by case-insensitive name.
func (v *RecordValue) Field(name string) (Value, bool) {
	val, ok := v.Fields[strings.ToLower(name)]
	return val, ok
}

//-----------------------------------------------------------------------------
// Utility helpers
//-----------------------------------------------------------------------------

// Copy returns a deep copy so assignment keeps value semantics for composites.
func Copy(v Value) Value {
	switch val := v.(type) {
	case *ArrayValue:
		elements := make([]Value, len(val.Elements))
		for i, el := range val.Elements {
			elements[i] = Copy(el)
		}
		return &ArrayValue{Lower: val.Lower, Elements: elements}
	case *RecordValue:
		fields := make(map[string]Value, len(val.Fields))
		for k, f := range val.Fields {
			fields[k] = Copy(f)
		}
		order := make([]string, len(val.Order))
		copy(order, val.Order)
		return &RecordValue{TypeName: val.TypeName, Fields: fields, Order: order}
	default:
		return v
	}
}

// Describe renders a value for debugger variable views.
func Describe(v Value) string {
	switch val := v.(type) {
	case IntegerValue:
		return fmt.Sprintf("%d", val.Val)
	case RealValue:
		return fmt.Sprintf("%g", val.Val)
	case BoolValue:
		if val.Val {
			return "VERDADEIRO"
		}
		return "FALSO"
	case StringValue:
		return fmt.Sprintf("%q", val.Val)
	case *ArrayValue:
		parts := make([]string, len(val.Elements))
		for i, el := range val.Elements {
			parts[i] = Describe(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *RecordValue:
		parts := make([]string, 0, len(val.Order))
		for _, name := range val.Order {
			parts = append(parts, name+": "+Describe(val.Fields[name]))
		}
		return val.TypeName + "{" + strings.Join(parts, ", ") + "}"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("[%s]", v.Kind())
	}
}
