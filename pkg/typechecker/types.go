package typechecker

import "strings"

// Type represents a static type understood by the checker.
type Type interface {
	Name() string
}

type PrimitiveKind string

const (
	PrimitiveInteger    PrimitiveKind = "inteiro"
	PrimitiveReal       PrimitiveKind = "real"
	PrimitiveBoolean    PrimitiveKind = "logico"
	PrimitiveText       PrimitiveKind = "caractere"
	PrimitiveUndeclared PrimitiveKind = "undeclared"
	PrimitiveUndefined  PrimitiveKind = "undefined"
)

type PrimitiveType struct {
	Kind PrimitiveKind
}

func (p PrimitiveType) Name() string { return string(p.Kind) }

var (
	Integer    Type = PrimitiveType{Kind: PrimitiveInteger}
	Real       Type = PrimitiveType{Kind: PrimitiveReal}
	Boolean    Type = PrimitiveType{Kind: PrimitiveBoolean}
	Text       Type = PrimitiveType{Kind: PrimitiveText}
	Undeclared Type = PrimitiveType{Kind: PrimitiveUndeclared}
	Undefined  Type = PrimitiveType{Kind: PrimitiveUndefined}
)

// ArrayType wraps one dimension; multi-dimensional arrays nest.
type ArrayType struct {
	Element    Type
	Dimensions int
}

func (a ArrayType) Name() string {
	if a.Element == nil {
		return "vetor de undeclared"
	}
	return "vetor de " + a.Element.Name()
}

// RecordType is an immutable user type built from a registro declaration.
type RecordType struct {
	RecordName string
	Fields     map[string]*Variable
	FieldOrder []string
}

func (r *RecordType) Name() string { return r.RecordName }

func (r *RecordType) SymbolName() string { return r.RecordName }

// Field looks a member up by case-insensitive name.
func (r *RecordType) Field(name string) (*Variable, bool) {
	v, ok := r.Fields[strings.ToLower(name)]
	return v, ok
}

func isPrimitive(t Type, kind PrimitiveKind) bool {
	p, ok := t.(PrimitiveType)
	return ok && p.Kind == kind
}

func isNumericType(t Type) bool {
	return isPrimitive(t, PrimitiveInteger) || isPrimitive(t, PrimitiveReal)
}

func isUndeclared(t Type) bool {
	return t == nil || isPrimitive(t, PrimitiveUndeclared)
}

func isScalarType(t Type) bool {
	p, ok := t.(PrimitiveType)
	if !ok {
		return false
	}
	switch p.Kind {
	case PrimitiveInteger, PrimitiveReal, PrimitiveBoolean, PrimitiveText:
		return true
	}
	return false
}

// TypesEqual compares structurally: arrays by element, records by name.
func TypesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}
	switch at := a.(type) {
	case PrimitiveType:
		bt, ok := b.(PrimitiveType)
		return ok && at.Kind == bt.Kind
	case ArrayType:
		bt, ok := b.(ArrayType)
		return ok && at.Dimensions == bt.Dimensions && TypesEqual(at.Element, bt.Element)
	case *RecordType:
		bt, ok := b.(*RecordType)
		return ok && strings.EqualFold(at.RecordName, bt.RecordName)
	}
	return false
}

// AreTypesCompatible holds for identical types or any two numeric types.
func AreTypesCompatible(a, b Type) bool {
	return TypesEqual(a, b) || (isNumericType(a) && isNumericType(b))
}

func typeName(t Type) string {
	if t == nil {
		return "undeclared"
	}
	return t.Name()
}

// PrimitiveFromName maps the language's primitive type keywords.
func PrimitiveFromName(name string) (Type, bool) {
	switch strings.ToLower(name) {
	case "inteiro":
		return Integer, true
	case "real", "numerico":
		return Real, true
	case "logico":
		return Boolean, true
	case "caractere", "caracter", "literal":
		return Text, true
	}
	return nil, false
}
