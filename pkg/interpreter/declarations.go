package interpreter

import (
	"context"
	"strings"

	"visualg/interpreter-go/pkg/ast"
	"visualg/interpreter-go/pkg/runtime"
)

// declareAll binds every declaration of a block into env.
func (i *Interpreter) declareAll(ctx context.Context, env *runtime.Environment, decls *ast.DeclarationsNode) error {
	if decls == nil {
		return nil
	}
	for _, decl := range decls.Items {
		if err := i.declare(ctx, env, decl); err != nil {
			return locate(err, decl)
		}
	}
	return nil
}

func (i *Interpreter) declare(ctx context.Context, env *runtime.Environment, decl ast.Declaration) error {
	switch d := decl.(type) {
	case nil:
		return nil
	case *ast.VariableDeclarationNode:
		for _, id := range d.Names {
			if id == nil {
				continue
			}
			val, err := i.zeroValue(ctx, env, d.Type)
			if err != nil {
				return err
			}
			env.Define(id.Name, val)
		}
		return nil
	case *ast.ConstantDeclarationNode:
		if d.Name == nil {
			return nil
		}
		val, err := i.evaluateExpression(ctx, d.Value, env)
		if err != nil {
			return err
		}
		env.Define(d.Name.Name, runtime.Copy(val))
		return nil
	case *ast.RecordDeclarationNode:
		i.records[strings.ToLower(d.Name)] = d
		return nil
	case *ast.FunctionDeclarationNode:
		i.functions[strings.ToLower(d.Name)] = d
		return nil
	case *ast.ProcedureDeclarationNode:
		i.procedures[strings.ToLower(d.Name)] = d
		return nil
	default:
		return &runtime.UnsupportedOperationError{Node: decl.NodeType(), Location: decl.Location()}
	}
}

// zeroValue builds the initial value of a declared type.
func (i *Interpreter) zeroValue(ctx context.Context, env *runtime.Environment, typ ast.TypeExpression) (runtime.Value, error) {
	switch t := typ.(type) {
	case *ast.TypeNode:
		return i.zeroOfNamed(ctx, env, t.Name)
	case *ast.ArrayTypeNode:
		if t.ElementType == nil {
			return nil, runtime.NewTypeException(runtime.TypeNotFound, "vetor without element type")
		}
		return i.zeroArray(ctx, env, t.ElementType.Name, t.Dimensions, 1)
	case nil:
		return nil, runtime.NewTypeException(runtime.TypeNotFound, "missing type")
	default:
		return nil, &runtime.UnsupportedOperationError{Node: typ.NodeType(), Location: typ.Location()}
	}
}

func (i *Interpreter) zeroOfNamed(ctx context.Context, env *runtime.Environment, name string) (runtime.Value, error) {
	switch strings.ToLower(name) {
	case "inteiro":
		return runtime.IntegerValue{}, nil
	case "real", "numerico":
		return runtime.RealValue{}, nil
	case "logico":
		return runtime.BoolValue{}, nil
	case "caractere", "caracter", "literal":
		return runtime.StringValue{}, nil
	}
	rec, ok := i.records[strings.ToLower(name)]
	if !ok {
		return nil, runtime.NewTypeException(runtime.TypeNotFound, "type '%s' not found", name)
	}
	val := &runtime.RecordValue{TypeName: rec.Name, Fields: make(map[string]runtime.Value)}
	for _, field := range rec.Fields {
		if field == nil {
			continue
		}
		for _, id := range field.Names {
			if id == nil {
				continue
			}
			fv, err := i.zeroValue(ctx, env, field.Type)
			if err != nil {
				return nil, err
			}
			key := strings.ToLower(id.Name)
			if _, dup := val.Fields[key]; !dup {
				val.Order = append(val.Order, key)
			}
			val.Fields[key] = fv
		}
	}
	return val, nil
}

// maxArrayElements caps the element count of one vetor, all dimensions
// multiplied.
const maxArrayElements = 1 << 24

// zeroArray builds a zeroed vetor. outer is the element count of the
// dimensions already built.
func (i *Interpreter) zeroArray(ctx context.Context, env *runtime.Environment, element string, dims []*ast.RangeNode, outer int64) (runtime.Value, error) {
	if len(dims) == 0 {
		return i.zeroOfNamed(ctx, env, element)
	}
	dim := dims[0]
	if dim == nil {
		return nil, runtime.NewTypeException(runtime.InvalidIndex, "vetor dimension missing")
	}
	lo, err := i.evaluateInteger(ctx, dim.Start, env, "vetor bound")
	if err != nil {
		return nil, err
	}
	hi, err := i.evaluateInteger(ctx, dim.End, env, "vetor bound")
	if err != nil {
		return nil, err
	}
	if hi < lo {
		return nil, runtime.NewTypeException(runtime.InvalidIndex, "invalid vetor range %d..%d", lo, hi)
	}
	span := hi - lo
	if span < 0 || span >= maxArrayElements || (span+1)*outer > maxArrayElements {
		return nil, runtime.NewTypeException(runtime.InvalidIndex, "vetor range %d..%d exceeds %d elements", lo, hi, maxArrayElements)
	}
	arr := &runtime.ArrayValue{Lower: int(lo), Elements: make([]runtime.Value, span+1)}
	for n := range arr.Elements {
		el, err := i.zeroArray(ctx, env, element, dims[1:], (span+1)*outer)
		if err != nil {
			return nil, err
		}
		arr.Elements[n] = el
	}
	return arr, nil
}
