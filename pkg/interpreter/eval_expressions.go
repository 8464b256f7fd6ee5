package interpreter

import (
	"context"
	"math"
	"strings"

	"visualg/interpreter-go/pkg/ast"
	"visualg/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(ctx context.Context, node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.IntLiteral:
		return runtime.IntegerValue{Val: n.Value}, nil
	case *ast.RealLiteral:
		return runtime.RealValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BoolLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.IdNode:
		return i.evaluateIdentifier(ctx, n, env)
	case *ast.ArrayAccessNode:
		arr, pos, err := i.resolveElement(ctx, n, env)
		if err != nil {
			return nil, err
		}
		return arr.Elements[pos], nil
	case *ast.MemberAccessNode:
		rec, err := i.resolveRecord(ctx, n, env)
		if err != nil {
			return nil, err
		}
		return rec.Fields[strings.ToLower(n.Member.Name)], nil
	case *ast.UnaryNode:
		return i.evaluateUnary(ctx, n, env)
	case *ast.BinaryNode:
		return i.evaluateBinary(ctx, n, env)
	case *ast.CallNode:
		return i.call(ctx, n, env, true)
	case nil:
		return nil, runtime.NewTypeException(runtime.InvalidOperand, "missing expression")
	default:
		return nil, &runtime.UnsupportedOperationError{Node: node.NodeType(), Location: node.Location()}
	}
}

// evaluateIdentifier follows the resolution order function, procedure,
// variable or constant, then zero-argument builtins.
func (i *Interpreter) evaluateIdentifier(ctx context.Context, id *ast.IdNode, env *runtime.Environment) (runtime.Value, error) {
	key := strings.ToLower(id.Name)
	if _, ok := i.functions[key]; ok {
		return i.call(ctx, ast.NewCall(id.Name, nil), env, true)
	}
	if _, ok := i.procedures[key]; ok {
		return nil, runtime.NewTypeException(runtime.FunctionNotFound, "procedure '%s' does not return a value", id.Name)
	}
	if val, err := env.Get(id.Name); err == nil {
		return val, nil
	}
	if b, ok := lookupBuiltin(key); ok && b.arity == 0 {
		return b.fn(i, nil)
	}
	return nil, runtime.NewTypeException(runtime.VariableNotFound, "variable '%s' not found", id.Name)
}

// resolveElement walks every index of an access and returns the innermost
// array with the slice position of the addressed element.
func (i *Interpreter) resolveElement(ctx context.Context, access *ast.ArrayAccessNode, env *runtime.Environment) (*runtime.ArrayValue, int, error) {
	base, err := i.evaluateExpression(ctx, access.Base, env)
	if err != nil {
		return nil, 0, err
	}
	if len(access.Indexes) == 0 {
		return nil, 0, runtime.NewTypeException(runtime.InvalidIndex, "'%s' accessed without an index", describeTarget(access.Base))
	}
	current := base
	for n, indexExpr := range access.Indexes {
		arr, ok := current.(*runtime.ArrayValue)
		if !ok {
			return nil, 0, runtime.NewTypeException(runtime.InvalidIndex, "'%s' is not a vetor (got %s)", describeTarget(access.Base), kindOf(current))
		}
		idxVal, err := i.evaluateExpression(ctx, indexExpr, env)
		if err != nil {
			return nil, 0, err
		}
		idx, ok := idxVal.(runtime.IntegerValue)
		if !ok {
			return nil, 0, runtime.NewTypeException(runtime.InvalidIndex, "vetor index must be inteiro, got %s", kindOf(idxVal))
		}
		pos, ok := arr.Index(idx.Val)
		if !ok {
			return nil, 0, runtime.NewTypeException(runtime.IndexOutOfBounds, "index %d out of bounds %d..%d", idx.Val, arr.Lower, arr.Upper())
		}
		if n == len(access.Indexes)-1 {
			return arr, pos, nil
		}
		current = arr.Elements[pos]
	}
	return nil, 0, runtime.NewTypeException(runtime.InvalidIndex, "invalid index")
}

func (i *Interpreter) resolveRecord(ctx context.Context, access *ast.MemberAccessNode, env *runtime.Environment) (*runtime.RecordValue, error) {
	base, err := i.evaluateExpression(ctx, access.Base, env)
	if err != nil {
		return nil, err
	}
	rec, ok := base.(*runtime.RecordValue)
	if !ok {
		return nil, runtime.NewTypeException(runtime.InvalidOperand, "'%s' is not a registro (got %s)", describeTarget(access.Base), kindOf(base))
	}
	if access.Member == nil {
		return nil, runtime.NewTypeException(runtime.VariableNotFound, "missing member name")
	}
	if _, ok := rec.Field(access.Member.Name); !ok {
		return nil, runtime.NewTypeException(runtime.VariableNotFound, "member '%s' not found in '%s'", access.Member.Name, rec.TypeName)
	}
	return rec, nil
}

// assignTo stores val into a variable, vetor element or registro field,
// coercing numbers to the kind already held by the target.
func (i *Interpreter) assignTo(ctx context.Context, target ast.Expression, val runtime.Value, env *runtime.Environment) error {
	switch t := target.(type) {
	case *ast.IdNode:
		current, err := env.Get(t.Name)
		if err != nil {
			return err
		}
		coerced, err := coerce(t.Name, current, val)
		if err != nil {
			return err
		}
		return env.Assign(t.Name, coerced)
	case *ast.ArrayAccessNode:
		arr, pos, err := i.resolveElement(ctx, t, env)
		if err != nil {
			return err
		}
		coerced, err := coerce(describeTarget(t), arr.Elements[pos], val)
		if err != nil {
			return err
		}
		arr.Elements[pos] = coerced
		return nil
	case *ast.MemberAccessNode:
		rec, err := i.resolveRecord(ctx, t, env)
		if err != nil {
			return err
		}
		key := strings.ToLower(t.Member.Name)
		coerced, err := coerce(describeTarget(t), rec.Fields[key], val)
		if err != nil {
			return err
		}
		rec.Fields[key] = coerced
		return nil
	default:
		return runtime.NewTypeException(runtime.InvalidAssignment, "cannot assign to %s", describeTarget(target))
	}
}

func coerce(name string, current, val runtime.Value) (runtime.Value, error) {
	if current == nil || val == nil {
		return val, nil
	}
	switch {
	case current.Kind() == val.Kind():
		if cr, ok := current.(*runtime.RecordValue); ok {
			if vr := val.(*runtime.RecordValue); !strings.EqualFold(cr.TypeName, vr.TypeName) {
				return nil, runtime.NewTypeException(runtime.InvalidAssignment, "cannot assign %s to '%s' of type %s", vr.TypeName, name, cr.TypeName)
			}
		}
		return val, nil
	case current.Kind() == runtime.KindReal && val.Kind() == runtime.KindInteger:
		return runtime.RealValue{Val: float64(val.(runtime.IntegerValue).Val)}, nil
	case current.Kind() == runtime.KindInteger && val.Kind() == runtime.KindReal:
		return runtime.IntegerValue{Val: int64(val.(runtime.RealValue).Val)}, nil
	}
	return nil, runtime.NewTypeException(runtime.InvalidAssignment, "cannot assign %s to '%s' of type %s", val.Kind(), name, current.Kind())
}

func (i *Interpreter) evaluateUnary(ctx context.Context, expr *ast.UnaryNode, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(ctx, expr.Operand, env)
	if err != nil {
		return nil, err
	}
	if operand == nil {
		return nil, runtime.NewTypeException(runtime.InvalidOperand, "missing operand for '%s'", expr.Operator)
	}
	switch expr.Operator {
	case ast.OpSub:
		switch v := operand.(type) {
		case runtime.IntegerValue:
			return runtime.IntegerValue{Val: -v.Val}, nil
		case runtime.RealValue:
			return runtime.RealValue{Val: -v.Val}, nil
		}
	case ast.OpAdd:
		if operand != nil && operand.Kind().IsNumeric() {
			return operand, nil
		}
	case ast.OpNot:
		if b, ok := operand.(runtime.BoolValue); ok {
			return runtime.BoolValue{Val: !b.Val}, nil
		}
	}
	return nil, runtime.InvalidUnaryOperandError(expr.Operator, operand)
}

func (i *Interpreter) evaluateBinary(ctx context.Context, expr *ast.BinaryNode, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(ctx, expr.Left, env)
	if err != nil {
		return nil, err
	}
	// e and ou short-circuit.
	if expr.Operator == ast.OpAnd || expr.Operator == ast.OpOr {
		lb, ok := left.(runtime.BoolValue)
		if !ok {
			right, err := i.evaluateExpression(ctx, expr.Right, env)
			if err != nil {
				return nil, err
			}
			return nil, runtime.InvalidOperandError(expr.Operator, left, right)
		}
		if (expr.Operator == ast.OpAnd && !lb.Val) || (expr.Operator == ast.OpOr && lb.Val) {
			return lb, nil
		}
		right, err := i.evaluateExpression(ctx, expr.Right, env)
		if err != nil {
			return nil, err
		}
		rb, ok := right.(runtime.BoolValue)
		if !ok {
			return nil, runtime.InvalidOperandError(expr.Operator, left, right)
		}
		return rb, nil
	}
	right, err := i.evaluateExpression(ctx, expr.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinary(expr.Operator, left, right)
}

// applyBinary evaluates a non-short-circuit operator on two values.
func applyBinary(op ast.Operator, left, right runtime.Value) (runtime.Value, error) {
	switch {
	case op.IsArithmetic():
		return arithmetic(op, left, right)
	case op.IsRelational():
		b, err := compareValues(op, left, right)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: b}, nil
	case op == ast.OpXor:
		lb, lok := left.(runtime.BoolValue)
		rb, rok := right.(runtime.BoolValue)
		if lok && rok {
			return runtime.BoolValue{Val: lb.Val != rb.Val}, nil
		}
	case op == ast.OpAnd || op == ast.OpOr:
		lb, lok := left.(runtime.BoolValue)
		rb, rok := right.(runtime.BoolValue)
		if lok && rok {
			if op == ast.OpAnd {
				return runtime.BoolValue{Val: lb.Val && rb.Val}, nil
			}
			return runtime.BoolValue{Val: lb.Val || rb.Val}, nil
		}
	}
	return nil, runtime.InvalidOperandError(op, left, right)
}

func arithmetic(op ast.Operator, left, right runtime.Value) (runtime.Value, error) {
	if op == ast.OpAdd {
		ls, lok := left.(runtime.StringValue)
		rs, rok := right.(runtime.StringValue)
		if lok && rok {
			return runtime.StringValue{Val: ls.Val + rs.Val}, nil
		}
	}
	li, lInt := left.(runtime.IntegerValue)
	ri, rInt := right.(runtime.IntegerValue)
	if lInt && rInt {
		return integerArithmetic(op, li.Val, ri.Val)
	}
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, runtime.InvalidOperandError(op, left, right)
	}
	switch op {
	case ast.OpAdd:
		return runtime.RealValue{Val: lf + rf}, nil
	case ast.OpSub:
		return runtime.RealValue{Val: lf - rf}, nil
	case ast.OpMul:
		return runtime.RealValue{Val: lf * rf}, nil
	case ast.OpDiv:
		if rf == 0 {
			return nil, runtime.NewTypeException(runtime.DivisionByZero, "division by zero")
		}
		return runtime.RealValue{Val: lf / rf}, nil
	case ast.OpMod:
		if rf == 0 {
			return nil, runtime.NewTypeException(runtime.DivisionByZero, "division by zero")
		}
		return runtime.RealValue{Val: math.Mod(lf, rf)}, nil
	case ast.OpPow:
		return runtime.RealValue{Val: math.Pow(lf, rf)}, nil
	}
	return nil, runtime.InvalidOperandError(op, left, right)
}

func integerArithmetic(op ast.Operator, l, r int64) (runtime.Value, error) {
	switch op {
	case ast.OpAdd:
		return runtime.IntegerValue{Val: l + r}, nil
	case ast.OpSub:
		return runtime.IntegerValue{Val: l - r}, nil
	case ast.OpMul:
		return runtime.IntegerValue{Val: l * r}, nil
	case ast.OpDiv, ast.OpMod:
		if r == 0 {
			return nil, runtime.NewTypeException(runtime.DivisionByZero, "division by zero")
		}
		if op == ast.OpDiv {
			return runtime.IntegerValue{Val: l / r}, nil
		}
		return runtime.IntegerValue{Val: l % r}, nil
	case ast.OpPow:
		if r < 0 {
			return runtime.IntegerValue{Val: int64(math.Pow(float64(l), float64(r)))}, nil
		}
		result, ok := integerPow(l, r)
		if !ok {
			return nil, runtime.NewTypeException(runtime.InvalidOperand, "%d ^ %d overflows inteiro", l, r)
		}
		return runtime.IntegerValue{Val: result}, nil
	}
	return nil, runtime.InvalidOperandError(op, runtime.IntegerValue{Val: l}, runtime.IntegerValue{Val: r})
}

// integerPow computes base^exp by squaring for exp >= 0. ok is false when
// the result does not fit an int64.
func integerPow(base, exp int64) (result int64, ok bool) {
	result = 1
	for exp > 0 {
		if exp&1 == 1 {
			if result, ok = mulChecked(result, base); !ok {
				return 0, false
			}
		}
		exp >>= 1
		if exp > 0 {
			if base, ok = mulChecked(base, base); !ok {
				return 0, false
			}
		}
	}
	return result, true
}

func mulChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return p, true
}

// compareValues applies a relational operator. Numbers compare across kinds,
// caractere compares lexically and falso orders before verdadeiro. vetor and
// registro values support only = and <>, compared element by element.
func compareValues(op ast.Operator, left, right runtime.Value) (bool, error) {
	if left == nil || right == nil {
		return false, runtime.NewTypeException(runtime.InvalidOperand, "missing operand for '%s'", op)
	}
	var cmp int
	switch l := left.(type) {
	case runtime.IntegerValue, runtime.RealValue:
		if r, ok := right.(runtime.IntegerValue); ok {
			if li, ok := l.(runtime.IntegerValue); ok {
				cmp = compareInts(li.Val, r.Val)
				break
			}
		}
		lf, _ := toFloat(left)
		rf, ok := toFloat(right)
		if !ok {
			return false, runtime.InvalidOperandError(op, left, right)
		}
		cmp = compareFloats(lf, rf)
	case runtime.StringValue:
		r, ok := right.(runtime.StringValue)
		if !ok {
			return false, runtime.InvalidOperandError(op, left, right)
		}
		cmp = strings.Compare(l.Val, r.Val)
	case runtime.BoolValue:
		r, ok := right.(runtime.BoolValue)
		if !ok {
			return false, runtime.InvalidOperandError(op, left, right)
		}
		cmp = compareInts(boolRank(l.Val), boolRank(r.Val))
	case *runtime.ArrayValue, *runtime.RecordValue:
		if op != ast.OpEq && op != ast.OpNe {
			return false, runtime.InvalidOperandError(op, left, right)
		}
		equal, ok := valuesEqual(left, right)
		if !ok {
			return false, runtime.InvalidOperandError(op, left, right)
		}
		return equal == (op == ast.OpEq), nil
	default:
		return false, runtime.InvalidOperandError(op, left, right)
	}
	switch op {
	case ast.OpEq:
		return cmp == 0, nil
	case ast.OpNe:
		return cmp != 0, nil
	case ast.OpLt:
		return cmp < 0, nil
	case ast.OpLe:
		return cmp <= 0, nil
	case ast.OpGt:
		return cmp > 0, nil
	case ast.OpGe:
		return cmp >= 0, nil
	}
	return false, runtime.InvalidOperandError(op, left, right)
}

func boolRank(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// valuesEqual compares two values of the same shape. ok is false when the
// shapes differ: mismatched kinds, record types or vetor bounds.
func valuesEqual(left, right runtime.Value) (equal, ok bool) {
	switch l := left.(type) {
	case *runtime.ArrayValue:
		r, isArray := right.(*runtime.ArrayValue)
		if !isArray || l.Lower != r.Lower || len(l.Elements) != len(r.Elements) {
			return false, false
		}
		equal = true
		for n := range l.Elements {
			el, ok := valuesEqual(l.Elements[n], r.Elements[n])
			if !ok {
				return false, false
			}
			equal = equal && el
		}
		return equal, true
	case *runtime.RecordValue:
		r, isRecord := right.(*runtime.RecordValue)
		if !isRecord || !strings.EqualFold(l.TypeName, r.TypeName) {
			return false, false
		}
		equal = true
		for _, name := range l.Order {
			field, ok := valuesEqual(l.Fields[name], r.Fields[name])
			if !ok {
				return false, false
			}
			equal = equal && field
		}
		return equal, true
	}
	cmp, err := compareValues(ast.OpEq, left, right)
	if err != nil {
		return false, false
	}
	return cmp, true
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toFloat(v runtime.Value) (float64, bool) {
	switch n := v.(type) {
	case runtime.IntegerValue:
		return float64(n.Val), true
	case runtime.RealValue:
		return n.Val, true
	}
	return 0, false
}
