package astdoc

import (
	"fmt"
	"math"

	"visualg/interpreter-go/pkg/ast"
)

func (d *decoder) decodeExpressionNodes(node map[string]any, typ string) (ast.Node, bool, error) {
	switch ast.NodeType(typ) {
	case ast.NodeIntLiteral:
		v, ok := toInt64(node["value"])
		if !ok {
			return nil, true, fmt.Errorf("IntLiteral value %v is not an integer", node["value"])
		}
		return ast.NewIntLiteral(v), true, nil
	case ast.NodeRealLiteral:
		v, ok := toFloat64(node["value"])
		if !ok {
			return nil, true, fmt.Errorf("RealLiteral value %v is not a number", node["value"])
		}
		return ast.NewRealLiteral(v), true, nil
	case ast.NodeStringLiteral:
		v, ok := node["value"].(string)
		if !ok && node["value"] != nil {
			return nil, true, fmt.Errorf("StringLiteral value must be a string")
		}
		return ast.NewStringLiteral(v), true, nil
	case ast.NodeBoolLiteral:
		v, ok := node["value"].(bool)
		if !ok {
			return nil, true, fmt.Errorf("BoolLiteral value must be a boolean")
		}
		return ast.NewBoolLiteral(v), true, nil
	case ast.NodeId:
		name, _ := node["name"].(string)
		if name == "" {
			return nil, true, fmt.Errorf("Id without name")
		}
		return ast.NewId(name), true, nil
	case ast.NodeArrayAccess:
		base, err := d.expression(node, "base", true)
		if err != nil {
			return nil, true, err
		}
		indexes, err := d.expressionList(node, "indexes")
		if err != nil {
			return nil, true, err
		}
		if len(indexes) == 0 {
			return nil, true, fmt.Errorf("ArrayAccess without indexes")
		}
		return ast.NewArrayAccess(base, indexes), true, nil
	case ast.NodeMemberAccess:
		base, err := d.expression(node, "base", true)
		if err != nil {
			return nil, true, err
		}
		member, err := d.identifier(node, "member")
		if err != nil {
			return nil, true, err
		}
		return ast.NewMemberAccess(base, member), true, nil
	case ast.NodeUnary:
		op, err := operator(node)
		if err != nil {
			return nil, true, err
		}
		operand, err := d.expression(node, "operand", true)
		if err != nil {
			return nil, true, err
		}
		return ast.NewUnary(op, operand), true, nil
	case ast.NodeBinary:
		op, err := operator(node)
		if err != nil {
			return nil, true, err
		}
		left, err := d.expression(node, "left", true)
		if err != nil {
			return nil, true, err
		}
		right, err := d.expression(node, "right", true)
		if err != nil {
			return nil, true, err
		}
		return ast.NewBinary(op, left, right), true, nil
	case ast.NodeRange:
		start, err := d.expression(node, "start", true)
		if err != nil {
			return nil, true, err
		}
		end, err := d.expression(node, "end", true)
		if err != nil {
			return nil, true, err
		}
		return ast.NewRange(start, end), true, nil
	case ast.NodeCall:
		name, _ := node["name"].(string)
		if name == "" {
			return nil, true, fmt.Errorf("Call without name")
		}
		args, err := d.expressionList(node, "arguments")
		if err != nil {
			return nil, true, err
		}
		return ast.NewCall(name, args), true, nil
	}
	return nil, false, nil
}

var operators = map[string]ast.Operator{}

func init() {
	for _, op := range []ast.Operator{
		ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpPow,
		ast.OpAnd, ast.OpOr, ast.OpXor, ast.OpNot,
		ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe,
	} {
		operators[string(op)] = op
	}
}

func operator(node map[string]any) (ast.Operator, error) {
	raw, _ := node["operator"].(string)
	op, ok := operators[raw]
	if !ok {
		return "", fmt.Errorf("unknown operator %q", raw)
	}
	return op, nil
}

// expression decodes node[key]; absent optional fields yield nil.
func (d *decoder) expression(node map[string]any, key string, required bool) (ast.Expression, error) {
	raw, present := node[key]
	if !present || raw == nil {
		if required {
			return nil, fmt.Errorf("%s missing %s", node["type"], key)
		}
		return nil, nil
	}
	child, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s of %s must be a node, got %T", key, node["type"], raw)
	}
	decoded, err := d.decodeNode(child)
	if err != nil {
		return nil, err
	}
	expr, ok := decoded.(ast.Expression)
	if !ok {
		return nil, fmt.Errorf("%s of %s must be an expression, got %s", key, node["type"], decoded.NodeType())
	}
	return expr, nil
}

func (d *decoder) expressionList(node map[string]any, key string) ([]ast.Expression, error) {
	items, _ := node[key].([]any)
	out := make([]ast.Expression, 0, len(items))
	for _, raw := range items {
		child, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid %s entry %T", key, raw)
		}
		decoded, err := d.decodeNode(child)
		if err != nil {
			return nil, err
		}
		expr, ok := decoded.(ast.Expression)
		if !ok {
			return nil, fmt.Errorf("%s entry must be an expression, got %s", key, decoded.NodeType())
		}
		out = append(out, expr)
	}
	return out, nil
}

// identifier accepts an Id node or a bare name.
func (d *decoder) identifier(node map[string]any, key string) (*ast.IdNode, error) {
	raw, present := node[key]
	if !present {
		return nil, fmt.Errorf("%s missing %s", node["type"], key)
	}
	return d.nameOrId(raw)
}

func (d *decoder) nameOrId(raw any) (*ast.IdNode, error) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("empty identifier")
		}
		return ast.NewId(v), nil
	case map[string]any:
		decoded, err := d.decodeNode(v)
		if err != nil {
			return nil, err
		}
		id, ok := decoded.(*ast.IdNode)
		if !ok {
			return nil, fmt.Errorf("expected Id, got %s", decoded.NodeType())
		}
		return id, nil
	default:
		return nil, fmt.Errorf("invalid identifier %T", raw)
	}
}

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

func toFloat64(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}
