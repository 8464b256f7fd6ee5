package astdoc

import (
	"fmt"

	"visualg/interpreter-go/pkg/ast"
)

func (d *decoder) decodeCommandNodes(node map[string]any, typ string) (ast.Node, error) {
	switch ast.NodeType(typ) {
	case ast.NodeAssignment:
		target, err := d.expression(node, "target", true)
		if err != nil {
			return nil, err
		}
		value, err := d.expression(node, "value", true)
		if err != nil {
			return nil, err
		}
		return ast.NewAssignment(target, value), nil
	case ast.NodeConditional:
		test, err := d.expression(node, "test", true)
		if err != nil {
			return nil, err
		}
		then, err := d.commands(node, "then")
		if err != nil {
			return nil, err
		}
		els, err := d.commands(node, "else")
		if err != nil {
			return nil, err
		}
		return ast.NewConditional(test, then, els), nil
	case ast.NodeWhile:
		test, err := d.expression(node, "test", true)
		if err != nil {
			return nil, err
		}
		body, err := d.commands(node, "body")
		if err != nil {
			return nil, err
		}
		atTheEnd, _ := node["atTheEnd"].(bool)
		return ast.NewWhile(test, body, atTheEnd), nil
	case ast.NodeFor:
		variable, err := d.identifier(node, "variable")
		if err != nil {
			return nil, err
		}
		start, err := d.expression(node, "start", true)
		if err != nil {
			return nil, err
		}
		end, err := d.expression(node, "end", false)
		if err != nil {
			return nil, err
		}
		step, err := d.expression(node, "step", false)
		if err != nil {
			return nil, err
		}
		body, err := d.commands(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewFor(variable, start, end, step, body), nil
	case ast.NodeChoose:
		value, err := d.expression(node, "value", true)
		if err != nil {
			return nil, err
		}
		items, _ := node["cases"].([]any)
		cases := make([]*ast.CaseNode, 0, len(items))
		for _, raw := range items {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid case entry %T", raw)
			}
			if _, typed := child["type"]; !typed {
				child["type"] = string(ast.NodeCase)
			}
			decoded, err := d.decodeNode(child)
			if err != nil {
				return nil, err
			}
			cs, ok := decoded.(*ast.CaseNode)
			if !ok {
				return nil, fmt.Errorf("escolha entry must be Case, got %s", decoded.NodeType())
			}
			cases = append(cases, cs)
		}
		def, err := d.commands(node, "default")
		if err != nil {
			return nil, err
		}
		return ast.NewChoose(value, cases, def), nil
	case ast.NodeCase:
		values, err := d.expressionList(node, "values")
		if err != nil {
			return nil, err
		}
		body, err := d.commands(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewCase(values, body), nil
	case ast.NodeRead:
		targets, err := d.expressionList(node, "targets")
		if err != nil {
			return nil, err
		}
		return ast.NewRead(targets), nil
	case ast.NodeWrite:
		items, _ := node["items"].([]any)
		writeItems := make([]*ast.WriteItemNode, 0, len(items))
		for _, raw := range items {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid escreva item %T", raw)
			}
			if kind, _ := child["type"].(string); kind != string(ast.NodeWriteItem) {
				// A bare expression is shorthand for an unformatted item.
				child = map[string]any{"type": string(ast.NodeWriteItem), "value": child}
			}
			decoded, err := d.decodeNode(child)
			if err != nil {
				return nil, err
			}
			writeItems = append(writeItems, decoded.(*ast.WriteItemNode))
		}
		newLine, _ := node["newLine"].(bool)
		return ast.NewWrite(writeItems, newLine), nil
	case ast.NodeWriteItem:
		value, err := d.expression(node, "value", true)
		if err != nil {
			return nil, err
		}
		width, err := d.expression(node, "width", false)
		if err != nil {
			return nil, err
		}
		precision, err := d.expression(node, "precision", false)
		if err != nil {
			return nil, err
		}
		return ast.NewWriteItem(value, width, precision), nil
	case ast.NodeReturn:
		value, err := d.expression(node, "value", false)
		if err != nil {
			return nil, err
		}
		return ast.NewReturn(value), nil
	case ast.NodeBreak:
		return ast.NewBreak(), nil
	case ast.NodeDebug:
		test, err := d.expression(node, "test", true)
		if err != nil {
			return nil, err
		}
		return ast.NewDebug(test), nil
	case ast.NodePause:
		return ast.NewPause(), nil
	case ast.NodeRandomize:
		enabled := boolOr(node["enabled"], true)
		lo, err := d.expression(node, "min", false)
		if err != nil {
			return nil, err
		}
		hi, err := d.expression(node, "max", false)
		if err != nil {
			return nil, err
		}
		return ast.NewRandomize(enabled, lo, hi), nil
	case ast.NodeTimer:
		interval, err := d.expression(node, "interval", false)
		if err != nil {
			return nil, err
		}
		return ast.NewTimer(boolOr(node["enabled"], true), interval), nil
	case ast.NodeEcho:
		return ast.NewEcho(boolOr(node["enabled"], true)), nil
	case ast.NodeClearScreen:
		return ast.NewClearScreen(), nil
	case ast.NodeColor:
		color, _ := node["color"].(string)
		if color == "" {
			return nil, fmt.Errorf("Color without color")
		}
		background, _ := node["background"].(bool)
		return ast.NewColor(color, background), nil
	}
	return nil, fmt.Errorf("unsupported node type %q", typ)
}

func boolOr(raw any, fallback bool) bool {
	if b, ok := raw.(bool); ok {
		return b
	}
	return fallback
}
