// Package astdoc reads AST documents: YAML or JSON trees in which every node
// is a mapping with a "type" field naming its kind and an optional
// "loc: [startLine, startColumn, endLine, endColumn]".
package astdoc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"visualg/interpreter-go/pkg/ast"
)

// Diagnostic describes a malformed part of a document.
type Diagnostic struct {
	Message  string
	Location ast.Location
}

func (d Diagnostic) String() string {
	if d.Location.IsZero() {
		return d.Message
	}
	return fmt.Sprintf("%d:%d: %s", d.Location.StartLine, d.Location.StartColumn, d.Message)
}

// ParseResult is what the parser boundary hands to the analyzer. Program is
// nil when the root could not be decoded.
type ParseResult struct {
	Program     *ast.AlgoritimoNode
	Diagnostics []Diagnostic
}

func (r ParseResult) OK() bool {
	return r.Program != nil && len(r.Diagnostics) == 0
}

// Decode reads a document. JSON input is accepted since it is valid YAML.
// Malformed commands and declarations are skipped and reported; decoding
// continues with their siblings.
func Decode(data []byte) ParseResult {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ParseResult{Diagnostics: []Diagnostic{{Message: fmt.Sprintf("astdoc: %v", err)}}}
	}
	if raw == nil {
		return ParseResult{Diagnostics: []Diagnostic{{Message: "astdoc: empty document"}}}
	}
	d := &decoder{}
	node, err := d.decodeNode(raw)
	if err != nil {
		d.report(raw, err)
		return ParseResult{Diagnostics: d.diags}
	}
	program, ok := node.(*ast.AlgoritimoNode)
	if !ok {
		d.report(raw, fmt.Errorf("document root must be Algoritimo, got %s", node.NodeType()))
		return ParseResult{Diagnostics: d.diags}
	}
	return ParseResult{Program: program, Diagnostics: d.diags}
}

// DecodeFile reads and decodes the document at path.
func DecodeFile(path string) (ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("read program %s: %w", path, err)
	}
	return Decode(data), nil
}

type decoder struct {
	diags []Diagnostic
}

func (d *decoder) report(node map[string]any, err error) {
	loc, _ := decodeLocation(node["loc"])
	d.diags = append(d.diags, Diagnostic{Message: "astdoc: " + err.Error(), Location: loc})
}

func (d *decoder) decodeNode(node map[string]any) (ast.Node, error) {
	typ, _ := node["type"].(string)
	if typ == "" {
		return nil, fmt.Errorf("node without type")
	}
	decoded, err := d.decodeKind(node, typ)
	if err != nil {
		return nil, err
	}
	if raw, ok := node["loc"]; ok {
		loc, err := decodeLocation(raw)
		if err != nil {
			return nil, err
		}
		ast.SetLocation(decoded, loc)
	}
	return decoded, nil
}

func (d *decoder) decodeKind(node map[string]any, typ string) (ast.Node, error) {
	if decoded, handled, err := d.decodeExpressionNodes(node, typ); handled {
		return decoded, err
	}
	switch ast.NodeType(typ) {
	case ast.NodeAlgoritimo:
		name, _ := node["name"].(string)
		decls, err := d.declarations(node, "declarations")
		if err != nil {
			return nil, err
		}
		cmds, err := d.commands(node, "commands")
		if err != nil {
			return nil, err
		}
		if cmds == nil {
			cmds = ast.NewCommands(nil)
		}
		return ast.NewAlgoritimo(name, decls, cmds), nil
	case ast.NodeVariableDeclaration:
		return d.variableDeclaration(node)
	case ast.NodeConstantDeclaration:
		name, err := d.identifier(node, "name")
		if err != nil {
			return nil, err
		}
		value, err := d.expression(node, "value", true)
		if err != nil {
			return nil, err
		}
		return ast.NewConstantDeclaration(name, value), nil
	case ast.NodeRecordDeclaration:
		name, _ := node["name"].(string)
		items, _ := node["fields"].([]any)
		fields := make([]*ast.VariableDeclarationNode, 0, len(items))
		for _, raw := range items {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid field entry %T", raw)
			}
			decoded, err := d.decodeNode(child)
			if err != nil {
				return nil, err
			}
			field, ok := decoded.(*ast.VariableDeclarationNode)
			if !ok {
				return nil, fmt.Errorf("registro field must be VariableDeclaration, got %s", decoded.NodeType())
			}
			fields = append(fields, field)
		}
		return ast.NewRecordDeclaration(name, fields), nil
	case ast.NodeFunctionDeclaration:
		name, _ := node["name"].(string)
		params, err := d.parameters(node)
		if err != nil {
			return nil, err
		}
		ret, err := d.typeExpression(node, "returnType")
		if err != nil {
			return nil, err
		}
		decls, err := d.declarations(node, "declarations")
		if err != nil {
			return nil, err
		}
		cmds, err := d.commands(node, "commands")
		if err != nil {
			return nil, err
		}
		return ast.NewFunctionDeclaration(name, params, ret, decls, cmds), nil
	case ast.NodeProcedureDeclaration:
		name, _ := node["name"].(string)
		params, err := d.parameters(node)
		if err != nil {
			return nil, err
		}
		decls, err := d.declarations(node, "declarations")
		if err != nil {
			return nil, err
		}
		cmds, err := d.commands(node, "commands")
		if err != nil {
			return nil, err
		}
		return ast.NewProcedureDeclaration(name, params, decls, cmds), nil
	case ast.NodeParameter:
		name, err := d.identifier(node, "name")
		if err != nil {
			return nil, err
		}
		typ, err := d.typeExpression(node, "paramType")
		if err != nil {
			return nil, err
		}
		byRef, _ := node["byReference"].(bool)
		return ast.NewParameter(name, typ, byRef), nil
	case ast.NodeTypeName:
		name, _ := node["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("Type without name")
		}
		return ast.NewType(name), nil
	case ast.NodeArrayType:
		elem, err := d.typeExpression(node, "elementType")
		if err != nil {
			return nil, err
		}
		named, ok := elem.(*ast.TypeNode)
		if !ok {
			return nil, fmt.Errorf("vetor element type must be a named type")
		}
		items, _ := node["dimensions"].([]any)
		dims := make([]*ast.RangeNode, 0, len(items))
		for _, raw := range items {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid dimension entry %T", raw)
			}
			decoded, err := d.decodeNode(child)
			if err != nil {
				return nil, err
			}
			rng, ok := decoded.(*ast.RangeNode)
			if !ok {
				return nil, fmt.Errorf("vetor dimension must be Range, got %s", decoded.NodeType())
			}
			dims = append(dims, rng)
		}
		if len(dims) == 0 {
			return nil, fmt.Errorf("vetor type without dimensions")
		}
		return ast.NewArrayType(named, dims), nil
	}
	return d.decodeCommandNodes(node, typ)
}

func (d *decoder) variableDeclaration(node map[string]any) (ast.Node, error) {
	var ids []*ast.IdNode
	switch names := node["names"].(type) {
	case []any:
		for _, raw := range names {
			id, err := d.nameOrId(raw)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	case string:
		ids = append(ids, ast.NewId(names))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("VariableDeclaration without names")
	}
	typ, err := d.typeExpression(node, "varType")
	if err != nil {
		return nil, err
	}
	return ast.NewVariableDeclaration(ids, typ), nil
}

func (d *decoder) parameters(node map[string]any) ([]*ast.ParameterNode, error) {
	items, _ := node["parameters"].([]any)
	params := make([]*ast.ParameterNode, 0, len(items))
	for _, raw := range items {
		child, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid parameter entry %T", raw)
		}
		if _, typed := child["type"]; !typed {
			child["type"] = string(ast.NodeParameter)
		}
		decoded, err := d.decodeNode(child)
		if err != nil {
			return nil, err
		}
		param, ok := decoded.(*ast.ParameterNode)
		if !ok {
			return nil, fmt.Errorf("invalid parameter %s", decoded.NodeType())
		}
		params = append(params, param)
	}
	return params, nil
}

// typeExpression accepts either a type node or a bare type name.
func (d *decoder) typeExpression(node map[string]any, key string) (ast.TypeExpression, error) {
	switch raw := node[key].(type) {
	case string:
		return ast.NewType(raw), nil
	case map[string]any:
		decoded, err := d.decodeNode(raw)
		if err != nil {
			return nil, err
		}
		typ, ok := decoded.(ast.TypeExpression)
		if !ok {
			return nil, fmt.Errorf("%s must be a type, got %s", key, decoded.NodeType())
		}
		return typ, nil
	case nil:
		return nil, fmt.Errorf("missing %s", key)
	default:
		return nil, fmt.Errorf("invalid %s %T", key, raw)
	}
}

// declarations decodes a list of declarations, reporting and skipping the
// malformed ones.
func (d *decoder) declarations(node map[string]any, key string) (*ast.DeclarationsNode, error) {
	raw, present := node[key]
	if !present || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a list", key)
	}
	decls := make([]ast.Declaration, 0, len(items))
	for _, item := range items {
		child, ok := item.(map[string]any)
		if !ok {
			d.diags = append(d.diags, Diagnostic{Message: fmt.Sprintf("astdoc: invalid declaration entry %T", item)})
			continue
		}
		decoded, err := d.decodeNode(child)
		if err != nil {
			d.report(child, err)
			continue
		}
		decl, ok := decoded.(ast.Declaration)
		if !ok {
			d.report(child, fmt.Errorf("%s is not a declaration", decoded.NodeType()))
			continue
		}
		decls = append(decls, decl)
	}
	return ast.NewDeclarations(decls), nil
}

// commands decodes a command block, reporting and skipping malformed commands.
func (d *decoder) commands(node map[string]any, key string) (*ast.CommandsNode, error) {
	raw, present := node[key]
	if !present || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a list", key)
	}
	cmds := make([]ast.Command, 0, len(items))
	for _, item := range items {
		child, ok := item.(map[string]any)
		if !ok {
			d.diags = append(d.diags, Diagnostic{Message: fmt.Sprintf("astdoc: invalid command entry %T", item)})
			continue
		}
		decoded, err := d.decodeNode(child)
		if err != nil {
			d.report(child, err)
			continue
		}
		cmd, ok := decoded.(ast.Command)
		if !ok {
			d.report(child, fmt.Errorf("%s is not a command", decoded.NodeType()))
			continue
		}
		cmds = append(cmds, cmd)
	}
	return ast.NewCommands(cmds), nil
}

func decodeLocation(raw any) (ast.Location, error) {
	items, ok := raw.([]any)
	if !ok {
		if raw == nil {
			return ast.Location{}, nil
		}
		return ast.Location{}, fmt.Errorf("loc must be a list, got %T", raw)
	}
	if len(items) != 2 && len(items) != 4 {
		return ast.Location{}, fmt.Errorf("loc needs 2 or 4 numbers, got %d", len(items))
	}
	nums := make([]int, len(items))
	for n, item := range items {
		v, ok := toInt64(item)
		if !ok {
			return ast.Location{}, fmt.Errorf("loc entry %v is not an integer", item)
		}
		nums[n] = int(v)
	}
	if len(nums) == 2 {
		return ast.Location{StartLine: nums[0], StartColumn: nums[1], EndLine: nums[0], EndColumn: nums[1]}, nil
	}
	return ast.Location{StartLine: nums[0], StartColumn: nums[1], EndLine: nums[2], EndColumn: nums[3]}, nil
}
