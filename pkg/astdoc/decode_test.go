package astdoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"visualg/interpreter-go/pkg/ast"
)

const mediaYAML = `
type: Algoritimo
name: media
loc: [1, 1, 12, 13]
declarations:
  - type: VariableDeclaration
    names: [a, b]
    varType: real
  - type: VariableDeclaration
    names: [notas]
    varType:
      type: ArrayType
      elementType: {type: Type, name: inteiro}
      dimensions:
        - type: Range
          start: {type: IntLiteral, value: 1}
          end: {type: IntLiteral, value: 3}
  - type: FunctionDeclaration
    name: dobro
    parameters:
      - {name: x, paramType: real, byReference: true}
    returnType: real
    commands:
      - type: Return
        value:
          type: Binary
          operator: "*"
          left: {type: Id, name: x}
          right: {type: IntLiteral, value: 2}
commands:
  - type: Read
    loc: [6, 4]
    targets: [{type: Id, name: a}]
  - type: Assignment
    loc: [7, 4, 7, 20]
    target: {type: Id, name: b}
    value:
      type: Call
      name: dobro
      arguments: [{type: Id, name: a}]
  - type: Write
    newLine: true
    items:
      - {type: StringLiteral, value: "dobro: "}
      - type: WriteItem
        value: {type: Id, name: b}
        width: {type: IntLiteral, value: 5}
        precision: {type: IntLiteral, value: 2}
  - type: For
    variable: a
    start: {type: IntLiteral, value: 1}
    end: {type: IntLiteral, value: 3}
    body:
      - {type: Pause}
`

func TestDecodeYAMLProgram(t *testing.T) {
	result := Decode([]byte(mediaYAML))
	if !result.OK() {
		t.Fatalf("unexpected diagnostics: %v", result.Diagnostics)
	}
	program := result.Program
	if program.Name != "media" || program.Location().EndLine != 12 {
		t.Fatalf("unexpected root %s at %v", program.Name, program.Location())
	}
	if got := len(program.Declarations.Items); got != 3 {
		t.Fatalf("expected 3 declarations, got %d", got)
	}
	vars := program.Declarations.Items[0].(*ast.VariableDeclarationNode)
	if len(vars.Names) != 2 || vars.Type.(*ast.TypeNode).Name != "real" {
		t.Fatalf("unexpected variable declaration %#v", vars)
	}
	arr := program.Declarations.Items[1].(*ast.VariableDeclarationNode).Type.(*ast.ArrayTypeNode)
	if arr.ElementType.Name != "inteiro" || len(arr.Dimensions) != 1 {
		t.Fatalf("unexpected vetor type %#v", arr)
	}
	fn := program.Declarations.Items[2].(*ast.FunctionDeclarationNode)
	if len(fn.Parameters) != 1 || !fn.Parameters[0].ByReference {
		t.Fatalf("expected one by-reference parameter, got %#v", fn.Parameters)
	}

	cmds := program.Commands.Commands
	if len(cmds) != 4 {
		t.Fatalf("expected 4 commands, got %d", len(cmds))
	}
	if loc := cmds[0].Location(); loc.StartLine != 6 || loc.StartColumn != 4 || loc.EndLine != 6 {
		t.Fatalf("short loc not expanded: %v", loc)
	}
	assign := cmds[1].(*ast.AssignmentCommand)
	if call, ok := assign.Value.(*ast.CallNode); !ok || call.Name != "dobro" || len(call.Arguments) != 1 {
		t.Fatalf("unexpected assignment value %#v", assign.Value)
	}
	write := cmds[2].(*ast.WriteCommand)
	if !write.NewLine || len(write.Items) != 2 {
		t.Fatalf("unexpected escreva %#v", write)
	}
	if write.Items[0].Width != nil || write.Items[1].Precision == nil {
		t.Fatalf("escreva item formats decoded wrongly")
	}
	loop := cmds[3].(*ast.ForCommand)
	if loop.Variable.Name != "a" || loop.Step != nil {
		t.Fatalf("unexpected para %#v", loop)
	}
	if _, ok := loop.Body.Commands[0].(*ast.PauseCommand); !ok {
		t.Fatalf("expected pausa in loop body")
	}
}

func TestDecodeJSONProgram(t *testing.T) {
	doc := `{
  "type": "Algoritimo",
  "name": "ola",
  "commands": [
    {"type": "Call", "name": "limpa", "loc": [3, 1]},
    {"type": "Conditional",
     "test": {"type": "Unary", "operator": "nao", "operand": {"type": "BoolLiteral", "value": false}},
     "then": [{"type": "Write", "items": [{"type": "RealLiteral", "value": 2.5}]}]}
  ]
}`
	result := Decode([]byte(doc))
	if !result.OK() {
		t.Fatalf("unexpected diagnostics: %v", result.Diagnostics)
	}
	cmds := result.Program.Commands.Commands
	if _, ok := cmds[0].(*ast.CallNode); !ok {
		t.Fatalf("expected call command, got %T", cmds[0])
	}
	cond := cmds[1].(*ast.ConditionalCommand)
	if un := cond.Test.(*ast.UnaryNode); un.Operator != ast.OpNot {
		t.Fatalf("unexpected operator %q", un.Operator)
	}
	if cond.Else != nil {
		t.Fatalf("absent senao should decode to nil")
	}
}

func TestMalformedCommandsBecomeDiagnostics(t *testing.T) {
	doc := `
type: Algoritimo
name: quebrado
commands:
  - {type: Assignment, loc: [4, 1], target: {type: Id, name: x}}
  - {type: Binary, operator: "**", left: {type: IntLiteral, value: 1}, right: {type: IntLiteral, value: 2}}
  - {type: Teleport, loc: [6, 1]}
  - {type: Break}
`
	result := Decode([]byte(doc))
	if result.Program == nil {
		t.Fatalf("valid root should still produce a program")
	}
	if len(result.Program.Commands.Commands) != 1 {
		t.Fatalf("expected only the valid command to survive, got %d", len(result.Program.Commands.Commands))
	}
	if len(result.Diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %v", result.Diagnostics)
	}
	if result.Diagnostics[0].Location.StartLine != 4 || !strings.Contains(result.Diagnostics[0].Message, "missing value") {
		t.Fatalf("unexpected first diagnostic %v", result.Diagnostics[0])
	}
	if !strings.Contains(result.Diagnostics[1].Message, "unknown operator") {
		t.Fatalf("unexpected second diagnostic %v", result.Diagnostics[1])
	}
	if got := result.Diagnostics[2].String(); got != `6:1: astdoc: unsupported node type "Teleport"` {
		t.Fatalf("unexpected diagnostic text %q", got)
	}
}

func TestDecodeRejectsNonProgramRoot(t *testing.T) {
	cases := map[string]string{
		"syntax":  "type: [",
		"empty":   "",
		"wrong":   "{type: IntLiteral, value: 1}",
		"untyped": "{name: x}",
	}
	for name, doc := range cases {
		result := Decode([]byte(doc))
		if result.Program != nil || len(result.Diagnostics) == 0 {
			t.Fatalf("%s: expected a diagnostic and no program, got %+v", name, result)
		}
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programa.yml")
	if err := os.WriteFile(path, []byte(mediaYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	result, err := DecodeFile(path)
	if err != nil || !result.OK() {
		t.Fatalf("DecodeFile: %v %v", err, result.Diagnostics)
	}
	if _, err := DecodeFile(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
