package interpreter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"visualg/interpreter-go/pkg/ast"
	"visualg/interpreter-go/pkg/runtime"
)

func runProgram(t *testing.T, io runtime.IO, program *ast.AlgoritimoNode, opts ...Option) (*Interpreter, State) {
	t.Helper()
	interp := New(io, opts...)
	state := interp.Run(context.Background(), program)
	return interp, state
}

func expectException(t *testing.T, state State, kind runtime.ExceptionKind) *runtime.TypeException {
	t.Helper()
	if state.Kind != CompletedExceptionally {
		t.Fatalf("expected CompletedExceptionally, got %s", state)
	}
	var te *runtime.TypeException
	if !errors.As(state.Err, &te) || te.Kind != kind {
		t.Fatalf("expected %s, got %v", kind, state.Err)
	}
	return te
}

func TestForLoopRunsInclusiveRange(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "a", "n")),
		ast.For("a", ast.Int(0), ast.Int(10), nil,
			ast.Assign(ast.ID("n"), ast.Bin(ast.OpAdd, ast.ID("n"), ast.Int(1))),
		),
	)
	interp, state := runProgram(t, newScriptedIO(), program)
	if state.Kind != CompletedSuccessfully {
		t.Fatalf("unexpected state %s", state)
	}
	if n := globalValue(t, interp, "teste", "n").(runtime.IntegerValue).Val; n != 11 {
		t.Fatalf("expected 11 iterations, got %d", n)
	}
	if a := globalValue(t, interp, "teste", "a").(runtime.IntegerValue).Val; a != 11 {
		t.Fatalf("expected a = 11 after the loop, got %d", a)
	}
}

func TestForLoopWithStepAndBreak(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "i", "soma")),
		ast.For("i", ast.Int(1), ast.Int(9), ast.Int(2),
			ast.Assign(ast.ID("soma"), ast.Bin(ast.OpAdd, ast.ID("soma"), ast.ID("i"))),
		),
		ast.For("i", ast.Int(1), nil, nil,
			ast.If(ast.Bin(ast.OpEq, ast.ID("i"), ast.Int(4)), ast.Cmds(ast.Break()), nil),
		),
	)
	interp, state := runProgram(t, newScriptedIO(), program)
	if state.Kind != CompletedSuccessfully {
		t.Fatalf("unexpected state %s", state)
	}
	if soma := globalValue(t, interp, "teste", "soma").(runtime.IntegerValue).Val; soma != 25 {
		t.Fatalf("expected 1+3+5+7+9 = 25, got %d", soma)
	}
	if i := globalValue(t, interp, "teste", "i").(runtime.IntegerValue).Val; i != 4 {
		t.Fatalf("unbounded loop should stop at interrompa with i = 4, got %d", i)
	}
}

func TestDescendingForLoopDoesNotRun(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "i", "n")),
		ast.For("i", ast.Int(10), ast.Int(1), ast.Int(-1),
			ast.Assign(ast.ID("n"), ast.Bin(ast.OpAdd, ast.ID("n"), ast.Int(1))),
		),
	)
	interp, _ := runProgram(t, newScriptedIO(), program)
	if n := globalValue(t, interp, "teste", "n").(runtime.IntegerValue).Val; n != 0 {
		t.Fatalf("expected no iterations, got %d", n)
	}
}

func TestWhileAndRepeatLoops(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "x", "y")),
		ast.While(ast.Bin(ast.OpLt, ast.ID("x"), ast.Int(3)),
			ast.Assign(ast.ID("x"), ast.Bin(ast.OpAdd, ast.ID("x"), ast.Int(1))),
		),
		ast.DoWhile(ast.Bool(false),
			ast.Assign(ast.ID("y"), ast.Int(7)),
		),
	)
	interp, _ := runProgram(t, newScriptedIO(), program)
	if x := globalValue(t, interp, "teste", "x").(runtime.IntegerValue).Val; x != 3 {
		t.Fatalf("expected x = 3, got %d", x)
	}
	if y := globalValue(t, interp, "teste", "y").(runtime.IntegerValue).Val; y != 7 {
		t.Fatalf("test-after loop must run its body once, y = %d", y)
	}
}

func TestWriteCommandOutput(t *testing.T) {
	io := newScriptedIO()
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("real"), "r")),
		ast.Assign(ast.ID("r"), ast.Real(6.125)),
		ast.WriteLn(ast.Item(ast.Str("r =")), ast.Item(ast.ID("r"))),
		ast.Write(ast.ItemFmt(ast.ID("r"), ast.Int(2), ast.Int(2)), ast.Item(ast.Bool(true))),
	)
	interp, state := runProgram(t, io, program)
	if state.Kind != CompletedSuccessfully {
		t.Fatalf("unexpected state %s", state)
	}
	want := "r = 6.125\n6.13 VERDADEIRO"
	if got := interp.Output(); got != want {
		t.Fatalf("expected output %q, got %q", want, got)
	}
	if len(io.Events()) != 2 {
		t.Fatalf("expected one event per escreva, got %d", len(io.Events()))
	}
}

func TestArithmeticPromotionAndConcatenation(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(
			ast.Var(ast.Ty("inteiro"), "i"),
			ast.Var(ast.Ty("real"), "r"),
			ast.Var(ast.Ty("caractere"), "s"),
		),
		ast.Assign(ast.ID("i"), ast.Bin(ast.OpDiv, ast.Int(7), ast.Int(2))),
		ast.Assign(ast.ID("r"), ast.Bin(ast.OpAdd, ast.Int(1), ast.Real(0.5))),
		ast.Assign(ast.ID("s"), ast.Bin(ast.OpAdd, ast.Str("ab"), ast.Str("cd"))),
	)
	interp, _ := runProgram(t, newScriptedIO(), program)
	if i := globalValue(t, interp, "teste", "i").(runtime.IntegerValue).Val; i != 3 {
		t.Fatalf("expected integer division 3, got %d", i)
	}
	if r := globalValue(t, interp, "teste", "r").(runtime.RealValue).Val; r != 1.5 {
		t.Fatalf("expected 1.5, got %v", r)
	}
	if s := globalValue(t, interp, "teste", "s").(runtime.StringValue).Val; s != "abcd" {
		t.Fatalf("expected abcd, got %q", s)
	}
}

func TestNumericAssignmentCoercesToDeclaredKind(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "i"), ast.Var(ast.Ty("real"), "r")),
		ast.Assign(ast.ID("i"), ast.Real(3.9)),
		ast.Assign(ast.ID("r"), ast.Int(2)),
	)
	interp, _ := runProgram(t, newScriptedIO(), program)
	if _, ok := globalValue(t, interp, "teste", "i").(runtime.IntegerValue); !ok {
		t.Fatalf("inteiro variable changed kind")
	}
	if r, ok := globalValue(t, interp, "teste", "r").(runtime.RealValue); !ok || r.Val != 2 {
		t.Fatalf("expected real 2, got %#v", r)
	}
}

func TestInvalidAssignment(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "i")),
		ast.At(3, ast.Assign(ast.ID("i"), ast.Str("x"))),
	)
	_, state := runProgram(t, newScriptedIO(), program)
	te := expectException(t, state, runtime.InvalidAssignment)
	if te.Location.StartLine != 3 {
		t.Fatalf("expected failure located on line 3, got %v", te.Location)
	}
}

func TestInvalidOperandNamesOperatorAndKinds(t *testing.T) {
	program := ast.Prog("teste", nil,
		ast.WriteLn(ast.Item(ast.Bin(ast.OpMul, ast.Str("a"), ast.Bool(true)))),
	)
	_, state := runProgram(t, newScriptedIO(), program)
	te := expectException(t, state, runtime.InvalidOperand)
	for _, fragment := range []string{"'*'", "caractere", "logico"} {
		if !strings.Contains(te.Message, fragment) {
			t.Fatalf("message %q does not mention %s", te.Message, fragment)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "i")),
		ast.Assign(ast.ID("i"), ast.Bin(ast.OpDiv, ast.Int(1), ast.Int(0))),
	)
	_, state := runProgram(t, newScriptedIO(), program)
	expectException(t, state, runtime.DivisionByZero)
}

func TestLogicalOperatorsShortCircuit(t *testing.T) {
	// The right operand would fail if it were evaluated.
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("logico"), "b")),
		ast.Assign(ast.ID("b"), ast.Bin(ast.OpAnd, ast.Bool(false), ast.Bin(ast.OpEq, ast.Bin(ast.OpDiv, ast.Int(1), ast.Int(0)), ast.Int(1)))),
		ast.Assign(ast.ID("b"), ast.Bin(ast.OpOr, ast.Bool(true), ast.ID("naoexiste"))),
	)
	interp, state := runProgram(t, newScriptedIO(), program)
	if state.Kind != CompletedSuccessfully {
		t.Fatalf("unexpected state %s", state)
	}
	if !globalValue(t, interp, "teste", "b").(runtime.BoolValue).Val {
		t.Fatalf("expected b = verdadeiro")
	}
}

func TestMissingInputFailsRun(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "x")),
		ast.Read(ast.ID("x")),
	)
	_, state := runProgram(t, newScriptedIO(), program)
	expectException(t, state, runtime.MissingInput)
}

func TestReadUsesTargetKind(t *testing.T) {
	io := newScriptedIO(runtime.IntInput(4), runtime.TextInput("ana"), runtime.IntInput(2))
	program := ast.Prog("teste",
		ast.Decls(
			ast.Var(ast.Ty("inteiro"), "n"),
			ast.Var(ast.Ty("caractere"), "nome"),
			ast.Var(ast.Ty("real"), "r"),
		),
		ast.Read(ast.ID("n"), ast.ID("nome"), ast.ID("r")),
	)
	interp, state := runProgram(t, io, program)
	if state.Kind != CompletedSuccessfully {
		t.Fatalf("unexpected state %s", state)
	}
	reqs := io.Requests()
	if len(reqs) != 3 || reqs[0].ExpectedType != runtime.KindInteger || reqs[1].ExpectedType != runtime.KindText || reqs[2].ExpectedType != runtime.KindReal {
		t.Fatalf("unexpected requests %+v", reqs)
	}
	if reqs[1].VariableName != "nome" {
		t.Fatalf("expected request for 'nome', got %q", reqs[1].VariableName)
	}
	if r := globalValue(t, interp, "teste", "r").(runtime.RealValue).Val; r != 2 {
		t.Fatalf("inteiro answer should widen to real, got %v", r)
	}
}

func TestReadRejectsWrongInputKind(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "n")),
		ast.Read(ast.ID("n")),
	)
	_, state := runProgram(t, newScriptedIO(runtime.TextInput("dez")), program)
	expectException(t, state, runtime.InvalidAssignment)
}

func TestRandomizeGeneratesInputs(t *testing.T) {
	io := newScriptedIO()
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "n")),
		ast.NewRandomize(true, ast.Int(5), ast.Int(5)),
		ast.Read(ast.ID("n")),
	)
	interp, state := runProgram(t, io, program, WithRandomSeed(1))
	if state.Kind != CompletedSuccessfully {
		t.Fatalf("unexpected state %s", state)
	}
	if n := globalValue(t, interp, "teste", "n").(runtime.IntegerValue).Val; n != 5 {
		t.Fatalf("expected generated value 5, got %d", n)
	}
	if len(io.Requests()) != 0 {
		t.Fatalf("aleatorio must not ask for input")
	}
	if interp.Output() != "5\n" {
		t.Fatalf("expected generated value to be echoed, got %q", interp.Output())
	}
}

func TestFunctionsProceduresAndReferences(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(
			ast.Var(ast.Ty("inteiro"), "a", "b", "f"),
			ast.Func("fatorial", ast.Params(ast.Param("n", ast.Ty("inteiro"))), ast.Ty("inteiro"), nil,
				ast.If(ast.Bin(ast.OpLe, ast.ID("n"), ast.Int(1)), ast.Cmds(ast.Ret(ast.Int(1))), nil),
				ast.Ret(ast.Bin(ast.OpMul, ast.ID("n"), ast.Call("fatorial", ast.Bin(ast.OpSub, ast.ID("n"), ast.Int(1))))),
			),
			ast.Proc("troca", ast.Params(ast.RefParam("x", ast.Ty("inteiro")), ast.RefParam("y", ast.Ty("inteiro"))),
				ast.Decls(ast.Var(ast.Ty("inteiro"), "t")),
				ast.Assign(ast.ID("t"), ast.ID("x")),
				ast.Assign(ast.ID("x"), ast.ID("y")),
				ast.Assign(ast.ID("y"), ast.ID("t")),
			),
		),
		ast.Assign(ast.ID("a"), ast.Int(1)),
		ast.Assign(ast.ID("b"), ast.Int(2)),
		ast.Call("troca", ast.ID("a"), ast.ID("b")),
		ast.Assign(ast.ID("f"), ast.Call("FATORIAL", ast.Int(5))),
	)
	interp, state := runProgram(t, newScriptedIO(), program)
	if state.Kind != CompletedSuccessfully {
		t.Fatalf("unexpected state %s", state)
	}
	if a := globalValue(t, interp, "teste", "a").(runtime.IntegerValue).Val; a != 2 {
		t.Fatalf("expected a = 2 after troca, got %d", a)
	}
	if b := globalValue(t, interp, "teste", "b").(runtime.IntegerValue).Val; b != 1 {
		t.Fatalf("expected b = 1 after troca, got %d", b)
	}
	if f := globalValue(t, interp, "teste", "f").(runtime.IntegerValue).Val; f != 120 {
		t.Fatalf("expected 5! = 120, got %d", f)
	}
	if _, ok := interp.Snapshot().Stack["troca"]; ok {
		t.Fatalf("finished call frames must not appear in the final snapshot")
	}
}

func TestCallErrors(t *testing.T) {
	cases := []struct {
		name    string
		program *ast.AlgoritimoNode
		kind    runtime.ExceptionKind
	}{
		{"unknown procedure", ast.Prog("teste", nil, ast.Call("nada")), runtime.ProcedureNotFound},
		{"unknown function", ast.Prog("teste", ast.Decls(ast.Var(ast.Ty("inteiro"), "x")), ast.Assign(ast.ID("x"), ast.Call("nada"))), runtime.FunctionNotFound},
		{"arity", ast.Prog("teste", nil, ast.Call("raizq")), runtime.WrongNumberOfArguments},
		{"unknown variable", ast.Prog("teste", nil, ast.WriteLn(ast.Item(ast.ID("x")))), runtime.VariableNotFound},
		{"unknown type", ast.Prog("teste", ast.Decls(ast.Var(ast.Ty("pessoa"), "p"))), runtime.TypeNotFound},
	}
	for _, tc := range cases {
		_, state := runProgram(t, newScriptedIO(), tc.program)
		if state.Kind != CompletedExceptionally {
			t.Fatalf("%s: expected failure, got %s", tc.name, state)
		}
		var te *runtime.TypeException
		if !errors.As(state.Err, &te) || te.Kind != tc.kind {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.kind, state.Err)
		}
	}
}

func TestArraysAndRecords(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(
			ast.Record("ponto", ast.Var(ast.Ty("inteiro"), "x", "y")),
			ast.Var(ast.ArrTy("inteiro", ast.Rng(ast.Int(1), ast.Int(2)), ast.Rng(ast.Int(0), ast.Int(1))), "m"),
			ast.Var(ast.Ty("ponto"), "p", "q"),
		),
		ast.Assign(ast.Index(ast.ID("m"), ast.Int(2), ast.Int(1)), ast.Int(9)),
		ast.Assign(ast.Member(ast.ID("p"), "X"), ast.Index(ast.ID("m"), ast.Int(2), ast.Int(1))),
		ast.Assign(ast.ID("q"), ast.ID("p")),
		ast.Assign(ast.Member(ast.ID("p"), "x"), ast.Int(1)),
	)
	interp, state := runProgram(t, newScriptedIO(), program)
	if state.Kind != CompletedSuccessfully {
		t.Fatalf("unexpected state %s", state)
	}
	q := globalValue(t, interp, "teste", "q").(*runtime.RecordValue)
	if x, _ := q.Field("x"); x.(runtime.IntegerValue).Val != 9 {
		t.Fatalf("record assignment must copy, q.x = %v", x)
	}
	m := globalValue(t, interp, "teste", "m").(*runtime.ArrayValue)
	if m.Elements[1].(*runtime.ArrayValue).Elements[1].(runtime.IntegerValue).Val != 9 {
		t.Fatalf("unexpected matrix contents %s", runtime.Describe(m))
	}
}

func TestIndexOutOfBounds(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.ArrTy("inteiro", ast.Rng(ast.Int(1), ast.Int(3))), "v")),
		ast.Assign(ast.Index(ast.ID("v"), ast.Int(4)), ast.Int(1)),
	)
	_, state := runProgram(t, newScriptedIO(), program)
	expectException(t, state, runtime.IndexOutOfBounds)
}

func TestChooseMatchesValuesAndRanges(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "n"), ast.Var(ast.Ty("caractere"), "faixa")),
		ast.Assign(ast.ID("n"), ast.Int(7)),
		ast.Choose(ast.ID("n"), ast.Cmds(ast.Assign(ast.ID("faixa"), ast.Str("outro"))),
			ast.Case(ast.Exprs(ast.Int(1), ast.Int(2)), ast.Assign(ast.ID("faixa"), ast.Str("baixo"))),
			ast.Case(ast.Exprs(ast.Rng(ast.Int(5), ast.Int(9))), ast.Assign(ast.ID("faixa"), ast.Str("medio"))),
		),
	)
	interp, _ := runProgram(t, newScriptedIO(), program)
	if got := globalValue(t, interp, "teste", "faixa").(runtime.StringValue).Val; got != "medio" {
		t.Fatalf("expected medio, got %q", got)
	}
}

func TestBuiltins(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(
			ast.Var(ast.Ty("inteiro"), "tam", "p", "i"),
			ast.Var(ast.Ty("caractere"), "c"),
			ast.Var(ast.Ty("real"), "r"),
		),
		ast.Assign(ast.ID("tam"), ast.Call("compr", ast.Str("visualg"))),
		ast.Assign(ast.ID("c"), ast.Call("maiusc", ast.Call("copia", ast.Str("visualg"), ast.Int(2), ast.Int(3)))),
		ast.Assign(ast.ID("p"), ast.Call("pos", ast.Str("al"), ast.Str("visualg"))),
		ast.Assign(ast.ID("r"), ast.Call("raizq", ast.Int(16))),
		ast.Assign(ast.ID("i"), ast.Call("int", ast.Real(3.7))),
	)
	interp, state := runProgram(t, newScriptedIO(), program)
	if state.Kind != CompletedSuccessfully {
		t.Fatalf("unexpected state %s", state)
	}
	checks := map[string]runtime.Value{
		"tam": runtime.IntegerValue{Val: 7},
		"c":   runtime.StringValue{Val: "ISU"},
		"p":   runtime.IntegerValue{Val: 5},
		"r":   runtime.RealValue{Val: 4},
		"i":   runtime.IntegerValue{Val: 3},
	}
	for name, want := range checks {
		if got := globalValue(t, interp, "teste", name); got != want {
			t.Fatalf("%s: expected %#v, got %#v", name, want, got)
		}
	}
}

func TestPseudoCommandsEmitEvents(t *testing.T) {
	io := newScriptedIO()
	program := ast.Prog("teste", nil,
		ast.NewClearScreen(),
		ast.NewColor("Azul", true),
	)
	_, state := runProgram(t, io, program)
	if state.Kind != CompletedSuccessfully {
		t.Fatalf("unexpected state %s", state)
	}
	events := io.Events()
	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if _, ok := events[0].(runtime.ClearEvent); !ok {
		t.Fatalf("expected ClearEvent, got %#v", events[0])
	}
	color, ok := events[1].(runtime.ChangeColorEvent)
	if !ok || color.Color != "azul" || color.Target != runtime.Background {
		t.Fatalf("unexpected color event %#v", events[1])
	}
}

func TestBreakAtTopLevelEndsProgram(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "x")),
		ast.Break(),
		ast.Assign(ast.ID("x"), ast.Int(1)),
	)
	interp, state := runProgram(t, newScriptedIO(), program)
	if state.Kind != CompletedSuccessfully {
		t.Fatalf("unexpected state %s", state)
	}
	if x := globalValue(t, interp, "teste", "x").(runtime.IntegerValue).Val; x != 0 {
		t.Fatalf("commands after interrompa must not run, x = %d", x)
	}
}

func TestNilProgramFails(t *testing.T) {
	_, state := runProgram(t, newScriptedIO(), nil)
	if state.Kind != CompletedExceptionally || !errors.Is(state.Err, ErrNoProgram) {
		t.Fatalf("expected ErrNoProgram, got %s", state)
	}
}
