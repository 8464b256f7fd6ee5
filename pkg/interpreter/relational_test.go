package interpreter

import (
	"testing"

	"visualg/interpreter-go/pkg/ast"
	"visualg/interpreter-go/pkg/runtime"
	"visualg/interpreter-go/pkg/typechecker"
)

// Every comparison the analyzer accepts must also evaluate.
func TestAcceptedComparisonsEvaluate(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(
			ast.Record("ponto", ast.Var(ast.Ty("inteiro"), "x", "y")),
			ast.Var(ast.Ty("logico"), "a", "b"),
			ast.Var(ast.Ty("ponto"), "p", "q"),
			ast.Var(ast.ArrTy("inteiro", ast.Rng(ast.Int(1), ast.Int(3))), "u", "v"),
		),
		ast.Assign(ast.ID("b"), ast.Bool(true)),
		ast.Assign(ast.Member(ast.ID("p"), "x"), ast.Int(1)),
		ast.Assign(ast.Member(ast.ID("q"), "x"), ast.Int(1)),
		ast.WriteLn(ast.Item(ast.Bin(ast.OpLt, ast.ID("a"), ast.ID("b")))),
		ast.WriteLn(ast.Item(ast.Bin(ast.OpLe, ast.ID("b"), ast.ID("a")))),
		ast.WriteLn(ast.Item(ast.Bin(ast.OpGe, ast.ID("b"), ast.ID("b")))),
		ast.WriteLn(ast.Item(ast.Bin(ast.OpEq, ast.ID("p"), ast.ID("q")))),
		ast.WriteLn(ast.Item(ast.Bin(ast.OpEq, ast.ID("u"), ast.ID("v")))),
		ast.Assign(ast.Member(ast.ID("q"), "y"), ast.Int(3)),
		ast.Assign(ast.Index(ast.ID("u"), ast.Int(2)), ast.Int(5)),
		ast.WriteLn(ast.Item(ast.Bin(ast.OpNe, ast.ID("p"), ast.ID("q")))),
		ast.WriteLn(ast.Item(ast.Bin(ast.OpEq, ast.ID("u"), ast.ID("v")))),
	)
	checked := typechecker.Check(program)
	if !checked.OK() {
		t.Fatalf("unexpected diagnostics: %v", checked.Diagnostics)
	}
	interp, state := runProgram(t, newScriptedIO(), program)
	if state.Kind != CompletedSuccessfully {
		t.Fatalf("run ended in %s: %v", state, state.Err)
	}
	want := " VERDADEIRO\n FALSO\n VERDADEIRO\n VERDADEIRO\n VERDADEIRO\n VERDADEIRO\n FALSO\n"
	if got := interp.Output(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestOrderingCompositesIsRejectedByBoth(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(
			ast.Record("ponto", ast.Var(ast.Ty("inteiro"), "x")),
			ast.Var(ast.Ty("ponto"), "p", "q"),
		),
		ast.WriteLn(ast.Item(ast.Bin(ast.OpLt, ast.ID("p"), ast.ID("q")))),
	)
	checked := typechecker.Check(program)
	if len(checked.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %v", checked.Diagnostics)
	}
	_, state := runProgram(t, newScriptedIO(), program)
	expectException(t, state, runtime.InvalidOperand)
}

func TestIntegerPowerBySquaring(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "a", "b", "c")),
		ast.Assign(ast.ID("a"), ast.Bin(ast.OpPow, ast.Int(3), ast.Int(13))),
		ast.Assign(ast.ID("b"), ast.Bin(ast.OpPow, ast.Int(-2), ast.Int(63))),
		ast.Assign(ast.ID("c"), ast.Bin(ast.OpPow, ast.Int(1), ast.Int(1<<62))),
	)
	interp, state := runProgram(t, newScriptedIO(), program)
	if state.Kind != CompletedSuccessfully {
		t.Fatalf("run ended in %s: %v", state, state.Err)
	}
	if a := globalValue(t, interp, "teste", "a").(runtime.IntegerValue).Val; a != 1594323 {
		t.Fatalf("3 ^ 13 = %d", a)
	}
	if b := globalValue(t, interp, "teste", "b").(runtime.IntegerValue).Val; b != -1<<63 {
		t.Fatalf("-2 ^ 63 = %d", b)
	}
	if c := globalValue(t, interp, "teste", "c").(runtime.IntegerValue).Val; c != 1 {
		t.Fatalf("1 ^ 2^62 = %d", c)
	}
}

func TestIntegerPowerOverflow(t *testing.T) {
	program := ast.Prog("teste",
		ast.Decls(ast.Var(ast.Ty("inteiro"), "a")),
		ast.At(3, ast.Assign(ast.ID("a"), ast.Bin(ast.OpPow, ast.Int(10), ast.Int(19)))),
	)
	_, state := runProgram(t, newScriptedIO(), program)
	te := expectException(t, state, runtime.InvalidOperand)
	if te.Location.StartLine != 3 {
		t.Fatalf("expected failure on line 3, got %v", te.Location)
	}
}
