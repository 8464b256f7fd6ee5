package ast

// Short constructors used by tests and fixtures.

func Prog(name string, decls *DeclarationsNode, cmds ...Command) *AlgoritimoNode {
	return NewAlgoritimo(name, decls, NewCommands(cmds))
}

func Decls(items ...Declaration) *DeclarationsNode {
	return NewDeclarations(items)
}

func Cmds(cmds ...Command) *CommandsNode {
	return NewCommands(cmds)
}

func Ty(name string) *TypeNode {
	return NewType(name)
}

func ArrTy(element string, dims ...*RangeNode) *ArrayTypeNode {
	return NewArrayType(NewType(element), dims)
}

func Var(typ TypeExpression, names ...string) *VariableDeclarationNode {
	ids := make([]*IdNode, 0, len(names))
	for _, name := range names {
		ids = append(ids, NewId(name))
	}
	return NewVariableDeclaration(ids, typ)
}

func Const(name string, value Expression) *ConstantDeclarationNode {
	return NewConstantDeclaration(NewId(name), value)
}

func Record(name string, fields ...*VariableDeclarationNode) *RecordDeclarationNode {
	return NewRecordDeclaration(name, fields)
}

func Param(name string, typ TypeExpression) *ParameterNode {
	return NewParameter(NewId(name), typ, false)
}

func RefParam(name string, typ TypeExpression) *ParameterNode {
	return NewParameter(NewId(name), typ, true)
}

func Params(params ...*ParameterNode) []*ParameterNode {
	return params
}

func Func(name string, params []*ParameterNode, ret TypeExpression, decls *DeclarationsNode, body ...Command) *FunctionDeclarationNode {
	return NewFunctionDeclaration(name, params, ret, decls, NewCommands(body))
}

func Proc(name string, params []*ParameterNode, decls *DeclarationsNode, body ...Command) *ProcedureDeclarationNode {
	return NewProcedureDeclaration(name, params, decls, NewCommands(body))
}

func Assign(target, value Expression) *AssignmentCommand {
	return NewAssignment(target, value)
}

func If(test Expression, then *CommandsNode, els *CommandsNode) *ConditionalCommand {
	return NewConditional(test, then, els)
}

func While(test Expression, body ...Command) *WhileCommand {
	return NewWhile(test, NewCommands(body), false)
}

// DoWhile runs body once before testing; the loop continues while test holds.
func DoWhile(test Expression, body ...Command) *WhileCommand {
	return NewWhile(test, NewCommands(body), true)
}

func For(variable string, start, end, step Expression, body ...Command) *ForCommand {
	return NewFor(NewId(variable), start, end, step, NewCommands(body))
}

func Choose(value Expression, def *CommandsNode, cases ...*CaseNode) *ChooseCommand {
	return NewChoose(value, cases, def)
}

func Case(values []Expression, body ...Command) *CaseNode {
	return NewCase(values, NewCommands(body))
}

func Read(targets ...Expression) *ReadCommand {
	return NewRead(targets)
}

func Write(items ...*WriteItemNode) *WriteCommand {
	return NewWrite(items, false)
}

func WriteLn(items ...*WriteItemNode) *WriteCommand {
	return NewWrite(items, true)
}

func Item(value Expression) *WriteItemNode {
	return NewWriteItem(value, nil, nil)
}

func ItemFmt(value, width, precision Expression) *WriteItemNode {
	return NewWriteItem(value, width, precision)
}

func Call(name string, args ...Expression) *CallNode {
	return NewCall(name, args)
}

func Ret(value Expression) *ReturnCommand {
	return NewReturn(value)
}

func Break() *BreakCommand {
	return NewBreak()
}

func Int(v int64) *IntLiteral {
	return NewIntLiteral(v)
}

func Real(v float64) *RealLiteral {
	return NewRealLiteral(v)
}

func Str(v string) *StringLiteral {
	return NewStringLiteral(v)
}

func Bool(v bool) *BoolLiteral {
	return NewBoolLiteral(v)
}

func ID(name string) *IdNode {
	return NewId(name)
}

func Index(base Expression, indexes ...Expression) *ArrayAccessNode {
	return NewArrayAccess(base, indexes)
}

func Member(base Expression, member string) *MemberAccessNode {
	return NewMemberAccess(base, NewId(member))
}

func Bin(op Operator, left, right Expression) *BinaryNode {
	return NewBinary(op, left, right)
}

func Un(op Operator, operand Expression) *UnaryNode {
	return NewUnary(op, operand)
}

func Rng(start, end Expression) *RangeNode {
	return NewRange(start, end)
}

func Exprs(exprs ...Expression) []Expression {
	return exprs
}

// At stamps node with a whole-line location and returns it.
func At[T Node](line int, node T) T {
	SetLocation(node, Line(line))
	return node
}
