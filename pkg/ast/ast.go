package ast

type NodeType string

const (
	NodeAlgoritimo           NodeType = "Algoritimo"
	NodeDeclarations         NodeType = "Declarations"
	NodeRecordDeclaration    NodeType = "RecordDeclaration"
	NodeVariableDeclaration  NodeType = "VariableDeclaration"
	NodeConstantDeclaration  NodeType = "ConstantDeclaration"
	NodeFunctionDeclaration  NodeType = "FunctionDeclaration"
	NodeProcedureDeclaration NodeType = "ProcedureDeclaration"
	NodeParameter            NodeType = "Parameter"
	NodeTypeName             NodeType = "Type"
	NodeArrayType            NodeType = "ArrayType"
	NodeCommands             NodeType = "Commands"
	NodeAssignment           NodeType = "Assignment"
	NodeConditional          NodeType = "Conditional"
	NodeWhile                NodeType = "While"
	NodeFor                  NodeType = "For"
	NodeChoose               NodeType = "Choose"
	NodeCase                 NodeType = "Case"
	NodeRead                 NodeType = "Read"
	NodeWrite                NodeType = "Write"
	NodeWriteItem            NodeType = "WriteItem"
	NodeCall                 NodeType = "Call"
	NodeReturn               NodeType = "Return"
	NodeBreak                NodeType = "Break"
	NodeDebug                NodeType = "Debug"
	NodePause                NodeType = "Pause"
	NodeRandomize            NodeType = "Randomize"
	NodeTimer                NodeType = "Timer"
	NodeEcho                 NodeType = "Echo"
	NodeClearScreen          NodeType = "ClearScreen"
	NodeColor                NodeType = "Color"
	NodeIntLiteral           NodeType = "IntLiteral"
	NodeRealLiteral          NodeType = "RealLiteral"
	NodeStringLiteral        NodeType = "StringLiteral"
	NodeBoolLiteral          NodeType = "BoolLiteral"
	NodeId                   NodeType = "Id"
	NodeArrayAccess          NodeType = "ArrayAccess"
	NodeMemberAccess         NodeType = "MemberAccess"
	NodeUnary                NodeType = "Unary"
	NodeBinary               NodeType = "Binary"
	NodeRange                NodeType = "Range"
)

type Node interface {
	NodeType() NodeType
	Location() Location
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	Loc  Location `json:"loc,omitempty"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType        { return n.Type }
func (n nodeImpl) Location() Location        { return n.Loc }
func (n *nodeImpl) setLocation(loc Location) { n.Loc = loc }
func (nodeImpl) isNode()                     {}

type locatable interface {
	setLocation(Location)
}

// SetLocation attaches a source location to any node built by this package.
func SetLocation(node Node, loc Location) {
	if l, ok := node.(locatable); ok {
		l.setLocation(loc)
	}
}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Command interface {
	Node
	commandNode()
}

type commandMarker struct{}

func (commandMarker) commandNode() {}

type Declaration interface {
	Node
	declarationNode()
}

type declarationMarker struct{}

func (declarationMarker) declarationNode() {}

type TypeExpression interface {
	Node
	typeExpressionNode()
}

type typeExpressionMarker struct{}

func (typeExpressionMarker) typeExpressionNode() {}

// Operator is the source spelling of a unary or binary operator.
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpMod Operator = "%"
	OpPow Operator = "^"

	OpAnd Operator = "e"
	OpOr  Operator = "ou"
	OpXor Operator = "xou"
	OpNot Operator = "nao"

	OpEq Operator = "="
	OpNe Operator = "<>"
	OpLt Operator = "<"
	OpLe Operator = "<="
	OpGt Operator = ">"
	OpGe Operator = ">="
)

// IsArithmetic reports whether op belongs to the numeric operator family.
func (op Operator) IsArithmetic() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow:
		return true
	}
	return false
}

func (op Operator) IsLogical() bool {
	switch op {
	case OpAnd, OpOr, OpXor, OpNot:
		return true
	}
	return false
}

func (op Operator) IsRelational() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

//-----------------------------------------------------------------------------
// Program structure
//-----------------------------------------------------------------------------

// AlgoritimoNode is the program root: name, declarations block and main commands.
type AlgoritimoNode struct {
	nodeImpl

	Name         string            `json:"name"`
	Declarations *DeclarationsNode `json:"declarations,omitempty"`
	Commands     *CommandsNode     `json:"commands"`
}

func NewAlgoritimo(name string, decls *DeclarationsNode, cmds *CommandsNode) *AlgoritimoNode {
	return &AlgoritimoNode{nodeImpl: newNodeImpl(NodeAlgoritimo), Name: name, Declarations: decls, Commands: cmds}
}

type DeclarationsNode struct {
	nodeImpl

	Items []Declaration `json:"items"`
}

func NewDeclarations(items []Declaration) *DeclarationsNode {
	return &DeclarationsNode{nodeImpl: newNodeImpl(NodeDeclarations), Items: items}
}

type RecordDeclarationNode struct {
	nodeImpl
	declarationMarker

	Name   string                     `json:"name"`
	Fields []*VariableDeclarationNode `json:"fields"`
}

func NewRecordDeclaration(name string, fields []*VariableDeclarationNode) *RecordDeclarationNode {
	return &RecordDeclarationNode{nodeImpl: newNodeImpl(NodeRecordDeclaration), Name: name, Fields: fields}
}

type VariableDeclarationNode struct {
	nodeImpl
	declarationMarker

	Names []*IdNode      `json:"names"`
	Type  TypeExpression `json:"varType"`
}

func NewVariableDeclaration(names []*IdNode, typ TypeExpression) *VariableDeclarationNode {
	return &VariableDeclarationNode{nodeImpl: newNodeImpl(NodeVariableDeclaration), Names: names, Type: typ}
}

type ConstantDeclarationNode struct {
	nodeImpl
	declarationMarker

	Name  *IdNode    `json:"name"`
	Value Expression `json:"value"`
}

func NewConstantDeclaration(name *IdNode, value Expression) *ConstantDeclarationNode {
	return &ConstantDeclarationNode{nodeImpl: newNodeImpl(NodeConstantDeclaration), Name: name, Value: value}
}

type ParameterNode struct {
	nodeImpl

	Name        *IdNode        `json:"name"`
	Type        TypeExpression `json:"paramType"`
	ByReference bool           `json:"byReference,omitempty"`
}

func NewParameter(name *IdNode, typ TypeExpression, byRef bool) *ParameterNode {
	return &ParameterNode{nodeImpl: newNodeImpl(NodeParameter), Name: name, Type: typ, ByReference: byRef}
}

type FunctionDeclarationNode struct {
	nodeImpl
	declarationMarker

	Name         string            `json:"name"`
	Parameters   []*ParameterNode  `json:"parameters,omitempty"`
	ReturnType   TypeExpression    `json:"returnType"`
	Declarations *DeclarationsNode `json:"declarations,omitempty"`
	Commands     *CommandsNode     `json:"commands"`
}

func NewFunctionDeclaration(name string, params []*ParameterNode, returnType TypeExpression, decls *DeclarationsNode, cmds *CommandsNode) *FunctionDeclarationNode {
	return &FunctionDeclarationNode{nodeImpl: newNodeImpl(NodeFunctionDeclaration), Name: name, Parameters: params, ReturnType: returnType, Declarations: decls, Commands: cmds}
}

type ProcedureDeclarationNode struct {
	nodeImpl
	declarationMarker

	Name         string            `json:"name"`
	Parameters   []*ParameterNode  `json:"parameters,omitempty"`
	Declarations *DeclarationsNode `json:"declarations,omitempty"`
	Commands     *CommandsNode     `json:"commands"`
}

func NewProcedureDeclaration(name string, params []*ParameterNode, decls *DeclarationsNode, cmds *CommandsNode) *ProcedureDeclarationNode {
	return &ProcedureDeclarationNode{nodeImpl: newNodeImpl(NodeProcedureDeclaration), Name: name, Parameters: params, Declarations: decls, Commands: cmds}
}

// TypeNode names a primitive or user record type.
type TypeNode struct {
	nodeImpl
	typeExpressionMarker

	Name string `json:"name"`
}

func NewType(name string) *TypeNode {
	return &TypeNode{nodeImpl: newNodeImpl(NodeTypeName), Name: name}
}

// ArrayTypeNode is `vetor [a..b, c..d] de T`.
type ArrayTypeNode struct {
	nodeImpl
	typeExpressionMarker

	ElementType *TypeNode    `json:"elementType"`
	Dimensions  []*RangeNode `json:"dimensions"`
}

func NewArrayType(element *TypeNode, dims []*RangeNode) *ArrayTypeNode {
	return &ArrayTypeNode{nodeImpl: newNodeImpl(NodeArrayType), ElementType: element, Dimensions: dims}
}

//-----------------------------------------------------------------------------
// Commands
//-----------------------------------------------------------------------------

type CommandsNode struct {
	nodeImpl

	Commands []Command `json:"commands"`
}

func NewCommands(cmds []Command) *CommandsNode {
	return &CommandsNode{nodeImpl: newNodeImpl(NodeCommands), Commands: cmds}
}

type AssignmentCommand struct {
	nodeImpl
	commandMarker

	Target Expression `json:"target"`
	Value  Expression `json:"value"`
}

func NewAssignment(target, value Expression) *AssignmentCommand {
	return &AssignmentCommand{nodeImpl: newNodeImpl(NodeAssignment), Target: target, Value: value}
}

type ConditionalCommand struct {
	nodeImpl
	commandMarker

	Test Expression    `json:"test"`
	Then *CommandsNode `json:"then"`
	Else *CommandsNode `json:"else,omitempty"`
}

func NewConditional(test Expression, then, els *CommandsNode) *ConditionalCommand {
	return &ConditionalCommand{nodeImpl: newNodeImpl(NodeConditional), Test: test, Then: then, Else: els}
}

// WhileCommand covers `enquanto` and, with AtTheEnd set, the test-after form.
type WhileCommand struct {
	nodeImpl
	commandMarker

	Test     Expression    `json:"test"`
	Body     *CommandsNode `json:"body"`
	AtTheEnd bool          `json:"atTheEnd,omitempty"`
}

func NewWhile(test Expression, body *CommandsNode, atTheEnd bool) *WhileCommand {
	return &WhileCommand{nodeImpl: newNodeImpl(NodeWhile), Test: test, Body: body, AtTheEnd: atTheEnd}
}

// ForCommand is `para v de start ate end passo step`. End and Step may be nil.
type ForCommand struct {
	nodeImpl
	commandMarker

	Variable *IdNode       `json:"variable"`
	Start    Expression    `json:"start"`
	End      Expression    `json:"end,omitempty"`
	Step     Expression    `json:"step,omitempty"`
	Body     *CommandsNode `json:"body"`
}

func NewFor(variable *IdNode, start, end, step Expression, body *CommandsNode) *ForCommand {
	return &ForCommand{nodeImpl: newNodeImpl(NodeFor), Variable: variable, Start: start, End: end, Step: step, Body: body}
}

type ChooseCommand struct {
	nodeImpl
	commandMarker

	Value   Expression    `json:"value"`
	Cases   []*CaseNode   `json:"cases"`
	Default *CommandsNode `json:"default,omitempty"`
}

func NewChoose(value Expression, cases []*CaseNode, def *CommandsNode) *ChooseCommand {
	return &ChooseCommand{nodeImpl: newNodeImpl(NodeChoose), Value: value, Cases: cases, Default: def}
}

type CaseNode struct {
	nodeImpl

	Values []Expression  `json:"values"`
	Body   *CommandsNode `json:"body"`
}

func NewCase(values []Expression, body *CommandsNode) *CaseNode {
	return &CaseNode{nodeImpl: newNodeImpl(NodeCase), Values: values, Body: body}
}

type ReadCommand struct {
	nodeImpl
	commandMarker

	Targets []Expression `json:"targets"`
}

func NewRead(targets []Expression) *ReadCommand {
	return &ReadCommand{nodeImpl: newNodeImpl(NodeRead), Targets: targets}
}

type WriteCommand struct {
	nodeImpl
	commandMarker

	Items   []*WriteItemNode `json:"items"`
	NewLine bool             `json:"newLine,omitempty"`
}

func NewWrite(items []*WriteItemNode, newLine bool) *WriteCommand {
	return &WriteCommand{nodeImpl: newNodeImpl(NodeWrite), Items: items, NewLine: newLine}
}

// WriteItemNode is one `expr[:width[:precision]]` entry of escreva.
type WriteItemNode struct {
	nodeImpl

	Value     Expression `json:"value"`
	Width     Expression `json:"width,omitempty"`
	Precision Expression `json:"precision,omitempty"`
}

func NewWriteItem(value, width, precision Expression) *WriteItemNode {
	return &WriteItemNode{nodeImpl: newNodeImpl(NodeWriteItem), Value: value, Width: width, Precision: precision}
}

// CallNode invokes a function or procedure; it is both a command and an expression.
type CallNode struct {
	nodeImpl
	commandMarker
	expressionMarker

	Name      string       `json:"name"`
	Arguments []Expression `json:"arguments,omitempty"`
}

func NewCall(name string, args []Expression) *CallNode {
	return &CallNode{nodeImpl: newNodeImpl(NodeCall), Name: name, Arguments: args}
}

type ReturnCommand struct {
	nodeImpl
	commandMarker

	Value Expression `json:"value,omitempty"`
}

func NewReturn(value Expression) *ReturnCommand {
	return &ReturnCommand{nodeImpl: newNodeImpl(NodeReturn), Value: value}
}

type BreakCommand struct {
	nodeImpl
	commandMarker
}

func NewBreak() *BreakCommand {
	return &BreakCommand{nodeImpl: newNodeImpl(NodeBreak)}
}

// DebugCommand pauses execution when Test evaluates to true.
type DebugCommand struct {
	nodeImpl
	commandMarker

	Test Expression `json:"test"`
}

func NewDebug(test Expression) *DebugCommand {
	return &DebugCommand{nodeImpl: newNodeImpl(NodeDebug), Test: test}
}

type PauseCommand struct {
	nodeImpl
	commandMarker
}

func NewPause() *PauseCommand {
	return &PauseCommand{nodeImpl: newNodeImpl(NodePause)}
}

// RandomizeCommand is `aleatorio [on|off] [min, max]`.
type RandomizeCommand struct {
	nodeImpl
	commandMarker

	Enabled bool       `json:"enabled"`
	Min     Expression `json:"min,omitempty"`
	Max     Expression `json:"max,omitempty"`
}

func NewRandomize(enabled bool, min, max Expression) *RandomizeCommand {
	return &RandomizeCommand{nodeImpl: newNodeImpl(NodeRandomize), Enabled: enabled, Min: min, Max: max}
}

// TimerCommand is `cronometro on [ms] | off`.
type TimerCommand struct {
	nodeImpl
	commandMarker

	Enabled  bool       `json:"enabled"`
	Interval Expression `json:"interval,omitempty"`
}

func NewTimer(enabled bool, interval Expression) *TimerCommand {
	return &TimerCommand{nodeImpl: newNodeImpl(NodeTimer), Enabled: enabled, Interval: interval}
}

type EchoCommand struct {
	nodeImpl
	commandMarker

	Enabled bool `json:"enabled"`
}

func NewEcho(enabled bool) *EchoCommand {
	return &EchoCommand{nodeImpl: newNodeImpl(NodeEcho), Enabled: enabled}
}

type ClearScreenCommand struct {
	nodeImpl
	commandMarker
}

func NewClearScreen() *ClearScreenCommand {
	return &ClearScreenCommand{nodeImpl: newNodeImpl(NodeClearScreen)}
}

type ColorCommand struct {
	nodeImpl
	commandMarker

	Color      string `json:"color"`
	Background bool   `json:"background,omitempty"`
}

func NewColor(color string, background bool) *ColorCommand {
	return &ColorCommand{nodeImpl: newNodeImpl(NodeColor), Color: color, Background: background}
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

type IntLiteral struct {
	nodeImpl
	expressionMarker

	Value int64 `json:"value"`
}

func NewIntLiteral(value int64) *IntLiteral {
	return &IntLiteral{nodeImpl: newNodeImpl(NodeIntLiteral), Value: value}
}

type RealLiteral struct {
	nodeImpl
	expressionMarker

	Value float64 `json:"value"`
}

func NewRealLiteral(value float64) *RealLiteral {
	return &RealLiteral{nodeImpl: newNodeImpl(NodeRealLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BoolLiteral struct {
	nodeImpl
	expressionMarker

	Value bool `json:"value"`
}

func NewBoolLiteral(value bool) *BoolLiteral {
	return &BoolLiteral{nodeImpl: newNodeImpl(NodeBoolLiteral), Value: value}
}

type IdNode struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewId(name string) *IdNode {
	return &IdNode{nodeImpl: newNodeImpl(NodeId), Name: name}
}

type ArrayAccessNode struct {
	nodeImpl
	expressionMarker

	Base    Expression   `json:"base"`
	Indexes []Expression `json:"indexes"`
}

func NewArrayAccess(base Expression, indexes []Expression) *ArrayAccessNode {
	return &ArrayAccessNode{nodeImpl: newNodeImpl(NodeArrayAccess), Base: base, Indexes: indexes}
}

type MemberAccessNode struct {
	nodeImpl
	expressionMarker

	Base   Expression `json:"base"`
	Member *IdNode    `json:"member"`
}

func NewMemberAccess(base Expression, member *IdNode) *MemberAccessNode {
	return &MemberAccessNode{nodeImpl: newNodeImpl(NodeMemberAccess), Base: base, Member: member}
}

type UnaryNode struct {
	nodeImpl
	expressionMarker

	Operator Operator   `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnary(op Operator, operand Expression) *UnaryNode {
	return &UnaryNode{nodeImpl: newNodeImpl(NodeUnary), Operator: op, Operand: operand}
}

type BinaryNode struct {
	nodeImpl
	expressionMarker

	Operator Operator   `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinary(op Operator, left, right Expression) *BinaryNode {
	return &BinaryNode{nodeImpl: newNodeImpl(NodeBinary), Operator: op, Left: left, Right: right}
}

// RangeNode is `start..end`, used by array dimensions and case values.
type RangeNode struct {
	nodeImpl
	expressionMarker

	Start Expression `json:"start"`
	End   Expression `json:"end"`
}

func NewRange(start, end Expression) *RangeNode {
	return &RangeNode{nodeImpl: newNodeImpl(NodeRange), Start: start, End: end}
}
