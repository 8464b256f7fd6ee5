package ast

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(children ...Node) {
		for _, child := range children {
			if child == nil || isNilNode(child) {
				continue
			}
			out = append(out, child)
		}
	}
	switch v := n.(type) {
	case *AlgoritimoNode:
		add(v.Declarations, v.Commands)
	case *DeclarationsNode:
		for _, item := range v.Items {
			add(item)
		}
	case *RecordDeclarationNode:
		for _, field := range v.Fields {
			add(field)
		}
	case *VariableDeclarationNode:
		for _, name := range v.Names {
			add(name)
		}
		add(v.Type)
	case *ConstantDeclarationNode:
		add(v.Name, v.Value)
	case *FunctionDeclarationNode:
		for _, param := range v.Parameters {
			add(param)
		}
		add(v.ReturnType, v.Declarations, v.Commands)
	case *ProcedureDeclarationNode:
		for _, param := range v.Parameters {
			add(param)
		}
		add(v.Declarations, v.Commands)
	case *ParameterNode:
		add(v.Name, v.Type)
	case *TypeNode:
	case *ArrayTypeNode:
		add(v.ElementType)
		for _, dim := range v.Dimensions {
			add(dim)
		}
	case *CommandsNode:
		for _, cmd := range v.Commands {
			add(cmd)
		}
	case *AssignmentCommand:
		add(v.Target, v.Value)
	case *ConditionalCommand:
		add(v.Test, v.Then, v.Else)
	case *WhileCommand:
		if v.AtTheEnd {
			add(v.Body, v.Test)
		} else {
			add(v.Test, v.Body)
		}
	case *ForCommand:
		add(v.Variable, v.Start, v.End, v.Step, v.Body)
	case *ChooseCommand:
		add(v.Value)
		for _, c := range v.Cases {
			add(c)
		}
		add(v.Default)
	case *CaseNode:
		for _, value := range v.Values {
			add(value)
		}
		add(v.Body)
	case *ReadCommand:
		for _, target := range v.Targets {
			add(target)
		}
	case *WriteCommand:
		for _, item := range v.Items {
			add(item)
		}
	case *WriteItemNode:
		add(v.Value, v.Width, v.Precision)
	case *CallNode:
		for _, arg := range v.Arguments {
			add(arg)
		}
	case *ReturnCommand:
		add(v.Value)
	case *DebugCommand:
		add(v.Test)
	case *RandomizeCommand:
		add(v.Min, v.Max)
	case *TimerCommand:
		add(v.Interval)
	case *ArrayAccessNode:
		add(v.Base)
		for _, idx := range v.Indexes {
			add(idx)
		}
	case *MemberAccessNode:
		add(v.Base, v.Member)
	case *UnaryNode:
		add(v.Operand)
	case *BinaryNode:
		add(v.Left, v.Right)
	case *RangeNode:
		add(v.Start, v.End)
	case *BreakCommand, *PauseCommand, *EchoCommand, *ClearScreenCommand, *ColorCommand,
		*IntLiteral, *RealLiteral, *StringLiteral, *BoolLiteral, *IdNode:
	}
	return out
}

// Walk visits n and all of its descendants depth-first. Returning false from
// visit skips the children of the current node.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || isNilNode(n) {
		return
	}
	if !visit(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, visit)
	}
}

// isNilNode catches typed nil pointers stored in interface fields.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *DeclarationsNode:
		return v == nil
	case *CommandsNode:
		return v == nil
	case *TypeNode:
		return v == nil
	case *IdNode:
		return v == nil
	case *RangeNode:
		return v == nil
	case *WriteItemNode:
		return v == nil
	case *CaseNode:
		return v == nil
	case *ParameterNode:
		return v == nil
	case *VariableDeclarationNode:
		return v == nil
	}
	return false
}
