package ast

// Inspect traverses the tree rooted at node in depth-first order. If fn
// returns false, the children of that node are skipped.
func Inspect(node Node, fn func(Node) bool) {
	if isNilNode(node) {
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Inspect(child, fn)
	}
}

// Children returns the direct child nodes of node in source order.
func Children(node Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, n := range nodes {
			if !isNilNode(n) {
				out = append(out, n)
			}
		}
	}
	addParams := func(tps []*TypeParameter, params []*Parameter) {
		for _, tp := range tps {
			add(tp)
		}
		for _, p := range params {
			add(p)
		}
	}
	switch n := node.(type) {
	case *Module:
		for _, s := range n.Body {
			add(s)
		}
	case *TemplateLiteral:
		for _, e := range n.Expressions {
			add(e)
		}
	case *ArrayLiteral:
		for _, e := range n.Elements {
			add(e)
		}
	case *SpreadElement:
		add(n.Argument)
	case *ObjectLiteral:
		for _, p := range n.Properties {
			add(p)
		}
	case *PropertyAssignment:
		add(n.Computed, n.Value)
	case *ObjectMethod:
		add(n.Function)
	case *SpreadAssignment:
		add(n.Argument)
	case *FunctionExpression:
		add(n.Name)
		addParams(n.TypeParams, n.Params)
		add(n.ReturnType, n.Body, n.ExprBody)
	case *Parameter:
		add(n.Name, n.Type, n.Default)
	case *TypeParameter:
		add(n.Constraint, n.Default)
	case *CallExpression:
		add(n.Callee)
		for _, t := range n.TypeArgs {
			add(t)
		}
		for _, a := range n.Args {
			add(a)
		}
	case *NewExpression:
		add(n.Callee)
		for _, t := range n.TypeArgs {
			add(t)
		}
		for _, a := range n.Args {
			add(a)
		}
	case *MemberExpression:
		add(n.Object, n.Property)
	case *ElementAccessExpression:
		add(n.Object, n.Index)
	case *UnaryExpression:
		add(n.Operand)
	case *UpdateExpression:
		add(n.Operand)
	case *BinaryExpression:
		add(n.Left, n.Right)
	case *AssignmentExpression:
		add(n.Target, n.Value)
	case *ConditionalExpression:
		add(n.Test, n.Consequent, n.Alternate)
	case *AsExpression:
		add(n.Expression, n.Type)
	case *NonNullExpression:
		add(n.Expression)
	case *AwaitExpression:
		add(n.Argument)
	case *ObjectPattern:
		for _, el := range n.Elements {
			add(el)
		}
	case *ArrayPattern:
		for _, el := range n.Elements {
			add(el)
		}
	case *BindingElement:
		add(n.Name, n.Default)
	case *VariableStatement:
		for _, d := range n.Declarations {
			add(d)
		}
	case *VariableDeclarator:
		add(n.Name, n.Type, n.Init)
	case *FunctionDeclaration:
		add(n.Name)
		addParams(n.TypeParams, n.Params)
		add(n.ReturnType, n.Body)
	case *ClassDeclaration:
		add(n.Name)
		addParams(n.TypeParams, nil)
		add(n.Extends)
		for _, i := range n.Implements {
			add(i)
		}
		for _, m := range n.Members {
			add(m)
		}
	case *PropertyDeclaration:
		add(n.Type, n.Init)
	case *MethodDeclaration:
		addParams(n.TypeParams, n.Params)
		add(n.ReturnType, n.Body)
	case *ConstructorDeclaration:
		addParams(nil, n.Params)
		add(n.Body)
	case *InterfaceDeclaration:
		add(n.Name)
		addParams(n.TypeParams, nil)
		for _, e := range n.Extends {
			add(e)
		}
		for _, m := range n.Members {
			add(m)
		}
	case *PropertySignature:
		add(n.Type)
	case *MethodSignature:
		addParams(n.TypeParams, n.Params)
		add(n.ReturnType)
	case *CallSignature:
		addParams(n.TypeParams, n.Params)
		add(n.ReturnType)
	case *ConstructSignature:
		addParams(n.TypeParams, n.Params)
		add(n.ReturnType)
	case *IndexSignature:
		add(n.KeyType, n.Type)
	case *TypeAliasDeclaration:
		add(n.Name)
		addParams(n.TypeParams, nil)
		add(n.Type)
	case *EnumDeclaration:
		add(n.Name)
		for _, m := range n.Members {
			add(m)
		}
	case *EnumMember:
		add(n.Init)
	case *NamespaceDeclaration:
		add(n.Name)
		for _, s := range n.Body {
			add(s)
		}
	case *ImportDeclaration:
		add(n.Default, n.Namespace)
		for _, s := range n.Named {
			add(s)
		}
	case *ImportSpecifier:
		add(n.Name, n.Alias)
	case *ExportDeclaration:
		for _, s := range n.Specifiers {
			add(s)
		}
	case *ExportSpecifier:
		add(n.Local, n.Exported)
	case *ExportDefault:
		add(n.Expression)
	case *ExpressionStatement:
		add(n.Expression)
	case *BlockStatement:
		for _, s := range n.Body {
			add(s)
		}
	case *IfStatement:
		add(n.Test, n.Consequent, n.Alternate)
	case *ReturnStatement:
		add(n.Argument)
	case *WhileStatement:
		add(n.Test, n.Body)
	case *DoWhileStatement:
		add(n.Body, n.Test)
	case *ForStatement:
		add(n.Init, n.Test, n.Update, n.Body)
	case *ForOfStatement:
		add(n.Binding, n.Iterable, n.Body)
	case *ForInStatement:
		add(n.Binding, n.Object, n.Body)
	case *BreakStatement:
		add(n.Label)
	case *ContinueStatement:
		add(n.Label)
	case *ThrowStatement:
		add(n.Argument)
	case *TryStatement:
		add(n.Block, n.CatchParam, n.CatchType, n.Handler, n.Finalizer)
	case *SwitchStatement:
		add(n.Discriminant)
		for _, c := range n.Cases {
			add(c)
		}
	case *SwitchCase:
		add(n.Test)
		for _, s := range n.Body {
			add(s)
		}
	case *TypeReference:
		for _, a := range n.Args {
			add(a)
		}
	case *LiteralType:
		add(n.Literal)
	case *UnionType:
		for _, t := range n.Types {
			add(t)
		}
	case *IntersectionType:
		for _, t := range n.Types {
			add(t)
		}
	case *ArrayType:
		add(n.Element)
	case *TupleType:
		for _, el := range n.Elements {
			add(el)
		}
	case *TupleElement:
		add(n.Type)
	case *FunctionType:
		addParams(n.TypeParams, n.Params)
		add(n.ReturnType)
	case *TypeLiteral:
		for _, m := range n.Members {
			add(m)
		}
	case *ConditionalType:
		add(n.Check, n.Extends, n.True, n.False)
	case *MappedType:
		add(n.TypeParam, n.Type)
	case *IndexedAccessType:
		add(n.Object, n.Index)
	case *TypeOperator:
		add(n.Type)
	case *TypePredicate:
		add(n.Type)
	}
	return out
}

// isNilNode reports whether node is nil or a typed nil pointer.
func isNilNode(node Node) bool {
	if node == nil {
		return true
	}
	switch n := node.(type) {
	case *Identifier:
		return n == nil
	case *BlockStatement:
		return n == nil
	case *FunctionExpression:
		return n == nil
	case *TypeParameter:
		return n == nil
	case *Parameter:
		return n == nil
	case *BindingElement:
		return n == nil
	case *VariableDeclarator:
		return n == nil
	case *ImportSpecifier:
		return n == nil
	case *ExportSpecifier:
		return n == nil
	case *EnumMember:
		return n == nil
	case *SwitchCase:
		return n == nil
	case *TupleElement:
		return n == nil
	}
	return false
}
