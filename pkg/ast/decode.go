package ast

import (
	"encoding/json"
	"fmt"
)

// DecodeModule decodes a JSON syntax tree produced by an external parser.
// Every node is an object tagged with "type"; spans are optional and read
// from a "span" object.
func DecodeModule(data []byte) (*Module, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ast: decode module: %w", err)
	}
	node, err := DecodeNode(raw)
	if err != nil {
		return nil, err
	}
	mod, ok := node.(*Module)
	if !ok {
		return nil, fmt.Errorf("ast: decode module: root is %s, not Module", node.NodeType())
	}
	return mod, nil
}

// DecodeNode decodes one generic JSON object into a node.
func DecodeNode(raw map[string]any) (Node, error) {
	d := &decoder{}
	node := d.node(raw)
	if d.err != nil {
		return nil, d.err
	}
	return node, nil
}

type nodeCategoryDecoder func(d *decoder, node map[string]any, typ string) (Node, bool)

var nodeDecoders []nodeCategoryDecoder

func init() {
	nodeDecoders = []nodeCategoryDecoder{
		decodeLiteralNodes,
		decodeExpressionNodes,
		decodeStatementNodes,
		decodeDeclarationNodes,
		decodeModuleNodes,
		decodeTypeNodes,
	}
}

// decoder keeps the first error; later lookups become no-ops once it is set.
type decoder struct {
	err error
}

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("ast: decode: "+format, args...)
	}
}

func (d *decoder) node(raw map[string]any) Node {
	if d.err != nil || raw == nil {
		return nil
	}
	typ, _ := raw["type"].(string)
	for _, decode := range nodeDecoders {
		node, handled := decode(d, raw, typ)
		if !handled {
			continue
		}
		if node != nil {
			if spanRaw, ok := raw["span"].(map[string]any); ok {
				SetSpan(node, decodeSpan(spanRaw))
			}
		}
		return node
	}
	d.fail("unknown node type %q", typ)
	return nil
}

func decodeSpan(raw map[string]any) Span {
	pos := func(key string) Position {
		m, _ := raw[key].(map[string]any)
		return Position{Line: intField(m, "line"), Column: intField(m, "column"), Offset: intField(m, "offset")}
	}
	return Span{Start: pos("start"), End: pos("end")}
}

func intField(m map[string]any, key string) int {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case json.Number:
		i, _ := v.Int64()
		return int(i)
	}
	return 0
}

func (d *decoder) child(raw map[string]any, key string) Node {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		d.fail("field %q: expected object, got %T", key, v)
		return nil
	}
	return d.node(m)
}

func (d *decoder) children(raw map[string]any, key string) []Node {
	list, _ := raw[key].([]any)
	out := make([]Node, 0, len(list))
	for _, item := range list {
		if item == nil {
			out = append(out, nil)
			continue
		}
		m, ok := item.(map[string]any)
		if !ok {
			d.fail("field %q: expected object element, got %T", key, item)
			return nil
		}
		out = append(out, d.node(m))
	}
	return out
}

func (d *decoder) expr(raw map[string]any, key string) Expression {
	n := d.child(raw, key)
	if n == nil {
		return nil
	}
	e, ok := n.(Expression)
	if !ok {
		d.fail("field %q: %s is not an expression", key, n.NodeType())
	}
	return e
}

func (d *decoder) exprs(raw map[string]any, key string) []Expression {
	nodes := d.children(raw, key)
	out := make([]Expression, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			out = append(out, nil)
			continue
		}
		e, ok := n.(Expression)
		if !ok {
			d.fail("field %q: %s is not an expression", key, n.NodeType())
			return nil
		}
		out = append(out, e)
	}
	return out
}

func (d *decoder) stmt(raw map[string]any, key string) Statement {
	n := d.child(raw, key)
	if n == nil {
		return nil
	}
	s, ok := n.(Statement)
	if !ok {
		d.fail("field %q: %s is not a statement", key, n.NodeType())
	}
	return s
}

func (d *decoder) stmts(raw map[string]any, key string) []Statement {
	nodes := d.children(raw, key)
	out := make([]Statement, 0, len(nodes))
	for _, n := range nodes {
		s, ok := n.(Statement)
		if !ok {
			d.fail("field %q: element is not a statement", key)
			return nil
		}
		out = append(out, s)
	}
	return out
}

func (d *decoder) block(raw map[string]any, key string) *BlockStatement {
	n := d.child(raw, key)
	if n == nil {
		return nil
	}
	b, ok := n.(*BlockStatement)
	if !ok {
		d.fail("field %q: %s is not a block", key, n.NodeType())
	}
	return b
}

func (d *decoder) typ(raw map[string]any, key string) TypeExpression {
	n := d.child(raw, key)
	if n == nil {
		return nil
	}
	t, ok := n.(TypeExpression)
	if !ok {
		d.fail("field %q: %s is not a type", key, n.NodeType())
	}
	return t
}

func (d *decoder) types(raw map[string]any, key string) []TypeExpression {
	nodes := d.children(raw, key)
	out := make([]TypeExpression, 0, len(nodes))
	for _, n := range nodes {
		t, ok := n.(TypeExpression)
		if !ok {
			d.fail("field %q: element is not a type", key)
			return nil
		}
		out = append(out, t)
	}
	return out
}

func (d *decoder) ident(raw map[string]any, key string) *Identifier {
	n := d.child(raw, key)
	if n == nil {
		return nil
	}
	id, ok := n.(*Identifier)
	if !ok {
		d.fail("field %q: %s is not an identifier", key, n.NodeType())
	}
	return id
}

func (d *decoder) binding(raw map[string]any, key string) BindingName {
	n := d.child(raw, key)
	if n == nil {
		return nil
	}
	b, ok := n.(BindingName)
	if !ok {
		d.fail("field %q: %s is not a binding name", key, n.NodeType())
	}
	return b
}

func (d *decoder) params(raw map[string]any, key string) []*Parameter {
	nodes := d.children(raw, key)
	out := make([]*Parameter, 0, len(nodes))
	for _, n := range nodes {
		p, ok := n.(*Parameter)
		if !ok {
			d.fail("field %q: element is not a parameter", key)
			return nil
		}
		out = append(out, p)
	}
	return out
}

func (d *decoder) typeParams(raw map[string]any, key string) []*TypeParameter {
	nodes := d.children(raw, key)
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*TypeParameter, 0, len(nodes))
	for _, n := range nodes {
		p, ok := n.(*TypeParameter)
		if !ok {
			d.fail("field %q: element is not a type parameter", key)
			return nil
		}
		out = append(out, p)
	}
	return out
}

func (d *decoder) typeParam(raw map[string]any, key string) *TypeParameter {
	n := d.child(raw, key)
	if n == nil {
		return nil
	}
	p, ok := n.(*TypeParameter)
	if !ok {
		d.fail("field %q: %s is not a type parameter", key, n.NodeType())
	}
	return p
}

func (d *decoder) typeMembers(raw map[string]any, key string) []TypeMember {
	nodes := d.children(raw, key)
	out := make([]TypeMember, 0, len(nodes))
	for _, n := range nodes {
		m, ok := n.(TypeMember)
		if !ok {
			d.fail("field %q: element is not a type member", key)
			return nil
		}
		out = append(out, m)
	}
	return out
}

func str(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func flag(raw map[string]any, key string) bool {
	b, _ := raw[key].(bool)
	return b
}

func decodeLiteralNodes(d *decoder, raw map[string]any, typ string) (Node, bool) {
	switch typ {
	case "Identifier":
		return NewIdentifier(str(raw, "name")), true
	case "StringLiteral":
		return NewStringLiteral(str(raw, "value")), true
	case "NumericLiteral":
		v, _ := raw["value"].(float64)
		return NewNumericLiteral(v), true
	case "BigIntLiteral":
		return NewBigIntLiteral(str(raw, "value")), true
	case "BooleanLiteral":
		return NewBooleanLiteral(flag(raw, "value")), true
	case "NullLiteral":
		return NewNullLiteral(), true
	case "ThisExpression":
		return NewThisExpression(), true
	case "TemplateLiteral":
		list, _ := raw["quasis"].([]any)
		quasis := make([]string, 0, len(list))
		for _, q := range list {
			s, _ := q.(string)
			quasis = append(quasis, s)
		}
		return NewTemplateLiteral(quasis, d.exprs(raw, "expressions")), true
	case "ArrayLiteral":
		return NewArrayLiteral(d.exprs(raw, "elements")), true
	case "SpreadElement":
		return NewSpreadElement(d.expr(raw, "argument")), true
	case "ObjectLiteral":
		nodes := d.children(raw, "properties")
		props := make([]ObjectMember, 0, len(nodes))
		for _, n := range nodes {
			m, ok := n.(ObjectMember)
			if !ok {
				d.fail("object literal: element is not a member")
				return nil, true
			}
			props = append(props, m)
		}
		return NewObjectLiteral(props), true
	case "PropertyAssignment":
		p := NewPropertyAssignment(str(raw, "name"), d.expr(raw, "value"))
		p.Computed = d.expr(raw, "computed")
		p.Shorthand = flag(raw, "shorthand")
		if p.Shorthand && p.Value == nil {
			p.Value = NewIdentifier(p.Name)
		}
		return p, true
	case "ObjectMethod":
		fn, _ := d.child(raw, "function").(*FunctionExpression)
		return NewObjectMethod(str(raw, "name"), fn), true
	case "SpreadAssignment":
		return NewSpreadAssignment(d.expr(raw, "argument")), true
	}
	return nil, false
}

func decodeExpressionNodes(d *decoder, raw map[string]any, typ string) (Node, bool) {
	switch typ {
	case "FunctionExpression":
		fn := NewFunctionExpression(d.params(raw, "params"), d.typ(raw, "returnType"), d.block(raw, "body"))
		fn.Name = d.ident(raw, "name")
		fn.TypeParams = d.typeParams(raw, "typeParams")
		fn.ExprBody = d.expr(raw, "exprBody")
		fn.Arrow = flag(raw, "arrow")
		fn.Async = flag(raw, "async")
		return fn, true
	case "CallExpression":
		call := NewCallExpression(d.expr(raw, "callee"), d.exprs(raw, "args"))
		call.TypeArgs = d.types(raw, "typeArgs")
		call.Optional = flag(raw, "optional")
		return call, true
	case "NewExpression":
		n := NewNewExpression(d.expr(raw, "callee"), d.exprs(raw, "args"))
		n.TypeArgs = d.types(raw, "typeArgs")
		return n, true
	case "MemberExpression":
		m := NewMemberExpression(d.expr(raw, "object"), d.ident(raw, "property"))
		m.Optional = flag(raw, "optional")
		return m, true
	case "ElementAccessExpression":
		e := NewElementAccessExpression(d.expr(raw, "object"), d.expr(raw, "index"))
		e.Optional = flag(raw, "optional")
		return e, true
	case "UnaryExpression":
		return NewUnaryExpression(str(raw, "operator"), d.expr(raw, "operand")), true
	case "UpdateExpression":
		return NewUpdateExpression(str(raw, "operator"), flag(raw, "prefix"), d.expr(raw, "operand")), true
	case "BinaryExpression":
		return NewBinaryExpression(str(raw, "operator"), d.expr(raw, "left"), d.expr(raw, "right")), true
	case "AssignmentExpression":
		return NewAssignmentExpression(str(raw, "operator"), d.expr(raw, "target"), d.expr(raw, "value")), true
	case "ConditionalExpression":
		return NewConditionalExpression(d.expr(raw, "test"), d.expr(raw, "consequent"), d.expr(raw, "alternate")), true
	case "AsExpression":
		e := NewAsExpression(d.expr(raw, "expression"), d.typ(raw, "typeAnnotation"))
		e.Const = flag(raw, "const")
		return e, true
	case "NonNullExpression":
		return NewNonNullExpression(d.expr(raw, "expression")), true
	case "AwaitExpression":
		return NewAwaitExpression(d.expr(raw, "argument")), true
	case "ObjectPattern", "ArrayPattern":
		nodes := d.children(raw, "elements")
		elems := make([]*BindingElement, 0, len(nodes))
		for _, n := range nodes {
			if n == nil {
				elems = append(elems, nil)
				continue
			}
			el, ok := n.(*BindingElement)
			if !ok {
				d.fail("%s: element is not a binding element", typ)
				return nil, true
			}
			elems = append(elems, el)
		}
		if typ == "ObjectPattern" {
			return NewObjectPattern(elems), true
		}
		return NewArrayPattern(elems), true
	case "BindingElement":
		el := NewBindingElement(str(raw, "propertyName"), d.binding(raw, "name"))
		el.Default = d.expr(raw, "default")
		el.Rest = flag(raw, "rest")
		return el, true
	}
	return nil, false
}

func decodeStatementNodes(d *decoder, raw map[string]any, typ string) (Node, bool) {
	switch typ {
	case "ExpressionStatement":
		return NewExpressionStatement(d.expr(raw, "expression")), true
	case "BlockStatement":
		return NewBlockStatement(d.stmts(raw, "body")), true
	case "IfStatement":
		return NewIfStatement(d.expr(raw, "test"), d.stmt(raw, "consequent"), d.stmt(raw, "alternate")), true
	case "ReturnStatement":
		return NewReturnStatement(d.expr(raw, "argument")), true
	case "WhileStatement":
		return NewWhileStatement(d.expr(raw, "test"), d.stmt(raw, "body")), true
	case "DoWhileStatement":
		return NewDoWhileStatement(d.stmt(raw, "body"), d.expr(raw, "test")), true
	case "ForStatement":
		return NewForStatement(d.stmt(raw, "init"), d.expr(raw, "test"), d.expr(raw, "update"), d.stmt(raw, "body")), true
	case "ForOfStatement":
		s := NewForOfStatement(VarKind(str(raw, "kind")), d.binding(raw, "binding"), d.expr(raw, "iterable"), d.stmt(raw, "body"))
		s.Await = flag(raw, "await")
		return s, true
	case "ForInStatement":
		return NewForInStatement(VarKind(str(raw, "kind")), d.binding(raw, "binding"), d.expr(raw, "object"), d.stmt(raw, "body")), true
	case "BreakStatement":
		return NewBreakStatement(d.ident(raw, "label")), true
	case "ContinueStatement":
		return NewContinueStatement(d.ident(raw, "label")), true
	case "ThrowStatement":
		return NewThrowStatement(d.expr(raw, "argument")), true
	case "TryStatement":
		s := NewTryStatement(d.block(raw, "block"), d.binding(raw, "catchParam"), d.block(raw, "handler"), d.block(raw, "finalizer"))
		s.CatchType = d.typ(raw, "catchType")
		return s, true
	case "SwitchStatement":
		nodes := d.children(raw, "cases")
		cases := make([]*SwitchCase, 0, len(nodes))
		for _, n := range nodes {
			c, ok := n.(*SwitchCase)
			if !ok {
				d.fail("switch: element is not a case")
				return nil, true
			}
			cases = append(cases, c)
		}
		return NewSwitchStatement(d.expr(raw, "discriminant"), cases), true
	case "SwitchCase":
		return NewSwitchCase(d.expr(raw, "test"), d.stmts(raw, "body")), true
	}
	return nil, false
}

func decodeDeclarationNodes(d *decoder, raw map[string]any, typ string) (Node, bool) {
	switch typ {
	case "VariableStatement":
		nodes := d.children(raw, "declarations")
		decls := make([]*VariableDeclarator, 0, len(nodes))
		for _, n := range nodes {
			decl, ok := n.(*VariableDeclarator)
			if !ok {
				d.fail("variable statement: element is not a declarator")
				return nil, true
			}
			decls = append(decls, decl)
		}
		s := NewVariableStatement(VarKind(str(raw, "kind")), decls)
		s.Export = flag(raw, "export")
		s.Declare = flag(raw, "declare")
		return s, true
	case "VariableDeclarator":
		return NewVariableDeclarator(d.binding(raw, "name"), d.typ(raw, "typeAnnotation"), d.expr(raw, "init")), true
	case "Parameter":
		p := NewParameter(d.binding(raw, "name"), d.typ(raw, "typeAnnotation"))
		p.Optional = flag(raw, "optional")
		p.Rest = flag(raw, "rest")
		p.Default = d.expr(raw, "default")
		p.Accessibility = str(raw, "accessibility")
		p.Readonly = flag(raw, "readonly")
		return p, true
	case "TypeParameter":
		return NewTypeParameter(str(raw, "name"), d.typ(raw, "constraint"), d.typ(raw, "default")), true
	case "FunctionDeclaration":
		fn := NewFunctionDeclaration(d.ident(raw, "name"), d.params(raw, "params"), d.typ(raw, "returnType"), d.block(raw, "body"))
		fn.TypeParams = d.typeParams(raw, "typeParams")
		fn.Async = flag(raw, "async")
		fn.Export = flag(raw, "export")
		fn.Default = flag(raw, "default")
		fn.Declare = flag(raw, "declare")
		return fn, true
	case "ClassDeclaration":
		nodes := d.children(raw, "members")
		members := make([]ClassMember, 0, len(nodes))
		for _, n := range nodes {
			m, ok := n.(ClassMember)
			if !ok {
				d.fail("class: element is not a class member")
				return nil, true
			}
			members = append(members, m)
		}
		c := NewClassDeclaration(d.ident(raw, "name"), members)
		c.TypeParams = d.typeParams(raw, "typeParams")
		c.Extends = d.typ(raw, "extends")
		c.Implements = d.types(raw, "implements")
		c.Abstract = flag(raw, "abstract")
		c.Export = flag(raw, "export")
		c.Default = flag(raw, "default")
		c.Declare = flag(raw, "declare")
		return c, true
	case "PropertyDeclaration":
		p := NewPropertyDeclaration(str(raw, "name"), d.typ(raw, "typeAnnotation"), d.expr(raw, "init"))
		p.Static = flag(raw, "static")
		p.Readonly = flag(raw, "readonly")
		p.Optional = flag(raw, "optional")
		p.Accessibility = str(raw, "accessibility")
		return p, true
	case "MethodDeclaration":
		m := NewMethodDeclaration(str(raw, "name"), d.params(raw, "params"), d.typ(raw, "returnType"), d.block(raw, "body"))
		m.TypeParams = d.typeParams(raw, "typeParams")
		m.Static = flag(raw, "static")
		m.Optional = flag(raw, "optional")
		m.Async = flag(raw, "async")
		m.Accessibility = str(raw, "accessibility")
		return m, true
	case "ConstructorDeclaration":
		return NewConstructorDeclaration(d.params(raw, "params"), d.block(raw, "body")), true
	case "InterfaceDeclaration":
		decl := NewInterfaceDeclaration(d.ident(raw, "name"), d.typeMembers(raw, "members"))
		decl.TypeParams = d.typeParams(raw, "typeParams")
		decl.Extends = d.types(raw, "extends")
		decl.Export = flag(raw, "export")
		decl.Declare = flag(raw, "declare")
		return decl, true
	case "PropertySignature":
		p := NewPropertySignature(str(raw, "name"), d.typ(raw, "typeAnnotation"))
		p.Optional = flag(raw, "optional")
		p.Readonly = flag(raw, "readonly")
		return p, true
	case "MethodSignature":
		m := NewMethodSignature(str(raw, "name"), d.params(raw, "params"), d.typ(raw, "returnType"))
		m.TypeParams = d.typeParams(raw, "typeParams")
		m.Optional = flag(raw, "optional")
		return m, true
	case "CallSignature":
		s := NewCallSignature(d.params(raw, "params"), d.typ(raw, "returnType"))
		s.TypeParams = d.typeParams(raw, "typeParams")
		return s, true
	case "ConstructSignature":
		s := NewConstructSignature(d.params(raw, "params"), d.typ(raw, "returnType"))
		s.TypeParams = d.typeParams(raw, "typeParams")
		return s, true
	case "IndexSignature":
		s := NewIndexSignature(str(raw, "keyName"), d.typ(raw, "keyType"), d.typ(raw, "typeAnnotation"))
		s.Readonly = flag(raw, "readonly")
		return s, true
	case "TypeAliasDeclaration":
		decl := NewTypeAliasDeclaration(d.ident(raw, "name"), d.typeParams(raw, "typeParams"), d.typ(raw, "typeAnnotation"))
		decl.Export = flag(raw, "export")
		decl.Declare = flag(raw, "declare")
		return decl, true
	case "EnumDeclaration":
		nodes := d.children(raw, "members")
		members := make([]*EnumMember, 0, len(nodes))
		for _, n := range nodes {
			m, ok := n.(*EnumMember)
			if !ok {
				d.fail("enum: element is not an enum member")
				return nil, true
			}
			members = append(members, m)
		}
		decl := NewEnumDeclaration(d.ident(raw, "name"), members)
		decl.Const = flag(raw, "const")
		decl.Export = flag(raw, "export")
		decl.Declare = flag(raw, "declare")
		return decl, true
	case "EnumMember":
		return NewEnumMember(str(raw, "name"), d.expr(raw, "init")), true
	case "NamespaceDeclaration":
		decl := NewNamespaceDeclaration(d.ident(raw, "name"), d.stmts(raw, "body"))
		decl.Export = flag(raw, "export")
		return decl, true
	}
	return nil, false
}

func decodeModuleNodes(d *decoder, raw map[string]any, typ string) (Node, bool) {
	switch typ {
	case "Module":
		return NewModule(d.stmts(raw, "body")), true
	case "ImportDeclaration":
		nodes := d.children(raw, "named")
		named := make([]*ImportSpecifier, 0, len(nodes))
		for _, n := range nodes {
			s, ok := n.(*ImportSpecifier)
			if !ok {
				d.fail("import: element is not an import specifier")
				return nil, true
			}
			named = append(named, s)
		}
		imp := NewImportDeclaration(str(raw, "specifier"), named)
		imp.Default = d.ident(raw, "default")
		imp.Namespace = d.ident(raw, "namespace")
		imp.TypeOnly = flag(raw, "typeOnly")
		return imp, true
	case "ImportSpecifier":
		s := NewImportSpecifier(d.ident(raw, "name"), d.ident(raw, "alias"))
		s.TypeOnly = flag(raw, "typeOnly")
		return s, true
	case "ExportDeclaration":
		nodes := d.children(raw, "specifiers")
		specs := make([]*ExportSpecifier, 0, len(nodes))
		for _, n := range nodes {
			s, ok := n.(*ExportSpecifier)
			if !ok {
				d.fail("export: element is not an export specifier")
				return nil, true
			}
			specs = append(specs, s)
		}
		decl := NewExportDeclaration(specs, str(raw, "from"))
		decl.Star = flag(raw, "star")
		decl.TypeOnly = flag(raw, "typeOnly")
		return decl, true
	case "ExportSpecifier":
		return NewExportSpecifier(d.ident(raw, "local"), d.ident(raw, "exported")), true
	case "ExportDefault":
		return NewExportDefault(d.expr(raw, "expression")), true
	}
	return nil, false
}

func decodeTypeNodes(d *decoder, raw map[string]any, typ string) (Node, bool) {
	switch typ {
	case "TypeReference":
		return NewTypeReference(str(raw, "name"), d.types(raw, "args")), true
	case "KeywordType":
		return NewKeywordType(str(raw, "keyword")), true
	case "LiteralType":
		return NewLiteralType(d.expr(raw, "literal")), true
	case "UnionType":
		return NewUnionType(d.types(raw, "types")), true
	case "IntersectionType":
		return NewIntersectionType(d.types(raw, "types")), true
	case "ArrayType":
		return NewArrayType(d.typ(raw, "element")), true
	case "TupleType":
		nodes := d.children(raw, "elements")
		elems := make([]*TupleElement, 0, len(nodes))
		for _, n := range nodes {
			el, ok := n.(*TupleElement)
			if !ok {
				d.fail("tuple: element is not a tuple element")
				return nil, true
			}
			elems = append(elems, el)
		}
		return NewTupleType(elems), true
	case "TupleElement":
		el := NewTupleElement(d.typ(raw, "typeAnnotation"))
		el.Name = str(raw, "name")
		el.Optional = flag(raw, "optional")
		el.Rest = flag(raw, "rest")
		return el, true
	case "FunctionType":
		fn := NewFunctionType(d.params(raw, "params"), d.typ(raw, "returnType"))
		fn.TypeParams = d.typeParams(raw, "typeParams")
		fn.Constructor = flag(raw, "constructor")
		return fn, true
	case "TypeLiteral":
		return NewTypeLiteral(d.typeMembers(raw, "members")), true
	case "ConditionalType":
		return NewConditionalType(d.typ(raw, "check"), d.typ(raw, "extends"), d.typ(raw, "trueType"), d.typ(raw, "falseType")), true
	case "InferType":
		return NewInferType(str(raw, "name")), true
	case "MappedType":
		m := NewMappedType(d.typeParam(raw, "typeParam"), d.typ(raw, "typeAnnotation"))
		m.Optional = str(raw, "optional")
		m.Readonly = str(raw, "readonly")
		return m, true
	case "IndexedAccessType":
		return NewIndexedAccessType(d.typ(raw, "object"), d.typ(raw, "index")), true
	case "TypeOperator":
		return NewTypeOperator(str(raw, "operator"), d.typ(raw, "typeAnnotation")), true
	case "TypeQuery":
		return NewTypeQuery(str(raw, "name")), true
	case "TypePredicate":
		p := NewTypePredicate(str(raw, "paramName"), d.typ(raw, "typeAnnotation"))
		p.Asserts = flag(raw, "asserts")
		return p, true
	case "ThisType":
		return NewThisType(), true
	}
	return nil, false
}
