package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Num(value float64) *NumericLiteral {
	return NewNumericLiteral(value)
}

func Big(value string) *BigIntLiteral {
	return NewBigIntLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Null() *NullLiteral {
	return NewNullLiteral()
}

func This() *ThisExpression {
	return NewThisExpression()
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

func Spread(argument Expression) *SpreadElement {
	return NewSpreadElement(argument)
}

func Obj(props ...ObjectMember) *ObjectLiteral {
	return NewObjectLiteral(props)
}

func Prop(name string, value Expression) *PropertyAssignment {
	return NewPropertyAssignment(name, value)
}

// Expression helpers.

func Call(callee Expression, args ...Expression) *CallExpression {
	return NewCallExpression(callee, args)
}

func CallT(callee Expression, typeArgs []TypeExpression, args ...Expression) *CallExpression {
	call := NewCallExpression(callee, args)
	call.TypeArgs = typeArgs
	return call
}

func CallName(name string, args ...Expression) *CallExpression {
	return NewCallExpression(ID(name), args)
}

func New(callee Expression, args ...Expression) *NewExpression {
	return NewNewExpression(callee, args)
}

func Member(object Expression, name string) *MemberExpression {
	return NewMemberExpression(object, ID(name))
}

func OptMember(object Expression, name string) *MemberExpression {
	m := NewMemberExpression(object, ID(name))
	m.Optional = true
	return m
}

func Index(object, index Expression) *ElementAccessExpression {
	return NewElementAccessExpression(object, index)
}

// MethodCall builds `object.name(args...)`.
func MethodCall(object Expression, name string, args ...Expression) *CallExpression {
	return NewCallExpression(Member(object, name), args)
}

func Un(op string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(op, operand)
}

func Not(operand Expression) *UnaryExpression {
	return NewUnaryExpression("!", operand)
}

func Typeof(operand Expression) *UnaryExpression {
	return NewUnaryExpression("typeof", operand)
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Assign(target, value Expression) *AssignmentExpression {
	return NewAssignmentExpression("=", target, value)
}

func AssignOp(op string, target, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(op, target, value)
}

func Cond(test, consequent, alternate Expression) *ConditionalExpression {
	return NewConditionalExpression(test, consequent, alternate)
}

func As(expr Expression, typ TypeExpression) *AsExpression {
	return NewAsExpression(expr, typ)
}

func AsConst(expr Expression) *AsExpression {
	e := NewAsExpression(expr, nil)
	e.Const = true
	return e
}

func NonNull(expr Expression) *NonNullExpression {
	return NewNonNullExpression(expr)
}

func Await(argument Expression) *AwaitExpression {
	return NewAwaitExpression(argument)
}

// Arrow builds a concise-bodied arrow function.
func Arrow(params []*Parameter, body Expression) *FunctionExpression {
	fn := NewFunctionExpression(params, nil, nil)
	fn.Arrow = true
	fn.ExprBody = body
	return fn
}

// ArrowBlock builds an arrow function with a block body.
func ArrowBlock(params []*Parameter, returnType TypeExpression, body ...Statement) *FunctionExpression {
	fn := NewFunctionExpression(params, returnType, Block(body...))
	fn.Arrow = true
	return fn
}

// Parameter helpers.

func Param(name string, typ TypeExpression) *Parameter {
	return NewParameter(ID(name), typ)
}

func OptParam(name string, typ TypeExpression) *Parameter {
	p := NewParameter(ID(name), typ)
	p.Optional = true
	return p
}

func RestParam(name string, typ TypeExpression) *Parameter {
	p := NewParameter(ID(name), typ)
	p.Rest = true
	return p
}

func Params(params ...*Parameter) []*Parameter {
	return params
}

func TP(name string) *TypeParameter {
	return NewTypeParameter(name, nil, nil)
}

func TPC(name string, constraint TypeExpression) *TypeParameter {
	return NewTypeParameter(name, constraint, nil)
}

// Statement helpers.

func Block(body ...Statement) *BlockStatement {
	return NewBlockStatement(body)
}

func Expr(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func Ret(argument Expression) *ReturnStatement {
	return NewReturnStatement(argument)
}

func If(test Expression, consequent Statement, alternate Statement) *IfStatement {
	return NewIfStatement(test, consequent, alternate)
}

func While(test Expression, body ...Statement) *WhileStatement {
	return NewWhileStatement(test, Block(body...))
}

func ForOf(kind VarKind, name string, iterable Expression, body ...Statement) *ForOfStatement {
	return NewForOfStatement(kind, ID(name), iterable, Block(body...))
}

func Throw(argument Expression) *ThrowStatement {
	return NewThrowStatement(argument)
}

func Switch(discriminant Expression, cases ...*SwitchCase) *SwitchStatement {
	return NewSwitchStatement(discriminant, cases)
}

func Case(test Expression, body ...Statement) *SwitchCase {
	return NewSwitchCase(test, body)
}

func Break() *BreakStatement {
	return NewBreakStatement(nil)
}

func varStmt(kind VarKind, name string, typ TypeExpression, init Expression) *VariableStatement {
	return NewVariableStatement(kind, []*VariableDeclarator{NewVariableDeclarator(ID(name), typ, init)})
}

func Let(name string, typ TypeExpression, init Expression) *VariableStatement {
	return varStmt(VarKindLet, name, typ, init)
}

func Const(name string, typ TypeExpression, init Expression) *VariableStatement {
	return varStmt(VarKindConst, name, typ, init)
}

func Var(name string, typ TypeExpression, init Expression) *VariableStatement {
	return varStmt(VarKindVar, name, typ, init)
}

// Declaration helpers.

func Fn(name string, params []*Parameter, returnType TypeExpression, body ...Statement) *FunctionDeclaration {
	return NewFunctionDeclaration(ID(name), params, returnType, Block(body...))
}

func GenericFn(name string, typeParams []*TypeParameter, params []*Parameter, returnType TypeExpression, body ...Statement) *FunctionDeclaration {
	fn := Fn(name, params, returnType, body...)
	fn.TypeParams = typeParams
	return fn
}

// Overload builds a bodiless signature declaration.
func Overload(name string, params []*Parameter, returnType TypeExpression) *FunctionDeclaration {
	return NewFunctionDeclaration(ID(name), params, returnType, nil)
}

func Iface(name string, members ...TypeMember) *InterfaceDeclaration {
	return NewInterfaceDeclaration(ID(name), members)
}

func PropSig(name string, typ TypeExpression) *PropertySignature {
	return NewPropertySignature(name, typ)
}

func OptPropSig(name string, typ TypeExpression) *PropertySignature {
	p := NewPropertySignature(name, typ)
	p.Optional = true
	return p
}

func MethodSig(name string, params []*Parameter, returnType TypeExpression) *MethodSignature {
	return NewMethodSignature(name, params, returnType)
}

func Alias(name string, typeParams []*TypeParameter, typ TypeExpression) *TypeAliasDeclaration {
	return NewTypeAliasDeclaration(ID(name), typeParams, typ)
}

func Enum(name string, members ...*EnumMember) *EnumDeclaration {
	return NewEnumDeclaration(ID(name), members)
}

func Class(name string, members ...ClassMember) *ClassDeclaration {
	return NewClassDeclaration(ID(name), members)
}

func Field(name string, typ TypeExpression, init Expression) *PropertyDeclaration {
	return NewPropertyDeclaration(name, typ, init)
}

func Method(name string, params []*Parameter, returnType TypeExpression, body ...Statement) *MethodDeclaration {
	return NewMethodDeclaration(name, params, returnType, Block(body...))
}

func Ctor(params []*Parameter, body ...Statement) *ConstructorDeclaration {
	return NewConstructorDeclaration(params, Block(body...))
}

// Module helpers.

// Import builds `import { a, b } from "specifier"`.
func Import(specifier string, names ...string) *ImportDeclaration {
	specs := make([]*ImportSpecifier, 0, len(names))
	for _, name := range names {
		specs = append(specs, NewImportSpecifier(ID(name), nil))
	}
	return NewImportDeclaration(specifier, specs)
}

func ImportStar(specifier, local string) *ImportDeclaration {
	imp := NewImportDeclaration(specifier, nil)
	imp.Namespace = ID(local)
	return imp
}

// Export builds `export { a, b }`.
func Export(names ...string) *ExportDeclaration {
	specs := make([]*ExportSpecifier, 0, len(names))
	for _, name := range names {
		specs = append(specs, NewExportSpecifier(ID(name), nil))
	}
	return NewExportDeclaration(specs, "")
}

func ExportStar(from string) *ExportDeclaration {
	decl := NewExportDeclaration(nil, from)
	decl.Star = true
	return decl
}

// Exported marks a declaration statement with the export modifier.
func Exported[T Statement](stmt T) T {
	switch s := any(stmt).(type) {
	case *VariableStatement:
		s.Export = true
	case *FunctionDeclaration:
		s.Export = true
	case *ClassDeclaration:
		s.Export = true
	case *InterfaceDeclaration:
		s.Export = true
	case *TypeAliasDeclaration:
		s.Export = true
	case *EnumDeclaration:
		s.Export = true
	case *NamespaceDeclaration:
		s.Export = true
	}
	return stmt
}

func Mod(body ...Statement) *Module {
	return NewModule(body)
}

// At sets a single-line span starting at line:column and returns the node.
func At[T Node](node T, line, column int) T {
	SetSpan(node, Span{Start: Position{Line: line, Column: column}, End: Position{Line: line, Column: column + 1}})
	return node
}

// Type expression helpers.

func Ty(name string, args ...TypeExpression) *TypeReference {
	return NewTypeReference(name, args)
}

func Kw(keyword string) *KeywordType {
	return NewKeywordType(keyword)
}

func StrT(value string) *LiteralType {
	return NewLiteralType(Str(value))
}

func NumT(value float64) *LiteralType {
	return NewLiteralType(Num(value))
}

func BoolT(value bool) *LiteralType {
	return NewLiteralType(Bool(value))
}

func UnionT(members ...TypeExpression) *UnionType {
	return NewUnionType(members)
}

func InterT(members ...TypeExpression) *IntersectionType {
	return NewIntersectionType(members)
}

func ArrT(element TypeExpression) *ArrayType {
	return NewArrayType(element)
}

func TupleT(elements ...TypeExpression) *TupleType {
	out := make([]*TupleElement, 0, len(elements))
	for _, el := range elements {
		out = append(out, NewTupleElement(el))
	}
	return NewTupleType(out)
}

func FnT(params []*Parameter, returnType TypeExpression) *FunctionType {
	return NewFunctionType(params, returnType)
}

func ObjT(members ...TypeMember) *TypeLiteral {
	return NewTypeLiteral(members)
}

func KeyOf(typ TypeExpression) *TypeOperator {
	return NewTypeOperator("keyof", typ)
}

func IndexT(object, index TypeExpression) *IndexedAccessType {
	return NewIndexedAccessType(object, index)
}

func CondT(check, extends, trueType, falseType TypeExpression) *ConditionalType {
	return NewConditionalType(check, extends, trueType, falseType)
}

func Infer(name string) *InferType {
	return NewInferType(name)
}

func Mapped(param string, constraint TypeExpression, typ TypeExpression) *MappedType {
	return NewMappedType(TPC(param, constraint), typ)
}

func Is(paramName string, typ TypeExpression) *TypePredicate {
	return NewTypePredicate(paramName, typ)
}
