package ast

type NodeType string

const (
	NodeIdentifier              NodeType = "Identifier"
	NodeStringLiteral           NodeType = "StringLiteral"
	NodeNumericLiteral          NodeType = "NumericLiteral"
	NodeBigIntLiteral           NodeType = "BigIntLiteral"
	NodeBooleanLiteral          NodeType = "BooleanLiteral"
	NodeNullLiteral             NodeType = "NullLiteral"
	NodeTemplateLiteral         NodeType = "TemplateLiteral"
	NodeArrayLiteral            NodeType = "ArrayLiteral"
	NodeObjectLiteral           NodeType = "ObjectLiteral"
	NodePropertyAssignment      NodeType = "PropertyAssignment"
	NodeObjectMethod            NodeType = "ObjectMethod"
	NodeSpreadAssignment        NodeType = "SpreadAssignment"
	NodeSpreadElement           NodeType = "SpreadElement"
	NodeFunctionExpression      NodeType = "FunctionExpression"
	NodeCallExpression          NodeType = "CallExpression"
	NodeNewExpression           NodeType = "NewExpression"
	NodeMemberExpression        NodeType = "MemberExpression"
	NodeElementAccessExpression NodeType = "ElementAccessExpression"
	NodeUnaryExpression         NodeType = "UnaryExpression"
	NodeUpdateExpression        NodeType = "UpdateExpression"
	NodeBinaryExpression        NodeType = "BinaryExpression"
	NodeAssignmentExpression    NodeType = "AssignmentExpression"
	NodeConditionalExpression   NodeType = "ConditionalExpression"
	NodeAsExpression            NodeType = "AsExpression"
	NodeNonNullExpression       NodeType = "NonNullExpression"
	NodeAwaitExpression         NodeType = "AwaitExpression"
	NodeThisExpression          NodeType = "ThisExpression"

	NodeObjectPattern  NodeType = "ObjectPattern"
	NodeArrayPattern   NodeType = "ArrayPattern"
	NodeBindingElement NodeType = "BindingElement"

	NodeVariableStatement      NodeType = "VariableStatement"
	NodeVariableDeclarator     NodeType = "VariableDeclarator"
	NodeFunctionDeclaration    NodeType = "FunctionDeclaration"
	NodeParameter              NodeType = "Parameter"
	NodeTypeParameter          NodeType = "TypeParameter"
	NodeClassDeclaration       NodeType = "ClassDeclaration"
	NodePropertyDeclaration    NodeType = "PropertyDeclaration"
	NodeMethodDeclaration      NodeType = "MethodDeclaration"
	NodeConstructorDeclaration NodeType = "ConstructorDeclaration"
	NodeInterfaceDeclaration   NodeType = "InterfaceDeclaration"
	NodePropertySignature      NodeType = "PropertySignature"
	NodeMethodSignature        NodeType = "MethodSignature"
	NodeCallSignature          NodeType = "CallSignature"
	NodeConstructSignature     NodeType = "ConstructSignature"
	NodeIndexSignature         NodeType = "IndexSignature"
	NodeTypeAliasDeclaration   NodeType = "TypeAliasDeclaration"
	NodeEnumDeclaration        NodeType = "EnumDeclaration"
	NodeEnumMember             NodeType = "EnumMember"
	NodeImportDeclaration      NodeType = "ImportDeclaration"
	NodeImportSpecifier        NodeType = "ImportSpecifier"
	NodeExportDeclaration      NodeType = "ExportDeclaration"
	NodeExportSpecifier        NodeType = "ExportSpecifier"
	NodeExportDefault          NodeType = "ExportDefault"
	NodeNamespaceDeclaration   NodeType = "NamespaceDeclaration"
	NodeExpressionStatement    NodeType = "ExpressionStatement"
	NodeBlockStatement         NodeType = "BlockStatement"
	NodeIfStatement            NodeType = "IfStatement"
	NodeReturnStatement        NodeType = "ReturnStatement"
	NodeWhileStatement         NodeType = "WhileStatement"
	NodeDoWhileStatement       NodeType = "DoWhileStatement"
	NodeForStatement           NodeType = "ForStatement"
	NodeForOfStatement         NodeType = "ForOfStatement"
	NodeForInStatement         NodeType = "ForInStatement"
	NodeBreakStatement         NodeType = "BreakStatement"
	NodeContinueStatement      NodeType = "ContinueStatement"
	NodeThrowStatement         NodeType = "ThrowStatement"
	NodeTryStatement           NodeType = "TryStatement"
	NodeSwitchStatement        NodeType = "SwitchStatement"
	NodeSwitchCase             NodeType = "SwitchCase"
	NodeModule                 NodeType = "Module"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

// Position is a 1-based line/column pair plus the byte offset from the
// start of the file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Before reports whether s starts before other.
func (s Span) Before(other Span) bool {
	if s.Start.Line != other.Start.Line {
		return s.Start.Line < other.Start.Line
	}
	if s.Start.Column != other.Start.Column {
		return s.Start.Column < other.Start.Column
	}
	return s.Start.Offset < other.Start.Offset
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// BindingName is an identifier or a destructuring pattern.
type BindingName interface {
	Node
	bindingNameNode()
}

type bindingNameMarker struct{}

func (bindingNameMarker) bindingNameNode() {}

// ObjectMember is an entry of an object literal.
type ObjectMember interface {
	Node
	objectMemberNode()
}

type objectMemberMarker struct{}

func (objectMemberMarker) objectMemberNode() {}

// ClassMember is a member of a class body.
type ClassMember interface {
	Node
	classMemberNode()
}

type classMemberMarker struct{}

func (classMemberMarker) classMemberNode() {}

// TypeMember is a member of an interface body or type literal.
type TypeMember interface {
	Node
	typeMemberNode()
}

type typeMemberMarker struct{}

func (typeMemberMarker) typeMemberNode() {}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker
	bindingNameMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type StringLiteral struct {
	nodeImpl
	expressionMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type NumericLiteral struct {
	nodeImpl
	expressionMarker

	Value float64 `json:"value"`
}

func NewNumericLiteral(value float64) *NumericLiteral {
	return &NumericLiteral{nodeImpl: newNodeImpl(NodeNumericLiteral), Value: value}
}

type BigIntLiteral struct {
	nodeImpl
	expressionMarker

	Value string `json:"value"`
}

func NewBigIntLiteral(value string) *BigIntLiteral {
	return &BigIntLiteral{nodeImpl: newNodeImpl(NodeBigIntLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NullLiteral struct {
	nodeImpl
	expressionMarker
}

func NewNullLiteral() *NullLiteral {
	return &NullLiteral{nodeImpl: newNodeImpl(NodeNullLiteral)}
}

type TemplateLiteral struct {
	nodeImpl
	expressionMarker

	Quasis      []string     `json:"quasis"`
	Expressions []Expression `json:"expressions"`
}

func NewTemplateLiteral(quasis []string, expressions []Expression) *TemplateLiteral {
	return &TemplateLiteral{nodeImpl: newNodeImpl(NodeTemplateLiteral), Quasis: quasis, Expressions: expressions}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

type SpreadElement struct {
	nodeImpl
	expressionMarker

	Argument Expression `json:"argument"`
}

func NewSpreadElement(argument Expression) *SpreadElement {
	return &SpreadElement{nodeImpl: newNodeImpl(NodeSpreadElement), Argument: argument}
}

type ObjectLiteral struct {
	nodeImpl
	expressionMarker

	Properties []ObjectMember `json:"properties"`
}

func NewObjectLiteral(props []ObjectMember) *ObjectLiteral {
	return &ObjectLiteral{nodeImpl: newNodeImpl(NodeObjectLiteral), Properties: props}
}

// PropertyAssignment is `name: value`, or `name` when Shorthand is set.
// Computed keys carry the key expression in Computed.
type PropertyAssignment struct {
	nodeImpl
	objectMemberMarker

	Name      string     `json:"name"`
	Computed  Expression `json:"computed,omitempty"`
	Value     Expression `json:"value"`
	Shorthand bool       `json:"shorthand,omitempty"`
}

func NewPropertyAssignment(name string, value Expression) *PropertyAssignment {
	return &PropertyAssignment{nodeImpl: newNodeImpl(NodePropertyAssignment), Name: name, Value: value}
}

type ObjectMethod struct {
	nodeImpl
	objectMemberMarker

	Name     string              `json:"name"`
	Function *FunctionExpression `json:"function"`
}

func NewObjectMethod(name string, fn *FunctionExpression) *ObjectMethod {
	return &ObjectMethod{nodeImpl: newNodeImpl(NodeObjectMethod), Name: name, Function: fn}
}

type SpreadAssignment struct {
	nodeImpl
	objectMemberMarker

	Argument Expression `json:"argument"`
}

func NewSpreadAssignment(argument Expression) *SpreadAssignment {
	return &SpreadAssignment{nodeImpl: newNodeImpl(NodeSpreadAssignment), Argument: argument}
}

// Functions

// FunctionExpression covers both `function` expressions and arrow
// functions. Concise arrow bodies are stored in ExprBody.
type FunctionExpression struct {
	nodeImpl
	expressionMarker

	Name       *Identifier      `json:"name,omitempty"`
	TypeParams []*TypeParameter `json:"typeParams,omitempty"`
	Params     []*Parameter     `json:"params"`
	ReturnType TypeExpression   `json:"returnType,omitempty"`
	Body       *BlockStatement  `json:"body,omitempty"`
	ExprBody   Expression       `json:"exprBody,omitempty"`
	Arrow      bool             `json:"arrow,omitempty"`
	Async      bool             `json:"async,omitempty"`
}

func NewFunctionExpression(params []*Parameter, returnType TypeExpression, body *BlockStatement) *FunctionExpression {
	return &FunctionExpression{nodeImpl: newNodeImpl(NodeFunctionExpression), Params: params, ReturnType: returnType, Body: body}
}

type Parameter struct {
	nodeImpl

	Name          BindingName    `json:"name"`
	Type          TypeExpression `json:"typeAnnotation,omitempty"`
	Optional      bool           `json:"optional,omitempty"`
	Rest          bool           `json:"rest,omitempty"`
	Default       Expression     `json:"default,omitempty"`
	Accessibility string         `json:"accessibility,omitempty"`
	Readonly      bool           `json:"readonly,omitempty"`
}

func NewParameter(name BindingName, typ TypeExpression) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), Name: name, Type: typ}
}

type TypeParameter struct {
	nodeImpl

	Name       string         `json:"name"`
	Constraint TypeExpression `json:"constraint,omitempty"`
	Default    TypeExpression `json:"default,omitempty"`
}

func NewTypeParameter(name string, constraint, def TypeExpression) *TypeParameter {
	return &TypeParameter{nodeImpl: newNodeImpl(NodeTypeParameter), Name: name, Constraint: constraint, Default: def}
}

// Calls and member access

type CallExpression struct {
	nodeImpl
	expressionMarker

	Callee   Expression       `json:"callee"`
	TypeArgs []TypeExpression `json:"typeArgs,omitempty"`
	Args     []Expression     `json:"args"`
	Optional bool             `json:"optional,omitempty"`
}

func NewCallExpression(callee Expression, args []Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Args: args}
}

type NewExpression struct {
	nodeImpl
	expressionMarker

	Callee   Expression       `json:"callee"`
	TypeArgs []TypeExpression `json:"typeArgs,omitempty"`
	Args     []Expression     `json:"args"`
}

func NewNewExpression(callee Expression, args []Expression) *NewExpression {
	return &NewExpression{nodeImpl: newNodeImpl(NodeNewExpression), Callee: callee, Args: args}
}

type MemberExpression struct {
	nodeImpl
	expressionMarker

	Object   Expression  `json:"object"`
	Property *Identifier `json:"property"`
	Optional bool        `json:"optional,omitempty"`
}

func NewMemberExpression(object Expression, property *Identifier) *MemberExpression {
	return &MemberExpression{nodeImpl: newNodeImpl(NodeMemberExpression), Object: object, Property: property}
}

type ElementAccessExpression struct {
	nodeImpl
	expressionMarker

	Object   Expression `json:"object"`
	Index    Expression `json:"index"`
	Optional bool       `json:"optional,omitempty"`
}

func NewElementAccessExpression(object, index Expression) *ElementAccessExpression {
	return &ElementAccessExpression{nodeImpl: newNodeImpl(NodeElementAccessExpression), Object: object, Index: index}
}

// Operators

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(op string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: op, Operand: operand}
}

type UpdateExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Prefix   bool       `json:"prefix,omitempty"`
	Operand  Expression `json:"operand"`
}

func NewUpdateExpression(op string, prefix bool, operand Expression) *UpdateExpression {
	return &UpdateExpression{nodeImpl: newNodeImpl(NodeUpdateExpression), Operator: op, Prefix: prefix, Operand: operand}
}

// BinaryExpression covers arithmetic, comparison, equality, logical
// (`&&`, `||`, `??`), `in` and `instanceof`.
type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(op string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: op, Left: left, Right: right}
}

type AssignmentExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Target   Expression `json:"target"`
	Value    Expression `json:"value"`
}

func NewAssignmentExpression(op string, target, value Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignmentExpression), Operator: op, Target: target, Value: value}
}

type ConditionalExpression struct {
	nodeImpl
	expressionMarker

	Test       Expression `json:"test"`
	Consequent Expression `json:"consequent"`
	Alternate  Expression `json:"alternate"`
}

func NewConditionalExpression(test, consequent, alternate Expression) *ConditionalExpression {
	return &ConditionalExpression{nodeImpl: newNodeImpl(NodeConditionalExpression), Test: test, Consequent: consequent, Alternate: alternate}
}

// AsExpression is `expr as T`; `expr as const` sets Const and leaves Type nil.
type AsExpression struct {
	nodeImpl
	expressionMarker

	Expression Expression     `json:"expression"`
	Type       TypeExpression `json:"typeAnnotation,omitempty"`
	Const      bool           `json:"const,omitempty"`
}

func NewAsExpression(expr Expression, typ TypeExpression) *AsExpression {
	return &AsExpression{nodeImpl: newNodeImpl(NodeAsExpression), Expression: expr, Type: typ}
}

type NonNullExpression struct {
	nodeImpl
	expressionMarker

	Expression Expression `json:"expression"`
}

func NewNonNullExpression(expr Expression) *NonNullExpression {
	return &NonNullExpression{nodeImpl: newNodeImpl(NodeNonNullExpression), Expression: expr}
}

type AwaitExpression struct {
	nodeImpl
	expressionMarker

	Argument Expression `json:"argument"`
}

func NewAwaitExpression(argument Expression) *AwaitExpression {
	return &AwaitExpression{nodeImpl: newNodeImpl(NodeAwaitExpression), Argument: argument}
}

type ThisExpression struct {
	nodeImpl
	expressionMarker
}

func NewThisExpression() *ThisExpression {
	return &ThisExpression{nodeImpl: newNodeImpl(NodeThisExpression)}
}

// Binding patterns

type ObjectPattern struct {
	nodeImpl
	bindingNameMarker

	Elements []*BindingElement `json:"elements"`
}

func NewObjectPattern(elements []*BindingElement) *ObjectPattern {
	return &ObjectPattern{nodeImpl: newNodeImpl(NodeObjectPattern), Elements: elements}
}

// ArrayPattern elements may be nil for holes.
type ArrayPattern struct {
	nodeImpl
	bindingNameMarker

	Elements []*BindingElement `json:"elements"`
}

func NewArrayPattern(elements []*BindingElement) *ArrayPattern {
	return &ArrayPattern{nodeImpl: newNodeImpl(NodeArrayPattern), Elements: elements}
}

type BindingElement struct {
	nodeImpl

	PropertyName string      `json:"propertyName,omitempty"`
	Name         BindingName `json:"name"`
	Default      Expression  `json:"default,omitempty"`
	Rest         bool        `json:"rest,omitempty"`
}

func NewBindingElement(propertyName string, name BindingName) *BindingElement {
	return &BindingElement{nodeImpl: newNodeImpl(NodeBindingElement), PropertyName: propertyName, Name: name}
}

// Declarations

type VarKind string

const (
	VarKindVar   VarKind = "var"
	VarKindLet   VarKind = "let"
	VarKindConst VarKind = "const"
)

type VariableStatement struct {
	nodeImpl
	statementMarker

	Kind         VarKind               `json:"kind"`
	Declarations []*VariableDeclarator `json:"declarations"`
	Export       bool                  `json:"export,omitempty"`
	Declare      bool                  `json:"declare,omitempty"`
}

func NewVariableStatement(kind VarKind, decls []*VariableDeclarator) *VariableStatement {
	return &VariableStatement{nodeImpl: newNodeImpl(NodeVariableStatement), Kind: kind, Declarations: decls}
}

type VariableDeclarator struct {
	nodeImpl

	Name BindingName    `json:"name"`
	Type TypeExpression `json:"typeAnnotation,omitempty"`
	Init Expression     `json:"init,omitempty"`
}

func NewVariableDeclarator(name BindingName, typ TypeExpression, init Expression) *VariableDeclarator {
	return &VariableDeclarator{nodeImpl: newNodeImpl(NodeVariableDeclarator), Name: name, Type: typ, Init: init}
}

// FunctionDeclaration without a Body is an overload signature or an
// ambient declaration.
type FunctionDeclaration struct {
	nodeImpl
	statementMarker

	Name       *Identifier      `json:"name"`
	TypeParams []*TypeParameter `json:"typeParams,omitempty"`
	Params     []*Parameter     `json:"params"`
	ReturnType TypeExpression   `json:"returnType,omitempty"`
	Body       *BlockStatement  `json:"body,omitempty"`
	Async      bool             `json:"async,omitempty"`
	Export     bool             `json:"export,omitempty"`
	Default    bool             `json:"default,omitempty"`
	Declare    bool             `json:"declare,omitempty"`
}

func NewFunctionDeclaration(name *Identifier, params []*Parameter, returnType TypeExpression, body *BlockStatement) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), Name: name, Params: params, ReturnType: returnType, Body: body}
}

type ClassDeclaration struct {
	nodeImpl
	statementMarker

	Name       *Identifier      `json:"name"`
	TypeParams []*TypeParameter `json:"typeParams,omitempty"`
	Extends    TypeExpression   `json:"extends,omitempty"`
	Implements []TypeExpression `json:"implements,omitempty"`
	Members    []ClassMember    `json:"members"`
	Abstract   bool             `json:"abstract,omitempty"`
	Export     bool             `json:"export,omitempty"`
	Default    bool             `json:"default,omitempty"`
	Declare    bool             `json:"declare,omitempty"`
}

func NewClassDeclaration(name *Identifier, members []ClassMember) *ClassDeclaration {
	return &ClassDeclaration{nodeImpl: newNodeImpl(NodeClassDeclaration), Name: name, Members: members}
}

type PropertyDeclaration struct {
	nodeImpl
	classMemberMarker

	Name          string         `json:"name"`
	Type          TypeExpression `json:"typeAnnotation,omitempty"`
	Init          Expression     `json:"init,omitempty"`
	Static        bool           `json:"static,omitempty"`
	Readonly      bool           `json:"readonly,omitempty"`
	Optional      bool           `json:"optional,omitempty"`
	Accessibility string         `json:"accessibility,omitempty"`
}

func NewPropertyDeclaration(name string, typ TypeExpression, init Expression) *PropertyDeclaration {
	return &PropertyDeclaration{nodeImpl: newNodeImpl(NodePropertyDeclaration), Name: name, Type: typ, Init: init}
}

type MethodDeclaration struct {
	nodeImpl
	classMemberMarker

	Name          string           `json:"name"`
	TypeParams    []*TypeParameter `json:"typeParams,omitempty"`
	Params        []*Parameter     `json:"params"`
	ReturnType    TypeExpression   `json:"returnType,omitempty"`
	Body          *BlockStatement  `json:"body,omitempty"`
	Static        bool             `json:"static,omitempty"`
	Optional      bool             `json:"optional,omitempty"`
	Async         bool             `json:"async,omitempty"`
	Accessibility string           `json:"accessibility,omitempty"`
}

func NewMethodDeclaration(name string, params []*Parameter, returnType TypeExpression, body *BlockStatement) *MethodDeclaration {
	return &MethodDeclaration{nodeImpl: newNodeImpl(NodeMethodDeclaration), Name: name, Params: params, ReturnType: returnType, Body: body}
}

type ConstructorDeclaration struct {
	nodeImpl
	classMemberMarker

	Params []*Parameter    `json:"params"`
	Body   *BlockStatement `json:"body,omitempty"`
}

func NewConstructorDeclaration(params []*Parameter, body *BlockStatement) *ConstructorDeclaration {
	return &ConstructorDeclaration{nodeImpl: newNodeImpl(NodeConstructorDeclaration), Params: params, Body: body}
}

type InterfaceDeclaration struct {
	nodeImpl
	statementMarker

	Name       *Identifier      `json:"name"`
	TypeParams []*TypeParameter `json:"typeParams,omitempty"`
	Extends    []TypeExpression `json:"extends,omitempty"`
	Members    []TypeMember     `json:"members"`
	Export     bool             `json:"export,omitempty"`
	Declare    bool             `json:"declare,omitempty"`
}

func NewInterfaceDeclaration(name *Identifier, members []TypeMember) *InterfaceDeclaration {
	return &InterfaceDeclaration{nodeImpl: newNodeImpl(NodeInterfaceDeclaration), Name: name, Members: members}
}

type PropertySignature struct {
	nodeImpl
	typeMemberMarker

	Name     string         `json:"name"`
	Type     TypeExpression `json:"typeAnnotation,omitempty"`
	Optional bool           `json:"optional,omitempty"`
	Readonly bool           `json:"readonly,omitempty"`
}

func NewPropertySignature(name string, typ TypeExpression) *PropertySignature {
	return &PropertySignature{nodeImpl: newNodeImpl(NodePropertySignature), Name: name, Type: typ}
}

type MethodSignature struct {
	nodeImpl
	typeMemberMarker

	Name       string           `json:"name"`
	TypeParams []*TypeParameter `json:"typeParams,omitempty"`
	Params     []*Parameter     `json:"params"`
	ReturnType TypeExpression   `json:"returnType,omitempty"`
	Optional   bool             `json:"optional,omitempty"`
}

func NewMethodSignature(name string, params []*Parameter, returnType TypeExpression) *MethodSignature {
	return &MethodSignature{nodeImpl: newNodeImpl(NodeMethodSignature), Name: name, Params: params, ReturnType: returnType}
}

type CallSignature struct {
	nodeImpl
	typeMemberMarker

	TypeParams []*TypeParameter `json:"typeParams,omitempty"`
	Params     []*Parameter     `json:"params"`
	ReturnType TypeExpression   `json:"returnType,omitempty"`
}

func NewCallSignature(params []*Parameter, returnType TypeExpression) *CallSignature {
	return &CallSignature{nodeImpl: newNodeImpl(NodeCallSignature), Params: params, ReturnType: returnType}
}

type ConstructSignature struct {
	nodeImpl
	typeMemberMarker

	TypeParams []*TypeParameter `json:"typeParams,omitempty"`
	Params     []*Parameter     `json:"params"`
	ReturnType TypeExpression   `json:"returnType,omitempty"`
}

func NewConstructSignature(params []*Parameter, returnType TypeExpression) *ConstructSignature {
	return &ConstructSignature{nodeImpl: newNodeImpl(NodeConstructSignature), Params: params, ReturnType: returnType}
}

type IndexSignature struct {
	nodeImpl
	typeMemberMarker

	KeyName  string         `json:"keyName"`
	KeyType  TypeExpression `json:"keyType"`
	Type     TypeExpression `json:"typeAnnotation"`
	Readonly bool           `json:"readonly,omitempty"`
}

func NewIndexSignature(keyName string, keyType, typ TypeExpression) *IndexSignature {
	return &IndexSignature{nodeImpl: newNodeImpl(NodeIndexSignature), KeyName: keyName, KeyType: keyType, Type: typ}
}

type TypeAliasDeclaration struct {
	nodeImpl
	statementMarker

	Name       *Identifier      `json:"name"`
	TypeParams []*TypeParameter `json:"typeParams,omitempty"`
	Type       TypeExpression   `json:"typeAnnotation"`
	Export     bool             `json:"export,omitempty"`
	Declare    bool             `json:"declare,omitempty"`
}

func NewTypeAliasDeclaration(name *Identifier, typeParams []*TypeParameter, typ TypeExpression) *TypeAliasDeclaration {
	return &TypeAliasDeclaration{nodeImpl: newNodeImpl(NodeTypeAliasDeclaration), Name: name, TypeParams: typeParams, Type: typ}
}

type EnumDeclaration struct {
	nodeImpl
	statementMarker

	Name    *Identifier   `json:"name"`
	Members []*EnumMember `json:"members"`
	Const   bool          `json:"const,omitempty"`
	Export  bool          `json:"export,omitempty"`
	Declare bool          `json:"declare,omitempty"`
}

func NewEnumDeclaration(name *Identifier, members []*EnumMember) *EnumDeclaration {
	return &EnumDeclaration{nodeImpl: newNodeImpl(NodeEnumDeclaration), Name: name, Members: members}
}

type EnumMember struct {
	nodeImpl

	Name string     `json:"name"`
	Init Expression `json:"init,omitempty"`
}

func NewEnumMember(name string, init Expression) *EnumMember {
	return &EnumMember{nodeImpl: newNodeImpl(NodeEnumMember), Name: name, Init: init}
}

// NamespaceDeclaration is recognised so the checker can report it as an
// unsupported construct.
type NamespaceDeclaration struct {
	nodeImpl
	statementMarker

	Name   *Identifier `json:"name"`
	Body   []Statement `json:"body"`
	Export bool        `json:"export,omitempty"`
}

func NewNamespaceDeclaration(name *Identifier, body []Statement) *NamespaceDeclaration {
	return &NamespaceDeclaration{nodeImpl: newNodeImpl(NodeNamespaceDeclaration), Name: name, Body: body}
}

// Imports and exports

type ImportDeclaration struct {
	nodeImpl
	statementMarker

	Specifier string             `json:"specifier"`
	Default   *Identifier        `json:"default,omitempty"`
	Namespace *Identifier        `json:"namespace,omitempty"`
	Named     []*ImportSpecifier `json:"named,omitempty"`
	TypeOnly  bool               `json:"typeOnly,omitempty"`
}

func NewImportDeclaration(specifier string, named []*ImportSpecifier) *ImportDeclaration {
	return &ImportDeclaration{nodeImpl: newNodeImpl(NodeImportDeclaration), Specifier: specifier, Named: named}
}

// ImportSpecifier is `Name` or `Name as Alias`.
type ImportSpecifier struct {
	nodeImpl

	Name     *Identifier `json:"name"`
	Alias    *Identifier `json:"alias,omitempty"`
	TypeOnly bool        `json:"typeOnly,omitempty"`
}

func NewImportSpecifier(name, alias *Identifier) *ImportSpecifier {
	return &ImportSpecifier{nodeImpl: newNodeImpl(NodeImportSpecifier), Name: name, Alias: alias}
}

// Local returns the identifier bound in the importing module.
func (s *ImportSpecifier) Local() *Identifier {
	if s.Alias != nil {
		return s.Alias
	}
	return s.Name
}

// ExportDeclaration is `export { a as b }`, optionally `from "x"`, or
// `export * from "x"` when Star is set.
type ExportDeclaration struct {
	nodeImpl
	statementMarker

	Specifiers []*ExportSpecifier `json:"specifiers,omitempty"`
	From       string             `json:"from,omitempty"`
	Star       bool               `json:"star,omitempty"`
	TypeOnly   bool               `json:"typeOnly,omitempty"`
}

func NewExportDeclaration(specifiers []*ExportSpecifier, from string) *ExportDeclaration {
	return &ExportDeclaration{nodeImpl: newNodeImpl(NodeExportDeclaration), Specifiers: specifiers, From: from}
}

type ExportSpecifier struct {
	nodeImpl

	Local    *Identifier `json:"local"`
	Exported *Identifier `json:"exported,omitempty"`
}

func NewExportSpecifier(local, exported *Identifier) *ExportSpecifier {
	return &ExportSpecifier{nodeImpl: newNodeImpl(NodeExportSpecifier), Local: local, Exported: exported}
}

// ExportedName is the name visible to importers.
func (s *ExportSpecifier) ExportedName() string {
	if s.Exported != nil {
		return s.Exported.Name
	}
	return s.Local.Name
}

type ExportDefault struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExportDefault(expr Expression) *ExportDefault {
	return &ExportDefault{nodeImpl: newNodeImpl(NodeExportDefault), Expression: expr}
}

// Statements

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

type BlockStatement struct {
	nodeImpl
	statementMarker

	Body []Statement `json:"body"`
}

func NewBlockStatement(body []Statement) *BlockStatement {
	return &BlockStatement{nodeImpl: newNodeImpl(NodeBlockStatement), Body: body}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Test       Expression `json:"test"`
	Consequent Statement  `json:"consequent"`
	Alternate  Statement  `json:"alternate,omitempty"`
}

func NewIfStatement(test Expression, consequent, alternate Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Test: test, Consequent: consequent, Alternate: alternate}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(argument Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: argument}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Test Expression `json:"test"`
	Body Statement  `json:"body"`
}

func NewWhileStatement(test Expression, body Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Test: test, Body: body}
}

type DoWhileStatement struct {
	nodeImpl
	statementMarker

	Body Statement  `json:"body"`
	Test Expression `json:"test"`
}

func NewDoWhileStatement(body Statement, test Expression) *DoWhileStatement {
	return &DoWhileStatement{nodeImpl: newNodeImpl(NodeDoWhileStatement), Body: body, Test: test}
}

type ForStatement struct {
	nodeImpl
	statementMarker

	Init   Statement  `json:"init,omitempty"`
	Test   Expression `json:"test,omitempty"`
	Update Expression `json:"update,omitempty"`
	Body   Statement  `json:"body"`
}

func NewForStatement(init Statement, test, update Expression, body Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Init: init, Test: test, Update: update, Body: body}
}

// ForOfStatement binds Binding (declared with Kind) to each element of
// Iterable. ForInStatement shares the shape and binds keys.
type ForOfStatement struct {
	nodeImpl
	statementMarker

	Kind     VarKind     `json:"kind"`
	Binding  BindingName `json:"binding"`
	Iterable Expression  `json:"iterable"`
	Body     Statement   `json:"body"`
	Await    bool        `json:"await,omitempty"`
}

func NewForOfStatement(kind VarKind, binding BindingName, iterable Expression, body Statement) *ForOfStatement {
	return &ForOfStatement{nodeImpl: newNodeImpl(NodeForOfStatement), Kind: kind, Binding: binding, Iterable: iterable, Body: body}
}

type ForInStatement struct {
	nodeImpl
	statementMarker

	Kind    VarKind     `json:"kind"`
	Binding BindingName `json:"binding"`
	Object  Expression  `json:"object"`
	Body    Statement   `json:"body"`
}

func NewForInStatement(kind VarKind, binding BindingName, object Expression, body Statement) *ForInStatement {
	return &ForInStatement{nodeImpl: newNodeImpl(NodeForInStatement), Kind: kind, Binding: binding, Object: object, Body: body}
}

type BreakStatement struct {
	nodeImpl
	statementMarker

	Label *Identifier `json:"label,omitempty"`
}

func NewBreakStatement(label *Identifier) *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement), Label: label}
}

type ContinueStatement struct {
	nodeImpl
	statementMarker

	Label *Identifier `json:"label,omitempty"`
}

func NewContinueStatement(label *Identifier) *ContinueStatement {
	return &ContinueStatement{nodeImpl: newNodeImpl(NodeContinueStatement), Label: label}
}

type ThrowStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument"`
}

func NewThrowStatement(argument Expression) *ThrowStatement {
	return &ThrowStatement{nodeImpl: newNodeImpl(NodeThrowStatement), Argument: argument}
}

type TryStatement struct {
	nodeImpl
	statementMarker

	Block      *BlockStatement `json:"block"`
	CatchParam BindingName     `json:"catchParam,omitempty"`
	CatchType  TypeExpression  `json:"catchType,omitempty"`
	Handler    *BlockStatement `json:"handler,omitempty"`
	Finalizer  *BlockStatement `json:"finalizer,omitempty"`
}

func NewTryStatement(block *BlockStatement, param BindingName, handler, finalizer *BlockStatement) *TryStatement {
	return &TryStatement{nodeImpl: newNodeImpl(NodeTryStatement), Block: block, CatchParam: param, Handler: handler, Finalizer: finalizer}
}

type SwitchStatement struct {
	nodeImpl
	statementMarker

	Discriminant Expression    `json:"discriminant"`
	Cases        []*SwitchCase `json:"cases"`
}

func NewSwitchStatement(discriminant Expression, cases []*SwitchCase) *SwitchStatement {
	return &SwitchStatement{nodeImpl: newNodeImpl(NodeSwitchStatement), Discriminant: discriminant, Cases: cases}
}

// SwitchCase with a nil Test is the default clause.
type SwitchCase struct {
	nodeImpl

	Test Expression  `json:"test,omitempty"`
	Body []Statement `json:"body"`
}

func NewSwitchCase(test Expression, body []Statement) *SwitchCase {
	return &SwitchCase{nodeImpl: newNodeImpl(NodeSwitchCase), Test: test, Body: body}
}

// Module is the root of one source file.
type Module struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewModule(body []Statement) *Module {
	return &Module{nodeImpl: newNodeImpl(NodeModule), Body: body}
}

// Imports returns the module's import declarations in source order.
func (m *Module) Imports() []*ImportDeclaration {
	if m == nil {
		return nil
	}
	var out []*ImportDeclaration
	for _, stmt := range m.Body {
		if imp, ok := stmt.(*ImportDeclaration); ok && imp != nil {
			out = append(out, imp)
		}
	}
	return out
}

// Specifiers returns every module specifier referenced by imports and
// re-exports, deduplicated, in source order.
func (m *Module) Specifiers() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(spec string) {
		if spec == "" {
			return
		}
		if _, ok := seen[spec]; ok {
			return
		}
		seen[spec] = struct{}{}
		out = append(out, spec)
	}
	for _, stmt := range m.Body {
		switch s := stmt.(type) {
		case *ImportDeclaration:
			add(s.Specifier)
		case *ExportDeclaration:
			add(s.From)
		}
	}
	return out
}
