package ast

// Type expressions

const (
	NodeTypeReference     NodeType = "TypeReference"
	NodeKeywordType       NodeType = "KeywordType"
	NodeLiteralType       NodeType = "LiteralType"
	NodeUnionType         NodeType = "UnionType"
	NodeIntersectionType  NodeType = "IntersectionType"
	NodeArrayType         NodeType = "ArrayType"
	NodeTupleType         NodeType = "TupleType"
	NodeTupleElement      NodeType = "TupleElement"
	NodeFunctionType      NodeType = "FunctionType"
	NodeTypeLiteral       NodeType = "TypeLiteral"
	NodeConditionalType   NodeType = "ConditionalType"
	NodeInferType         NodeType = "InferType"
	NodeMappedType        NodeType = "MappedType"
	NodeIndexedAccessType NodeType = "IndexedAccessType"
	NodeTypeOperator      NodeType = "TypeOperator"
	NodeTypeQuery         NodeType = "TypeQuery"
	NodeTypePredicate     NodeType = "TypePredicate"
	NodeThisType          NodeType = "ThisType"
)

type TypeExpression interface {
	Node
	typeExpressionNode()
}

type typeExpressionMarker struct{}

func (typeExpressionMarker) typeExpressionNode() {}

// TypeReference names a declared type. Qualified names keep their dots
// (`ns.Foo`).
type TypeReference struct {
	nodeImpl
	typeExpressionMarker

	Name string           `json:"name"`
	Args []TypeExpression `json:"args,omitempty"`
}

func NewTypeReference(name string, args []TypeExpression) *TypeReference {
	return &TypeReference{nodeImpl: newNodeImpl(NodeTypeReference), Name: name, Args: args}
}

// KeywordType is one of any, unknown, never, void, undefined, null,
// string, number, boolean, bigint, symbol, object.
type KeywordType struct {
	nodeImpl
	typeExpressionMarker

	Keyword string `json:"keyword"`
}

func NewKeywordType(keyword string) *KeywordType {
	return &KeywordType{nodeImpl: newNodeImpl(NodeKeywordType), Keyword: keyword}
}

// LiteralType wraps a string, numeric, bigint or boolean literal. Negative
// numbers arrive as a unary minus over a numeric literal.
type LiteralType struct {
	nodeImpl
	typeExpressionMarker

	Literal Expression `json:"literal"`
}

func NewLiteralType(literal Expression) *LiteralType {
	return &LiteralType{nodeImpl: newNodeImpl(NodeLiteralType), Literal: literal}
}

type UnionType struct {
	nodeImpl
	typeExpressionMarker

	Types []TypeExpression `json:"types"`
}

func NewUnionType(members []TypeExpression) *UnionType {
	return &UnionType{nodeImpl: newNodeImpl(NodeUnionType), Types: members}
}

type IntersectionType struct {
	nodeImpl
	typeExpressionMarker

	Types []TypeExpression `json:"types"`
}

func NewIntersectionType(members []TypeExpression) *IntersectionType {
	return &IntersectionType{nodeImpl: newNodeImpl(NodeIntersectionType), Types: members}
}

type ArrayType struct {
	nodeImpl
	typeExpressionMarker

	Element TypeExpression `json:"element"`
}

func NewArrayType(element TypeExpression) *ArrayType {
	return &ArrayType{nodeImpl: newNodeImpl(NodeArrayType), Element: element}
}

type TupleType struct {
	nodeImpl
	typeExpressionMarker

	Elements []*TupleElement `json:"elements"`
}

func NewTupleType(elements []*TupleElement) *TupleType {
	return &TupleType{nodeImpl: newNodeImpl(NodeTupleType), Elements: elements}
}

type TupleElement struct {
	nodeImpl

	Name     string         `json:"name,omitempty"`
	Type     TypeExpression `json:"typeAnnotation"`
	Optional bool           `json:"optional,omitempty"`
	Rest     bool           `json:"rest,omitempty"`
}

func NewTupleElement(typ TypeExpression) *TupleElement {
	return &TupleElement{nodeImpl: newNodeImpl(NodeTupleElement), Type: typ}
}

// FunctionType is `(a: A) => R`, or `new (a: A) => R` when Constructor is set.
type FunctionType struct {
	nodeImpl
	typeExpressionMarker

	TypeParams  []*TypeParameter `json:"typeParams,omitempty"`
	Params      []*Parameter     `json:"params"`
	ReturnType  TypeExpression   `json:"returnType"`
	Constructor bool             `json:"constructor,omitempty"`
}

func NewFunctionType(params []*Parameter, returnType TypeExpression) *FunctionType {
	return &FunctionType{nodeImpl: newNodeImpl(NodeFunctionType), Params: params, ReturnType: returnType}
}

type TypeLiteral struct {
	nodeImpl
	typeExpressionMarker

	Members []TypeMember `json:"members"`
}

func NewTypeLiteral(members []TypeMember) *TypeLiteral {
	return &TypeLiteral{nodeImpl: newNodeImpl(NodeTypeLiteral), Members: members}
}

// ConditionalType is `Check extends Extends ? True : False`.
type ConditionalType struct {
	nodeImpl
	typeExpressionMarker

	Check   TypeExpression `json:"check"`
	Extends TypeExpression `json:"extends"`
	True    TypeExpression `json:"trueType"`
	False   TypeExpression `json:"falseType"`
}

func NewConditionalType(check, extends, trueType, falseType TypeExpression) *ConditionalType {
	return &ConditionalType{nodeImpl: newNodeImpl(NodeConditionalType), Check: check, Extends: extends, True: trueType, False: falseType}
}

// InferType is `infer U`, legal only in the extends clause of a conditional.
type InferType struct {
	nodeImpl
	typeExpressionMarker

	Name string `json:"name"`
}

func NewInferType(name string) *InferType {
	return &InferType{nodeImpl: newNodeImpl(NodeInferType), Name: name}
}

// MappedType is `{ [K in C]: T }`. Modifier fields hold "", "+" or "-".
type MappedType struct {
	nodeImpl
	typeExpressionMarker

	TypeParam *TypeParameter `json:"typeParam"`
	Type      TypeExpression `json:"typeAnnotation"`
	Optional  string         `json:"optional,omitempty"`
	Readonly  string         `json:"readonly,omitempty"`
}

func NewMappedType(param *TypeParameter, typ TypeExpression) *MappedType {
	return &MappedType{nodeImpl: newNodeImpl(NodeMappedType), TypeParam: param, Type: typ}
}

type IndexedAccessType struct {
	nodeImpl
	typeExpressionMarker

	Object TypeExpression `json:"object"`
	Index  TypeExpression `json:"index"`
}

func NewIndexedAccessType(object, index TypeExpression) *IndexedAccessType {
	return &IndexedAccessType{nodeImpl: newNodeImpl(NodeIndexedAccessType), Object: object, Index: index}
}

// TypeOperator is `keyof T` or `readonly T`.
type TypeOperator struct {
	nodeImpl
	typeExpressionMarker

	Operator string         `json:"operator"`
	Type     TypeExpression `json:"typeAnnotation"`
}

func NewTypeOperator(op string, typ TypeExpression) *TypeOperator {
	return &TypeOperator{nodeImpl: newNodeImpl(NodeTypeOperator), Operator: op, Type: typ}
}

// TypeQuery is `typeof expr` in type position; Name may be dotted.
type TypeQuery struct {
	nodeImpl
	typeExpressionMarker

	Name string `json:"name"`
}

func NewTypeQuery(name string) *TypeQuery {
	return &TypeQuery{nodeImpl: newNodeImpl(NodeTypeQuery), Name: name}
}

// TypePredicate is a `param is T` return annotation; Asserts marks
// `asserts param is T`.
type TypePredicate struct {
	nodeImpl
	typeExpressionMarker

	ParamName string         `json:"paramName"`
	Type      TypeExpression `json:"typeAnnotation"`
	Asserts   bool           `json:"asserts,omitempty"`
}

func NewTypePredicate(paramName string, typ TypeExpression) *TypePredicate {
	return &TypePredicate{nodeImpl: newNodeImpl(NodeTypePredicate), ParamName: paramName, Type: typ}
}

type ThisType struct {
	nodeImpl
	typeExpressionMarker
}

func NewThisType() *ThisType {
	return &ThisType{nodeImpl: newNodeImpl(NodeThisType)}
}

// Declaration is a statement that introduces a named entity.
type Declaration interface {
	Statement
	DeclaredName() string
}

func (d *FunctionDeclaration) DeclaredName() string  { return identName(d.Name) }
func (d *ClassDeclaration) DeclaredName() string     { return identName(d.Name) }
func (d *InterfaceDeclaration) DeclaredName() string { return identName(d.Name) }
func (d *TypeAliasDeclaration) DeclaredName() string { return identName(d.Name) }
func (d *EnumDeclaration) DeclaredName() string      { return identName(d.Name) }
func (d *NamespaceDeclaration) DeclaredName() string { return identName(d.Name) }

func identName(id *Identifier) string {
	if id == nil {
		return ""
	}
	return id.Name
}

// BoundNames returns every identifier introduced by a binding name, in
// source order.
func BoundNames(name BindingName) []*Identifier {
	var out []*Identifier
	var walk func(BindingName)
	walk = func(n BindingName) {
		switch b := n.(type) {
		case *Identifier:
			if b != nil {
				out = append(out, b)
			}
		case *ObjectPattern:
			if b == nil {
				return
			}
			for _, el := range b.Elements {
				if el != nil {
					walk(el.Name)
				}
			}
		case *ArrayPattern:
			if b == nil {
				return
			}
			for _, el := range b.Elements {
				if el != nil {
					walk(el.Name)
				}
			}
		}
	}
	walk(name)
	return out
}
