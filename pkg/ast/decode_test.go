package ast

import "testing"

const sampleModuleJSON = `{
  "type": "Module",
  "body": [
    {
      "type": "ImportDeclaration",
      "specifier": "./dep",
      "named": [{"type": "ImportSpecifier", "name": {"type": "Identifier", "name": "x"}}]
    },
    {
      "type": "FunctionDeclaration",
      "export": true,
      "name": {"type": "Identifier", "name": "f"},
      "params": [
        {
          "type": "Parameter",
          "name": {"type": "Identifier", "name": "x"},
          "typeAnnotation": {
            "type": "UnionType",
            "types": [
              {"type": "KeywordType", "keyword": "string"},
              {"type": "KeywordType", "keyword": "number"}
            ]
          }
        }
      ],
      "body": {
        "type": "BlockStatement",
        "body": [
          {
            "type": "ReturnStatement",
            "span": {"start": {"line": 3, "column": 3, "offset": 40}, "end": {"line": 3, "column": 12, "offset": 49}},
            "argument": {"type": "Identifier", "name": "x"}
          }
        ]
      }
    },
    {"type": "ExportDeclaration", "star": true, "from": "./other"}
  ]
}`

func TestDecodeModuleBuildsTree(t *testing.T) {
	mod, err := DecodeModule([]byte(sampleModuleJSON))
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(mod.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(mod.Body))
	}
	fn, ok := mod.Body[1].(*FunctionDeclaration)
	if !ok {
		t.Fatalf("expected function declaration, got %T", mod.Body[1])
	}
	if !fn.Export || fn.Name.Name != "f" {
		t.Fatalf("unexpected function header: export=%v name=%q", fn.Export, fn.Name.Name)
	}
	union, ok := fn.Params[0].Type.(*UnionType)
	if !ok || len(union.Types) != 2 {
		t.Fatalf("expected two-member union parameter type, got %#v", fn.Params[0].Type)
	}
	ret := fn.Body.Body[0]
	if got := ret.Span().Start.Line; got != 3 {
		t.Fatalf("expected return span on line 3, got %d", got)
	}
	if got := mod.Specifiers(); len(got) != 2 || got[0] != "./dep" || got[1] != "./other" {
		t.Fatalf("unexpected specifiers %v", got)
	}
}

func TestDecodeModuleRejectsUnknownNodes(t *testing.T) {
	_, err := DecodeModule([]byte(`{"type": "Module", "body": [{"type": "LabeledStatement"}]}`))
	if err == nil {
		t.Fatalf("expected error for unknown node type")
	}
}

func TestDecodeModuleRejectsNonModuleRoot(t *testing.T) {
	_, err := DecodeModule([]byte(`{"type": "Identifier", "name": "x"}`))
	if err == nil {
		t.Fatalf("expected error for non-module root")
	}
}

func TestInspectVisitsNestedNodes(t *testing.T) {
	mod := Mod(
		Fn("f", Params(Param("x", Kw("number"))), nil,
			If(Bin(">", ID("x"), Num(0)), Block(Ret(ID("x"))), nil),
			Ret(Un("-", ID("x"))),
		),
	)
	idents := 0
	Inspect(mod, func(n Node) bool {
		if _, ok := n.(*Identifier); ok {
			idents++
		}
		return true
	})
	// f, x (param), x, x, x
	if idents != 5 {
		t.Fatalf("expected 5 identifiers, got %d", idents)
	}

	skipped := 0
	Inspect(mod, func(n Node) bool {
		if _, ok := n.(*IfStatement); ok {
			return false
		}
		if _, ok := n.(*Identifier); ok {
			skipped++
		}
		return true
	})
	if skipped != 3 {
		t.Fatalf("expected 3 identifiers outside the if statement, got %d", skipped)
	}
}

func TestBoundNamesFlattensPatterns(t *testing.T) {
	pattern := NewObjectPattern([]*BindingElement{
		NewBindingElement("a", ID("a")),
		NewBindingElement("b", NewArrayPattern([]*BindingElement{NewBindingElement("", ID("c")), nil, NewBindingElement("", ID("d"))})),
	})
	names := BoundNames(pattern)
	if len(names) != 3 || names[0].Name != "a" || names[1].Name != "c" || names[2].Name != "d" {
		t.Fatalf("unexpected bound names %v", names)
	}
}
