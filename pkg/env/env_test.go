package env

import (
	"errors"
	"net/url"
	"testing"

	"github.com/nissy-dev/stc/pkg/types"
)

func TestParseOptionsFillsDefaults(t *testing.T) {
	opts, err := ParseOptions([]byte("target: es2015\nstrictNullChecks: false\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Target != "es2015" {
		t.Fatalf("expected target es2015, got %q", opts.Target)
	}
	if opts.StrictNullChecksEnabled() {
		t.Fatalf("expected explicit false to survive defaults")
	}
	if !opts.NoImplicitAnyEnabled() || opts.ModuleResolution != "node" {
		t.Fatalf("expected defaults to be filled, got %+v", opts)
	}
	if len(opts.Extensions) == 0 || opts.Extensions[0] != ".ts" {
		t.Fatalf("expected default extensions, got %v", opts.Extensions)
	}
}

func TestParseOptionsAcceptsJSON(t *testing.T) {
	opts, err := ParseOptions([]byte(`{"lib": ["es5", "dom"], "moduleResolution": "classic"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts.Libs()) != 2 || opts.ModuleResolution != "classic" {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestParseOptionsRejectsInvalidValues(t *testing.T) {
	cases := []string{
		"target: es1999\n",
		"lib: [es5, webworker]\n",
		"moduleResolution: bundler\n",
		"extensions: [ts]\n",
		"unknownKey: true\n",
	}
	for _, doc := range cases {
		if _, err := ParseOptions([]byte(doc)); !errors.Is(err, ErrInvalidOptions) {
			t.Fatalf("expected ErrInvalidOptions for %q, got %v", doc, err)
		}
	}
}

func TestApplyOverrides(t *testing.T) {
	values, err := ParseOverrides([]string{"strictNullChecks=false", "lib=es5,es2015"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts, err := ApplyOverrides(DefaultOptions(), values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.StrictNullChecksEnabled() {
		t.Fatalf("expected strictNullChecks override to apply")
	}
	if !opts.StrictFunctionTypesEnabled() {
		t.Fatalf("expected untouched flags to keep their value")
	}
	if len(opts.Lib) != 2 || opts.Lib[1] != "es2015" {
		t.Fatalf("expected lib override, got %v", opts.Lib)
	}
	if _, err := ApplyOverrides(DefaultOptions(), url.Values{"target": {"bogus"}}); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected invalid override to fail, got %v", err)
	}
	if _, err := ParseOverrides([]string{"novalue"}); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected malformed override to fail, got %v", err)
	}
}

func TestEnvironmentGlobals(t *testing.T) {
	e, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"Array", "String", "Promise", "Math", "console", "Partial", "Record"} {
		if _, ok := e.LookupGlobal(name); !ok {
			t.Fatalf("expected global %s", name)
		}
	}
	in := e.Interner()
	length, ok := in.PropertyOf(types.String, "length")
	if !ok || length.Type != types.Type(types.Number) {
		t.Fatalf("expected string.length to be number, got %v", length.Type)
	}
	toFixed, ok := in.PropertyOf(in.NumberLit(1), "toFixed")
	if !ok || len(in.Signatures(toFixed.Type, false)) != 1 {
		t.Fatalf("expected number literal to expose toFixed")
	}
	push, ok := in.PropertyOf(in.Array(types.String), "push")
	if !ok {
		t.Fatalf("expected arrays to expose push")
	}
	sigs := in.Signatures(push.Type, false)
	if len(sigs) != 1 || sigs[0].Params[0].Type != types.Type(in.Array(types.String)) {
		t.Fatalf("expected push(...items: string[]), got %v", push.Type)
	}
	if _, ok := in.PropertyOf(in.ReadonlyArray(types.String), "push"); ok {
		t.Fatalf("expected readonly arrays to lack push")
	}
}

func TestEnvironmentRespectsLibSelection(t *testing.T) {
	opts := DefaultOptions()
	opts.Lib = []string{"es5"}
	e, err := New(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := e.LookupGlobal("Promise"); ok {
		t.Fatalf("expected Promise to be absent without es2015")
	}
	if _, ok := e.Interner().PropertyOf(types.String, "startsWith"); ok {
		t.Fatalf("expected startsWith to be absent without es2015")
	}
	if e.Promise(types.Number) != types.Type(types.Number) {
		t.Fatalf("expected Promise to degrade to its argument")
	}
}

func TestUtilityAliases(t *testing.T) {
	e, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := e.Interner()
	obj := in.Object(types.ObjectShape{Props: []types.Property{
		{Name: "a", Type: types.Number},
		{Name: "b", Type: types.String},
	}})
	partial := in.Expand(e.Ref("Partial", obj).(*types.Ref))
	if got := types.TypeString(partial); got != "{ a?: number; b?: string }" {
		t.Fatalf("expected Partial to mark properties optional, got %s", got)
	}
	pick := in.Expand(e.Ref("Pick", obj, in.StringLit("a")).(*types.Ref))
	if got := types.TypeString(pick); got != "{ a: number }" {
		t.Fatalf("expected Pick to keep a, got %s", got)
	}
	exclude := in.Expand(e.Ref("Exclude", in.Union(in.StringLit("a"), in.StringLit("b")), in.StringLit("a")).(*types.Ref))
	if exclude != types.Type(in.StringLit("b")) {
		t.Fatalf("expected Exclude to drop a, got %v", exclude)
	}
	awaited := e.Awaited(e.Promise(types.String))
	if awaited != types.Type(types.String) {
		t.Fatalf("expected Awaited to unwrap Promise, got %v", awaited)
	}
}
