package diag

import (
	"fmt"
	"sort"

	"github.com/nissy-dev/stc/pkg/ast"
)

// Kind is a stable identifier for a class of diagnostic.
type Kind string

const (
	TypeMismatch              Kind = "TypeMismatch"
	UnresolvedSymbol          Kind = "UnresolvedSymbol"
	UnresolvedModule          Kind = "UnresolvedModule"
	CircularTypeError         Kind = "CircularTypeError"
	OverloadResolutionFailure Kind = "OverloadResolutionFailure"
	UnsupportedConstruct      Kind = "UnsupportedConstruct"

	ExcessProperty         Kind = "ExcessProperty"
	NonOverlappingTypeCast Kind = "NonOverlappingTypeCast"
	DuplicateIdentifier    Kind = "DuplicateIdentifier"
	NotCallable            Kind = "NotCallable"
	ArgumentCount          Kind = "ArgumentCount"
	PropertyMissing        Kind = "PropertyMissing"
	ImplicitAny            Kind = "ImplicitAny"
	Internal               Kind = "Internal"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one checking problem. Message is the rendered template;
// Params holds the values substituted into it so collaborators can render
// their own text.
type Diagnostic struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Span     ast.Span `json:"span"`
	Message  string   `json:"message"`
	Params   []string `json:"params,omitempty"`
}

// New builds an error diagnostic. The message is formatted from format and
// params, which are also retained verbatim.
func New(kind Kind, span ast.Span, format string, params ...string) Diagnostic {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}
	return Diagnostic{
		Kind:     kind,
		Severity: SeverityError,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
		Params:   params,
	}
}

func (d Diagnostic) String() string {
	loc := d.Path
	if loc == "" {
		loc = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d: %s %s: %s", loc, d.Span.Start.Line, d.Span.Start.Column, d.Severity, d.Kind, d.Message)
}

// Less orders diagnostics by path, then source position, then kind and
// message so that equal positions still sort deterministically.
func Less(a, b Diagnostic) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	if a.Span.Start.Line != b.Span.Start.Line {
		return a.Span.Start.Line < b.Span.Start.Line
	}
	if a.Span.Start.Column != b.Span.Start.Column {
		return a.Span.Start.Column < b.Span.Start.Column
	}
	if a.Span.Start.Offset != b.Span.Start.Offset {
		return a.Span.Start.Offset < b.Span.Start.Offset
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Message < b.Message
}

// Sort orders diags in place.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool { return Less(diags[i], diags[j]) })
}

// Count returns the number of diagnostics of kind.
func Count(diags []Diagnostic, kind Kind) int {
	n := 0
	for _, d := range diags {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
