package diag

import (
	"sync"
	"testing"

	"github.com/nissy-dev/stc/pkg/ast"
)

func at(line, col int) ast.Span {
	return ast.Span{Start: ast.Position{Line: line, Column: col}, End: ast.Position{Line: line, Column: col + 1}}
}

func TestCollectorSortsByPathThenPosition(t *testing.T) {
	c := NewCollector()
	c.Add("b.ts", New(TypeMismatch, at(1, 1), "b1"))
	c.Add("a.ts", New(TypeMismatch, at(3, 1), "a3"), New(UnresolvedSymbol, at(1, 5), "a1"))
	c.Add("a.ts", New(TypeMismatch, at(2, 1), "a2"))

	got := c.Sorted()
	want := []string{"a1", "a2", "a3", "b1"}
	if len(got) != len(want) {
		t.Fatalf("expected %d diagnostics, got %d", len(want), len(got))
	}
	for i, d := range got {
		if d.Message != want[i] {
			t.Fatalf("expected %s at %d, got %s", want[i], i, d.Message)
		}
	}
	if got[0].Path != "a.ts" {
		t.Fatalf("expected path to be stamped, got %q", got[0].Path)
	}
}

func TestCollectorConcurrentAdds(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				c.Add("m.ts", New(TypeMismatch, at(j+1, i+1), "x"))
			}
		}(i)
	}
	wg.Wait()
	if c.Len() != 80 {
		t.Fatalf("expected 80 diagnostics, got %d", c.Len())
	}
	sorted := c.Sorted()
	for i := 1; i < len(sorted); i++ {
		if Less(sorted[i], sorted[i-1]) {
			t.Fatalf("expected sorted output, got %v before %v", sorted[i-1], sorted[i])
		}
	}
}

func TestCollectorReset(t *testing.T) {
	c := NewCollector()
	c.Add("m.ts", New(TypeMismatch, at(1, 1), "x"))
	c.Reset("m.ts")
	if c.Len() != 0 || len(c.Module("m.ts")) != 0 {
		t.Fatalf("expected reset to drop diagnostics")
	}
}

func TestNewFormatsParams(t *testing.T) {
	d := New(TypeMismatch, at(1, 1), "Type '%s' is not assignable to type '%s'.", "number", "string")
	if d.Message != "Type 'number' is not assignable to type 'string'." {
		t.Fatalf("unexpected message %q", d.Message)
	}
	if len(d.Params) != 2 || d.Params[0] != "number" {
		t.Fatalf("expected params to be retained, got %v", d.Params)
	}
}
