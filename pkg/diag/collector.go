package diag

import (
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
)

// Collector is the run-wide diagnostics sink. Modules append their
// diagnostics as they finish; Sorted merges everything at the end.
type Collector struct {
	mu      sync.Mutex
	modules *treemap.Map // path -> []Diagnostic
	total   int
}

func NewCollector() *Collector {
	return &Collector{modules: treemap.NewWithStringComparator()}
}

// Add appends diagnostics for the module at path. Each diagnostic's Path is
// set to path.
func (c *Collector) Add(path string, diags ...Diagnostic) {
	if len(diags) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var existing []Diagnostic
	if v, ok := c.modules.Get(path); ok {
		existing = v.([]Diagnostic)
	}
	for _, d := range diags {
		d.Path = path
		existing = append(existing, d)
	}
	c.modules.Put(path, existing)
	c.total += len(diags)
}

// Reset drops everything recorded for path. Used when an in-flight module
// is discarded on cancellation.
func (c *Collector) Reset(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.modules.Get(path); ok {
		c.total -= len(v.([]Diagnostic))
		c.modules.Remove(path)
	}
}

// Len reports the number of recorded diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Module returns the sorted diagnostics recorded for path.
func (c *Collector) Module(path string) []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.modules.Get(path)
	if !ok {
		return nil
	}
	out := append([]Diagnostic(nil), v.([]Diagnostic)...)
	Sort(out)
	return out
}

// Sorted returns every diagnostic ordered by module path then position.
func (c *Collector) Sorted() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, 0, c.total)
	it := c.modules.Iterator()
	for it.Next() {
		group := append([]Diagnostic(nil), it.Value().([]Diagnostic)...)
		Sort(group)
		out = append(out, group...)
	}
	return out
}
