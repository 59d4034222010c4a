package types

import "fmt"

// InvariantError reports corruption of the type table. It is raised with
// panic and recovered by the driver, which reports it as an internal error.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("types: %s: invariant violated: %s", e.Op, e.Detail)
}
