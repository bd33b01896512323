package dag

import (
	"errors"
	"strings"
)

var (
	// ErrCycle is returned when the graph contains a dependency cycle.
	ErrCycle = errors.New("dependency cycle")
	// ErrUnknownTarget is returned when a dependency names an undeclared target.
	ErrUnknownTarget = errors.New("unknown target")
	// ErrSelfDependency is returned when a target lists itself as a dependency.
	ErrSelfDependency = errors.New("self dependency")
	// ErrUnknownNode is returned when a graph operation names a missing node.
	ErrUnknownNode = errors.New("node not found")
)

// CycleError carries one cycle found in the graph. Path starts and ends with
// the same node; each node depends on the one after it.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "dependency cycle detected: " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}
