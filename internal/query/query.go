// Package query answers build-order questions over a workspace graph.
package query

import (
	"fmt"

	"github.com/specialistvlad/buildgrid/internal/dag"
	"github.com/specialistvlad/buildgrid/internal/model"
)

// Query wraps a built graph together with the workspace it came from.
type Query struct {
	graph      *dag.Graph
	ws         *model.Workspace
	labels     map[string]model.Label
	defaultPkg string
}

// New returns a Query. Relative labels given to Resolve are read against the
// only package of ws when there is exactly one, else against the root.
func New(g *dag.Graph, ws *model.Workspace) *Query {
	q := &Query{
		graph:  g,
		ws:     ws,
		labels: make(map[string]model.Label, ws.Len()),
	}
	for _, t := range ws.Targets() {
		q.labels[t.Label().String()] = t.Label()
	}
	if paths := ws.PackagePaths(); len(paths) == 1 {
		q.defaultPkg = paths[0]
	}
	return q
}

// Resolve parses raw and checks that it names a declared target.
func (q *Query) Resolve(raw string) (model.Label, error) {
	l, err := model.ParseLabel(raw, q.defaultPkg)
	if err != nil {
		return model.Label{}, err
	}
	if _, ok := q.ws.Target(l); !ok {
		return model.Label{}, fmt.Errorf("%w: %s", dag.ErrUnknownTarget, l)
	}
	return l, nil
}

func (q *Query) check(l model.Label) error {
	if !q.graph.HasNode(l.String()) {
		return fmt.Errorf("%w: %s", dag.ErrUnknownTarget, l)
	}
	return nil
}

func (q *Query) toLabels(ids []string) []model.Label {
	out := make([]model.Label, 0, len(ids))
	for _, id := range ids {
		out = append(out, q.labels[id])
	}
	return out
}

// Order returns every target in a deterministic build order.
func (q *Query) Order() ([]model.Label, error) {
	ids, err := q.graph.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	return q.toLabels(ids), nil
}

// Prerequisites returns every target that must be built before l, in build
// order. l itself is not included.
func (q *Query) Prerequisites(l model.Label) ([]model.Label, error) {
	if err := q.check(l); err != nil {
		return nil, err
	}
	anc, err := q.graph.Ancestors(l.String())
	if err != nil {
		return nil, err
	}
	return q.inOrder(anc)
}

// Closure returns the given targets plus all their prerequisites, in build
// order.
func (q *Query) Closure(labels ...model.Label) ([]model.Label, error) {
	var ids []string
	for _, l := range labels {
		if err := q.check(l); err != nil {
			return nil, err
		}
		anc, err := q.graph.Ancestors(l.String())
		if err != nil {
			return nil, err
		}
		ids = append(ids, l.String())
		ids = append(ids, anc...)
	}
	return q.inOrder(ids)
}

func (q *Query) inOrder(ids []string) ([]model.Label, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	order, err := q.graph.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	out := make([]model.Label, 0, len(want))
	for _, id := range order {
		if want[id] {
			out = append(out, q.labels[id])
		}
	}
	return out, nil
}

// Deps returns the dependencies of l, sorted. With transitive set the whole
// prerequisite set is returned.
func (q *Query) Deps(l model.Label, transitive bool) ([]model.Label, error) {
	if err := q.check(l); err != nil {
		return nil, err
	}
	var ids []string
	var err error
	if transitive {
		ids, err = q.graph.Ancestors(l.String())
	} else {
		ids, err = q.graph.Dependencies(l.String())
	}
	if err != nil {
		return nil, err
	}
	return q.toLabels(ids), nil
}

// ReverseDeps returns the targets depending on l, sorted.
func (q *Query) ReverseDeps(l model.Label, transitive bool) ([]model.Label, error) {
	if err := q.check(l); err != nil {
		return nil, err
	}
	var ids []string
	var err error
	if transitive {
		ids, err = q.graph.Descendants(l.String())
	} else {
		ids, err = q.graph.Dependents(l.String())
	}
	if err != nil {
		return nil, err
	}
	return q.toLabels(ids), nil
}

// Levels groups all targets into waves that can be built in parallel.
func (q *Query) Levels() ([][]model.Label, error) {
	levels, err := q.graph.Levels()
	if err != nil {
		return nil, err
	}
	out := make([][]model.Label, 0, len(levels))
	for _, wave := range levels {
		out = append(out, q.toLabels(wave))
	}
	return out, nil
}

// Path returns one shortest dependency chain from `from` down to `to`, or
// nil when `from` does not depend on `to`.
func (q *Query) Path(from, to model.Label) ([]model.Label, error) {
	if err := q.check(from); err != nil {
		return nil, err
	}
	if err := q.check(to); err != nil {
		return nil, err
	}
	ids, err := q.graph.ShortestPath(from.String(), to.String())
	if err != nil || ids == nil {
		return nil, err
	}
	return q.toLabels(ids), nil
}
