package dag

import (
	"context"
	"fmt"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/model"
)

// linkNodes performs the second pass, establishing dependency links.
func linkNodes(ctx context.Context, ws *model.Workspace, graph *Graph, targets []*model.Target) error {
	for _, t := range targets {
		for _, d := range t.Deps {
			var err error
			if d.IsReference() {
				err = linkImplicitDep(ctx, ws, graph, t, d)
			} else {
				err = linkExplicitDep(ctx, ws, graph, t, d)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// linkExplicitDep resolves a dependency written as a label string.
func linkExplicitDep(ctx context.Context, ws *model.Workspace, graph *Graph, t *model.Target, d model.Dep) error {
	logger := ctxlog.FromContext(ctx)
	dep, err := ResolveDep(ws, t, d)
	if err != nil {
		return err
	}
	logger.Debug("Linking explicit dependency.", "from", t.Label().String(), "to", dep.Label().String())
	return graph.AddEdge(dep.Label().String(), t.Label().String())
}

// linkImplicitDep resolves a `<kind>.<name>` reference. The referenced
// target must exist and be of the named kind.
func linkImplicitDep(ctx context.Context, ws *model.Workspace, graph *Graph, t *model.Target, d model.Dep) error {
	logger := ctxlog.FromContext(ctx)
	dep, err := ResolveDep(ws, t, d)
	if err != nil {
		return err
	}
	if dep.Kind != d.RefKind {
		return fmt.Errorf("%s: %s references %s as %s, but it is a %s", d.Range, t.Label(), dep.Label(), d.RefKind, dep.Kind)
	}
	logger.Debug("Linking implicit dependency.", "from", t.Label().String(), "to", dep.Label().String(), "reference", d.Reference)
	return graph.AddEdge(dep.Label().String(), t.Label().String())
}

// ResolveDep looks the target named by d up in ws.
func ResolveDep(ws *model.Workspace, t *model.Target, d model.Dep) (*model.Target, error) {
	if d.Label == t.Label() {
		return nil, fmt.Errorf("%w: %s lists itself in deps", ErrSelfDependency, t.Label())
	}
	dep, ok := ws.Target(d.Label)
	if !ok {
		return nil, fmt.Errorf("%w: %s depends on undeclared target %s", ErrUnknownTarget, t.Label(), d.Label)
	}
	return dep, nil
}
