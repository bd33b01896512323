package dag

import (
	"context"
	"fmt"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/model"
)

// Build constructs a complete, validated dependency graph from a workspace.
// Node IDs are canonical target labels.
func Build(ctx context.Context, ws *model.Workspace) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")
	graph := New()

	// First pass: one node per target.
	targets := ws.Targets()
	for _, t := range targets {
		graph.AddNode(t.Label().String())
	}
	logger.Debug("Build: Node creation complete.", "node_count", graph.Len())

	// Second pass: link dependencies.
	if err := linkNodes(ctx, ws, graph, targets); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node linking complete.")

	if err := graph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Cycle detection passed.")

	logger.Debug("Build: Graph construction successful.")
	return graph, nil
}
