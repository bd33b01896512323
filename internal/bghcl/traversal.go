package bghcl

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// TraversalKey generates a stable, canonical string representation for an hcl.Traversal,
// suitable for use as a map key.
func TraversalKey(t hcl.Traversal) string {
	// e.g., py_library.clip_grads
	return strings.TrimSpace(string(hclwrite.TokensForTraversal(t).Bytes()))
}

// SimpleReference reports whether expr is a bare `root.attr` traversal and
// returns both names. Index steps and longer chains are not simple references.
func SimpleReference(expr hcl.Expression) (root, attr string, ok bool) {
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(traversal) != 2 {
		return "", "", false
	}
	rootStep, isRoot := traversal[0].(hcl.TraverseRoot)
	attrStep, isAttr := traversal[1].(hcl.TraverseAttr)
	if !isRoot || !isAttr {
		return "", "", false
	}
	return rootStep.Name, attrStep.Name, true
}
