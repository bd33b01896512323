// Package bghcl holds small helpers shared by everything that reads or
// writes HCL manifests: unique block lookup, canonical traversal keys and
// static decoding of attribute values into Go types.
//
// All helpers evaluate expressions with a nil evaluation context. Manifests
// are static declarations, so variables and function calls are rejected by
// HCL itself with a diagnostic pointing at the offending expression.
package bghcl
