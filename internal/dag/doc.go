// Package dag holds the dependency graph of a workspace. It is responsible
// for turning the targets of a loaded model.Workspace into a Directed
// Acyclic Graph keyed by canonical label, rejecting unknown targets, self
// dependencies and cycles, and answering ordering questions over it.
//
// The graph is string-keyed and knows nothing about targets once built, so
// the same structure serves the query, export and executor layers.
package dag
