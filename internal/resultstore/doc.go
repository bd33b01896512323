// Package resultstore holds the mutable state of one build run: the status,
// output and error of every target.
//
// # Concurrency Model
//
// The memory implementation uses sync.Map. Workers update independent keys
// constantly while the run is in progress and the key space is fixed once
// the plan is known, which is the access pattern sync.Map is built for.
package resultstore
