// Package executor builds the targets of a dependency graph on a pool of
// concurrent workers.
//
// A target is handed to a worker once every one of its dependencies has been
// built. When a build fails the run is canceled and every target that
// depends on the failed one, directly or transitively, is skipped. Targets
// already running are allowed to finish.
package executor
