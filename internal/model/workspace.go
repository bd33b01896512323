// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"fmt"
	"sort"
)

// Workspace aggregates every package loaded from one root.
type Workspace struct {
	Root     string
	Packages map[string]*Package
}

// NewWorkspace returns an empty workspace rooted at root.
func NewWorkspace(root string) *Workspace {
	return &Workspace{
		Root:     root,
		Packages: make(map[string]*Package),
	}
}

// AddPackage registers p. Two manifests for one package path is an error.
func (w *Workspace) AddPackage(p *Package) error {
	if prev, ok := w.Packages[p.Path]; ok {
		return fmt.Errorf("package %q is declared by both %s and %s", p.Path, prev.File, p.File)
	}
	w.Packages[p.Path] = p
	return nil
}

// PackagePaths returns the package paths, sorted.
func (w *Workspace) PackagePaths() []string {
	paths := make([]string, 0, len(w.Packages))
	for path := range w.Packages {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Target looks a target up by label.
func (w *Workspace) Target(l Label) (*Target, bool) {
	p, ok := w.Packages[l.Package]
	if !ok {
		return nil, false
	}
	return p.Target(l.Name)
}

// Targets returns every target, packages sorted by path and targets in
// declaration order.
func (w *Workspace) Targets() []*Target {
	var out []*Target
	for _, path := range w.PackagePaths() {
		out = append(out, w.Packages[path].Targets...)
	}
	return out
}

// Len returns the total number of targets.
func (w *Workspace) Len() int {
	n := 0
	for _, p := range w.Packages {
		n += len(p.Targets)
	}
	return n
}
