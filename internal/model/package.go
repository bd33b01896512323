// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"errors"
	"fmt"
)

// ErrDuplicateTarget is returned when a package declares a target name twice.
var ErrDuplicateTarget = errors.New("duplicate target")

// Package is the content of one manifest file.
type Package struct {
	// Path is the package path relative to the workspace root, "" for the
	// root package.
	Path string
	// Dir is the directory holding the manifest on disk.
	Dir string
	// File is the manifest file path.
	File string

	DefaultVisibility []string
	Licenses          []string

	// Targets keeps declaration order.
	Targets []*Target
	byName  map[string]*Target
}

// NewPackage returns an empty package.
func NewPackage(path, dir, file string) *Package {
	return &Package{
		Path:   path,
		Dir:    dir,
		File:   file,
		byName: make(map[string]*Target),
	}
}

// AddTarget appends t, rejecting a name that is already declared.
func (p *Package) AddTarget(t *Target) error {
	if p.byName == nil {
		p.byName = make(map[string]*Target)
	}
	if prev, ok := p.byName[t.Name]; ok {
		return fmt.Errorf("%w: %q in package %q (first declared at %s)", ErrDuplicateTarget, t.Name, p.Path, prev.DefRange)
	}
	t.Package = p.Path
	p.byName[t.Name] = t
	p.Targets = append(p.Targets, t)
	return nil
}

// Target returns the named target.
func (p *Package) Target(name string) (*Target, bool) {
	t, ok := p.byName[name]
	return t, ok
}

// TargetNames returns target names in declaration order.
func (p *Package) TargetNames() []string {
	names := make([]string, 0, len(p.Targets))
	for _, t := range p.Targets {
		names = append(names, t.Name)
	}
	return names
}
