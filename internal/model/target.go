// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Target, the atomic unit of a manifest: one rule block
// such as `py_library "layer_registry" { ... }`.
package model

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Dep is one entry of a target's `deps` list.
type Dep struct {
	// Label is the resolved address of the dependency.
	Label Label
	// Reference is the traversal text (`py_library.clip_grads`) when the
	// dependency was written as an expression instead of a label string.
	Reference string
	// RefKind is the rule kind named by Reference, empty for label strings.
	RefKind string
	Range   hcl.Range
}

// IsReference reports whether the dependency was declared implicitly.
func (d Dep) IsReference() bool {
	return d.Reference != ""
}

// Target is a named, independently buildable unit.
type Target struct {
	Kind    string
	Name    string
	Package string
	// Test is set for test rule kinds. Tests may depend on libraries but
	// libraries never depend on tests.
	Test bool

	Srcs       []string
	Deps       []Dep
	Visibility []string
	Tags       []string
	// Subject is the unit a test exercises when declared explicitly.
	Subject Label

	// Attrs holds kind-specific attributes keyed by name, for example the
	// language-version tag `srcs_version`.
	Attrs map[string]cty.Value

	FSInformation *FSInfo
	DefRange      hcl.Range
}

// Label returns the target's canonical address.
func (t *Target) Label() Label {
	return Label{Package: t.Package, Name: t.Name}
}

// DepLabels returns the declared dependency labels in declaration order.
func (t *Target) DepLabels() []Label {
	out := make([]Label, 0, len(t.Deps))
	for _, d := range t.Deps {
		out = append(out, d.Label)
	}
	return out
}

// AttrNames returns the names of the kind-specific attributes, sorted.
func (t *Target) AttrNames() []string {
	names := make([]string, 0, len(t.Attrs))
	for name := range t.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StringAttr returns a kind-specific string attribute, or "" when it is
// unset, null or not a string.
func (t *Target) StringAttr(name string) string {
	v, ok := t.Attrs[name]
	if !ok || v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
		return ""
	}
	return v.AsString()
}
