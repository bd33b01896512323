// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"github.com/zclconf/go-cty/cty"
)

// Attribute names every rule kind understands. Kind schemas may not reuse
// them.
const (
	AttrName       = "name"
	AttrSrcs       = "srcs"
	AttrDeps       = "deps"
	AttrVisibility = "visibility"
	AttrTags       = "tags"
	AttrSubject    = "subject"
)

// PackageBlockType is the block holding package-level declarations.
const PackageBlockType = "package"

// ReservedAttributes lists the common attribute names in canonical order.
var ReservedAttributes = []string{AttrName, AttrSrcs, AttrDeps, AttrVisibility, AttrTags, AttrSubject}

// IsReservedAttribute reports whether name is a common attribute.
func IsReservedAttribute(name string) bool {
	for _, r := range ReservedAttributes {
		if r == name {
			return true
		}
	}
	return false
}

// AttributeSpec declares one kind-specific attribute.
type AttributeSpec struct {
	Name        string
	Type        cty.Type
	Required    bool
	Description string
	// Allowed restricts a string attribute to a fixed set of values.
	Allowed []string
}

// KindSchema is what the parser needs to know about a rule kind.
type KindSchema struct {
	Kind       string
	Test       bool
	Attributes []AttributeSpec
}

// Schemas resolves rule kinds to their schema.
type Schemas interface {
	Schema(kind string) (*KindSchema, bool)
	Kinds() []string
}
