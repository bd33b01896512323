// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file turns the body of one manifest file into a Package. The set of
// allowed block types is dynamic: every rule kind known to the Schemas
// implementation becomes a labelled block type.
package model

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/buildgrid/internal/bghcl"
	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// hclPackageBlock is the decoding target for the `package` block.
type hclPackageBlock struct {
	DefaultVisibility []string `hcl:"default_visibility,optional"`
	Licenses          []string `hcl:"licenses,optional"`
}

func rootSchema(schemas Schemas) *hcl.BodySchema {
	schema := &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{{Type: PackageBlockType}},
	}
	for _, kind := range schemas.Kinds() {
		schema.Blocks = append(schema.Blocks, hcl.BlockHeaderSchema{
			Type:       kind,
			LabelNames: []string{AttrName},
		})
	}
	return schema
}

func targetSchema(ks *KindSchema) *hcl.BodySchema {
	schema := &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: AttrSrcs},
			{Name: AttrDeps},
			{Name: AttrVisibility},
			{Name: AttrTags},
			{Name: AttrSubject},
		},
	}
	for _, a := range ks.Attributes {
		schema.Attributes = append(schema.Attributes, hcl.AttributeSchema{Name: a.Name, Required: a.Required})
	}
	return schema
}

// ParsePackage decodes a manifest body into pkg. Package Path, Dir and File
// must already be set. All problems found in the file are reported together.
func ParsePackage(ctx context.Context, body hcl.Body, pkg *Package, schemas Schemas) error {
	logger := ctxlog.FromContext(ctx)

	content, diags := body.Content(rootSchema(schemas))

	var errs []error
	pkgBlock, blockDiags := bghcl.FindUniqueBlock(content.Blocks, PackageBlockType)
	diags = append(diags, blockDiags...)
	if pkgBlock != nil {
		var decoded hclPackageBlock
		diags = append(diags, gohcl.DecodeBody(pkgBlock.Body, nil, &decoded)...)
		pkg.DefaultVisibility = decoded.DefaultVisibility
		pkg.Licenses = decoded.Licenses
	}

	for _, block := range content.Blocks {
		if block.Type == PackageBlockType {
			continue
		}
		target, targetDiags := parseTarget(block, pkg, schemas)
		diags = append(diags, targetDiags...)
		if target == nil {
			continue
		}
		if err := pkg.AddTarget(target); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", block.DefRange, err))
		}
	}

	if diags.HasErrors() {
		errs = append(errs, diags)
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to decode %s: %w", pkg.File, errors.Join(errs...))
	}

	logger.Debug("Parsed package.", "package", pkg.Path, "targets", len(pkg.Targets))
	return nil
}

func parseTarget(block *hcl.Block, pkg *Package, schemas Schemas) (*Target, hcl.Diagnostics) {
	ks, ok := schemas.Schema(block.Type)
	if !ok {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unknown rule kind",
			Detail:   fmt.Sprintf("No rule kind named %q is registered.", block.Type),
			Subject:  block.TypeRange.Ptr(),
		}}
	}

	name := block.Labels[0]
	var diags hcl.Diagnostics
	if err := ValidateTargetName(name); err != nil {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid target name",
			Detail:   err.Error(),
			Subject:  block.LabelRanges[0].Ptr(),
		})
	}

	content, contentDiags := block.Body.Content(targetSchema(ks))
	diags = append(diags, contentDiags...)

	t := &Target{
		Kind:          block.Type,
		Name:          name,
		Package:       pkg.Path,
		Test:          ks.Test,
		Attrs:         make(map[string]cty.Value),
		FSInformation: NewFSInfo(pkg.File),
		DefRange:      block.DefRange,
	}

	if attr, ok := content.Attributes[AttrSrcs]; ok {
		srcs, d := bghcl.StringList(attr.Expr, AttrSrcs)
		diags = append(diags, d...)
		t.Srcs = srcs
	}
	if attr, ok := content.Attributes[AttrVisibility]; ok {
		vis, d := bghcl.StringList(attr.Expr, AttrVisibility)
		diags = append(diags, d...)
		t.Visibility = vis
	}
	if attr, ok := content.Attributes[AttrTags]; ok {
		tags, d := bghcl.StringList(attr.Expr, AttrTags)
		diags = append(diags, d...)
		t.Tags = tags
	}
	if attr, ok := content.Attributes[AttrSubject]; ok {
		raw, d := bghcl.String(attr.Expr, AttrSubject)
		diags = append(diags, d...)
		if !d.HasErrors() && raw != "" {
			subject, err := ParseLabel(raw, pkg.Path)
			if err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid subject",
					Detail:   err.Error(),
					Subject:  attr.Expr.Range().Ptr(),
				})
			}
			t.Subject = subject
		}
	}
	if attr, ok := content.Attributes[AttrDeps]; ok {
		deps, d := parseDeps(attr.Expr, pkg.Path, schemas)
		diags = append(diags, d...)
		t.Deps = deps
	}

	for _, as := range ks.Attributes {
		attr, ok := content.Attributes[as.Name]
		if !ok {
			continue
		}
		val, d := bghcl.Value(attr.Expr, as.Type, as.Name)
		diags = append(diags, d...)
		if d.HasErrors() || val.IsNull() {
			continue
		}
		if len(as.Allowed) > 0 && as.Type == cty.String && !slices.Contains(as.Allowed, val.AsString()) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid attribute value",
				Detail:   fmt.Sprintf("The %q attribute must be one of %v, got %q.", as.Name, as.Allowed, val.AsString()),
				Subject:  attr.Expr.Range().Ptr(),
			})
			continue
		}
		t.Attrs[as.Name] = val
	}

	return t, diags
}

// parseDeps reads the `deps` list. Items are either label strings or
// `<kind>.<name>` references to targets in the same package.
func parseDeps(expr hcl.Expression, pkgPath string, schemas Schemas) ([]Dep, hcl.Diagnostics) {
	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, diags
	}

	deps := make([]Dep, 0, len(items))
	seen := make(map[Label]hcl.Range, len(items))
	for _, item := range items {
		dep, d := parseDep(item, pkgPath, schemas)
		diags = append(diags, d...)
		if d.HasErrors() {
			continue
		}
		if prev, dup := seen[dep.Label]; dup {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate dependency",
				Detail:   fmt.Sprintf("%s is already listed at %s.", dep.Label, prev),
				Subject:  item.Range().Ptr(),
			})
			continue
		}
		seen[dep.Label] = dep.Range
		deps = append(deps, dep)
	}
	return deps, diags
}

func parseDep(item hcl.Expression, pkgPath string, schemas Schemas) (Dep, hcl.Diagnostics) {
	if len(item.Variables()) > 0 {
		kind, name, ok := bghcl.SimpleReference(item)
		if !ok {
			return Dep{}, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Invalid dependency reference",
				Detail:   "A dependency reference must have the form <kind>.<name>.",
				Subject:  item.Range().Ptr(),
			}}
		}
		if _, known := schemas.Schema(kind); !known {
			return Dep{}, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Unknown rule kind in reference",
				Detail:   fmt.Sprintf("The reference names rule kind %q, which is not registered.", kind),
				Subject:  item.Range().Ptr(),
			}}
		}
		traversal, _ := hcl.AbsTraversalForExpr(item)
		return Dep{
			Label:     Label{Package: pkgPath, Name: name},
			Reference: bghcl.TraversalKey(traversal),
			RefKind:   kind,
			Range:     item.Range(),
		}, nil
	}

	raw, diags := bghcl.String(item, AttrDeps)
	if diags.HasErrors() {
		return Dep{}, diags
	}
	l, err := ParseLabel(raw, pkgPath)
	if err != nil {
		return Dep{}, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid dependency label",
			Detail:   err.Error(),
			Subject:  item.Range().Ptr(),
		}}
	}
	return Dep{Label: l, Range: item.Range()}, nil
}
