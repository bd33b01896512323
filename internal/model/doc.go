// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the Go struct representation of buildgrid
// manifests. It turns the raw HCL of a BUILD.hcl (or BUILD.hcl.json) file
// into a strongly-typed, in-memory model of packages and build targets.
//
// # Core Concepts
//
//   - Workspace: the root container. It aggregates every package found under
//     a directory tree, keyed by package path.
//
//   - Package: one manifest file. It carries package-level declarations such
//     as the default visibility and licenses, plus its targets in declaration
//     order.
//
//   - Target: a named, independently buildable unit. Its block type is the
//     rule kind (py_library, py_test, ...) and its label is the target name.
//
//   - Label: the address of a target, `//pkg/path:name`.
//
// The model knows nothing about which rule kinds exist. Parsing is driven by
// a Schemas implementation, normally the rule registry, which supplies the
// kind-specific attributes for every block type.
package model
