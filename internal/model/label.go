// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

// ErrInvalidLabel is returned for malformed target labels and package paths.
var ErrInvalidLabel = errors.New("invalid label")

var (
	targetNameRegex  = regexp.MustCompile(`^[A-Za-z0-9_\-.+=,@~]+(/[A-Za-z0-9_\-.+=,@~]+)*$`)
	packagePathRegex = regexp.MustCompile(`^[A-Za-z0-9_\-.+]+(/[A-Za-z0-9_\-.+]+)*$`)
)

// Label is the address of a target: the package path relative to the
// workspace root (empty for the root package) and the target name.
type Label struct {
	Package string
	Name    string
}

// ParseLabel parses raw relative to the package currentPkg. Accepted forms
// are `:name`, `name`, `//pkg:name`, `//:name` and `//pkg`, the last being
// shorthand for `//pkg:<last path segment>`.
func ParseLabel(raw, currentPkg string) (Label, error) {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return Label{}, fmt.Errorf("%w: empty label", ErrInvalidLabel)
	case strings.HasPrefix(s, "@"):
		return Label{}, fmt.Errorf("%w: external repository labels are not supported: %q", ErrInvalidLabel, raw)
	}

	var l Label
	switch {
	case strings.HasPrefix(s, "//"):
		rest := s[2:]
		pkg, name, hasColon := strings.Cut(rest, ":")
		if !hasColon {
			if pkg == "" {
				return Label{}, fmt.Errorf("%w: %q names no target", ErrInvalidLabel, raw)
			}
			name = path.Base(pkg)
		}
		l = Label{Package: pkg, Name: name}
	case strings.HasPrefix(s, ":"):
		l = Label{Package: currentPkg, Name: s[1:]}
	case strings.Contains(s, ":"):
		return Label{}, fmt.Errorf("%w: %q must start with // or :", ErrInvalidLabel, raw)
	default:
		l = Label{Package: currentPkg, Name: s}
	}

	if err := ValidatePackagePath(l.Package); err != nil {
		return Label{}, fmt.Errorf("label %q: %w", raw, err)
	}
	if err := ValidateTargetName(l.Name); err != nil {
		return Label{}, fmt.Errorf("label %q: %w", raw, err)
	}
	return l, nil
}

// MustParseLabel is like ParseLabel but panics on error. Intended for tests
// and constants.
func MustParseLabel(raw string) Label {
	l, err := ParseLabel(raw, "")
	if err != nil {
		panic(err)
	}
	return l
}

// ValidatePackagePath checks a workspace-relative package path. The root
// package is the empty string.
func ValidatePackagePath(pkg string) error {
	if pkg == "" {
		return nil
	}
	if !packagePathRegex.MatchString(pkg) {
		return fmt.Errorf("%w: bad package path %q", ErrInvalidLabel, pkg)
	}
	for _, seg := range strings.Split(pkg, "/") {
		if seg == "." || seg == ".." {
			return fmt.Errorf("%w: package path %q contains %q", ErrInvalidLabel, pkg, seg)
		}
	}
	return nil
}

// ValidateTargetName checks a target name.
func ValidateTargetName(name string) error {
	if !targetNameRegex.MatchString(name) {
		return fmt.Errorf("%w: bad target name %q", ErrInvalidLabel, name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "." || seg == ".." {
			return fmt.Errorf("%w: target name %q contains %q", ErrInvalidLabel, name, seg)
		}
	}
	return nil
}

// String returns the canonical `//pkg:name` form.
func (l Label) String() string {
	return "//" + l.Package + ":" + l.Name
}

// Relative renders the label as seen from package pkg: `:name` inside the
// same package, the canonical form otherwise.
func (l Label) Relative(pkg string) string {
	if l.Package == pkg {
		return ":" + l.Name
	}
	return l.String()
}

// IsZero reports whether l is the zero Label.
func (l Label) IsZero() bool {
	return l.Package == "" && l.Name == ""
}

// Compare orders labels by package path, then by name.
func (l Label) Compare(other Label) int {
	if c := strings.Compare(l.Package, other.Package); c != 0 {
		return c
	}
	return strings.Compare(l.Name, other.Name)
}
