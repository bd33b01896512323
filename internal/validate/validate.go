// Package validate runs the structural checks over a loaded workspace and
// reports every problem it finds in one pass.
package validate

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/dag"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/registry"
)

var (
	// ErrKindMismatch is returned when a `<kind>.<name>` reference names a
	// target of another kind.
	ErrKindMismatch = errors.New("reference kind mismatch")
	// ErrTestDependency is returned when a non-test target depends on a test.
	ErrTestDependency = errors.New("dependency on a test target")
	// ErrMissingSubject is returned when a test does not depend on the unit
	// it exercises.
	ErrMissingSubject = errors.New("test does not depend on its subject")
	// ErrInvalidVisibility is returned for malformed visibility entries.
	ErrInvalidVisibility = errors.New("invalid visibility")
)

// Problem kinds.
const (
	KindUnknownTarget     = "unknown_target"
	KindSelfDependency    = "self_dependency"
	KindKindMismatch      = "reference_kind_mismatch"
	KindTestDependency    = "test_dependency"
	KindTestSubject       = "test_subject"
	KindInvalidSource     = "invalid_source"
	KindInvalidVisibility = "invalid_visibility"
	KindCycle             = "cycle"
)

const (
	visibilityPublic  = "//visibility:public"
	visibilityPrivate = "//visibility:private"
)

// Problem is one finding.
type Problem struct {
	Kind   string
	Target model.Label
	Err    error
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %v", p.Kind, p.Err)
}

// Report collects the problems of one validation run.
type Report struct {
	Targets  int
	Packages int
	Problems []Problem
}

// OK reports whether no problem was found.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// Err returns nil for a clean report, else an error joining every problem.
// Sentinel errors stay matchable with errors.Is.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Problems))
	for _, p := range r.Problems {
		errs = append(errs, p.Err)
	}
	return fmt.Errorf("manifest validation failed with %d problem(s): %w", len(r.Problems), errors.Join(errs...))
}

func (r *Report) add(kind string, target model.Label, err error) {
	r.Problems = append(r.Problems, Problem{Kind: kind, Target: target, Err: err})
}

// Workspace checks ws and returns the report.
func Workspace(ctx context.Context, ws *model.Workspace) *Report {
	logger := ctxlog.FromContext(ctx)
	report := &Report{Targets: ws.Len(), Packages: len(ws.Packages)}

	graph := dag.New()
	targets := ws.Targets()
	for _, t := range targets {
		graph.AddNode(t.Label().String())
	}

	for _, path := range ws.PackagePaths() {
		pkg := ws.Packages[path]
		for _, v := range pkg.DefaultVisibility {
			if err := checkVisibility(v, pkg.Path); err != nil {
				report.add(KindInvalidVisibility, model.Label{Package: pkg.Path}, fmt.Errorf("package %q default_visibility: %w", pkg.Path, err))
			}
		}
	}

	for _, t := range targets {
		checkDeps(ws, graph, t, report)
		checkSources(t, report)
		for _, v := range t.Visibility {
			if err := checkVisibility(v, t.Package); err != nil {
				report.add(KindInvalidVisibility, t.Label(), fmt.Errorf("%s: %w", t.Label(), err))
			}
		}
		if t.Test {
			checkTestSubject(ws, t, report)
		}
	}

	if err := graph.DetectCycles(); err != nil {
		report.add(KindCycle, model.Label{}, err)
	}

	logger.Debug("Validation finished.", "targets", report.Targets, "problems", len(report.Problems))
	return report
}

func checkDeps(ws *model.Workspace, graph *dag.Graph, t *model.Target, report *Report) {
	for _, d := range t.Deps {
		dep, err := dag.ResolveDep(ws, t, d)
		switch {
		case errors.Is(err, dag.ErrSelfDependency):
			report.add(KindSelfDependency, t.Label(), err)
			continue
		case err != nil:
			report.add(KindUnknownTarget, t.Label(), fmt.Errorf("%s: %w", d.Range, err))
			continue
		}

		if d.IsReference() && dep.Kind != d.RefKind {
			report.add(KindKindMismatch, t.Label(), fmt.Errorf("%w: %s references %s as %s, but it is a %s", ErrKindMismatch, t.Label(), dep.Label(), d.RefKind, dep.Kind))
		}
		if dep.Test && !t.Test {
			report.add(KindTestDependency, t.Label(), fmt.Errorf("%w: %s depends on test %s", ErrTestDependency, t.Label(), dep.Label()))
		}
		// Both nodes exist and differ, so AddEdge cannot fail here.
		_ = graph.AddEdge(dep.Label().String(), t.Label().String())
	}
}

// checkTestSubject makes sure a test depends on the unit it exercises: the
// `subject` attribute when set, else the same-package target named like the
// test without its `_test` suffix, else at least one non-test target.
func checkTestSubject(ws *model.Workspace, t *model.Target, report *Report) {
	depends := func(l model.Label) bool {
		for _, d := range t.Deps {
			if d.Label == l {
				return true
			}
		}
		return false
	}

	if !t.Subject.IsZero() {
		subject, ok := ws.Target(t.Subject)
		switch {
		case !ok:
			report.add(KindTestSubject, t.Label(), fmt.Errorf("%w: subject %s of %s is not declared", dag.ErrUnknownTarget, t.Subject, t.Label()))
		case subject.Test:
			report.add(KindTestSubject, t.Label(), fmt.Errorf("%w: subject %s of %s is itself a test", ErrMissingSubject, t.Subject, t.Label()))
		case !depends(t.Subject):
			report.add(KindTestSubject, t.Label(), fmt.Errorf("%w: %s does not list its subject %s in deps", ErrMissingSubject, t.Label(), t.Subject))
		}
		return
	}

	if base, ok := strings.CutSuffix(t.Name, "_test"); ok && base != "" {
		l := model.Label{Package: t.Package, Name: base}
		if subject, exists := ws.Target(l); exists && !subject.Test {
			if !depends(l) {
				report.add(KindTestSubject, t.Label(), fmt.Errorf("%w: %s does not list %s in deps", ErrMissingSubject, t.Label(), l))
			}
			return
		}
	}

	for _, d := range t.Deps {
		if dep, ok := ws.Target(d.Label); ok && !dep.Test {
			return
		}
	}
	report.add(KindTestSubject, t.Label(), fmt.Errorf("%w: %s depends on no library", ErrMissingSubject, t.Label()))
}

func checkSources(t *model.Target, report *Report) {
	seen := make(map[string]struct{}, len(t.Srcs))
	for _, src := range t.Srcs {
		var problem string
		cleaned := path.Clean(src)
		switch {
		case strings.TrimSpace(src) == "":
			problem = "empty source path"
		case path.IsAbs(src) || strings.HasPrefix(src, "\\") || (len(src) > 1 && src[1] == ':'):
			problem = fmt.Sprintf("source %q must be relative to the package", src)
		case cleaned == ".." || strings.HasPrefix(cleaned, "../"):
			problem = fmt.Sprintf("source %q escapes the package", src)
		case cleaned == ".":
			problem = fmt.Sprintf("source %q names the package directory", src)
		}
		if problem == "" {
			if _, dup := seen[cleaned]; dup {
				problem = fmt.Sprintf("source %q listed twice", src)
			}
			seen[cleaned] = struct{}{}
		}
		if problem != "" {
			report.add(KindInvalidSource, t.Label(), fmt.Errorf("%w: %s: %s", registry.ErrInvalidSource, t.Label(), problem))
		}
	}
}

// checkVisibility accepts the public and private markers and package
// patterns ending in :__pkg__ or :__subpackages__.
func checkVisibility(v, pkg string) error {
	if v == visibilityPublic || v == visibilityPrivate {
		return nil
	}
	l, err := model.ParseLabel(v, pkg)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidVisibility, v, err)
	}
	if l.Name != "__pkg__" && l.Name != "__subpackages__" {
		return fmt.Errorf("%w: %q must be %s, %s or end in :__pkg__ or :__subpackages__", ErrInvalidVisibility, v, visibilityPublic, visibilityPrivate)
	}
	return nil
}
