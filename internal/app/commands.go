package app

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/buildgrid/internal/export"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/query"
	"github.com/specialistvlad/buildgrid/internal/validate"
)

func (a *App) runValidate(ws *model.Workspace) error {
	report := validate.Workspace(a.ctx, ws)
	if report.OK() {
		fmt.Fprintf(a.outW, "ok: %d targets in %d packages\n", report.Targets, report.Packages)
		return nil
	}
	for _, p := range report.Problems {
		fmt.Fprintln(a.outW, p.String())
	}
	return report.Err()
}

func (a *App) runExport(ws *model.Workspace) error {
	format, err := export.ParseFormat(a.config.ExportFormat)
	if err != nil {
		return err
	}

	var pkg *model.Package
	if len(a.config.Args) == 1 {
		path := strings.TrimPrefix(a.config.Args[0], "//")
		p, ok := ws.Packages[path]
		if !ok {
			return fmt.Errorf("package %q not found in workspace", path)
		}
		pkg = p
	} else {
		paths := ws.PackagePaths()
		if len(paths) != 1 {
			return fmt.Errorf("workspace has %d packages, name the one to export", len(paths))
		}
		pkg = ws.Packages[paths[0]]
	}

	a.logger.Debug("Exporting package.", "package", pkg.Path, "format", format)
	return export.Write(a.outW, pkg, format)
}

func (a *App) runOrder(q *query.Query) error {
	var scope map[model.Label]struct{}
	var order []model.Label
	var err error
	if len(a.config.Args) == 1 {
		target, rerr := q.Resolve(a.config.Args[0])
		if rerr != nil {
			return rerr
		}
		if order, err = q.Closure(target); err != nil {
			return err
		}
		scope = make(map[model.Label]struct{}, len(order))
		for _, l := range order {
			scope[l] = struct{}{}
		}
	} else if order, err = q.Order(); err != nil {
		return err
	}

	if !a.config.Levels {
		a.printLabels(order)
		return nil
	}

	levels, err := q.Levels()
	if err != nil {
		return err
	}
	for _, level := range levels {
		var names []string
		for _, l := range level {
			if _, ok := scope[l]; scope == nil || ok {
				names = append(names, l.String())
			}
		}
		if len(names) > 0 {
			fmt.Fprintln(a.outW, strings.Join(names, " "))
		}
	}
	return nil
}

func (a *App) runDeps(q *query.Query, reverse bool) error {
	l, err := q.Resolve(a.config.Args[0])
	if err != nil {
		return err
	}
	var labels []model.Label
	if reverse {
		labels, err = q.ReverseDeps(l, a.config.Transitive)
	} else {
		labels, err = q.Deps(l, a.config.Transitive)
	}
	if err != nil {
		return err
	}
	a.printLabels(labels)
	return nil
}

func (a *App) runPath(q *query.Query) error {
	from, err := q.Resolve(a.config.Args[0])
	if err != nil {
		return err
	}
	to, err := q.Resolve(a.config.Args[1])
	if err != nil {
		return err
	}
	path, err := q.Path(from, to)
	if err != nil {
		return err
	}
	if path == nil {
		return fmt.Errorf("%s does not depend on %s", from, to)
	}
	a.printLabels(path)
	return nil
}

func (a *App) printLabels(labels []model.Label) {
	for _, l := range labels {
		fmt.Fprintln(a.outW, l.String())
	}
}
