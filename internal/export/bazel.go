package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// WriteBazel writes pkg as a Starlark BUILD file laid out the way
// buildifier formats one: one attribute per line, single-element lists
// inline and longer lists one element per line with a trailing comma.
// Test subjects have no Starlark equivalent and are left out.
func WriteBazel(w io.Writer, pkg *model.Package) error {
	bw := bufio.NewWriter(w)
	first := true
	sep := func() {
		if !first {
			bw.WriteString("\n")
		}
		first = false
	}

	if pkg.DefaultVisibility != nil {
		sep()
		fmt.Fprintf(bw, "package(default_visibility = %s)\n", starlarkList(pkg.DefaultVisibility, ""))
	}
	if pkg.Licenses != nil {
		sep()
		fmt.Fprintf(bw, "licenses(%s)\n", starlarkList(pkg.Licenses, ""))
	}

	for _, t := range pkg.Targets {
		sep()
		if err := writeBazelTarget(bw, t, pkg.Path); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeBazelTarget(w *bufio.Writer, t *model.Target, pkgPath string) error {
	const indent = "    "
	fmt.Fprintf(w, "%s(\n", t.Kind)
	fmt.Fprintf(w, "%sname = %s,\n", indent, strconv.Quote(t.Name))
	if t.Srcs != nil {
		fmt.Fprintf(w, "%ssrcs = %s,\n", indent, starlarkList(t.Srcs, indent))
	}
	for _, name := range t.AttrNames() {
		val, err := starlarkValue(t.Attrs[name], indent)
		if err != nil {
			return fmt.Errorf("attribute %q of %s: %w", name, t.Label(), err)
		}
		fmt.Fprintf(w, "%s%s = %s,\n", indent, name, val)
	}
	if t.Deps != nil {
		deps := make([]string, 0, len(t.Deps))
		for _, d := range t.Deps {
			deps = append(deps, d.Label.Relative(pkgPath))
		}
		fmt.Fprintf(w, "%sdeps = %s,\n", indent, starlarkList(deps, indent))
	}
	if t.Visibility != nil {
		fmt.Fprintf(w, "%svisibility = %s,\n", indent, starlarkList(t.Visibility, indent))
	}
	if t.Tags != nil {
		fmt.Fprintf(w, "%stags = %s,\n", indent, starlarkList(t.Tags, indent))
	}
	w.WriteString(")\n")
	return nil
}

func starlarkList(items []string, indent string) string {
	switch len(items) {
	case 0:
		return "[]"
	case 1:
		return "[" + strconv.Quote(items[0]) + "]"
	}
	var b strings.Builder
	b.WriteString("[\n")
	for _, item := range items {
		b.WriteString(indent + "    " + strconv.Quote(item) + ",\n")
	}
	b.WriteString(indent + "]")
	return b.String()
}

func starlarkValue(v cty.Value, indent string) (string, error) {
	if v.IsNull() {
		return "None", nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return strconv.Quote(v.AsString()), nil
	case ty == cty.Bool:
		if v.True() {
			return "True", nil
		}
		return "False", nil
	case ty == cty.Number:
		return v.AsBigFloat().Text('f', -1), nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		var items []string
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if elem.Type() != cty.String || elem.IsNull() {
				return "", fmt.Errorf("unsupported list element type %s", elem.Type().FriendlyName())
			}
			items = append(items, elem.AsString())
		}
		return starlarkList(items, indent), nil
	}
	return "", fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}
