package export

import (
	"io"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/buildgrid/internal/bghcl"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// WriteHCL writes pkg in native HCL syntax. Targets keep declaration order
// and dependency references keep their `<kind>.<name>` form.
func WriteHCL(w io.Writer, pkg *model.Package) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	if len(pkg.DefaultVisibility) > 0 || len(pkg.Licenses) > 0 {
		pb := root.AppendNewBlock(model.PackageBlockType, nil).Body()
		if pkg.DefaultVisibility != nil {
			pb.SetAttributeValue("default_visibility", bghcl.StringListValue(pkg.DefaultVisibility))
		}
		if pkg.Licenses != nil {
			pb.SetAttributeValue("licenses", bghcl.StringListValue(pkg.Licenses))
		}
	}

	for _, t := range pkg.Targets {
		if len(root.Blocks()) > 0 {
			root.AppendNewline()
		}
		b := root.AppendNewBlock(t.Kind, []string{t.Name}).Body()
		if t.Srcs != nil {
			b.SetAttributeValue(model.AttrSrcs, bghcl.StringListValue(t.Srcs))
		}
		for _, name := range t.AttrNames() {
			b.SetAttributeValue(name, t.Attrs[name])
		}
		if t.Visibility != nil {
			b.SetAttributeValue(model.AttrVisibility, bghcl.StringListValue(t.Visibility))
		}
		if t.Tags != nil {
			b.SetAttributeValue(model.AttrTags, bghcl.StringListValue(t.Tags))
		}
		if !t.Subject.IsZero() {
			b.SetAttributeValue(model.AttrSubject, cty.StringVal(t.Subject.Relative(pkg.Path)))
		}
		if t.Deps != nil {
			b.SetAttributeRaw(model.AttrDeps, depTokens(t, pkg.Path))
		}
	}

	_, err := w.Write(hclwrite.Format(f.Bytes()))
	return err
}

// depTokens renders the deps list, one entry per line once there is more
// than one entry.
func depTokens(t *model.Target, pkgPath string) hclwrite.Tokens {
	elems := make([]hclwrite.Tokens, 0, len(t.Deps))
	for _, d := range t.Deps {
		if d.IsReference() {
			elems = append(elems, hclwrite.TokensForTraversal(hcl.Traversal{
				hcl.TraverseRoot{Name: d.RefKind},
				hcl.TraverseAttr{Name: d.Label.Name},
			}))
			continue
		}
		elems = append(elems, hclwrite.TokensForValue(cty.StringVal(d.Label.Relative(pkgPath))))
	}
	if len(elems) <= 1 {
		return hclwrite.TokensForTuple(elems)
	}

	toks := hclwrite.Tokens{
		{Type: hclsyntax.TokenOBrack, Bytes: []byte("[")},
		{Type: hclsyntax.TokenNewline, Bytes: []byte("\n")},
	}
	for _, elem := range elems {
		toks = append(toks, elem...)
		toks = append(toks,
			&hclwrite.Token{Type: hclsyntax.TokenComma, Bytes: []byte(",")},
			&hclwrite.Token{Type: hclsyntax.TokenNewline, Bytes: []byte("\n")},
		)
	}
	return append(toks, &hclwrite.Token{Type: hclsyntax.TokenCBrack, Bytes: []byte("]")})
}
