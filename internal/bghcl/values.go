package bghcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// StringListType is the cty type of every list-valued manifest attribute.
var StringListType = cty.List(cty.String)

// Value statically evaluates expr and converts the result to ty. A null
// result is returned as a null value of ty without diagnostics.
func Value(expr hcl.Expression, ty cty.Type, attrName string) (cty.Value, hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if val.IsNull() {
		return cty.NullVal(ty), diags
	}

	converted, err := convert.Convert(val, ty)
	if err != nil || !converted.IsWhollyKnown() {
		detail := fmt.Sprintf("The %q attribute must be of type %s.", attrName, ty.FriendlyName())
		if err != nil {
			detail = fmt.Sprintf("%s %s.", detail, err)
		}
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Incorrect attribute value type",
			Detail:   detail,
			Subject:  expr.Range().Ptr(),
		})
		return cty.NilVal, diags
	}
	return converted, diags
}

// String decodes expr into a Go string.
func String(expr hcl.Expression, attrName string) (string, hcl.Diagnostics) {
	val, diags := Value(expr, cty.String, attrName)
	if diags.HasErrors() || val.IsNull() {
		return "", diags
	}
	return val.AsString(), diags
}

// StringList decodes expr into a Go string slice. Null elements are rejected.
func StringList(expr hcl.Expression, attrName string) ([]string, hcl.Diagnostics) {
	val, diags := Value(expr, StringListType, attrName)
	if diags.HasErrors() || val.IsNull() {
		return nil, diags
	}

	out := make([]string, 0, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.IsNull() {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Null list element",
				Detail:   fmt.Sprintf("The %q attribute must not contain null elements.", attrName),
				Subject:  expr.Range().Ptr(),
			})
			return nil, diags
		}
		out = append(out, elem.AsString())
	}
	return out, diags
}

// StringListValue builds a cty list of strings, using an empty list for no
// elements since cty.ListVal does not accept an empty slice.
func StringListValue(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(items))
	for i, item := range items {
		vals[i] = cty.StringVal(item)
	}
	return cty.ListVal(vals)
}
