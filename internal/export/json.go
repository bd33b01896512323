package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/specialistvlad/buildgrid/internal/model"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// member is one key of an orderedObject.
type member struct {
	Key   string
	Value any
}

// orderedObject is a JSON object that keeps its key order.
type orderedObject []member

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", m.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteJSON writes pkg in HCL JSON syntax. Targets are grouped by kind in
// order of first appearance. Dependencies are written as label strings.
func WriteJSON(w io.Writer, pkg *model.Package) error {
	var root orderedObject

	if len(pkg.DefaultVisibility) > 0 || len(pkg.Licenses) > 0 {
		var pb orderedObject
		if pkg.DefaultVisibility != nil {
			pb = append(pb, member{"default_visibility", pkg.DefaultVisibility})
		}
		if pkg.Licenses != nil {
			pb = append(pb, member{"licenses", pkg.Licenses})
		}
		root = append(root, member{model.PackageBlockType, pb})
	}

	byKind := make(map[string]int)
	for _, t := range pkg.Targets {
		body, err := targetJSON(t, pkg.Path)
		if err != nil {
			return err
		}
		idx, ok := byKind[t.Kind]
		if !ok {
			idx = len(root)
			byKind[t.Kind] = idx
			root = append(root, member{t.Kind, orderedObject{}})
		}
		root[idx].Value = append(root[idx].Value.(orderedObject), member{t.Name, body})
	}

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode package %q: %w", pkg.Path, err)
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

func targetJSON(t *model.Target, pkgPath string) (orderedObject, error) {
	body := orderedObject{}
	if t.Srcs != nil {
		body = append(body, member{model.AttrSrcs, t.Srcs})
	}
	for _, name := range t.AttrNames() {
		val := t.Attrs[name]
		raw, err := ctyjson.Marshal(val, val.Type())
		if err != nil {
			return nil, fmt.Errorf("failed to encode attribute %q of %s: %w", name, t.Label(), err)
		}
		body = append(body, member{name, json.RawMessage(raw)})
	}
	if t.Visibility != nil {
		body = append(body, member{model.AttrVisibility, t.Visibility})
	}
	if t.Tags != nil {
		body = append(body, member{model.AttrTags, t.Tags})
	}
	if !t.Subject.IsZero() {
		body = append(body, member{model.AttrSubject, t.Subject.Relative(pkgPath)})
	}
	if t.Deps != nil {
		deps := make([]string, 0, len(t.Deps))
		for _, d := range t.Deps {
			deps = append(deps, d.Label.Relative(pkgPath))
		}
		body = append(body, member{model.AttrDeps, deps})
	}
	return body, nil
}
