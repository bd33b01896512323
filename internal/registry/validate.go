package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// ValidateRegistry checks every registered kind for internal consistency.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.Kinds() {
		kind := r.kinds[name]
		if name == model.PackageBlockType {
			errs = append(errs, fmt.Sprintf("rule kind '%s': name is reserved for package declarations", name))
		}
		if kind.Build == nil {
			errs = append(errs, fmt.Sprintf("rule kind '%s': no build function", name))
		}

		seen := make(map[string]struct{}, len(kind.Attributes))
		for _, attr := range kind.Attributes {
			if model.IsReservedAttribute(attr.Name) {
				errs = append(errs, fmt.Sprintf("rule kind '%s': attribute '%s' shadows a common attribute", name, attr.Name))
			}
			if _, dup := seen[attr.Name]; dup {
				errs = append(errs, fmt.Sprintf("rule kind '%s': attribute '%s' declared twice", name, attr.Name))
			}
			seen[attr.Name] = struct{}{}

			if attr.Type == cty.NilType {
				errs = append(errs, fmt.Sprintf("rule kind '%s', attribute '%s': no type", name, attr.Name))
				continue
			}
			if attr.Type.Equals(cty.DynamicPseudoType) {
				logger.Warn("Rule kind has attribute with 'type = any', which disables static type checking.", "kind", name, "attribute", attr.Name)
			}
			if len(attr.Allowed) > 0 && !attr.Type.Equals(cty.String) {
				errs = append(errs, fmt.Sprintf("rule kind '%s', attribute '%s': allowed values require a string type, got %s", name, attr.Name, attr.Type.FriendlyName()))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.", "kinds", len(r.kinds))
	return nil
}
