// Package python registers the py_library, py_binary and py_test rule kinds.
package python

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const (
	KindLibrary = "py_library"
	KindBinary  = "py_binary"
	KindTest    = "py_test"
)

var (
	srcsVersion = model.AttributeSpec{
		Name:        "srcs_version",
		Type:        cty.String,
		Description: "Python versions the sources are compatible with.",
		Allowed:     []string{"PY2", "PY3", "PY2AND3", "PY2ONLY", "PY3ONLY"},
	}
	pythonVersion = model.AttributeSpec{
		Name:        "python_version",
		Type:        cty.String,
		Description: "Python major version the target runs under.",
		Allowed:     []string{"PY2", "PY3"},
	}
	mainAttr = model.AttributeSpec{
		Name:        "main",
		Type:        cty.String,
		Description: "Entry point source file. Must be listed in srcs.",
	}
)

// attrs mirrors the kind-specific attributes of a python target.
type attrs struct {
	SrcsVersion   string
	PythonVersion string
	Main          string
}

func decodeAttrs(t *model.Target) (*attrs, error) {
	var out attrs
	fields := map[string]*string{
		srcsVersion.Name:   &out.SrcsVersion,
		pythonVersion.Name: &out.PythonVersion,
		mainAttr.Name:      &out.Main,
	}
	for name, dst := range fields {
		val, ok := t.Attrs[name]
		if !ok {
			continue
		}
		if err := gocty.FromCtyValue(val, dst); err != nil {
			return nil, fmt.Errorf("attribute %q of %s: %w", name, t.Label(), err)
		}
	}
	return &out, nil
}

// Build verifies the sources of a python target and fingerprints it.
func Build(ctx context.Context, in *registry.BuildInput) (*registry.BuildOutput, error) {
	logger := ctxlog.FromContext(ctx)
	t := in.Target

	a, err := decodeAttrs(t)
	if err != nil {
		return nil, err
	}
	if a.Main != "" && !slices.Contains(t.Srcs, a.Main) {
		return nil, fmt.Errorf("%w: main %q of %s is not listed in srcs", registry.ErrInvalidSource, a.Main, t.Label())
	}
	if a.PythonVersion == "PY2" && (a.SrcsVersion == "PY3" || a.SrcsVersion == "PY3ONLY") {
		return nil, fmt.Errorf("%s: python_version PY2 cannot run srcs_version %s", t.Label(), a.SrcsVersion)
	}
	if a.PythonVersion == "PY3" && a.SrcsVersion == "PY2ONLY" {
		return nil, fmt.Errorf("%s: python_version PY3 cannot run srcs_version PY2ONLY", t.Label())
	}

	digests, err := registry.HashSources(in, ".py")
	if err != nil {
		return nil, err
	}
	digest, err := registry.Fingerprint(in, digests)
	if err != nil {
		return nil, err
	}

	logger.Debug("Python target verified.", "target", t.Label().String(), "sources", len(digests))
	return &registry.BuildOutput{Digest: digest, Outputs: slices.Clone(t.Srcs)}, nil
}

// Register registers the python rule kinds with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.RuleKind{
		Name:        KindLibrary,
		Description: "A python library.",
		Attributes:  []model.AttributeSpec{srcsVersion},
		Build:       Build,
	})
	r.RegisterKind(&registry.RuleKind{
		Name:        KindBinary,
		Description: "An executable python program.",
		Attributes:  []model.AttributeSpec{srcsVersion, pythonVersion, mainAttr},
		Build:       Build,
	})
	r.RegisterKind(&registry.RuleKind{
		Name:        KindTest,
		Description: "A python test.",
		Test:        true,
		Attributes:  []model.AttributeSpec{srcsVersion, pythonVersion, mainAttr},
		Build:       Build,
	})
}
