// Package filegroup registers the filegroup rule kind: a named set of files
// with no language-version tag.
package filegroup

import (
	"context"
	"slices"

	"github.com/specialistvlad/buildgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const Kind = "filegroup"

// Build checks that every listed file exists.
func Build(ctx context.Context, in *registry.BuildInput) (*registry.BuildOutput, error) {
	digests, err := registry.HashSources(in)
	if err != nil {
		return nil, err
	}
	digest, err := registry.Fingerprint(in, digests)
	if err != nil {
		return nil, err
	}
	return &registry.BuildOutput{Digest: digest, Outputs: slices.Clone(in.Target.Srcs)}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.RuleKind{
		Name:        Kind,
		Description: "A named collection of files.",
		Build:       Build,
	})
}
