package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/buildgrid/internal/model"
)

// BuildFunc builds one target. It must be safe for concurrent use.
type BuildFunc func(ctx context.Context, in *BuildInput) (*BuildOutput, error)

// FileHasher returns the hex digest of a file's content.
type FileHasher interface {
	HashFile(path string) (string, error)
}

// BuildInput is everything a BuildFunc may look at.
type BuildInput struct {
	Target *model.Target
	// Dir is the package directory that relative sources resolve against.
	Dir string
	// DepDigests holds the digest of every direct dependency.
	DepDigests map[model.Label]string
	// Hasher is optional. Files are read directly when it is nil.
	Hasher FileHasher
}

// BuildOutput is the result of a successful build.
type BuildOutput struct {
	Digest  string
	Outputs []string
}

// RuleKind describes one block type allowed in manifests.
type RuleKind struct {
	Name        string
	Description string
	// Test marks kinds that declare test units.
	Test       bool
	Attributes []model.AttributeSpec
	Build      BuildFunc
}

// RegisterKind adds a rule kind. Registering a name twice is a programming
// error and panics.
func (r *Registry) RegisterKind(kind *RuleKind) {
	if _, exists := r.kinds[kind.Name]; exists {
		panic(fmt.Sprintf("rule kind with name '%s' already registered", kind.Name))
	}
	slog.Debug("Registering rule kind.", "name", kind.Name, "test", kind.Test)
	r.kinds[kind.Name] = kind
}
