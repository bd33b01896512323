package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/buildgrid/internal/app"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// mockGenruleModule is a rule kind defined purely in Go, with its own typed
// attributes.
type mockGenruleModule struct {
	mu   sync.Mutex
	seen map[string]genruleAttrs
	deps map[string]map[model.Label]string
}

type genruleAttrs struct {
	Cmd     string
	Retries int
}

func (m *mockGenruleModule) Register(r *registry.Registry) {
	r.RegisterKind(&registry.RuleKind{
		Name: "genrule",
		Attributes: []model.AttributeSpec{
			{Name: "cmd", Type: cty.String, Required: true},
			{Name: "retries", Type: cty.Number},
		},
		Build: func(_ context.Context, in *registry.BuildInput) (*registry.BuildOutput, error) {
			var attrs genruleAttrs
			if err := gocty.FromCtyValue(in.Target.Attrs["cmd"], &attrs.Cmd); err != nil {
				return nil, err
			}
			if v, ok := in.Target.Attrs["retries"]; ok && !v.IsNull() {
				if err := gocty.FromCtyValue(v, &attrs.Retries); err != nil {
					return nil, err
				}
			}
			m.mu.Lock()
			m.seen[in.Target.Name] = attrs
			m.deps[in.Target.Name] = in.DepDigests
			m.mu.Unlock()
			return &registry.BuildOutput{Digest: "digest-" + in.Target.Name}, nil
		},
	})
}

// Test for: a Go-only rule kind receives decoded attributes and the digests
// of its dependencies.
func TestModuleContract_PureGoExecution(t *testing.T) {
	// --- Arrange ---
	tempDir := t.TempDir()
	manifest := `
		genrule "proto" {
			cmd = "protoc"
		}
		genrule "stubs" {
			cmd     = "stubgen"
			retries = 3
			deps    = [genrule.proto]
		}
	`
	if err := os.WriteFile(filepath.Join(tempDir, "BUILD.hcl"), []byte(manifest), 0600); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	mockModule := &mockGenruleModule{
		seen: make(map[string]genruleAttrs),
		deps: make(map[string]map[model.Label]string),
	}
	cfg := &app.Config{WorkspacePath: tempDir, Command: app.CommandBuild, WorkerCount: 2}
	testApp, _, _ := app.SetupAppTest(t, cfg, mockModule)

	// --- Act ---
	if err := testApp.Run(context.Background()); err != nil {
		t.Fatalf("app.Run() returned an unexpected error: %v", err)
	}

	// --- Assert ---
	if got := mockModule.seen["proto"]; got != (genruleAttrs{Cmd: "protoc"}) {
		t.Errorf("unexpected attributes for proto: %+v", got)
	}
	if got := mockModule.seen["stubs"]; got != (genruleAttrs{Cmd: "stubgen", Retries: 3}) {
		t.Errorf("unexpected attributes for stubs: %+v", got)
	}
	if got := mockModule.deps["stubs"][model.Label{Name: "proto"}]; got != "digest-proto" {
		t.Errorf("expected stubs to see the digest of proto, got %q", got)
	}
}
