package integration_tests

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/buildgrid/internal/app"
	"github.com/specialistvlad/buildgrid/internal/registry"
)

// mockFailModule registers a kind that always fails and a spy kind that
// notes when it is built.
type mockFailModule struct {
	wasSpyExecuted *atomic.Bool
	injectedError  error
}

func (m *mockFailModule) Register(r *registry.Registry) {
	r.RegisterKind(&registry.RuleKind{
		Name: "failing",
		Build: func(context.Context, *registry.BuildInput) (*registry.BuildOutput, error) {
			return nil, m.injectedError
		},
	})
	r.RegisterKind(&registry.RuleKind{
		Name: "spy",
		Build: func(_ context.Context, in *registry.BuildInput) (*registry.BuildOutput, error) {
			m.wasSpyExecuted.Store(true)
			return &registry.BuildOutput{Digest: in.Target.Name}, nil
		},
	})
}

// Test for: a failed build skips its dependents
func TestErrorHandling_BuildFailure_SkipsDependents(t *testing.T) {
	// --- Arrange ---
	tempDir := t.TempDir()
	manifest := `
		failing "A" {}

		spy "B" {
			deps = [failing.A]
		}
	`
	if err := os.WriteFile(filepath.Join(tempDir, "BUILD.hcl"), []byte(manifest), 0600); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	var wasSpyExecuted atomic.Bool
	expectedErr := errors.New("compilation failed as expected")
	cfg := &app.Config{WorkspacePath: tempDir, Command: app.CommandBuild, WorkerCount: 2}
	mockModule := &mockFailModule{wasSpyExecuted: &wasSpyExecuted, injectedError: expectedErr}
	testApp, out, _ := app.SetupAppTest(t, cfg, mockModule)

	// --- Act ---
	runErr := testApp.Run(context.Background())

	// --- Assert ---
	if runErr == nil {
		t.Fatal("app.Run() should have returned an error, but it returned nil")
	}
	if !errors.Is(runErr, expectedErr) {
		t.Errorf("expected the error chain to contain our injected error, but it did not. Got: %v", runErr)
	}
	if wasSpyExecuted.Load() {
		t.Error("the dependent target was built even though its dependency failed")
	}
	if !strings.Contains(out.String(), "//:B skipped") {
		t.Errorf("expected the summary to report B as skipped, got:\n%s", out.String())
	}
}
