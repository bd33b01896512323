package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/buildgrid/internal/app"
)

// Test for: independent targets are built in parallel.
func TestDagConcurrency_IndependentTargetsRunInParallel(t *testing.T) {
	// --- Arrange ---
	tempDir := t.TempDir()
	manifest := `
		sleeper "A" {}
		sleeper "B" {}
	`
	if err := os.WriteFile(filepath.Join(tempDir, "BUILD.hcl"), []byte(manifest), 0600); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	cfg := buildConfig(tempDir, 2)
	mockModule := newMockSleeperModule(200 * time.Millisecond)
	testApp, _, _ := app.SetupAppTest(t, cfg, mockModule)

	// --- Act ---
	if err := testApp.Run(context.Background()); err != nil {
		t.Fatalf("app.Run() returned an unexpected error: %v", err)
	}

	// --- Assert ---
	a, b := mockModule.record("A"), mockModule.record("B")
	if a == nil || b == nil {
		t.Fatal("expected both targets to be built")
	}
	if !a.Start.Before(b.End) || !b.Start.Before(a.End) {
		t.Errorf("expected A (%v-%v) and B (%v-%v) to overlap", a.Start, a.End, b.Start, b.End)
	}
}

// Test for: a single worker builds one target at a time.
func TestDagConcurrency_SingleWorkerSerializes(t *testing.T) {
	// --- Arrange ---
	tempDir := t.TempDir()
	manifest := `
		sleeper "A" {}
		sleeper "B" {}
	`
	if err := os.WriteFile(filepath.Join(tempDir, "BUILD.hcl"), []byte(manifest), 0600); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	cfg := buildConfig(tempDir, 1)
	mockModule := newMockSleeperModule(50 * time.Millisecond)
	testApp, _, _ := app.SetupAppTest(t, cfg, mockModule)

	// --- Act ---
	if err := testApp.Run(context.Background()); err != nil {
		t.Fatalf("app.Run() returned an unexpected error: %v", err)
	}

	// --- Assert ---
	a, b := mockModule.record("A"), mockModule.record("B")
	if b.Start.Before(a.End) {
		t.Errorf("expected B to start after A finished, got A end %v, B start %v", a.End, b.Start)
	}
}
