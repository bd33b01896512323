package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/buildgrid/internal/app"
)

// Test for: invalid HCL is rejected before anything runs
func TestErrorHandling_InvalidHCL_IsRejected(t *testing.T) {
	// --- Arrange ---
	tempDir := t.TempDir()
	manifest := `
		py_library "broken" {
			srcs = ["broken.py"
	`
	if err := os.WriteFile(filepath.Join(tempDir, "BUILD.hcl"), []byte(manifest), 0600); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	cfg := &app.Config{WorkspacePath: tempDir, Command: app.CommandValidate, WorkerCount: 1}
	testApp, _, _ := app.SetupAppTest(t, cfg)

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	if err == nil {
		t.Fatal("expected an error for malformed HCL, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse HCL file") {
		t.Errorf("expected a parse error, got: %v", err)
	}
}

// Test for: unknown attributes are rejected by the kind schema
func TestErrorHandling_UnknownAttribute_IsRejected(t *testing.T) {
	// --- Arrange ---
	tempDir := t.TempDir()
	manifest := `
		py_library "lib" {
			srcs     = ["lib.py"]
			optimize = true
		}
	`
	if err := os.WriteFile(filepath.Join(tempDir, "BUILD.hcl"), []byte(manifest), 0600); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	cfg := &app.Config{WorkspacePath: tempDir, Command: app.CommandValidate, WorkerCount: 1}
	testApp, _, _ := app.SetupAppTest(t, cfg)

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	if err == nil {
		t.Fatal("expected an error for an unknown attribute, got nil")
	}
	if !strings.Contains(err.Error(), "optimize") {
		t.Errorf("expected the error to name the attribute, got: %v", err)
	}
}
