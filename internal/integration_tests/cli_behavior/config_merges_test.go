package integration_tests

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/buildgrid/internal/cli"
)

// Test for: flags override the environment, which overrides defaults.
func TestCLI_ConfigMerges(t *testing.T) {
	// --- Arrange ---
	t.Setenv("BUILDGRID_WORKERS", "6")
	t.Setenv("BUILDGRID_LOG_FORMAT", "json")
	t.Setenv("BUILDGRID_EXPORT_FORMAT", "bazel")

	// --- Act ---
	cfg, _, err := cli.Parse([]string{"-log-format", "text", "export"}, &bytes.Buffer{})

	// --- Assert ---
	if err != nil {
		t.Fatalf("cli.Parse() returned an unexpected error: %v", err)
	}
	if cfg.WorkerCount != 6 {
		t.Errorf("expected workers from the environment, got %d", cfg.WorkerCount)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("expected the flag to override the environment, got %q", cfg.LogFormat)
	}
	if cfg.ExportFormat != "bazel" {
		t.Errorf("expected the export format from the environment, got %q", cfg.ExportFormat)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected the default log level, got %q", cfg.LogLevel)
	}
}
