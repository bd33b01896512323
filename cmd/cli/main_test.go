package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/buildgrid/internal/cli"
	"github.com/specialistvlad/buildgrid/internal/dag"
	"github.com/specialistvlad/buildgrid/internal/loader"
	"github.com/specialistvlad/buildgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ShippedExample(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	workspace := filepath.Join("..", "..", "examples")
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, []string{"-w", workspace, "order", "//fast_gradient_clipping:clip_grads_test"})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		"//fast_gradient_clipping:layer_registry",
		"//fast_gradient_clipping:gradient_clipping_utils",
		"//fast_gradient_clipping:clip_grads",
		"//fast_gradient_clipping:clip_grads_test",
	}, strings.Split(strings.TrimSpace(out.String()), "\n"))
}

func TestRun_CycleIsReported(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		loader.ManifestName: `
filegroup "a" {
  deps = [":b"]
}

filegroup "b" {
  deps = [":a"]
}
`,
	})

	// --- Act ---
	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"-w", root, "order"})

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorIs(t, err, dag.ErrCycle)
	assert.Contains(t, err.Error(), "//:a -> //:b -> //:a")
}
