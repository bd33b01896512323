// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/buildgrid/internal/loader"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/registry"
	"github.com/specialistvlad/buildgrid/modules/filegroup"
	"github.com/specialistvlad/buildgrid/modules/python"
	"github.com/stretchr/testify/require"
)

// FGCPackage is the package the fast-gradient-clipping manifest lives in.
const FGCPackage = "fast_gradient_clipping"

// FGCManifest declares the four fast-gradient-clipping targets.
const FGCManifest = `
package {
  default_visibility = ["//visibility:public"]
  licenses           = ["notice"]
}

py_library "layer_registry" {
  srcs         = ["layer_registry.py"]
  srcs_version = "PY3"
}

py_library "gradient_clipping_utils" {
  srcs         = ["gradient_clipping_utils.py"]
  srcs_version = "PY3"
  deps         = [":layer_registry"]
}

py_library "clip_grads" {
  srcs         = ["clip_grads.py"]
  srcs_version = "PY3"
  deps = [
    ":gradient_clipping_utils",
    ":layer_registry",
  ]
}

py_test "clip_grads_test" {
  srcs           = ["clip_grads_test.py"]
  python_version = "PY3"
  srcs_version   = "PY3"
  deps = [
    py_library.clip_grads,
    ":layer_registry",
  ]
}
`

// FGCSources are placeholder contents for the sources FGCManifest declares.
var FGCSources = map[string]string{
	"layer_registry.py":          "LAYER_REGISTRY = {}\n",
	"gradient_clipping_utils.py": "from . import layer_registry\n",
	"clip_grads.py":              "from . import gradient_clipping_utils\n",
	"clip_grads_test.py":         "from . import clip_grads\n",
}

// Label returns the label of a target in FGCPackage.
func Label(name string) model.Label {
	return model.Label{Package: FGCPackage, Name: name}
}

// Registry returns a validated registry with every shipped rule module.
func Registry(t testing.TB) *registry.Registry {
	t.Helper()
	r := registry.New()
	(&python.Module{}).Register(r)
	(&filegroup.Module{}).Register(r)
	require.NoError(t, r.ValidateRegistry(context.Background()))
	return r
}

// WriteFiles creates files below root. Keys are slash-separated relative
// paths.
func WriteFiles(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// WriteFGCWorkspace writes the fast-gradient-clipping package, sources
// included, into a fresh temporary workspace and returns its root.
func WriteFGCWorkspace(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		FGCPackage + "/" + loader.ManifestName: FGCManifest,
	}
	for name, content := range FGCSources {
		files[FGCPackage+"/"+name] = content
	}
	WriteFiles(t, root, files)
	return root
}

// LoadWorkspace loads root with the shipped rule kinds.
func LoadWorkspace(t testing.TB, root string) *model.Workspace {
	t.Helper()
	ws, err := loader.Load(context.Background(), root, Registry(t))
	require.NoError(t, err)
	return ws
}

// LoadFGC writes and loads the fast-gradient-clipping workspace.
func LoadFGC(t testing.TB) *model.Workspace {
	t.Helper()
	return LoadWorkspace(t, WriteFGCWorkspace(t))
}
