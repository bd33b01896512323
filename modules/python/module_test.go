package python

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	require.NoError(t, r.ValidateRegistry(context.Background()))
	assert.Equal(t, []string{KindBinary, KindLibrary, KindTest}, r.Kinds())

	ks, ok := r.Schema(KindTest)
	require.True(t, ok)
	assert.True(t, ks.Test)

	ks, ok = r.Schema(KindLibrary)
	require.True(t, ok)
	assert.False(t, ks.Test)
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip_grads.py"), []byte("def clip(): pass\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.py"), []byte("clip()\n"), 0o644))

	newInput := func(srcs []string, attrs map[string]cty.Value) *registry.BuildInput {
		return &registry.BuildInput{
			Target: &model.Target{Kind: KindBinary, Package: "fgc", Name: "clip_grads", Srcs: srcs, Attrs: attrs},
			Dir:    dir,
		}
	}

	testCases := []struct {
		name      string
		srcs      []string
		attrs     map[string]cty.Value
		expectErr error
		contains  string
	}{
		{
			name:  "library with version tag",
			srcs:  []string{"clip_grads.py"},
			attrs: map[string]cty.Value{"srcs_version": cty.StringVal("PY3")},
		},
		{
			name:  "binary with main",
			srcs:  []string{"clip_grads.py", "run.py"},
			attrs: map[string]cty.Value{"main": cty.StringVal("run.py"), "python_version": cty.StringVal("PY3")},
		},
		{
			name:      "missing source",
			srcs:      []string{"clip_grads.py", "absent.py"},
			expectErr: registry.ErrMissingSource,
		},
		{
			name:      "non python source",
			srcs:      []string{"README.md"},
			expectErr: registry.ErrInvalidSource,
		},
		{
			name:      "main not in srcs",
			srcs:      []string{"clip_grads.py"},
			attrs:     map[string]cty.Value{"main": cty.StringVal("run.py")},
			expectErr: registry.ErrInvalidSource,
		},
		{
			name:     "py2 interpreter with py3 sources",
			srcs:     []string{"clip_grads.py"},
			attrs:    map[string]cty.Value{"python_version": cty.StringVal("PY2"), "srcs_version": cty.StringVal("PY3")},
			contains: "cannot run srcs_version PY3",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Build(context.Background(), newInput(tc.srcs, tc.attrs))
			switch {
			case tc.expectErr != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectErr)
			case tc.contains != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.contains)
			default:
				require.NoError(t, err)
				assert.Len(t, out.Digest, 64)
				assert.Equal(t, tc.srcs, out.Outputs)
			}
		})
	}
}

func TestBuild_DigestTracksContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(path, []byte("v1\n"), 0o644))
	in := &registry.BuildInput{Target: &model.Target{Kind: KindLibrary, Name: "a", Srcs: []string{"a.py"}}, Dir: dir}

	first, err := Build(context.Background(), in)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("v2\n"), 0o644))
	second, err := Build(context.Background(), in)
	require.NoError(t, err)

	assert.NotEqual(t, first.Digest, second.Digest)
}
