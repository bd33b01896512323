package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabel(t *testing.T) {
	testCases := []struct {
		raw       string
		pkg       string
		expected  Label
		expectErr bool
	}{
		{raw: ":layer_registry", pkg: "privacy/fgc", expected: Label{Package: "privacy/fgc", Name: "layer_registry"}},
		{raw: "layer_registry", pkg: "privacy/fgc", expected: Label{Package: "privacy/fgc", Name: "layer_registry"}},
		{raw: "//privacy/fgc:clip_grads", pkg: "", expected: Label{Package: "privacy/fgc", Name: "clip_grads"}},
		{raw: "//:clip_grads", pkg: "other", expected: Label{Package: "", Name: "clip_grads"}},
		{raw: "//privacy/fgc", pkg: "", expected: Label{Package: "privacy/fgc", Name: "fgc"}},
		{raw: "  :padded  ", pkg: "", expected: Label{Name: "padded"}},
		{raw: "//pkg:data/file.txt", pkg: "", expected: Label{Package: "pkg", Name: "data/file.txt"}},
		{raw: "", expectErr: true},
		{raw: "//", expectErr: true},
		{raw: "//pkg:", expectErr: true},
		{raw: "@repo//pkg:name", expectErr: true},
		{raw: "pkg:name", expectErr: true},
		{raw: "//../x:y", expectErr: true},
		{raw: "//a//b:y", expectErr: true},
		{raw: ":a/../b", expectErr: true},
		{raw: ":has space", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseLabel(tc.raw, tc.pkg)
			if tc.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidLabel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestLabel_StringAndRelative(t *testing.T) {
	l := Label{Package: "privacy/fgc", Name: "clip_grads"}
	assert.Equal(t, "//privacy/fgc:clip_grads", l.String())
	assert.Equal(t, ":clip_grads", l.Relative("privacy/fgc"))
	assert.Equal(t, "//privacy/fgc:clip_grads", l.Relative("other"))

	root := Label{Name: "x"}
	assert.Equal(t, "//:x", root.String())
	assert.Equal(t, ":x", root.Relative(""))
}

func TestLabel_Compare(t *testing.T) {
	assert.Negative(t, MustParseLabel("//a:z").Compare(MustParseLabel("//b:a")))
	assert.Positive(t, MustParseLabel("//a:z").Compare(MustParseLabel("//a:b")))
	assert.Zero(t, MustParseLabel("//a:b").Compare(MustParseLabel("//a:b")))
}

func TestMustParseLabel_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseLabel("pkg:name") })
	assert.True(t, Label{}.IsZero())
}
