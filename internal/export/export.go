// Package export re-serializes loaded packages into equivalent manifest
// formats and renders the workspace graph.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/buildgrid/internal/model"
)

// Format names an output syntax.
type Format string

const (
	// FormatHCL is native HCL syntax, loadable as BUILD.hcl.
	FormatHCL Format = "hcl"
	// FormatJSON is HCL JSON syntax, loadable as BUILD.hcl.json.
	FormatJSON Format = "json"
	// FormatBazel is Starlark BUILD text. It is write-only.
	FormatBazel Format = "bazel"
)

// Formats lists the supported formats.
var Formats = []Format{FormatHCL, FormatJSON, FormatBazel}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want one of hcl, json, bazel)", s)
}

// Write serializes pkg in the given format.
func Write(w io.Writer, pkg *model.Package, format Format) error {
	switch format {
	case FormatHCL:
		return WriteHCL(w, pkg)
	case FormatJSON:
		return WriteJSON(w, pkg)
	case FormatBazel:
		return WriteBazel(w, pkg)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// FileName returns the manifest file name a format is loaded from, or ""
// for write-only formats.
func FileName(format Format) string {
	switch format {
	case FormatHCL:
		return "BUILD.hcl"
	case FormatJSON:
		return "BUILD.hcl.json"
	case FormatBazel:
		return "BUILD"
	}
	return ""
}
