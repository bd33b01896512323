// Package loader discovers manifest files and parses them into a workspace.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/fsutil"
	"github.com/specialistvlad/buildgrid/internal/model"
)

// Manifest file names, native syntax first.
const (
	ManifestName     = "BUILD.hcl"
	ManifestJSONName = "BUILD.hcl.json"
)

// ErrNoManifests is returned when a directory holds no manifest file.
var ErrNoManifests = errors.New("no manifest files found")

// IsManifest reports whether path names a manifest file.
func IsManifest(path string) bool {
	base := filepath.Base(path)
	return base == ManifestName || base == ManifestJSONName
}

// Load reads a workspace. path is either a single manifest file, which
// becomes the root package, or a directory that is searched recursively.
func Load(ctx context.Context, path string, schemas model.Schemas) (*model.Workspace, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading workspace.", "path", path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace %s: %w", path, err)
	}

	var root string
	var files []string
	if info.IsDir() {
		root = path
		files, err = fsutil.FindFilesByName(path, ManifestName, ManifestJSONName)
		if err != nil {
			return nil, fmt.Errorf("failed to find manifest files in %s: %w", path, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w in %s", ErrNoManifests, path)
		}
	} else {
		root = filepath.Dir(path)
		files = []string{path}
	}

	ws := model.NewWorkspace(root)
	parser := hclparse.NewParser()
	for _, file := range files {
		pkgPath, err := packagePath(root, file)
		if err != nil {
			return nil, err
		}
		pkg, err := parseFile(ctx, parser, file, pkgPath, schemas)
		if err != nil {
			return nil, err
		}
		if err := ws.AddPackage(pkg); err != nil {
			return nil, err
		}
	}

	logger.Info("Workspace loaded.", "packages", len(ws.Packages), "targets", ws.Len())
	return ws, nil
}

// ParseBytes parses manifest source held in memory. The syntax is picked
// from filename.
func ParseBytes(ctx context.Context, src []byte, filename, pkgPath string, schemas model.Schemas) (*model.Package, error) {
	if err := model.ValidatePackagePath(pkgPath); err != nil {
		return nil, err
	}
	parser := hclparse.NewParser()

	var file *hcl.File
	var diags hcl.Diagnostics
	if strings.HasSuffix(filename, ".json") {
		file, diags = parser.ParseJSON(src, filename)
	} else {
		file, diags = parser.ParseHCL(src, filename)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	pkg := model.NewPackage(pkgPath, filepath.Dir(filename), filename)
	if err := model.ParsePackage(ctx, file.Body, pkg, schemas); err != nil {
		return nil, err
	}
	return pkg, nil
}

func parseFile(ctx context.Context, parser *hclparse.Parser, path, pkgPath string, schemas model.Schemas) (*model.Package, error) {
	var file *hcl.File
	var diags hcl.Diagnostics
	if strings.HasSuffix(path, ".json") {
		file, diags = parser.ParseJSONFile(path)
	} else {
		file, diags = parser.ParseHCLFile(path)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	pkg := model.NewPackage(pkgPath, filepath.Dir(path), path)
	if err := model.ParsePackage(ctx, file.Body, pkg, schemas); err != nil {
		return nil, err
	}
	return pkg, nil
}

func packagePath(root, file string) (string, error) {
	rel, err := filepath.Rel(root, filepath.Dir(file))
	if err != nil {
		return "", fmt.Errorf("failed to resolve package of %s: %w", file, err)
	}
	pkgPath := filepath.ToSlash(rel)
	if pkgPath == "." {
		pkgPath = ""
	}
	if err := model.ValidatePackagePath(pkgPath); err != nil {
		return "", fmt.Errorf("manifest %s: %w", file, err)
	}
	return pkgPath, nil
}
