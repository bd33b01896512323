package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/buildgrid/internal/filehash"
	"github.com/specialistvlad/buildgrid/internal/model"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

var (
	// ErrMissingSource is returned when a declared source file does not exist.
	ErrMissingSource = errors.New("missing source file")
	// ErrInvalidSource is returned for sources a kind does not accept.
	ErrInvalidSource = errors.New("invalid source file")
)

// HashSources checks that every declared source stays inside the package and
// exists as a regular file, and returns its digest keyed by the declared
// path. When exts is not empty, sources must carry one of the listed
// extensions.
func HashSources(in *BuildInput, exts ...string) (map[string]string, error) {
	label := in.Target.Label()
	digests := make(map[string]string, len(in.Target.Srcs))
	for _, src := range in.Target.Srcs {
		if cleaned := path.Clean(src); path.IsAbs(src) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
			return nil, fmt.Errorf("%w: %s in %s escapes the package", ErrInvalidSource, src, label)
		}
		if len(exts) > 0 && !hasExt(src, exts) {
			return nil, fmt.Errorf("%w: %s in %s, want one of %v", ErrInvalidSource, src, label, exts)
		}

		file := filepath.Join(in.Dir, filepath.FromSlash(src))
		info, err := os.Stat(file)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s declared by %s", ErrMissingSource, src, label)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", file, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s declared by %s is a directory", ErrInvalidSource, src, label)
		}

		var digest string
		if in.Hasher != nil {
			digest, err = in.Hasher.HashFile(file)
		} else {
			digest, err = filehash.HashFile(file)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", file, err)
		}
		digests[src] = digest
	}
	return digests, nil
}

func hasExt(src string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(src, ext) {
			return true
		}
	}
	return false
}

// Fingerprint combines everything that identifies a build of in.Target into
// one SHA-256 hex digest: kind, label, kind attributes, source digests and
// dependency digests. Map inputs are visited in sorted order.
func Fingerprint(in *BuildInput, srcDigests map[string]string) (string, error) {
	t := in.Target
	h := sha256.New()
	fmt.Fprintf(h, "kind=%s\nlabel=%s\n", t.Kind, t.Label())

	for _, name := range t.AttrNames() {
		val := t.Attrs[name]
		raw, err := ctyjson.Marshal(val, val.Type())
		if err != nil {
			return "", fmt.Errorf("failed to encode attribute %q of %s: %w", name, t.Label(), err)
		}
		fmt.Fprintf(h, "attr %s=%s\n", name, raw)
	}

	srcs := make([]string, 0, len(srcDigests))
	for src := range srcDigests {
		srcs = append(srcs, src)
	}
	sort.Strings(srcs)
	for _, src := range srcs {
		fmt.Fprintf(h, "src %s=%s\n", src, srcDigests[src])
	}

	deps := make([]model.Label, 0, len(in.DepDigests))
	for l := range in.DepDigests {
		deps = append(deps, l)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Compare(deps[j]) < 0 })
	for _, l := range deps {
		fmt.Fprintf(h, "dep %s=%s\n", l, in.DepDigests[l])
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
