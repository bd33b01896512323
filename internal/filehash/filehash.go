// Package filehash computes SHA-256 digests of source files and keeps the
// most recent ones in an LRU cache. Entries are keyed by path, size and
// modification time, so an edited file is hashed again.
package filehash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the number of digests kept when no size is given.
const DefaultSize = 4096

type key struct {
	path    string
	size    int64
	modTime int64
}

// Cache hashes files, remembering recent digests. It is safe for concurrent
// use.
type Cache struct {
	entries *lru.Cache[key, string]
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache holding up to size digests.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[key, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create digest cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// HashFile returns the hex SHA-256 digest of the file at path.
func (c *Cache) HashFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	k := key{path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}
	if digest, ok := c.entries.Get(k); ok {
		c.hits.Add(1)
		return digest, nil
	}
	c.misses.Add(1)

	digest, err := HashFile(path)
	if err != nil {
		return "", err
	}
	c.entries.Add(k, digest)
	return digest, nil
}

// Stats returns the number of cache hits and misses so far.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached digests.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// HashFile returns the hex SHA-256 digest of the file at path without caching.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
