// Package hostio supplies the byte-buffer-provider collaborator the
// loader deals with only by interface: something that hands raw
// class-file bytes to a class name. Neither classfile nor vm import this
// package directly; a host harness wires the two together.
package hostio

import (
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// BytesProvider hands the raw bytes of a named class to a caller. The
// loader never touches a filesystem itself; this is the seam through
// which one is plugged in.
type BytesProvider interface {
	Bytes(className string) ([]byte, error)
}

// DirProvider reads class bytes from files named "<className>.class"
// under a root directory, with a bounded LRU front cache so that a class
// referenced from many call sites (e.g. a commonly subclassed root) is
// read from disk at most once per cache generation. The cache is sized
// for a memory-constrained host, not for throughput — grounded in
// Fantom-foundation/Tosca's lfvm/converter.go bounded-cache pattern,
// applied here to file bytes rather than converted instructions.
type DirProvider struct {
	root  string
	cache *lru.Cache[string, []byte]
}

// DefaultCacheSize is the number of classes' worth of raw bytes
// NewDirProvider keeps resident by default.
const DefaultCacheSize = 32

// NewDirProvider returns a DirProvider rooted at dir, caching up to
// DefaultCacheSize classes' bytes.
func NewDirProvider(dir string) (*DirProvider, error) {
	return NewDirProviderSize(dir, DefaultCacheSize)
}

// NewDirProviderSize is NewDirProvider with an explicit cache size.
func NewDirProviderSize(dir string, size int) (*DirProvider, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, errors.Wrap(err, "hostio: constructing LRU cache")
	}
	return &DirProvider{root: dir, cache: c}, nil
}

// Bytes returns the contents of <root>/<className>.class, serving from
// the LRU cache when present.
func (p *DirProvider) Bytes(className string) ([]byte, error) {
	if b, ok := p.cache.Get(className); ok {
		return b, nil
	}
	path := filepath.Join(p.root, className+".class")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "hostio: reading %s", path)
	}
	p.cache.Add(className, b)
	return b, nil
}
