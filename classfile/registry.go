package classfile

import (
	"sync"

	"golang.org/x/exp/maps"
)

// Registry is the process-wide mapping from class name to parsed Class.
// No constructor is exported: the one usable Registry is the package-level
// one returned by DefaultRegistry, which Parse always populates. A vm
// Instance resolves the class names of invokestatic/invokevirtual/new
// against the Registry it was given, which defaults to this one, and shares
// that universe of loaded classes for its whole lifetime.
type Registry struct {
	mu      sync.Mutex // guards against accidental concurrent use; the VM itself is single-threaded
	classes map[string]*Class
}

var defaultRegistry = &Registry{classes: make(map[string]*Class)}

// DefaultRegistry returns the package-level Registry that Parse populates.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds c to the registry under name, overwriting any previous
// entry of the same name. Parse calls this on every successful parse; it is
// exported mainly so that a host harness can register synthetic classes
// (e.g. a hand-built bootstrap root) without going through the byte-level
// parser.
func (r *Registry) Register(name string, c *Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[name] = c
}

// Lookup returns the Class registered under name, if any.
func (r *Registry) Lookup(name string) (*Class, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[name]
	return c, ok
}

// Names returns the names of all currently registered classes, in no
// particular order. This is a host-harness diagnostic; nothing in the
// interpreter depends on enumeration order or even on this method existing.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Keys(r.classes)
}
