// Package registry implements the global, read-only class type registry
// (spec §6 external interface): the set of classes visible to every
// compilation unit, populated once before any unit is checked and never
// mutated afterward.
package registry

import (
	"fmt"
	"sync"

	"github.com/ChAoSUnItY/Yakou/internal/typesystem"
)

// Registry maps a fully-qualified class path ("a/b/G") to its resolved
// ClassType. It is safe for concurrent read-only use by many
// CompilationUnits running in parallel (spec §5): Put is only ever
// called during the single-threaded population step.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*typesystem.ClassType
	sealed  bool
}

// New creates an empty, unsealed Registry.
func New() *Registry {
	return &Registry{classes: make(map[string]*typesystem.ClassType)}
}

// Put registers a class type under its reference path. It panics if
// called after Seal — population is a single-threaded, closed step that
// happens entirely before any concurrent reader exists, so a post-seal
// Put is a programmer error, not a recoverable diagnostic.
func (r *Registry) Put(ct *typesystem.ClassType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		panic("registry: Put called after Seal")
	}
	r.classes[ct.Reference] = ct
}

// Seal freezes the registry; every CompilationUnit that follows reads
// through Find/All without ever taking the write path again.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Find looks up a class by its fully-qualified path.
func (r *Registry) Find(reference string) (*typesystem.ClassType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.classes[reference]
	return ct, ok
}

// All returns every registered class type. The returned slice is a
// snapshot copy, safe to range over while other goroutines call Find.
func (r *Registry) All() []*typesystem.ClassType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*typesystem.ClassType, 0, len(r.classes))
	for _, ct := range r.classes {
		out = append(out, ct)
	}
	return out
}

// FindType resolves a bracket-free type name against the registry after
// the built-in primitives have already been ruled out, i.e. the
// checker's find_type fallback for class-valued TypeRefs (spec §4.3).
func (r *Registry) FindType(reference string) (typesystem.Type, error) {
	ct, ok := r.Find(reference)
	if !ok {
		return nil, fmt.Errorf("unknown type symbol %q", reference)
	}
	return ct, nil
}
