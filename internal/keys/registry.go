// Package keys implements the identifier registry: a dense, 1-based index
// over (source, name) configuration keys.
//
// Keys are registered during the key pass of a load and looked up during the
// body pass. Indices follow insertion order, so the i-th Add returns i.
// Clear starts a new generation and numbering restarts at 1.
//
// Both parts of a key are NFC-normalised, so a name typed with combining
// characters in one file matches the precomposed spelling in another.
package keys

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/volley/internal/ir"
)

// Key is a (source, name) pair.
type Key struct {
	Source string
	Name   string
}

func (k Key) String() string { return k.Source + "|" + k.Name }

// LookupError is returned by Get when a key was never registered in the
// current generation.
type LookupError struct {
	Source string
	Name   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unknown key %q in source %q", e.Name, e.Source)
}

// Registry maps keys to dense indices.
//
// Not safe for concurrent mutation. A registry is owned by one load; the
// engine swaps whole generations rather than mutating a live registry.
type Registry struct {
	index map[Key]ir.Index
	order []Key
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{index: make(map[Key]ir.Index)}
}

// Add assigns the next index to (source, name) and returns it.
// Adding the same key twice in one generation is a configuration error that
// is not detected; the later index wins for lookups.
func (r *Registry) Add(source, name string) ir.Index {
	k := normalize(source, name)
	r.order = append(r.order, k)
	idx := ir.Index(len(r.order))
	r.index[k] = idx
	return idx
}

// Get returns the index of (source, name) or a *LookupError.
func (r *Registry) Get(source, name string) (ir.Index, error) {
	if idx, ok := r.index[normalize(source, name)]; ok {
		return idx, nil
	}
	return 0, &LookupError{Source: source, Name: name}
}

// Has reports whether (source, name) is registered.
func (r *Registry) Has(source, name string) bool {
	_, ok := r.index[normalize(source, name)]
	return ok
}

// Key returns the key registered at idx.
func (r *Registry) Key(idx ir.Index) (Key, bool) {
	if idx == 0 || int(idx) > len(r.order) {
		return Key{}, false
	}
	return r.order[idx-1], true
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	return len(r.order)
}

// Keys returns registered keys in index order.
func (r *Registry) Keys() []Key {
	return append([]Key(nil), r.order...)
}

// Clear empties the registry. The next Add returns 1.
func (r *Registry) Clear() {
	clear(r.index)
	r.order = r.order[:0]
}

func normalize(source, name string) Key {
	return Key{Source: norm.NFC.String(source), Name: norm.NFC.String(name)}
}
