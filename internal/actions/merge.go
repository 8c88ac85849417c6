package actions

import (
	"cmp"
	"slices"
	"sync"
)

// Weighted pairs an entry with its ordering weight.
type Weighted[T any] struct {
	Entry  T
	Weight int
}

// Merge orders builtins followed by contributed entries by ascending weight.
// Equal weights keep their input order, so builtins precede contributions.
func Merge[T any](builtins, contributed []Weighted[T]) []T {
	all := make([]Weighted[T], 0, len(builtins)+len(contributed))
	all = append(all, builtins...)
	all = append(all, contributed...)
	slices.SortStableFunc(all, func(a, b Weighted[T]) int {
		return cmp.Compare(a.Weight, b.Weight)
	})
	out := make([]T, len(all))
	for i, w := range all {
		out[i] = w.Entry
	}
	return out
}

// Registry collects contributions on top of a fixed set of builtins.
// It is safe for concurrent use.
type Registry[T any] struct {
	mu          sync.Mutex
	builtins    []Weighted[T]
	contributed []Weighted[T]
}

// NewRegistry returns a registry seeded with builtins.
func NewRegistry[T any](builtins ...Weighted[T]) *Registry[T] {
	return &Registry[T]{builtins: slices.Clone(builtins)}
}

// Contribute registers an entry.
func (r *Registry[T]) Contribute(weight int, entry T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contributed = append(r.contributed, Weighted[T]{Entry: entry, Weight: weight})
}

// Resolve returns the merged order. It does not modify the registry.
func (r *Registry[T]) Resolve() []T {
	r.mu.Lock()
	builtins := slices.Clone(r.builtins)
	contributed := slices.Clone(r.contributed)
	r.mu.Unlock()
	return Merge(builtins, contributed)
}
