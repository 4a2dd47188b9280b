package domain

import (
	"slices"
	"sync/atomic"
)

// orderedSet keeps a membership set and publishes a sorted, immutable
// snapshot after each mutation. Mutations must be serialized by the owner;
// snapshot reads are lock-free.
type orderedSet[T comparable] struct {
	members  map[T]struct{}
	cmp      func(a, b T) int
	snapshot atomic.Pointer[[]T]
}

func newOrderedSet[T comparable](cmp func(a, b T) int) *orderedSet[T] {
	s := &orderedSet[T]{members: make(map[T]struct{}), cmp: cmp}
	empty := make([]T, 0)
	s.snapshot.Store(&empty)
	return s
}

func (s *orderedSet[T]) add(v T) bool {
	if _, ok := s.members[v]; ok {
		return false
	}
	s.members[v] = struct{}{}
	old := *s.snapshot.Load()
	pos, _ := slices.BinarySearchFunc(old, v, s.cmp)
	next := make([]T, 0, len(old)+1)
	next = append(next, old[:pos]...)
	next = append(next, v)
	next = append(next, old[pos:]...)
	s.snapshot.Store(&next)
	return true
}

func (s *orderedSet[T]) remove(v T) bool {
	if _, ok := s.members[v]; !ok {
		return false
	}
	delete(s.members, v)
	old := *s.snapshot.Load()
	idx := slices.Index(old, v)
	next := make([]T, 0, len(old))
	next = append(next, old[:idx]...)
	next = append(next, old[idx+1:]...)
	s.snapshot.Store(&next)
	return true
}

// resort re-inserts v after its sort key changed. fn applies the key change
// while v is out of the snapshot; a single snapshot is published.
func (s *orderedSet[T]) resort(v T, fn func()) {
	if _, ok := s.members[v]; !ok {
		fn()
		return
	}
	old := *s.snapshot.Load()
	idx := slices.Index(old, v)
	rest := make([]T, 0, len(old))
	rest = append(rest, old[:idx]...)
	rest = append(rest, old[idx+1:]...)
	fn()
	pos, _ := slices.BinarySearchFunc(rest, v, s.cmp)
	next := make([]T, 0, len(old))
	next = append(next, rest[:pos]...)
	next = append(next, v)
	next = append(next, rest[pos:]...)
	s.snapshot.Store(&next)
}

func (s *orderedSet[T]) load() []T {
	return *s.snapshot.Load()
}

func (s *orderedSet[T]) clone() []T {
	return slices.Clone(s.load())
}

func (s *orderedSet[T]) indexOf(v T) int {
	return slices.Index(s.load(), v)
}
