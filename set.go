// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package bptree

import (
	"golang.org/x/exp/constraints"
)

// Set is an immutable set of values sorted by a comparator, backed by the
// same B+ tree engine as Map with an empty value payload. Mutating
// methods return a new Set sharing structure with the receiver.
type Set[K any] struct {
	t *tree[K, struct{}]
}

// NewSet returns an empty set ordered by the natural ordering of K.
func NewSet[K constraints.Ordered](opts ...Option) *Set[K] {
	return NewSetComparator(defaultCompare[K], opts...)
}

// NewSetComparator returns an empty set ordered by cmp. Values that
// compare equivalent are coalesced on insertion.
func NewSetComparator[K any](cmp func(K, K) int, opts ...Option) *Set[K] {
	c := applyOptions(opts)
	return &Set[K]{t: newTree[K, struct{}](cmp, c.order)}
}

// SetFrom builds a set from keys, equivalent to inserting each through
// one transient. A presorted duplicate-free input is packed in one pass.
func SetFrom[K constraints.Ordered](keys []K, opts ...Option) *Set[K] {
	return SetFromComparator(defaultCompare[K], keys, opts...)
}

// SetFromComparator is SetFrom with an explicit comparator.
func SetFromComparator[K any](cmp func(K, K) int, keys []K, opts ...Option) *Set[K] {
	c := applyOptions(opts)
	es := make([]entry[K, struct{}], len(keys))
	for i, k := range keys {
		es[i] = entry[K, struct{}]{key: k}
	}
	return &Set[K]{t: buildFrom(cmp, c.order, es)}
}

// Len returns the number of values.
func (s *Set[K]) Len() int {
	return s.t.size
}

// IsEmpty reports whether the set has no values.
func (s *Set[K]) IsEmpty() bool {
	return s.t.size == 0
}

// Contains reports membership of k.
func (s *Set[K]) Contains(k K) bool {
	_, ok := s.t.get(k)
	return ok
}

// Count returns 1 when k is a member and 0 otherwise.
func (s *Set[K]) Count(k K) int {
	if s.Contains(k) {
		return 1
	}
	return 0
}

// Min returns the smallest member.
func (s *Set[K]) Min() (K, bool) {
	e, ok := s.t.min()
	return e.key, ok
}

// Max returns the largest member.
func (s *Set[K]) Max() (K, bool) {
	e, ok := s.t.max()
	return e.key, ok
}

// KeyCompare returns the comparator the set is ordered by.
func (s *Set[K]) KeyCompare() func(K, K) int {
	return s.t.cmp
}

// Insert returns a new set containing k. Inserting a value that is
// already a member returns the receiver itself, root identity included.
func (s *Set[K]) Insert(k K) *Set[K] {
	if s.Contains(k) {
		return s
	}
	return &Set[K]{t: s.t.insert(k, struct{}{})}
}

// Delete returns a new set without k. Deleting a missing value returns
// the receiver itself.
func (s *Set[K]) Delete(k K) *Set[K] {
	t, ok := s.t.delete(k)
	if !ok {
		return s
	}
	return &Set[K]{t: t}
}

// Iterator returns an iterator positioned before the smallest member.
func (s *Set[K]) Iterator() *SetIterator[K] {
	return &SetIterator[K]{it: s.t.iterator()}
}

// ReverseIterator returns an iterator positioned before the largest
// member.
func (s *Set[K]) ReverseIterator() *SetReverseIterator[K] {
	return &SetReverseIterator[K]{it: s.t.reverseIterator()}
}

// LowerBound returns an iterator whose next member is the smallest value
// >= k.
func (s *Set[K]) LowerBound(k K) *SetIterator[K] {
	it := &Iterator[K, struct{}]{root: s.t.root, cmp: s.t.cmp}
	it.SeekLowerBound(k)
	return &SetIterator[K]{it: it}
}

// UpperBound returns an iterator whose next member is the smallest value
// > k.
func (s *Set[K]) UpperBound(k K) *SetIterator[K] {
	it := &Iterator[K, struct{}]{root: s.t.root, cmp: s.t.cmp}
	it.SeekUpperBound(k)
	return &SetIterator[K]{it: it}
}

// EqualRange returns the lower and upper bound iterators for k.
func (s *Set[K]) EqualRange(k K) (*SetIterator[K], *SetIterator[K]) {
	return s.LowerBound(k), s.UpperBound(k)
}

// Find returns an iterator positioned at k, or an exhausted iterator when
// k is not a member.
func (s *Set[K]) Find(k K) *SetIterator[K] {
	it := s.LowerBound(k)
	if fk, _, ok := it.it.Peek(); !ok || s.t.cmp(fk, k) != 0 {
		it.it.stack = it.it.stack[:0]
	}
	return it
}

// Equal reports whether both sets hold pairwise equivalent members under
// the receiver's comparator.
func (s *Set[K]) Equal(o *Set[K]) bool {
	return s.t.equal(o.t, func(struct{}, struct{}) bool { return true })
}

// Txn opens a transient over the set for batched mutation.
func (s *Set[K]) Txn() *SetTxn[K] {
	return &SetTxn[K]{x: s.t.txn()}
}

// SetIterator walks a set version in ascending order.
type SetIterator[K any] struct {
	it *Iterator[K, struct{}]
}

// Next returns the next member; false once exhausted.
func (s *SetIterator[K]) Next() (K, bool) {
	k, _, ok := s.it.Next()
	return k, ok
}

// SetReverseIterator walks a set version in descending order.
type SetReverseIterator[K any] struct {
	it *ReverseIterator[K, struct{}]
}

// Previous returns the next member in descending order; false once
// exhausted.
func (s *SetReverseIterator[K]) Previous() (K, bool) {
	k, _, ok := s.it.Previous()
	return k, ok
}

// SetTxn is the mutable companion of Set, bound to a private edit token.
// Single-owner: mutate from one goroutine only.
type SetTxn[K any] struct {
	x *txn[K, struct{}]
}

// Len returns the number of members in the transient's current state.
func (s *SetTxn[K]) Len() int {
	return s.x.Len()
}

// Contains reports membership in the transient's current state.
func (s *SetTxn[K]) Contains(k K) bool {
	_, ok := s.x.Get(k)
	return ok
}

// Insert adds k in place and reports whether it was new.
func (s *SetTxn[K]) Insert(k K) bool {
	if s.Contains(k) {
		return false
	}
	s.x.Insert(k, struct{}{})
	return true
}

// Delete removes k and returns the number of members removed (0 or 1).
func (s *SetTxn[K]) Delete(k K) int {
	if _, ok := s.x.Delete(k); ok {
		return 1
	}
	return 0
}

// Iterator iterates the transient's current state; the same caveat as
// MapTxn.Iterator applies: later writes through the txn may disturb it.
func (s *SetTxn[K]) Iterator() *SetIterator[K] {
	it := &Iterator[K, struct{}]{root: s.x.root, cmp: s.x.cmp}
	it.SeekMin()
	return &SetIterator[K]{it: it}
}

// Commit seals the transient into an immutable Set.
func (s *SetTxn[K]) Commit() *Set[K] {
	return &Set[K]{t: s.x.Commit()}
}
