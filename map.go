// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package bptree

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Entry is a key/value pair used for bulk construction and returned by
// Min/Max.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Option configures a container at construction time.
type Option func(*config)

type config struct {
	order int
}

// Order sets the target fan-out M of the underlying B+ tree. Values below
// 3 are raised to 3.
func Order(n int) Option {
	return func(c *config) {
		c.order = n
	}
}

func applyOptions(opts []Option) config {
	c := config{order: defaultOrder}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// Map is an immutable map of keys to values sorted by a comparator. Every
// mutating method returns a new Map sharing structure with the receiver;
// the receiver is never changed and may keep being read, iterated, and
// mutated into further versions concurrently from any goroutine.
type Map[K, V any] struct {
	t *tree[K, V]
}

// New returns an empty map ordered by the natural ordering of K.
func New[K constraints.Ordered, V any](opts ...Option) *Map[K, V] {
	return NewComparator[K, V](defaultCompare[K], opts...)
}

// NewComparator returns an empty map ordered by cmp, which must be a
// strict weak ordering: negative for a<b, zero for equivalent, positive
// for a>b. Keys that compare equivalent are coalesced on insertion.
func NewComparator[K, V any](cmp func(K, K) int, opts ...Option) *Map[K, V] {
	c := applyOptions(opts)
	return &Map[K, V]{t: newTree[K, V](cmp, c.order)}
}

// From builds a map from entries. It is equivalent to starting empty,
// opening a transient, inserting every entry in order, and sealing; a
// presorted duplicate-free input is packed in a single O(n) pass.
func From[K constraints.Ordered, V any](entries []Entry[K, V], opts ...Option) *Map[K, V] {
	return FromComparator(defaultCompare[K], entries, opts...)
}

// FromComparator is From with an explicit comparator.
func FromComparator[K, V any](cmp func(K, K) int, entries []Entry[K, V], opts ...Option) *Map[K, V] {
	c := applyOptions(opts)
	es := make([]entry[K, V], len(entries))
	for i, e := range entries {
		es[i] = entry[K, V]{key: e.Key, val: e.Value}
	}
	return &Map[K, V]{t: buildFrom(cmp, c.order, es)}
}

// FromMap builds a map from a Go map.
func FromMap[K constraints.Ordered, V any](m map[K]V, opts ...Option) *Map[K, V] {
	entries := make([]Entry[K, V], 0, len(m))
	for k, v := range m {
		entries = append(entries, Entry[K, V]{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return From(entries, opts...)
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return m.t.size
}

// IsEmpty reports whether the map has no entries.
func (m *Map[K, V]) IsEmpty() bool {
	return m.t.size == 0
}

// Contains reports whether k has an entry.
func (m *Map[K, V]) Contains(k K) bool {
	_, ok := m.t.get(k)
	return ok
}

// Count returns 1 when k has an entry and 0 otherwise. Equivalent keys
// never coexist, so no other count can occur.
func (m *Map[K, V]) Count(k K) int {
	if m.Contains(k) {
		return 1
	}
	return 0
}

// Get returns the value stored under k. A missing key yields the zero
// value and false; Get never mutates the map.
func (m *Map[K, V]) Get(k K) (V, bool) {
	return m.t.get(k)
}

// At returns the value stored under k, or ErrKeyNotFound.
func (m *Map[K, V]) At(k K) (V, error) {
	v, ok := m.t.get(k)
	if !ok {
		var zero V
		return zero, ErrKeyNotFound
	}
	return v, nil
}

// Min returns the entry with the smallest key.
func (m *Map[K, V]) Min() (Entry[K, V], bool) {
	e, ok := m.t.min()
	return Entry[K, V]{Key: e.key, Value: e.val}, ok
}

// Max returns the entry with the largest key.
func (m *Map[K, V]) Max() (Entry[K, V], bool) {
	e, ok := m.t.max()
	return Entry[K, V]{Key: e.key, Value: e.val}, ok
}

// KeyCompare returns the comparator the map is ordered by.
func (m *Map[K, V]) KeyCompare() func(K, K) int {
	return m.t.cmp
}

// Set returns a new map with k bound to v, replacing any existing entry
// for an equivalent key.
func (m *Map[K, V]) Set(k K, v V) *Map[K, V] {
	return &Map[K, V]{t: m.t.insert(k, v)}
}

// Insert is Set spelled for entry values.
func (m *Map[K, V]) Insert(e Entry[K, V]) *Map[K, V] {
	return m.Set(e.Key, e.Value)
}

// Delete returns a new map without k. Deleting a missing key returns the
// receiver itself, root identity included.
func (m *Map[K, V]) Delete(k K) *Map[K, V] {
	t, ok := m.t.delete(k)
	if !ok {
		return m
	}
	return &Map[K, V]{t: t}
}

// Update applies fn to the value stored under k, or to the zero value
// with ok=false when k is absent, and stores what fn returns. fn
// returning false declines the write and the receiver is returned
// unchanged.
func (m *Map[K, V]) Update(k K, fn func(prior V, ok bool) (V, bool)) *Map[K, V] {
	t := m.t.update(k, fn)
	if t == m.t {
		return m
	}
	return &Map[K, V]{t: t}
}

// UpdateIfExists applies fn to the value stored under k; it is a no-op
// when k is absent.
func (m *Map[K, V]) UpdateIfExists(k K, fn func(V) V) *Map[K, V] {
	t := m.t.updateIfExists(k, fn)
	if t == m.t {
		return m
	}
	return &Map[K, V]{t: t}
}

// Iterator returns an iterator positioned before the smallest key.
func (m *Map[K, V]) Iterator() *Iterator[K, V] {
	return m.t.iterator()
}

// ReverseIterator returns an iterator positioned before the largest key.
func (m *Map[K, V]) ReverseIterator() *ReverseIterator[K, V] {
	return m.t.reverseIterator()
}

// LowerBound returns an iterator whose next element is the smallest entry
// with key >= k.
func (m *Map[K, V]) LowerBound(k K) *Iterator[K, V] {
	it := &Iterator[K, V]{root: m.t.root, cmp: m.t.cmp}
	it.SeekLowerBound(k)
	return it
}

// UpperBound returns an iterator whose next element is the smallest entry
// with key > k.
func (m *Map[K, V]) UpperBound(k K) *Iterator[K, V] {
	it := &Iterator[K, V]{root: m.t.root, cmp: m.t.cmp}
	it.SeekUpperBound(k)
	return it
}

// EqualRange returns the lower and upper bound iterators for k; at most
// one element lies between them.
func (m *Map[K, V]) EqualRange(k K) (*Iterator[K, V], *Iterator[K, V]) {
	return m.LowerBound(k), m.UpperBound(k)
}

// Find returns an iterator positioned at k, or an exhausted iterator when
// k is absent.
func (m *Map[K, V]) Find(k K) *Iterator[K, V] {
	it := m.LowerBound(k)
	if fk, _, ok := it.Peek(); !ok || m.t.cmp(fk, k) != 0 {
		it.stack = it.stack[:0]
	}
	return it
}

// Txn opens a transient over the map for batched mutation.
func (m *Map[K, V]) Txn() *MapTxn[K, V] {
	return &MapTxn[K, V]{x: m.t.txn()}
}

// EqualFunc reports whether two maps hold pairwise equivalent keys (under
// the receiver's comparator) with values equal under eq. Comparator
// function values cannot themselves be compared in Go, so two non-empty
// maps ordered by different comparators are compared by content.
func (m *Map[K, V]) EqualFunc(o *Map[K, V], eq func(V, V) bool) bool {
	return m.t.equal(o.t, eq)
}

// MapEqual is EqualFunc for comparable value types.
func MapEqual[K any, V comparable](a, b *Map[K, V]) bool {
	return a.t.equal(b.t, func(x, y V) bool { return x == y })
}

// MapTxn is the mutable companion of Map: a builder bound to a private
// edit token. It must only be used from one goroutine at a time. Commit
// seals the current state into an immutable Map and retires the token; a
// committed txn may keep being used, re-arming itself with a fresh token
// on the next write.
type MapTxn[K, V any] struct {
	x *txn[K, V]
}

// Len returns the number of entries in the transient's current state.
func (m *MapTxn[K, V]) Len() int {
	return m.x.Len()
}

// Get returns the value stored under k in the transient's current state.
func (m *MapTxn[K, V]) Get(k K) (V, bool) {
	return m.x.Get(k)
}

// Contains reports whether k has an entry.
func (m *MapTxn[K, V]) Contains(k K) bool {
	_, ok := m.x.Get(k)
	return ok
}

// Insert upserts (k, v) in place and reports whether the entry was new.
func (m *MapTxn[K, V]) Insert(k K, v V) bool {
	return m.x.Insert(k, v)
}

// Set upserts (k, v) in place.
func (m *MapTxn[K, V]) Set(k K, v V) {
	m.x.Insert(k, v)
}

// Delete removes k and returns the number of entries removed (0 or 1).
func (m *MapTxn[K, V]) Delete(k K) int {
	if _, ok := m.x.Delete(k); ok {
		return 1
	}
	return 0
}

// Update applies fn exactly as Map.Update, in place.
func (m *MapTxn[K, V]) Update(k K, fn func(prior V, ok bool) (V, bool)) bool {
	return m.x.Update(k, fn)
}

// UpdateIfExists applies fn exactly as Map.UpdateIfExists, in place.
func (m *MapTxn[K, V]) UpdateIfExists(k K, fn func(V) V) bool {
	return m.x.UpdateIfExists(k, fn)
}

// Iterator iterates the transient's current state. The iterator is not a
// snapshot: it walks the txn's live nodes, and any later mutation through
// the txn may rewrite the nodes it walks, so take the iterator after the
// writes, or rescue a position by key.
func (m *MapTxn[K, V]) Iterator() *Iterator[K, V] {
	it := &Iterator[K, V]{root: m.x.root, cmp: m.x.cmp}
	it.SeekMin()
	return it
}

// Commit seals the transient into an immutable Map.
func (m *MapTxn[K, V]) Commit() *Map[K, V] {
	return &Map[K, V]{t: m.x.Commit()}
}
