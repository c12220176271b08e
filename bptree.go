// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package bptree

import (
	"golang.org/x/exp/constraints"
)

const defaultOrder = 32

// tree is one immutable version of a B+ tree: a root handle, the element
// count, and the comparator the contents are ordered by. Mutating
// operations run a one-shot txn with a fresh edit token, so every touched
// node is copied and the receiver stays observable unchanged.
type tree[K, V any] struct {
	root  node[K, V]
	size  int
	cmp   func(K, K) int
	order int
}

func newTree[K, V any](cmp func(K, K) int, order int) *tree[K, V] {
	if order < 3 {
		order = 3
	}
	return &tree[K, V]{cmp: cmp, order: order}
}

func defaultCompare[K constraints.Ordered](a, b K) int {
	switch {
	case a < b:
		return -1
	case b < a:
		return 1
	default:
		return 0
	}
}

// txn opens a transient over the tree. The token is allocated lazily on
// the first write.
func (t *tree[K, V]) txn() *txn[K, V] {
	return &txn[K, V]{root: t.root, size: t.size, cmp: t.cmp, order: t.order}
}

func (t *tree[K, V]) insert(k K, v V) *tree[K, V] {
	x := t.txn()
	x.Insert(k, v)
	return x.Commit()
}

// delete returns the receiver itself when k is absent, so callers observe
// the same root identity.
func (t *tree[K, V]) delete(k K) (*tree[K, V], bool) {
	if _, ok := lookup[K, V](t.root, t.cmp, k); !ok {
		return t, false
	}
	x := t.txn()
	x.Delete(k)
	return x.Commit(), true
}

func (t *tree[K, V]) update(k K, fn func(V, bool) (V, bool)) *tree[K, V] {
	x := t.txn()
	if !x.Update(k, fn) {
		return t
	}
	return x.Commit()
}

func (t *tree[K, V]) updateIfExists(k K, fn func(V) V) *tree[K, V] {
	x := t.txn()
	if !x.UpdateIfExists(k, fn) {
		return t
	}
	return x.Commit()
}

func (t *tree[K, V]) get(k K) (V, bool) {
	return lookup[K, V](t.root, t.cmp, k)
}

func (t *tree[K, V]) min() (entry[K, V], bool) {
	if t.root == nil {
		return entry[K, V]{}, false
	}
	return minEntry[K, V](t.root), true
}

func (t *tree[K, V]) max() (entry[K, V], bool) {
	if t.root == nil {
		return entry[K, V]{}, false
	}
	return maxEntry[K, V](t.root), true
}

// lookup descends from n by internal descent, then leaf search.
func lookup[K, V any](n node[K, V], cmp func(K, K) int, k K) (V, bool) {
	var zero V
	if n == nil {
		return zero, false
	}
	for {
		if l, ok := n.(*leafNode[K, V]); ok {
			idx, found := l.search(cmp, k)
			if !found {
				return zero, false
			}
			return l.items[idx].val, true
		}
		in := n.(*innerNode[K, V])
		n = in.children[in.childIndex(cmp, k)]
	}
}

// height is the number of levels, 0 for the empty tree.
func (t *tree[K, V]) height() int {
	h := 0
	for n := t.root; n != nil; {
		h++
		in, ok := n.(*innerNode[K, V])
		if !ok {
			break
		}
		n = in.children[0]
	}
	return h
}

// equal compares two versions elementwise under the receiver's
// comparator. Sharing makes the root-identity fast path hit often for
// trees derived from one another.
func (t *tree[K, V]) equal(o *tree[K, V], eq func(V, V) bool) bool {
	if t.size != o.size {
		return false
	}
	if t.root == nil && o.root == nil {
		return true
	}
	if t.root == o.root {
		return true
	}
	a := t.iterator()
	b := o.iterator()
	for {
		ka, va, okA := a.Next()
		kb, vb, okB := b.Next()
		if !okA || !okB {
			return okA == okB
		}
		if t.cmp(ka, kb) != 0 || !eq(va, vb) {
			return false
		}
	}
}

func (t *tree[K, V]) iterator() *Iterator[K, V] {
	it := &Iterator[K, V]{root: t.root, cmp: t.cmp}
	it.SeekMin()
	return it
}

func (t *tree[K, V]) reverseIterator() *ReverseIterator[K, V] {
	it := &ReverseIterator[K, V]{root: t.root, cmp: t.cmp}
	it.SeekMax()
	return it
}
