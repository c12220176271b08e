// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package bptree

// Iterator walks a tree version in ascending key order. It keeps the
// stack of ancestors instead of raw sibling pointers, so iterating an old
// version stays safe however many newer versions exist; advancing is
// amortized O(1).
//
// An Iterator is bound to the tree version it was created from. Mutations
// on that version produce new trees and never disturb a live iterator.
type Iterator[K, V any] struct {
	root  node[K, V]
	cmp   func(K, K) int
	stack []iterFrame[K, V]
}

// iterFrame records a node and the next position to visit inside it: an
// element index for leaves, a child index for internal nodes.
type iterFrame[K, V any] struct {
	n   node[K, V]
	idx int
}

// SeekMin positions the iterator before the smallest element.
func (it *Iterator[K, V]) SeekMin() {
	it.stack = it.stack[:0]
	if it.root == nil {
		return
	}
	it.stack = append(it.stack, iterFrame[K, V]{n: it.root})
}

// SeekLowerBound positions the iterator so that Next yields the smallest
// element with key >= k.
func (it *Iterator[K, V]) SeekLowerBound(k K) {
	it.seek(k, false)
}

// SeekUpperBound positions the iterator so that Next yields the smallest
// element with key > k.
func (it *Iterator[K, V]) SeekUpperBound(k K) {
	it.seek(k, true)
}

func (it *Iterator[K, V]) seek(k K, strict bool) {
	it.stack = it.stack[:0]
	n := it.root
	for n != nil {
		if l, ok := n.(*leafNode[K, V]); ok {
			var idx int
			if strict {
				idx = l.searchUpper(it.cmp, k)
			} else {
				idx, _ = l.search(it.cmp, k)
			}
			it.stack = append(it.stack, iterFrame[K, V]{n: l, idx: idx})
			return
		}
		in := n.(*innerNode[K, V])
		i := in.childIndex(it.cmp, k)
		it.stack = append(it.stack, iterFrame[K, V]{n: in, idx: i + 1})
		n = in.children[i]
	}
}

// Next returns the next element in key order. The third return is false
// once the iterator is exhausted.
func (it *Iterator[K, V]) Next() (K, V, bool) {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		if l, ok := top.n.(*leafNode[K, V]); ok {
			if top.idx < len(l.items) {
				e := l.items[top.idx]
				top.idx++
				return e.key, e.val, true
			}
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		in := top.n.(*innerNode[K, V])
		if top.idx < len(in.children) {
			child := in.children[top.idx]
			top.idx++
			it.stack = append(it.stack, iterFrame[K, V]{n: child})
			continue
		}
		it.stack = it.stack[:len(it.stack)-1]
	}
	var zk K
	var zv V
	return zk, zv, false
}

// Peek reports the element Next would return without advancing.
func (it *Iterator[K, V]) Peek() (K, V, bool) {
	saved := make([]iterFrame[K, V], len(it.stack))
	copy(saved, it.stack)
	k, v, ok := it.Next()
	it.stack = saved
	return k, v, ok
}
