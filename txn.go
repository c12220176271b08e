// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package bptree

import (
	"github.com/hashicorp/go-uuid"
)

// edit is the token that licenses in-place mutation. Tokens are compared
// by address; sealing a transaction simply abandons its token, so nodes
// still carrying it are frozen forever. The uuid is carried for debug
// output only.
type edit struct {
	id string
}

func newEdit() *edit {
	id, _ := uuid.GenerateUUID()
	return &edit{id: id}
}

func (e *edit) String() string {
	return e.id
}

// txn is a batch of mutations against a private edit token. A txn created
// from a tree shares all of that tree's nodes; the first write to any node
// copies it, and every later write under the same token mutates the copy
// in place. Committing hands the current root to a new immutable tree and
// retires the token, so a txn may keep being used after Commit: the next
// write re-arms it with a fresh token.
type txn[K, V any] struct {
	edit  *edit
	root  node[K, V]
	size  int
	cmp   func(K, K) int
	order int
}

func (t *txn[K, V]) minOcc() int {
	return (t.order + 1) / 2
}

func (t *txn[K, V]) ensureEdit() {
	if t.edit == nil {
		t.edit = newEdit()
	}
}

func (t *txn[K, V]) writeLeaf(l *leafNode[K, V]) *leafNode[K, V] {
	if l.edit == t.edit {
		return l
	}
	return l.clone(t.edit)
}

func (t *txn[K, V]) writeInner(n *innerNode[K, V]) *innerNode[K, V] {
	if n.edit == t.edit {
		return n
	}
	return n.clone(t.edit)
}

// split carries the promoted separator and the new right sibling out of an
// overflowing node.
type split[K, V any] struct {
	sep   K
	right node[K, V]
}

// Insert upserts (k, v) and reports whether the element count grew. An
// equivalent key is replaced within the path copy; the separator keys
// never change on replacement since the key itself is unchanged.
func (t *txn[K, V]) Insert(k K, v V) bool {
	t.ensureEdit()
	if t.root == nil {
		t.root = &leafNode[K, V]{edit: t.edit, items: []entry[K, V]{{key: k, val: v}}}
		t.size = 1
		return true
	}
	n, sp, grew := t.insertRec(t.root, k, v)
	if sp != nil {
		t.root = &innerNode[K, V]{
			edit:     t.edit,
			seps:     []K{sp.sep},
			children: []node[K, V]{n, sp.right},
		}
	} else {
		t.root = n
	}
	if grew {
		t.size++
	}
	return grew
}

func (t *txn[K, V]) insertRec(n node[K, V], k K, v V) (node[K, V], *split[K, V], bool) {
	if l, ok := n.(*leafNode[K, V]); ok {
		idx, found := l.search(t.cmp, k)
		w := t.writeLeaf(l)
		if found {
			w.items[idx] = entry[K, V]{key: k, val: v}
			return w, nil, false
		}
		w.insertAt(idx, entry[K, V]{key: k, val: v})
		if len(w.items) <= t.order {
			return w, nil, true
		}
		at := (t.order + 1) / 2
		items := make([]entry[K, V], len(w.items)-at)
		copy(items, w.items[at:])
		right := &leafNode[K, V]{edit: t.edit, items: items}
		w.items = w.items[:at]
		return w, &split[K, V]{sep: right.items[0].key, right: right}, true
	}

	in := n.(*innerNode[K, V])
	i := in.childIndex(t.cmp, k)
	child, sp, grew := t.insertRec(in.children[i], k, v)
	w := t.writeInner(in)
	w.children[i] = child
	if sp == nil {
		return w, nil, grew
	}
	w.insertChildAt(i+1, sp.sep, sp.right)
	if len(w.children) <= t.order {
		return w, nil, grew
	}
	// Overflowing internal node: the median separator is promoted, the
	// children right of it move to a new sibling.
	mid := t.order / 2
	seps := make([]K, len(w.seps)-mid-1)
	copy(seps, w.seps[mid+1:])
	children := make([]node[K, V], len(w.children)-mid-1)
	copy(children, w.children[mid+1:])
	right := &innerNode[K, V]{edit: t.edit, seps: seps, children: children}
	prom := w.seps[mid]
	w.seps = w.seps[:mid]
	w.children = w.children[:mid+1]
	return w, &split[K, V]{sep: prom, right: right}, grew
}

// Delete removes k and returns the prior value. A missing key leaves the
// root identity untouched.
func (t *txn[K, V]) Delete(k K) (V, bool) {
	var zero V
	if t.root == nil {
		return zero, false
	}
	old, ok := lookup[K, V](t.root, t.cmp, k)
	if !ok {
		return zero, false
	}
	t.ensureEdit()
	root := t.deleteRec(t.root, k)
	// The root is exempt from the occupancy bounds but collapses when it
	// dwindles to a single child, shrinking the tree height.
	for {
		in, isInner := root.(*innerNode[K, V])
		if !isInner || len(in.children) > 1 {
			break
		}
		root = in.children[0]
	}
	if l, isLeaf := root.(*leafNode[K, V]); isLeaf && len(l.items) == 0 {
		root = nil
	}
	t.root = root
	t.size--
	return old, true
}

func (t *txn[K, V]) deleteRec(n node[K, V], k K) node[K, V] {
	if l, ok := n.(*leafNode[K, V]); ok {
		idx, _ := l.search(t.cmp, k)
		w := t.writeLeaf(l)
		w.removeAt(idx)
		return w
	}
	in := n.(*innerNode[K, V])
	i := in.childIndex(t.cmp, k)
	child := t.deleteRec(in.children[i], k)
	w := t.writeInner(in)
	w.children[i] = child
	if i > 0 && t.cmp(w.seps[i-1], k) == 0 {
		// The deleted key was the minimum of this subtree; the separator
		// must track the new minimum.
		w.seps[i-1] = minEntry[K, V](child).key
	}
	if child.length() < t.minOcc() {
		t.rebalance(w, i)
	}
	return w
}

// rebalance restores the occupancy bound of children[i], preferring to
// borrow from a rich sibling and merging otherwise. The parent w and
// children[i] are already writable under the txn token.
func (t *txn[K, V]) rebalance(w *innerNode[K, V], i int) {
	min := t.minOcc()
	if i > 0 && w.children[i-1].length() > min {
		t.borrowLeft(w, i)
		return
	}
	if i < len(w.children)-1 && w.children[i+1].length() > min {
		t.borrowRight(w, i)
		return
	}
	if i > 0 {
		t.mergeChildren(w, i-1)
	} else {
		t.mergeChildren(w, 0)
	}
}

func (t *txn[K, V]) borrowLeft(w *innerNode[K, V], i int) {
	if wc, ok := w.children[i].(*leafNode[K, V]); ok {
		wl := t.writeLeaf(w.children[i-1].(*leafNode[K, V]))
		last := wl.items[len(wl.items)-1]
		wl.items = wl.items[:len(wl.items)-1]
		wc.insertAt(0, last)
		w.children[i-1] = wl
		w.seps[i-1] = last.key
		return
	}
	wc := w.children[i].(*innerNode[K, V])
	wl := t.writeInner(w.children[i-1].(*innerNode[K, V]))
	moved := wl.children[len(wl.children)-1]
	movedSep := wl.seps[len(wl.seps)-1]
	wl.children = wl.children[:len(wl.children)-1]
	wl.seps = wl.seps[:len(wl.seps)-1]
	wc.children = append(wc.children, nil)
	copy(wc.children[1:], wc.children)
	wc.children[0] = moved
	var zero K
	wc.seps = append(wc.seps, zero)
	copy(wc.seps[1:], wc.seps)
	wc.seps[0] = w.seps[i-1]
	w.children[i-1] = wl
	w.seps[i-1] = movedSep
}

func (t *txn[K, V]) borrowRight(w *innerNode[K, V], i int) {
	if wc, ok := w.children[i].(*leafNode[K, V]); ok {
		wr := t.writeLeaf(w.children[i+1].(*leafNode[K, V]))
		first := wr.items[0]
		wr.removeAt(0)
		wc.items = append(wc.items, first)
		w.children[i+1] = wr
		w.seps[i] = wr.items[0].key
		return
	}
	wc := w.children[i].(*innerNode[K, V])
	wr := t.writeInner(w.children[i+1].(*innerNode[K, V]))
	moved := wr.children[0]
	movedSep := wr.seps[0]
	wr.children = wr.children[1:]
	wr.seps = wr.seps[1:]
	wc.children = append(wc.children, moved)
	wc.seps = append(wc.seps, w.seps[i])
	w.children[i+1] = wr
	w.seps[i] = movedSep
}

// mergeChildren concatenates children[j+1] onto children[j], sinking the
// separator between them for internal nodes.
func (t *txn[K, V]) mergeChildren(w *innerNode[K, V], j int) {
	if ll, ok := w.children[j].(*leafNode[K, V]); ok {
		wl := t.writeLeaf(ll)
		wl.items = append(wl.items, w.children[j+1].(*leafNode[K, V]).items...)
		w.children[j] = wl
	} else {
		wl := t.writeInner(w.children[j].(*innerNode[K, V]))
		rn := w.children[j+1].(*innerNode[K, V])
		wl.seps = append(wl.seps, w.seps[j])
		wl.seps = append(wl.seps, rn.seps...)
		wl.children = append(wl.children, rn.children...)
		w.children[j] = wl
	}
	w.removeChildAt(j + 1)
}

// Update applies fn to the current value of k, or to the zero value with
// ok=false when k is absent. fn returning false declines the write.
func (t *txn[K, V]) Update(k K, fn func(V, bool) (V, bool)) bool {
	old, ok := lookup[K, V](t.root, t.cmp, k)
	nv, keep := fn(old, ok)
	if !keep {
		return false
	}
	t.Insert(k, nv)
	return true
}

// UpdateIfExists applies fn to the current value of k and stores the
// result; it is a no-op when k is absent.
func (t *txn[K, V]) UpdateIfExists(k K, fn func(V) V) bool {
	old, ok := lookup[K, V](t.root, t.cmp, k)
	if !ok {
		return false
	}
	t.Insert(k, fn(old))
	return true
}

func (t *txn[K, V]) Get(k K) (V, bool) {
	return lookup[K, V](t.root, t.cmp, k)
}

func (t *txn[K, V]) Len() int {
	return t.size
}

// Commit seals the txn into an immutable tree. The token is retired;
// nodes still tagged with it are frozen because no future txn can ever
// hold an equal token.
func (t *txn[K, V]) Commit() *tree[K, V] {
	t.edit = nil
	return &tree[K, V]{root: t.root, size: t.size, cmp: t.cmp, order: t.order}
}
