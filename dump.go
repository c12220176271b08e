// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package bptree

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Stats summarizes the node structure of one tree version.
type Stats struct {
	Size    int
	Height  int
	Order   int
	Leaves  int
	Inners  int
	// LeafFill is the mean leaf occupancy relative to the order M.
	LeafFill float64
}

func (t *tree[K, V]) stats() Stats {
	st := Stats{Size: t.size, Height: t.height(), Order: t.order}
	items := 0
	var walk func(n node[K, V])
	walk = func(n node[K, V]) {
		if l, ok := n.(*leafNode[K, V]); ok {
			st.Leaves++
			items += len(l.items)
			return
		}
		st.Inners++
		for _, c := range n.(*innerNode[K, V]).children {
			walk(c)
		}
	}
	if t.root != nil {
		walk(t.root)
	}
	if st.Leaves > 0 {
		st.LeafFill = float64(items) / float64(st.Leaves*t.order)
	}
	return st
}

// Stats returns structural statistics for the map.
func (m *Map[K, V]) Stats() Stats {
	return m.t.stats()
}

// Stats returns structural statistics for the set.
func (s *Set[K]) Stats() Stats {
	return s.t.stats()
}

// Dump renders the node structure for debugging.
func (m *Map[K, V]) Dump() string {
	return dumpTree(m.t)
}

// Dump renders the node structure for debugging.
func (s *Set[K]) Dump() string {
	return dumpTree(s.t)
}

func dumpTree[K, V any](t *tree[K, V]) string {
	tp := treeprint.New()
	if t.root == nil {
		tp.AddNode("(empty)")
	} else {
		dumpNode[K, V](tp, t.root)
	}
	return tp.String()
}

func dumpNode[K, V any](br treeprint.Tree, n node[K, V]) {
	if l, ok := n.(*leafNode[K, V]); ok {
		keys := make([]K, len(l.items))
		for i, e := range l.items {
			keys[i] = e.key
		}
		br.AddNode(fmt.Sprintf("leaf%v", keys))
		return
	}
	in := n.(*innerNode[K, V])
	b := br.AddBranch(fmt.Sprintf("inner seps=%v", in.seps))
	for _, c := range in.children {
		dumpNode[K, V](b, c)
	}
}
