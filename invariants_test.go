// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package bptree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// verifyTree walks every node of a tree version and asserts the
// structural invariants: occupancy bounds, uniform leaf depth, separator
// keys equal to the minimum of their right subtree, strictly increasing
// keys, and a size matching the element count.
func verifyTree[K, V any](t testing.TB, tr *tree[K, V]) {
	t.Helper()
	if tr.root == nil {
		require.Equal(t, 0, tr.size, "empty tree must have size 0")
		return
	}
	minOcc := (tr.order + 1) / 2
	leafDepth := -1
	count := 0

	var walk func(n node[K, V], depth int, isRoot bool)
	walk = func(n node[K, V], depth int, isRoot bool) {
		if l, ok := n.(*leafNode[K, V]); ok {
			if isRoot {
				require.GreaterOrEqual(t, len(l.items), 1)
			} else {
				require.GreaterOrEqual(t, len(l.items), minOcc, "leaf underfull")
			}
			require.LessOrEqual(t, len(l.items), tr.order, "leaf overfull")
			if leafDepth == -1 {
				leafDepth = depth
			} else {
				require.Equal(t, leafDepth, depth, "leaves at different depths")
			}
			count += len(l.items)
			return
		}
		in := n.(*innerNode[K, V])
		if isRoot {
			require.GreaterOrEqual(t, len(in.children), 2, "internal root with a single child")
		} else {
			require.GreaterOrEqual(t, len(in.children), minOcc, "internal node underfull")
		}
		require.LessOrEqual(t, len(in.children), tr.order, "internal node overfull")
		require.Equal(t, len(in.children)-1, len(in.seps), "separator count mismatch")
		for i, c := range in.children {
			if i > 0 {
				require.Zero(t, tr.cmp(in.seps[i-1], minEntry[K, V](c).key),
					"separator does not equal minimum of right subtree")
			}
			walk(c, depth+1, false)
		}
	}
	walk(tr.root, 0, true)
	require.Equal(t, tr.size, count, "size does not match element count")

	// Keys across the leaf level are strictly increasing.
	it := tr.iterator()
	var prev K
	first := true
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		if !first {
			require.Negative(t, tr.cmp(prev, k), "keys not strictly increasing")
		}
		prev = k
		first = false
	}
}
