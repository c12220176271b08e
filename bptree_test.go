// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package bptree

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/hashicorp/go-uuid"
	"github.com/stretchr/testify/require"
)

func TestTree_InsertAndGet(t *testing.T) {
	t.Parallel()

	m := New[int, string]()
	for i := 0; i < 1000; i++ {
		m = m.Set(i, "v"+strconv.Itoa(i))
	}
	require.Equal(t, 1000, m.Len())
	for i := 0; i < 1000; i++ {
		v, ok := m.Get(i)
		require.True(t, ok)
		require.Equal(t, "v"+strconv.Itoa(i), v)
	}
	_, ok := m.Get(1000)
	require.False(t, ok)
	verifyTree(t, m.t)
}

func TestTree_RandomPermutation(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(1))
	perm := r.Perm(1000)
	m := New[int, string]()
	for _, k := range perm {
		m = m.Set(k, "v"+strconv.Itoa(k))
	}
	require.Equal(t, 1000, m.Len())
	verifyTree(t, m.t)

	for k := 0; k < 1000; k++ {
		v, err := m.At(k)
		require.NoError(t, err)
		require.Equal(t, "v"+strconv.Itoa(k), v)
	}

	it := m.Iterator()
	want := 0
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		require.Equal(t, want, k)
		want++
	}
	require.Equal(t, 1000, want)
}

func TestTree_DeleteEverything(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(2))
	perm := r.Perm(500)
	m := New[int, int]()
	for _, k := range perm {
		m = m.Set(k, k)
	}
	for i, k := range r.Perm(500) {
		m = m.Delete(k)
		require.Equal(t, 500-i-1, m.Len())
		if i%37 == 0 {
			verifyTree(t, m.t)
		}
	}
	require.Equal(t, 0, m.Len())
	require.Nil(t, m.t.root)
}

// Small orders force splits, borrows, and merges constantly; lookups are
// checked against a map oracle, and the structural invariants and size
// every 211 steps and at the end.
func TestTree_SmallOrderOracle(t *testing.T) {
	t.Parallel()

	for _, order := range []int{3, 4, 5, 8} {
		order := order
		t.Run("order-"+strconv.Itoa(order), func(t *testing.T) {
			t.Parallel()

			r := rand.New(rand.NewSource(int64(order)))
			m := New[int, int](Order(order))
			oracle := map[int]int{}

			for step := 0; step < 3000; step++ {
				k := r.Intn(200)
				switch r.Intn(3) {
				case 0:
					v := r.Int()
					m = m.Set(k, v)
					oracle[k] = v
				case 1:
					before := m
					m = m.Delete(k)
					if _, ok := oracle[k]; ok {
						delete(oracle, k)
					} else {
						require.Same(t, before, m)
					}
				case 2:
					v, ok := m.Get(k)
					ov, ook := oracle[k]
					require.Equal(t, ook, ok)
					if ok {
						require.Equal(t, ov, v)
					}
				}
				if step%211 == 0 {
					verifyTree(t, m.t)
					require.Equal(t, len(oracle), m.Len())
				}
			}
			verifyTree(t, m.t)
			require.Equal(t, len(oracle), m.Len())

			it := m.Iterator()
			seen := 0
			for {
				k, v, ok := it.Next()
				if !ok {
					break
				}
				require.Equal(t, oracle[k], v)
				seen++
			}
			require.Equal(t, len(oracle), seen)
		})
	}
}

// Every mutation must leave all earlier versions observably unchanged.
func TestTree_Persistence(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(3))
	m := New[int, int](Order(4))
	for _, k := range r.Perm(300) {
		m = m.Set(k, k)
	}

	snapshot := func(m *Map[int, int]) []int {
		var out []int
		it := m.Iterator()
		for {
			k, _, ok := it.Next()
			if !ok {
				return out
			}
			out = append(out, k)
		}
	}
	before := snapshot(m)

	m2 := m
	for _, k := range r.Perm(300) {
		if k%2 == 0 {
			m2 = m2.Delete(k)
		} else {
			m2 = m2.Set(k, -k)
		}
	}
	verifyTree(t, m2.t)

	require.Equal(t, before, snapshot(m), "older version changed by later mutations")
	require.Equal(t, 300, m.Len())
	for k := 0; k < 300; k++ {
		v, ok := m.Get(k)
		require.True(t, ok)
		require.Equal(t, k, v)
	}
}

func TestTree_ReplaceKeepsSeparators(t *testing.T) {
	t.Parallel()

	m := New[int, string](Order(3))
	for i := 0; i < 100; i++ {
		m = m.Set(i, "old")
	}
	for i := 0; i < 100; i++ {
		m = m.Set(i, "new")
	}
	require.Equal(t, 100, m.Len())
	verifyTree(t, m.t)
	for i := 0; i < 100; i++ {
		v, _ := m.Get(i)
		require.Equal(t, "new", v)
	}
}

func TestTree_MinMax(t *testing.T) {
	t.Parallel()

	m := New[int, string]()
	_, ok := m.Min()
	require.False(t, ok)
	_, ok = m.Max()
	require.False(t, ok)

	for _, k := range []int{42, 7, 99, 13} {
		m = m.Set(k, strconv.Itoa(k))
	}
	lo, ok := m.Min()
	require.True(t, ok)
	require.Equal(t, 7, lo.Key)
	hi, ok := m.Max()
	require.True(t, ok)
	require.Equal(t, 99, hi.Key)
}

func TestTree_CustomComparator(t *testing.T) {
	t.Parallel()

	// Descending order.
	m := NewComparator[int, string](func(a, b int) int { return b - a })
	for _, k := range []int{1, 3, 2} {
		m = m.Set(k, strconv.Itoa(k))
	}
	it := m.Iterator()
	var keys []int
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		keys = append(keys, k)
	}
	require.Equal(t, []int{3, 2, 1}, keys)
}

func generateDataset(size int) []string {
	dataset := make([]string, size)
	for i := 0; i < size; i++ {
		uuid1, _ := uuid.GenerateUUID()
		dataset[i] = uuid1
	}
	return dataset
}

const datasetSize = 10000

func BenchmarkMixedOperations(b *testing.B) {
	dataset := generateDataset(datasetSize)
	m := New[string, int]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < datasetSize; j++ {
			key := dataset[j]
			switch rand.Intn(3) {
			case 0:
				m = m.Set(key, j)
			case 1:
				m.Get(key)
			case 2:
				m = m.Delete(key)
			}
		}
	}
}

func BenchmarkInsert(b *testing.B) {
	m := New[string, int]()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		uuid1, _ := uuid.GenerateUUID()
		m = m.Set(uuid1, n)
	}
}

func BenchmarkInsertTxn(b *testing.B) {
	txn := New[string, int]().Txn()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		uuid1, _ := uuid.GenerateUUID()
		txn.Set(uuid1, n)
	}
}

func BenchmarkGet(b *testing.B) {
	dataset := generateDataset(datasetSize)
	txn := New[string, int]().Txn()
	for i, k := range dataset {
		txn.Set(k, i)
	}
	m := txn.Commit()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		m.Get(dataset[n%datasetSize])
	}
}

func BenchmarkDelete(b *testing.B) {
	m := New[string, int]()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		uuid1, _ := uuid.GenerateUUID()
		m = m.Set(uuid1, n)
		m = m.Delete(uuid1)
	}
}
