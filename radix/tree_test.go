// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package radix

import (
	"math/rand/v2"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/kv"
	"github.com/cmts-dev/carmentis-node/muxdb"
)

func newTestTree(t *testing.T) (*Tree, kv.Store) {
	db := muxdb.NewMem()
	t.Cleanup(func() { db.Close() })
	store := db.NewStore("radix")
	return New(store, DefaultOptions), store
}

func randomEntries(n int) map[cmts.Bytes32]cmts.Bytes32 {
	f := fuzz.New().NilChance(0)
	entries := make(map[cmts.Bytes32]cmts.Bytes32, n)
	for len(entries) < n {
		var k, v cmts.Bytes32
		f.Fuzz(&k)
		f.Fuzz(&v)
		if k.IsZero() {
			continue
		}
		entries[k] = v
	}
	return entries
}

func countNodes(t *testing.T, store kv.Store) int {
	iter := store.Iterate(kv.Range{})
	defer iter.Release()
	n := 0
	for iter.Next() {
		n++
	}
	require.NoError(t, iter.Error())
	return n
}

// withNibble returns a copy of key with the nibble at depth replaced.
func withNibble(key cmts.Bytes32, depth int, nibble byte) cmts.Bytes32 {
	shift := 4 * (depth & 1)
	key[depth>>1] = key[depth>>1]&^(0xf<<shift) | (nibble&0xf)<<shift
	return key
}

func TestEmptyTree(t *testing.T) {
	tree, _ := newTestTree(t)

	root, err := tree.RootHash()
	assert.NoError(t, err)
	assert.True(t, root.IsZero())

	val, proof, err := tree.Get(cmts.Sha256([]byte("k")))
	assert.NoError(t, err)
	assert.Nil(t, val)
	assert.Empty(t, proof)

	root, ok := VerifyProof(cmts.Sha256([]byte("k")), nil, proof)
	assert.True(t, ok)
	assert.True(t, root.IsZero())
}

func TestReservedKey(t *testing.T) {
	tree, _ := newTestTree(t)
	assert.Equal(t, ErrReservedKey, tree.Set(cmts.Bytes32{}, cmts.Sha256([]byte("v"))))
}

func TestSetGet(t *testing.T) {
	tree, _ := newTestTree(t)
	entries := randomEntries(500)

	for k, v := range entries {
		require.NoError(t, tree.Set(k, v))
	}
	for k, v := range entries {
		val, _, err := tree.Get(k)
		require.NoError(t, err)
		assert.Equal(t, v[:], val)
	}

	// survives flush and a fresh instance
	require.NoError(t, tree.Flush())
	root, err := tree.RootHash()
	require.NoError(t, err)

	reopened := New(tree.storage.store, Options{})
	root2, err := reopened.RootHash()
	require.NoError(t, err)
	assert.Equal(t, root, root2)
	for k, v := range entries {
		val, _, err := reopened.Get(k)
		require.NoError(t, err)
		assert.Equal(t, v[:], val)
	}

	val, _, err := reopened.Get(cmts.Sha256([]byte("absent")))
	assert.NoError(t, err)
	assert.Nil(t, val)
}

func TestOrderInvariance(t *testing.T) {
	entries := randomEntries(200)
	keys := make([]cmts.Bytes32, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}

	var roots []cmts.Bytes32
	for i := range 3 {
		tree, _ := newTestTree(t)
		rand.Shuffle(len(keys), func(a, b int) { keys[a], keys[b] = keys[b], keys[a] })
		for j, k := range keys {
			if i == 2 {
				// overwritten values must not leave traces
				require.NoError(t, tree.Set(k, cmts.Sha256(k[:])))
			}
			require.NoError(t, tree.Set(k, entries[k]))
			if j%50 == 0 {
				require.NoError(t, tree.Flush())
			}
		}
		require.NoError(t, tree.Flush())
		root, err := tree.RootHash()
		require.NoError(t, err)
		roots = append(roots, root)
	}
	assert.Equal(t, roots[0], roots[1])
	assert.Equal(t, roots[0], roots[2])
}

func TestSharedPrefixSplit(t *testing.T) {
	base := cmts.Sha256([]byte("base"))
	value := cmts.Sha256([]byte("value"))

	for _, k := range []int{0, 1, 2, 7, 30, 63} {
		a := withNibble(base, k, 0x3)
		b := withNibble(base, k, 0xc)

		var roots []cmts.Bytes32
		for _, order := range [][2]cmts.Bytes32{{a, b}, {b, a}} {
			tree, _ := newTestTree(t)
			require.NoError(t, tree.Set(order[0], value))
			require.NoError(t, tree.Set(order[1], value))

			_, proof, err := tree.Get(a)
			require.NoError(t, err)
			require.Greater(t, len(proof), k)

			n := node(proof[k])
			assert.False(t, n.isLeaf(), "depth %d", k)
			refs := n.refs()
			count := 0
			for _, r := range refs {
				if r != nil {
					count++
				}
			}
			assert.Equal(t, 2, count, "depth %d", k)
			assert.NotNil(t, refs[0x3])
			assert.NotNil(t, refs[0xc])

			for _, key := range []cmts.Bytes32{a, b} {
				val, _, err := tree.Get(key)
				require.NoError(t, err)
				assert.Equal(t, value[:], val)
			}

			root, err := tree.RootHash()
			require.NoError(t, err)
			roots = append(roots, root)
		}
		assert.Equal(t, roots[0], roots[1], "depth %d", k)
	}
}

func TestLeafParity(t *testing.T) {
	tree, store := newTestTree(t)
	value := cmts.Sha256([]byte("value"))

	// b diverges from a at the first nibble, so the leaf of a moves from depth 0 to depth 1
	a := withNibble(cmts.Sha256([]byte("a")), 0, 0x1)
	b := withNibble(a, 0, 0x2)
	require.NoError(t, tree.Set(a, value))
	require.NoError(t, tree.Set(b, value))
	require.NoError(t, tree.Flush())

	// anchor, root, two leaves and the first root
	assert.Equal(t, 5, countNodes(t, store))

	for _, key := range []cmts.Bytes32{a, b} {
		val, _, err := tree.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value[:], val)
	}
}

func TestSupersededNodesKept(t *testing.T) {
	tree, store := newTestTree(t)
	key := cmts.Sha256([]byte("k"))

	require.NoError(t, tree.Set(key, cmts.Sha256([]byte("v1"))))
	require.NoError(t, tree.Flush())
	first, err := tree.RootHash()
	require.NoError(t, err)

	require.NoError(t, tree.Set(key, cmts.Sha256([]byte("v2"))))
	require.NoError(t, tree.Flush())

	// anchor and both leaves
	assert.Equal(t, 3, countNodes(t, store))
	has, err := store.Has(first[:])
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSharedNodes(t *testing.T) {
	value := cmts.Sha256([]byte("value"))
	updated := cmts.Sha256([]byte("updated"))
	base := cmts.Sha256([]byte("base"))

	tests := []struct {
		name string
		a, b cmts.Bytes32
	}{
		// the leaf of b one level down equals the former root leaf of a
		{"flipped nibble", withNibble(base, 0, 0x3), withNibble(base, 0, 0xc)},
		// both leaves at depth 2 carry the same bytes
		{"same value", withNibble(base, 1, 0x1), withNibble(base, 1, 0x2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, store := newTestTree(t)
			require.NoError(t, tree.Set(tt.a, value))
			require.NoError(t, tree.Set(tt.b, value))
			require.NoError(t, tree.Set(tt.a, updated))
			require.NoError(t, tree.Flush())

			fresh := New(store, DefaultOptions)
			for _, tr := range []*Tree{tree, fresh} {
				val, proof, err := tr.Get(tt.b)
				require.NoError(t, err)
				assert.Equal(t, value[:], val)

				root, err := tr.RootHash()
				require.NoError(t, err)
				got, ok := VerifyProof(tt.b, val, proof)
				assert.True(t, ok)
				assert.Equal(t, root, got)

				val, _, err = tr.Get(tt.a)
				require.NoError(t, err)
				assert.Equal(t, updated[:], val)
			}
		})
	}
}

func TestRollback(t *testing.T) {
	tree, _ := newTestTree(t)
	entries := randomEntries(50)
	for k, v := range entries {
		require.NoError(t, tree.Set(k, v))
	}
	require.NoError(t, tree.Flush())
	committed, err := tree.RootHash()
	require.NoError(t, err)

	extra := randomEntries(20)
	for k, v := range extra {
		require.NoError(t, tree.Set(k, v))
	}
	uncommitted, err := tree.RootHash()
	require.NoError(t, err)
	assert.NotEqual(t, committed, uncommitted)

	tree.Rollback()
	root, err := tree.RootHash()
	require.NoError(t, err)
	assert.Equal(t, committed, root)

	for k, v := range entries {
		val, _, err := tree.Get(k)
		require.NoError(t, err)
		assert.Equal(t, v[:], val)
	}
	for k := range extra {
		if _, ok := entries[k]; ok {
			continue
		}
		val, _, err := tree.Get(k)
		require.NoError(t, err)
		assert.Nil(t, val)
	}
}

func TestMissingNode(t *testing.T) {
	tree, store := newTestTree(t)
	entries := randomEntries(20)
	for k, v := range entries {
		require.NoError(t, tree.Set(k, v))
	}
	require.NoError(t, tree.Flush())

	root, err := tree.RootHash()
	require.NoError(t, err)
	require.NoError(t, store.Delete(root[:]))

	fresh := New(store, Options{})
	for k := range entries {
		_, _, err := fresh.Get(k)
		var missing *MissingNodeError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, root, missing.NodeHash)
		assert.Equal(t, 0, missing.Depth)

		err = fresh.Set(k, cmts.Sha256(k[:]))
		assert.ErrorAs(t, err, &missing)
		break
	}
}
