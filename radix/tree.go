// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package radix implements the authenticated radix tree which commits
// 32-byte keys to 32-byte values under one root hash.
//
// The tree consumes one nibble of the key per level, so it's 64 levels deep at most.
// Nodes are content addressed: each node is stored under its own sha256 hash, and the
// root hash is stored under the all-zero anchor key.
package radix

import (
	"bytes"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/kv"
	"github.com/cmts-dev/carmentis-node/log"
)

var logger = log.WithContext("pkg", "radix")

var anchorKey cmts.Bytes32

// Options optional parameters of a tree.
type Options struct {
	// CacheDepth is the deepest level whose nodes are kept in the node cache.
	// Nodes below it are never cached.
	CacheDepth int
	// CacheSize is the max number of cached nodes. Zero disables the cache.
	CacheSize int
}

// DefaultOptions caches the top levels of the tree.
var DefaultOptions = Options{
	CacheDepth: 3,
	CacheSize:  8192,
}

// Tree is the radix tree over a kv store. It's not safe for concurrent use.
// Writes are batched in memory until Flush.
type Tree struct {
	storage *storage
}

// New creates a tree over the store. Two trees must not share a store.
func New(store kv.Store, opts Options) *Tree {
	return &Tree{storage: newStorage(store, opts)}
}

// RootHash returns the root hash. It's all-zero for an empty tree.
func (t *Tree) RootHash() (cmts.Bytes32, error) {
	data, found, err := t.storage.get(anchorDepth, anchorKey)
	if err != nil {
		return cmts.Bytes32{}, err
	}
	if !found {
		return cmts.Bytes32{}, nil
	}
	if len(data) != keyLen {
		return cmts.Bytes32{}, &corruptedNodeError{anchorKey, anchorDepth}
	}
	return cmts.BytesToBytes32(data), nil
}

func (t *Tree) loadNode(depth int, ref []byte) (node, error) {
	hash := cmts.BytesToBytes32(ref)
	data, found, err := t.storage.get(depth, hash)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &MissingNodeError{hash, depth}
	}
	n := node(data)
	if !n.wellFormed(depth) {
		return nil, &corruptedNodeError{hash, depth}
	}
	return n, nil
}

// Get returns the value of key, along with the proof made of the raw nodes
// visited from the root. The value is nil if key is absent.
func (t *Tree) Get(key cmts.Bytes32) (value []byte, proof [][]byte, err error) {
	root, err := t.RootHash()
	if err != nil {
		return nil, nil, err
	}
	if root.IsZero() {
		return nil, nil, nil
	}

	ref := root[:]
	for depth := 0; depth < maxDepth; depth++ {
		n, err := t.loadNode(depth, ref)
		if err != nil {
			return nil, nil, err
		}
		proof = append(proof, bytes.Clone(n))

		if n.isLeaf() {
			if !n.leafMatches(key[:], depth) {
				return nil, proof, nil
			}
			return bytes.Clone(n.leafValue(depth)), proof, nil
		}
		if ref = n.refs()[nibbleAt(key[:], depth)]; ref == nil {
			return nil, proof, nil
		}
	}
	// the deepest reference is the value
	return bytes.Clone(ref), proof, nil
}

// Set sets the value of key.
func (t *Tree) Set(key, value cmts.Bytes32) error {
	if key == anchorKey {
		return ErrReservedKey
	}
	root, err := t.RootHash()
	if err != nil {
		return err
	}
	var ref []byte
	if !root.IsZero() {
		ref = root[:]
	}
	newRoot, err := t.write(key[:], value[:], ref, 0)
	if err != nil {
		return err
	}
	t.storage.put(anchorDepth, anchorKey, newRoot)
	return nil
}

// write rewrites the path of key below the node referenced by ref, and returns
// the reference of the new node. Superseded nodes are left in place: a node may be
// referenced from more than one position, and older roots keep resolving.
func (t *Tree) write(key, value, ref []byte, depth int) ([]byte, error) {
	if depth == maxDepth {
		return value, nil
	}

	var n node
	if ref == nil {
		n = encodeLeaf(key, value, depth)
	} else {
		cur, err := t.loadNode(depth, ref)
		if err != nil {
			return nil, err
		}
		nibble := nibbleAt(key, depth)

		switch {
		case !cur.isLeaf():
			refs := cur.refs()
			if refs[nibble], err = t.write(key, value, refs[nibble], depth+1); err != nil {
				return nil, err
			}
			n = encodeStandard(&refs)
		case !cur.leafMatches(key, depth):
			// push the current occupant one level deeper, then insert key beside it
			var refs [16][]byte
			prevKey := cur.leafKey(depth)
			index := nibbleAt(prevKey, depth)
			if refs[index], err = t.write(prevKey, cur.leafValue(depth), nil, depth+1); err != nil {
				return nil, err
			}
			if refs[nibble], err = t.write(key, value, refs[nibble], depth+1); err != nil {
				return nil, err
			}
			n = encodeStandard(&refs)
		default:
			n = append(node(nil), cur...)
			copy(n[maskLen+leafKeyLen(depth):], value)
		}
	}

	hash := n.hash()
	t.storage.put(depth, hash, n)
	return hash[:], nil
}

// Flush writes all pending changes into the store atomically.
func (t *Tree) Flush() error {
	n, err := t.storage.flush()
	if err != nil {
		return err
	}
	if n > 0 {
		metricFlushedNodes().Add(int64(n))
		logger.Debug("flushed", "nodes", n)
	}
	t.storage.reportCacheStats()
	return nil
}

// Rollback drops all pending changes.
func (t *Tree) Rollback() {
	if n := t.storage.rollback(); n > 0 {
		logger.Debug("rolled back", "nodes", n)
	}
}
