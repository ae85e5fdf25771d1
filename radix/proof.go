// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package radix

import (
	"bytes"

	"github.com/cmts-dev/carmentis-node/cmts"
)

// VerifyProof replays a lookup of key over the nodes of proof, checking the hash of
// every node against the reference held by its parent. A nil value claims that
// key is absent. It returns the root hash the proof commits to if the claim holds.
func VerifyProof(key cmts.Bytes32, value []byte, proof [][]byte) (cmts.Bytes32, bool) {
	if len(proof) == 0 {
		// only the empty tree proves nothing
		return cmts.Bytes32{}, value == nil
	}
	if len(proof) > maxDepth {
		return cmts.Bytes32{}, false
	}

	root := cmts.Sha256(proof[0])
	expected := root[:]
	for depth, raw := range proof {
		n := node(raw)
		if h := n.hash(); !bytes.Equal(h[:], expected) || !n.wellFormed(depth) {
			return cmts.Bytes32{}, false
		}
		last := depth == len(proof)-1

		var ok bool
		if n.isLeaf() {
			if !last {
				return cmts.Bytes32{}, false
			}
			if n.leafMatches(key[:], depth) {
				ok = value != nil && bytes.Equal(n.leafValue(depth), value)
			} else {
				ok = value == nil
			}
		} else {
			ref := n.refs()[nibbleAt(key[:], depth)]
			switch {
			case ref == nil:
				ok = last && value == nil
			case depth+1 == maxDepth:
				ok = last && value != nil && bytes.Equal(ref, value)
			case last:
				// truncated
			default:
				expected = ref
				continue
			}
		}
		if !ok {
			return cmts.Bytes32{}, false
		}
		return root, true
	}
	return cmts.Bytes32{}, false
}
