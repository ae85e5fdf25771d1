// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package radix

import (
	"math/bits"

	"github.com/cmts-dev/carmentis-node/cmts"
)

const (
	keyLen   = 32
	maxDepth = keyLen * 2 // one nibble per level
	maskLen  = 2
)

// nibbleAt returns the nibble of key consumed at depth, low nibble first.
func nibbleAt(key []byte, depth int) int {
	return int(key[depth>>1]>>(4*(depth&1))) & 0xf
}

// leafKeyLen returns the number of packed key bytes in an early leaf at depth.
func leafKeyLen(depth int) int {
	return (maxDepth + 1 - depth) >> 1
}

// node is the raw encoding of a radix node.
//
// standard node:  mask(2) ‖ ref(32) for each set bit of mask, from LSB to MSB
// early leaf:     0x0000 ‖ key[depth>>1:] ‖ value(32)
//
// A ref is the hash of the child node, or the value itself at the deepest level.
type node []byte

func (n node) mask() uint16 {
	return uint16(n[0])<<8 | uint16(n[1])
}

func (n node) isLeaf() bool {
	return n.mask() == 0
}

// wellFormed checks the length of n against its shape.
func (n node) wellFormed(depth int) bool {
	if len(n) < maskLen {
		return false
	}
	if n.isLeaf() {
		return len(n) == maskLen+leafKeyLen(depth)+keyLen
	}
	return len(n) == maskLen+keyLen*bits.OnesCount16(n.mask())
}

// refs returns the child references indexed by nibble.
func (n node) refs() (refs [16][]byte) {
	msk := n.mask()
	ptr := maskLen
	for i := range 16 {
		if msk&(1<<i) != 0 {
			refs[i] = n[ptr : ptr+keyLen]
			ptr += keyLen
		}
	}
	return
}

// leafValue returns the value carried by an early leaf at depth.
func (n node) leafValue(depth int) []byte {
	return n[maskLen+leafKeyLen(depth):]
}

// leafMatches reports whether the early leaf at depth holds key.
// At odd depth the low nibble of the first packed byte was already consumed, so it's skipped.
func (n node) leafMatches(key []byte, depth int) bool {
	packed := n[maskLen:]
	base := depth >> 1
	for d := depth; d < maxDepth; d++ {
		if nibbleAt(packed[(d>>1)-base:], d&1) != nibbleAt(key, d) {
			return false
		}
	}
	return true
}

// leafKey rebuilds the full width key of an early leaf at depth.
// Nibbles above depth are meaningless.
func (n node) leafKey(depth int) []byte {
	l := leafKeyLen(depth)
	key := make([]byte, keyLen)
	copy(key[keyLen-l:], n[maskLen:maskLen+l])
	return key
}

func encodeStandard(refs *[16][]byte) node {
	var msk uint16
	count := 0
	for i, ref := range refs {
		if ref != nil {
			msk |= 1 << i
			count++
		}
	}
	n := make(node, maskLen, maskLen+keyLen*count)
	n[0], n[1] = byte(msk>>8), byte(msk)
	for _, ref := range refs {
		if ref != nil {
			n = append(n, ref...)
		}
	}
	return n
}

func encodeLeaf(key, value []byte, depth int) node {
	l := leafKeyLen(depth)
	n := make(node, maskLen+l+keyLen)
	copy(n[maskLen:], key[depth>>1:])
	if depth&1 == 1 {
		// flip the consumed nibble, or the leaf would equal its copy one level up
		n[maskLen] ^= 0x0f
	}
	copy(n[maskLen+l:], value)
	return n
}

func (n node) hash() cmts.Bytes32 {
	return cmts.Sha256(n)
}
