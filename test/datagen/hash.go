// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/cmts-dev/carmentis-node/cmts"
)

func RandomHash() cmts.Bytes32 {
	var b32 cmts.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}
