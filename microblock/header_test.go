// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package microblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmts-dev/carmentis-node/cmts"
)

func TestHeaderEncoding(t *testing.T) {
	h := Header{
		ProtocolVersion: 1,
		Height:          0x010203040506,
		PreviousHash:    cmts.Sha256([]byte("prev")),
		Timestamp:       1_700_000_000,
		Gas:             0x0a0b0c,
		GasPrice:        0xdeadbeef,
		BodyHash:        cmts.Sha256([]byte("body")),
	}
	copy(h.Magic[:], cmts.MagicString)

	data, err := h.Encode()
	require.NoError(t, err)
	require.Len(t, data, HeaderSize)
	assert.Equal(t, 89, HeaderSize)

	assert.Equal(t, []byte("CMTS"), data[:4])
	assert.Equal(t, []byte{0, 1}, data[4:6])
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, data[6:12])
	assert.Equal(t, h.PreviousHash[:], data[12:44])
	assert.Equal(t, []byte{0x0a, 0x0b, 0x0c}, data[gasOffset:gasOffset+3])
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, data[53:57])
	assert.Equal(t, h.BodyHash[:], data[signedHeaderSize:])

	decoded, err := DecodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, h, *decoded)

	hash, err := h.Hash()
	assert.NoError(t, err)
	assert.Equal(t, cmts.Sha256(data), hash)
}

func TestHeaderOverflow(t *testing.T) {
	h := Header{Height: cmts.MaxHeight + 1}
	_, err := h.Encode()
	assert.Error(t, err)

	h = Header{Gas: cmts.MaxGas + 1}
	_, err = h.Encode()
	assert.Error(t, err)
}

func TestDecodeHeaderLength(t *testing.T) {
	_, err := DecodeHeader(make([]byte, HeaderSize-1))
	assert.Error(t, err)
	_, err = DecodeHeader(make([]byte, HeaderSize+1))
	assert.Error(t, err)
}

func TestSplitTransaction(t *testing.T) {
	tx := make([]byte, HeaderSize+10)
	tx[HeaderSize] = 0xc0

	h, b, err := SplitTransaction(tx)
	require.NoError(t, err)
	assert.Len(t, h, HeaderSize)
	assert.Len(t, b, 10)
	assert.Equal(t, byte(0xc0), b[0])

	_, _, err = SplitTransaction(tx[:HeaderSize-1])
	assert.Error(t, err)
}
