// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cmts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytes32JSON(t *testing.T) {
	original := `"0x00000000000000000000000000000000000000000000000000006d6173746572"`

	var b Bytes32
	assert.NoError(t, json.Unmarshal([]byte(original), &b))

	enc, err := json.Marshal(&b)
	assert.NoError(t, err)
	assert.Equal(t, original, string(enc))
}

func TestParseBytes32(t *testing.T) {
	_, err := ParseBytes32("0x1234")
	assert.Error(t, err)

	_, err = ParseBytes32("zz" + "00000000000000000000000000000000000000000000000000000000000000")
	assert.Error(t, err)

	b := MustParseBytes32("0000000000000000000000000000000000000000000000000000000000000001")
	assert.Equal(t, Bytes32{31: 1}, b)
	assert.False(t, b.IsZero())
	assert.True(t, Bytes32{}.IsZero())
}

func TestBytesToBytes32(t *testing.T) {
	assert.Equal(t, Bytes32{30: 1, 31: 2}, BytesToBytes32([]byte{1, 2}))

	long := make([]byte, 40)
	long[39] = 7
	long[0] = 9
	assert.Equal(t, Bytes32{31: 7}, BytesToBytes32(long))
}

func TestSha256(t *testing.T) {
	// sha256("abc")
	want := MustParseBytes32("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	assert.Equal(t, want, Sha256([]byte("abc")))
	assert.Equal(t, want, Sha256([]byte("a"), []byte("bc")))
	assert.Equal(t, want, Sha256([]byte("ab"), nil, []byte("c")))
}

func TestVBType(t *testing.T) {
	assert.True(t, ApplicationLedgerVB.Valid())
	assert.False(t, VBType(5).Valid())
	assert.Equal(t, "organization", OrganizationVB.String())
	assert.Equal(t, "vbtype(9)", VBType(9).String())
}
