// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package microblock

import (
	"github.com/pkg/errors"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/codec"
)

// Field widths of the header, in bytes.
const (
	magicSize    = 4
	versionSize  = 2
	heightSize   = 6
	tsSize       = 6
	gasSize      = 3
	gasPriceSize = 4

	// HeaderSize is the length of an encoded header.
	HeaderSize = magicSize + versionSize + heightSize + 32 + tsSize + gasSize + gasPriceSize + 32

	// signedHeaderSize is the length of the header prefix covered by signatures, which stops before the body hash.
	signedHeaderSize = HeaderSize - 32
	gasOffset        = magicSize + versionSize + heightSize + 32 + tsSize
)

// Header is the fixed part of a microblock.
type Header struct {
	Magic           [magicSize]byte
	ProtocolVersion uint16
	Height          uint64
	PreviousHash    cmts.Bytes32
	Timestamp       uint64 // seconds
	Gas             uint64
	GasPrice        uint64
	BodyHash        cmts.Bytes32
}

// Encode returns the 89 bytes big-endian encoding of h.
func (h *Header) Encode() ([]byte, error) {
	w := codec.NewWriter(HeaderSize)
	w.Raw(h.Magic[:])
	if err := w.Uint(uint64(h.ProtocolVersion), versionSize); err != nil {
		return nil, err
	}
	if err := w.Uint(h.Height, heightSize); err != nil {
		return nil, errors.Wrap(err, "height")
	}
	w.Raw(h.PreviousHash[:])
	if err := w.Uint(h.Timestamp, tsSize); err != nil {
		return nil, errors.Wrap(err, "timestamp")
	}
	if err := w.Uint(h.Gas, gasSize); err != nil {
		return nil, errors.Wrap(err, "gas")
	}
	if err := w.Uint(h.GasPrice, gasPriceSize); err != nil {
		return nil, errors.Wrap(err, "gas price")
	}
	w.Raw(h.BodyHash[:])
	return w.Bytes(), nil
}

// Hash returns the microblock hash, which is the hash of the encoded header.
func (h *Header) Hash() (cmts.Bytes32, error) {
	data, err := h.Encode()
	if err != nil {
		return cmts.Bytes32{}, err
	}
	return cmts.Sha256(data), nil
}

// DecodeHeader decodes an encoded header.
// It checks the length only. Magic and version are left to the caller.
func DecodeHeader(data []byte) (*Header, error) {
	if len(data) != HeaderSize {
		return nil, errors.Errorf("invalid header length %d, want %d", len(data), HeaderSize)
	}
	var (
		h   Header
		r   = codec.NewReader(data)
		raw []byte
		v   uint64
	)
	raw, _ = r.Raw(magicSize)
	copy(h.Magic[:], raw)
	v, _ = r.Uint(versionSize)
	h.ProtocolVersion = uint16(v)
	h.Height, _ = r.Uint(heightSize)
	raw, _ = r.Raw(32)
	h.PreviousHash = cmts.BytesToBytes32(raw)
	h.Timestamp, _ = r.Uint(tsSize)
	h.Gas, _ = r.Uint(gasSize)
	h.GasPrice, _ = r.Uint(gasPriceSize)
	raw, _ = r.Raw(32)
	h.BodyHash = cmts.BytesToBytes32(raw)
	return &h, nil
}

// SplitTransaction splits a raw transaction into its header and body data.
func SplitTransaction(tx []byte) (headerData, bodyData []byte, err error) {
	if len(tx) < HeaderSize {
		return nil, nil, errors.Errorf("transaction too short: %d bytes", len(tx))
	}
	return tx[:HeaderSize], tx[HeaderSize:], nil
}
