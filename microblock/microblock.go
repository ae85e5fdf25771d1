// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package microblock implements microblocks, the signed batches of sections
// appended to a virtual blockchain.
package microblock

import (
	"crypto/rand"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/cmts-dev/carmentis-node/cmts"
)

// Section is one typed fact of a microblock.
type Section struct {
	Type   uint8
	Object any    // decoded payload, nil until decoded
	Data   []byte // rlp encoded payload
	Hash   cmts.Bytes32
	Index  int
}

// Decode decodes the payload into out, which becomes the section object.
func (s *Section) Decode(out any) error {
	if err := rlp.DecodeBytes(s.Data, out); err != nil {
		return errors.Wrapf(err, "decode section %d", s.Index)
	}
	s.Object = out
	return nil
}

// wireSection is the body encoding of a section.
type wireSection struct {
	Type uint8
	Data []byte
}

// Microblock is one append to a virtual blockchain.
type Microblock struct {
	vbType   cmts.VBType
	header   Header
	sections []*Section
}

// New creates an empty microblock.
// At height 1 the previous hash is synthesized: its first byte is the type
// of the virtual blockchain and the rest is a random seed. Above height 1
// the hash of the predecessor is required.
func New(vbType cmts.VBType, height uint64, previousHash cmts.Bytes32, timestamp uint64) (*Microblock, error) {
	if !vbType.Valid() {
		return nil, errors.Errorf("invalid virtual blockchain type %v", vbType)
	}
	switch {
	case height == 0:
		return nil, errors.New("height must be positive")
	case height == 1:
		if _, err := rand.Read(previousHash[1:]); err != nil {
			return nil, errors.Wrap(err, "genesis seed")
		}
		previousHash[0] = byte(vbType)
	case previousHash.IsZero():
		return nil, errors.New("previous hash required")
	}

	mb := &Microblock{vbType: vbType}
	copy(mb.header.Magic[:], cmts.MagicString)
	mb.header.ProtocolVersion = cmts.ProtocolVersion
	mb.header.Height = height
	mb.header.PreviousHash = previousHash
	mb.header.Timestamp = timestamp
	return mb, nil
}

// Decode decodes a microblock of the given type from its header and body data.
// Section payloads are left undecoded.
func Decode(vbType cmts.VBType, headerData, bodyData []byte) (*Microblock, error) {
	header, err := DecodeHeader(headerData)
	if err != nil {
		return nil, err
	}
	var body []wireSection
	if err := rlp.DecodeBytes(bodyData, &body); err != nil {
		return nil, errors.Wrap(err, "decode body")
	}

	mb := &Microblock{vbType: vbType, header: *header}
	for i, ws := range body {
		mb.sections = append(mb.sections, &Section{
			Type:  ws.Type,
			Data:  ws.Data,
			Hash:  cmts.Sha256(ws.Data),
			Index: i,
		})
	}
	return mb, nil
}

// Type returns the type of the virtual blockchain.
func (mb *Microblock) Type() cmts.VBType { return mb.vbType }

// Header returns a copy of the header.
func (mb *Microblock) Header() Header { return mb.header }

func (mb *Microblock) Height() uint64              { return mb.header.Height }
func (mb *Microblock) PreviousHash() cmts.Bytes32  { return mb.header.PreviousHash }
func (mb *Microblock) Timestamp() uint64           { return mb.header.Timestamp }
func (mb *Microblock) Gas() uint64                 { return mb.header.Gas }
func (mb *Microblock) GasPrice() uint64            { return mb.header.GasPrice }
func (mb *Microblock) Sections() []*Section        { return mb.sections }
func (mb *Microblock) Section(i int) *Section      { return mb.sections[i] }
func (mb *Microblock) SectionCount() int           { return len(mb.sections) }
func (mb *Microblock) IsGenesis() bool             { return mb.header.Height == 1 }
func (mb *Microblock) SetGas(gas uint64)           { mb.header.Gas = gas }
func (mb *Microblock) SetGasPrice(gasPrice uint64) { mb.header.GasPrice = gasPrice }

// Fee returns the fee in atomic token units paid for the declared gas.
func (mb *Microblock) Fee() uint64 {
	return mb.header.Gas * mb.header.GasPrice / cmts.GasUnit
}

// AddSection encodes object and appends it as a new section.
func (mb *Microblock) AddSection(typ uint8, object any) (*Section, error) {
	data, err := rlp.EncodeToBytes(object)
	if err != nil {
		return nil, errors.Wrapf(err, "encode section %d", typ)
	}
	s := &Section{
		Type:   typ,
		Object: object,
		Data:   data,
		Hash:   cmts.Sha256(data),
		Index:  len(mb.sections),
	}
	mb.sections = append(mb.sections, s)
	return s, nil
}

// BodyData returns the encoded sections.
func (mb *Microblock) BodyData() ([]byte, error) {
	body := make([]wireSection, 0, len(mb.sections))
	for _, s := range mb.sections {
		body = append(body, wireSection{s.Type, s.Data})
	}
	return rlp.EncodeToBytes(body)
}

// ComputeGas returns the gas due for the current sections plus extraBytes of sections yet to be added.
func (mb *Microblock) ComputeGas(extraBytes int) uint64 {
	size := uint64(extraBytes)
	for _, s := range mb.sections {
		size += uint64(len(s.Data))
	}
	return cmts.FixedGasFee + cmts.GasPerByte*size
}

// Serialized is the wire form of a microblock.
type Serialized struct {
	Hash       cmts.Bytes32
	HeaderData []byte
	BodyHash   cmts.Bytes32
	BodyData   []byte
}

// Transaction returns the raw transaction bytes, the header followed by the body.
func (s *Serialized) Transaction() []byte {
	return append(append(make([]byte, 0, len(s.HeaderData)+len(s.BodyData)), s.HeaderData...), s.BodyData...)
}

// Serialize sets the body hash and encodes the microblock.
func (mb *Microblock) Serialize() (*Serialized, error) {
	bodyData, err := mb.BodyData()
	if err != nil {
		return nil, err
	}
	mb.header.BodyHash = cmts.Sha256(bodyData)

	headerData, err := mb.header.Encode()
	if err != nil {
		return nil, err
	}
	return &Serialized{
		Hash:       cmts.Sha256(headerData),
		HeaderData: headerData,
		BodyHash:   mb.header.BodyHash,
		BodyData:   bodyData,
	}, nil
}
