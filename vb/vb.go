// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vb implements virtual blockchains: per-entity hash chains of microblocks
// whose sections are checked against per-type rules and applied to a typed state.
package vb

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/microblock"
	"github.com/cmts-dev/carmentis-node/provider"
)

// Reader is the read access to stored data needed to load and import into virtual blockchains.
// Getters return nil for unknown entries.
type Reader interface {
	GetMicroblockInformation(hash cmts.Bytes32) (*provider.MicroblockInformation, error)
	GetVirtualBlockchainState(id cmts.Bytes32) (*provider.VBState, error)
	GetMicroblock(hash cmts.Bytes32) (*microblock.Microblock, error)
}

// variant is the type specific part of a virtual blockchain.
// It owns the state, and dispatches each kind of section.
type variant interface {
	rules(first bool) []Item
	sectionName(typ uint8) string
	// newPayload returns the object to decode a section of the given type into.
	newPayload(typ uint8) (any, error)
	apply(v *VirtualBlockchain, s *microblock.Section) error
	// state returns the pointer to the persisted state.
	state() any
	// reset drops what was collected from the previous microblock.
	reset()
}

func newVariant(typ cmts.VBType) (variant, error) {
	switch typ {
	case cmts.AccountVB:
		return &account{}, nil
	case cmts.ValidatorNodeVB:
		return &validatorNode{}, nil
	case cmts.OrganizationVB:
		return &organization{}, nil
	case cmts.ApplicationVB:
		return &application{}, nil
	case cmts.ApplicationLedgerVB:
		return &applicationLedger{}, nil
	}
	return nil, errors.Errorf("invalid virtual blockchain type %v", typ)
}

// SignatureSectionType returns the section type closing the microblocks of typ.
func SignatureSectionType(typ cmts.VBType) uint8 {
	switch typ {
	case cmts.AccountVB:
		return uint8(AccountSignature)
	case cmts.ValidatorNodeVB:
		return uint8(ValidatorNodeSignature)
	case cmts.OrganizationVB:
		return uint8(OrganizationSignature)
	case cmts.ApplicationVB:
		return uint8(ApplicationSignature)
	default:
		return uint8(LedgerAuthorSignature)
	}
}

// DecodeSection decodes the payload of a section of a microblock of type typ into s.Object.
func DecodeSection(typ cmts.VBType, s *microblock.Section) error {
	vr, err := newVariant(typ)
	if err != nil {
		return err
	}
	payload, err := vr.newPayload(s.Type)
	if err != nil {
		return err
	}
	return s.Decode(payload)
}

// SectionName returns the name of a section type of typ.
func SectionName(typ cmts.VBType, sectionType uint8) string {
	vr, err := newVariant(typ)
	if err != nil {
		return fmt.Sprintf("section(%d)", sectionType)
	}
	return vr.sectionName(sectionType)
}

// VirtualBlockchain is one entity chain. It's not safe for concurrent use.
type VirtualBlockchain struct {
	reader   Reader
	id       cmts.Bytes32
	typ      cmts.VBType
	height   uint64
	lastHash cmts.Bytes32
	hashes   []cmts.Bytes32 // recovered on demand, hashes[i] is the hash at height i+1
	variant  variant
	current  *microblock.Microblock
}

// New creates an empty virtual blockchain of the given type.
func New(reader Reader, typ cmts.VBType) (*VirtualBlockchain, error) {
	vr, err := newVariant(typ)
	if err != nil {
		return nil, err
	}
	return &VirtualBlockchain{reader: reader, typ: typ, variant: vr}, nil
}

// Load restores the virtual blockchain from its stored state.
func (v *VirtualBlockchain) Load(id cmts.Bytes32) error {
	st, err := v.reader.GetVirtualBlockchainState(id)
	if err != nil {
		return err
	}
	if st == nil {
		return errors.Errorf("unknown virtual blockchain %v", id)
	}
	if st.Type != v.typ {
		return errors.Errorf("virtual blockchain %v is a %v, not a %v", id, st.Type, v.typ)
	}
	if err := rlp.DecodeBytes(st.Custom, v.variant.state()); err != nil {
		return errors.Wrapf(err, "decode state of %v", id)
	}
	v.id = id
	v.height = st.Height
	v.lastHash = st.LastHash
	v.hashes = nil
	return nil
}

// load loads another virtual blockchain, which must be of the given type.
func (v *VirtualBlockchain) load(id cmts.Bytes32, typ cmts.VBType) (*VirtualBlockchain, error) {
	other, err := New(v.reader, typ)
	if err != nil {
		return nil, err
	}
	if err := other.Load(id); err != nil {
		return nil, err
	}
	return other, nil
}

func (v *VirtualBlockchain) ID() cmts.Bytes32       { return v.id }
func (v *VirtualBlockchain) Type() cmts.VBType      { return v.typ }
func (v *VirtualBlockchain) Height() uint64         { return v.height }
func (v *VirtualBlockchain) LastHash() cmts.Bytes32 { return v.lastHash }

// IsFirstBlock reports whether the microblock being imported is the genesis.
func (v *VirtualBlockchain) IsFirstBlock() bool {
	return v.height == 0
}

// StateData returns the encoded state of the variant.
func (v *VirtualBlockchain) StateData() ([]byte, error) {
	return rlp.EncodeToBytes(v.variant.state())
}

// MicroblockHash returns the hash of the microblock at height.
// The hash list is recovered by walking back from the last hash.
func (v *VirtualBlockchain) MicroblockHash(height uint64) (cmts.Bytes32, error) {
	if height == 0 || height > v.height {
		return cmts.Bytes32{}, errors.Errorf("height %d out of range [1, %d]", height, v.height)
	}
	if uint64(len(v.hashes)) != v.height {
		hashes := make([]cmts.Bytes32, v.height)
		hash := v.lastHash
		for h := v.height; ; h-- {
			hashes[h-1] = hash
			if h == 1 {
				break
			}
			info, err := v.reader.GetMicroblockInformation(hash)
			if err != nil {
				return cmts.Bytes32{}, err
			}
			if info == nil {
				return cmts.Bytes32{}, errors.Errorf("missing microblock %v of %v", hash, v.id)
			}
			header, err := info.Header()
			if err != nil {
				return cmts.Bytes32{}, err
			}
			hash = header.PreviousHash
		}
		v.hashes = hashes
	}
	return v.hashes[height-1], nil
}

// microblockAt returns the microblock at height, which may be the one being imported.
func (v *VirtualBlockchain) microblockAt(height uint64) (*microblock.Microblock, error) {
	if v.current != nil && height == v.current.Height() {
		return v.current, nil
	}
	hash, err := v.MicroblockHash(height)
	if err != nil {
		return nil, err
	}
	mb, err := v.reader.GetMicroblock(hash)
	if err != nil {
		return nil, err
	}
	if mb == nil {
		return nil, errors.Errorf("missing microblock %v of %v", hash, v.id)
	}
	return mb, nil
}

func (v *VirtualBlockchain) checkStructure(mb *microblock.Microblock) error {
	return NewStructureChecker(v.variant.rules(v.IsFirstBlock()), v.variant.sectionName).Check(mb.Sections())
}

// ImportMicroblock checks the structure of mb, applies its sections in order, then
// advances the height. hash is the hash of mb, and becomes the identifier of a new
// virtual blockchain at genesis. On error the virtual blockchain must be dropped.
func (v *VirtualBlockchain) ImportMicroblock(mb *microblock.Microblock, hash cmts.Bytes32) error {
	if mb.Type() != v.typ {
		return errors.Errorf("microblock of a %v imported into a %v", mb.Type(), v.typ)
	}
	if mb.Height() != v.height+1 {
		return errors.Errorf("microblock height %d, want %d", mb.Height(), v.height+1)
	}
	if !v.IsFirstBlock() && mb.PreviousHash() != v.lastHash {
		return errors.Errorf("previous hash %v doesn't match the last hash %v", mb.PreviousHash(), v.lastHash)
	}
	if err := v.checkStructure(mb); err != nil {
		return err
	}

	v.current = mb
	defer func() { v.current = nil }()
	v.variant.reset()

	if v.IsFirstBlock() {
		v.id = hash
	}
	for _, s := range mb.Sections() {
		payload, err := v.variant.newPayload(s.Type)
		if err != nil {
			return err
		}
		if err := s.Decode(payload); err != nil {
			return err
		}
		if err := v.variant.apply(v, s); err != nil {
			return errors.Wrapf(err, "%s section %d", v.variant.sectionName(s.Type), s.Index)
		}
	}

	if uint64(len(v.hashes)) == v.height {
		v.hashes = append(v.hashes, hash)
	}
	v.height++
	v.lastHash = hash
	return nil
}
