// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package provider gives typed access to stored microblocks and virtual blockchain states.
package provider

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/microblock"
)

// MicroblockInformation is the record kept for each stored microblock.
type MicroblockInformation struct {
	VBID       cmts.Bytes32
	VBType     cmts.VBType
	Height     uint64
	HeaderData []byte
}

// Header decodes the header of the microblock.
func (info *MicroblockInformation) Header() (*microblock.Header, error) {
	return microblock.DecodeHeader(info.HeaderData)
}

// VBState is the stored state of a virtual blockchain.
type VBState struct {
	Type     cmts.VBType
	Height   uint64
	LastHash cmts.Bytes32
	Custom   []byte // rlp encoded state of the variant
}

// Provider reads and writes microblocks and states through a backend.
type Provider struct {
	backend Backend
}

// New creates a provider.
func New(backend Backend) *Provider {
	return &Provider{backend: backend}
}

// GetMicroblockInformation returns nil if the microblock is unknown.
func (p *Provider) GetMicroblockInformation(hash cmts.Bytes32) (*MicroblockInformation, error) {
	data, err := p.backend.GetMicroblockInformation(hash)
	if err != nil || data == nil {
		return nil, err
	}
	var info MicroblockInformation
	if err := rlp.DecodeBytes(data, &info); err != nil {
		return nil, errors.Wrapf(err, "decode microblock information %v", hash)
	}
	return &info, nil
}

// GetMicroblockBody returns nil if the microblock is unknown.
func (p *Provider) GetMicroblockBody(hash cmts.Bytes32) ([]byte, error) {
	return p.backend.GetMicroblockBody(hash)
}

// GetVirtualBlockchainState returns nil if the virtual blockchain is unknown.
func (p *Provider) GetVirtualBlockchainState(id cmts.Bytes32) (*VBState, error) {
	data, err := p.backend.GetVirtualBlockchainState(id)
	if err != nil || data == nil {
		return nil, err
	}
	var state VBState
	if err := rlp.DecodeBytes(data, &state); err != nil {
		return nil, errors.Wrapf(err, "decode state of %v", id)
	}
	return &state, nil
}

// EncodeVBState returns the stored form of a state, the blob committed into the radix tree.
func EncodeVBState(state *VBState) ([]byte, error) {
	return rlp.EncodeToBytes(state)
}

// StoreMicroblock saves the information record and the body of a microblock.
func (p *Provider) StoreMicroblock(hash, vbID cmts.Bytes32, vbType cmts.VBType, height uint64, headerData, bodyData []byte) error {
	info, err := rlp.EncodeToBytes(&MicroblockInformation{
		VBID:       vbID,
		VBType:     vbType,
		Height:     height,
		HeaderData: headerData,
	})
	if err != nil {
		return err
	}
	if err := p.backend.SetMicroblockInformation(hash, info); err != nil {
		return err
	}
	return p.backend.SetMicroblockBody(hash, bodyData)
}

// UpdateVirtualBlockchainState saves the state of a virtual blockchain and returns the stored blob.
func (p *Provider) UpdateVirtualBlockchainState(vbID cmts.Bytes32, vbType cmts.VBType, height uint64, lastHash cmts.Bytes32, custom []byte) ([]byte, error) {
	data, err := EncodeVBState(&VBState{
		Type:     vbType,
		Height:   height,
		LastHash: lastHash,
		Custom:   custom,
	})
	if err != nil {
		return nil, err
	}
	if err := p.backend.SetVirtualBlockchainState(vbID, data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetMicroblock loads and decodes a stored microblock. It returns nil if unknown.
func (p *Provider) GetMicroblock(hash cmts.Bytes32) (*microblock.Microblock, error) {
	info, err := p.GetMicroblockInformation(hash)
	if err != nil || info == nil {
		return nil, err
	}
	body, err := p.GetMicroblockBody(hash)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.Errorf("missing body of microblock %v", hash)
	}
	return microblock.Decode(info.VBType, info.HeaderData, body)
}
