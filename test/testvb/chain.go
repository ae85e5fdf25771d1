// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testvb builds and imports microblocks of every virtual blockchain type, for tests.
package testvb

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/microblock"
	"github.com/cmts-dev/carmentis-node/muxdb"
	"github.com/cmts-dev/carmentis-node/provider"
	"github.com/cmts-dev/carmentis-node/stage"
	"github.com/cmts-dev/carmentis-node/vb"
)

// Key is a secp256k1 key pair.
type Key struct {
	Priv *ecdsa.PrivateKey
	Pub  []byte // compressed
}

// NewKey generates a key pair.
func NewKey() *Key {
	priv, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return &Key{priv, crypto.CompressPubkey(&priv.PublicKey)}
}

// Chain builds microblocks and imports them into a provider over an in-memory database.
type Chain struct {
	DB       *muxdb.MuxDB
	Stage    *stage.Stage
	Provider *provider.Provider
	Now      uint64
	GasPrice uint64
}

// NewChain creates an empty chain.
func NewChain(now uint64) *Chain {
	db := muxdb.NewMem()
	stg := stage.New(db.Store())
	return &Chain{
		DB:       db,
		Stage:    stg,
		Provider: provider.New(provider.NewKVBackend(stg, 0)),
		Now:      now,
		GasPrice: 1000,
	}
}

// Close closes the database.
func (c *Chain) Close() {
	c.DB.Close()
}

// Add adds a section to mb. It panics on error.
func Add(mb *microblock.Microblock, typ uint8, payload any) *microblock.Microblock {
	if _, err := mb.AddSection(typ, payload); err != nil {
		panic(err)
	}
	return mb
}

// Genesis creates an empty genesis microblock.
func (c *Chain) Genesis(typ cmts.VBType) *microblock.Microblock {
	mb, err := microblock.New(typ, 1, cmts.Bytes32{}, c.Now)
	if err != nil {
		panic(err)
	}
	return mb
}

// Next creates an empty microblock following the last one of v.
func (c *Chain) Next(v *vb.VirtualBlockchain) *microblock.Microblock {
	mb, err := microblock.New(v.Type(), v.Height()+1, v.LastHash(), c.Now)
	if err != nil {
		panic(err)
	}
	return mb
}

// Finalize sets the gas, signs with key and serializes mb.
func (c *Chain) Finalize(mb *microblock.Microblock, key *Key) *microblock.Serialized {
	s, err := mb.Finalize(key.Priv, c.GasPrice, vb.SignatureSectionType(mb.Type()), vb.NewSignature)
	if err != nil {
		panic(err)
	}
	return s
}

// Import imports a serialized microblock into its virtual blockchain, and stores
// the microblock and the new state.
func (c *Chain) Import(s *microblock.Serialized) (*vb.VirtualBlockchain, error) {
	header, err := microblock.DecodeHeader(s.HeaderData)
	if err != nil {
		return nil, err
	}

	var (
		typ  cmts.VBType
		vbID cmts.Bytes32
	)
	if header.Height == 1 {
		typ = cmts.VBType(header.PreviousHash[0])
	} else {
		info, err := c.Provider.GetMicroblockInformation(header.PreviousHash)
		if err != nil {
			return nil, err
		}
		if info == nil {
			return nil, errors.New("unknown previous microblock")
		}
		typ, vbID = info.VBType, info.VBID
	}

	mb, err := microblock.Decode(typ, s.HeaderData, s.BodyData)
	if err != nil {
		return nil, err
	}
	v, err := vb.New(c.Provider, typ)
	if err != nil {
		return nil, err
	}
	if header.Height > 1 {
		if err := v.Load(vbID); err != nil {
			return nil, err
		}
	}
	if err := v.ImportMicroblock(mb, s.Hash); err != nil {
		return nil, err
	}

	if err := c.Provider.StoreMicroblock(s.Hash, v.ID(), typ, v.Height(), s.HeaderData, s.BodyData); err != nil {
		return nil, err
	}
	custom, err := v.StateData()
	if err != nil {
		return nil, err
	}
	if _, err := c.Provider.UpdateVirtualBlockchainState(v.ID(), typ, v.Height(), v.LastHash(), custom); err != nil {
		return nil, err
	}
	return v, nil
}

// MustImport imports s and panics on error.
func (c *Chain) MustImport(s *microblock.Serialized) *vb.VirtualBlockchain {
	v, err := c.Import(s)
	if err != nil {
		panic(err)
	}
	return v
}
