// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/microblock"
	"github.com/cmts-dev/carmentis-node/test/testvb"
	"github.com/cmts-dev/carmentis-node/vb"
)

const now = 1_700_000_000

func newChain(t *testing.T) *testvb.Chain {
	c := testvb.NewChain(now)
	t.Cleanup(c.Close)
	return c
}

func reload(t *testing.T, c *testvb.Chain, v *vb.VirtualBlockchain) *vb.VirtualBlockchain {
	loaded, err := vb.New(c.Provider, v.Type())
	require.NoError(t, err)
	require.NoError(t, loaded.Load(v.ID()))
	return loaded
}

func TestNewInvalidType(t *testing.T) {
	_, err := vb.New(nil, cmts.VBType(9))
	assert.Error(t, err)
}

func TestOrganization(t *testing.T) {
	c := newChain(t)
	key := testvb.NewKey()

	s := c.Finalize(c.OrganizationGenesis(key), key)
	org, err := c.Import(s)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), org.Height())
	assert.Equal(t, s.Hash, org.ID())
	assert.Equal(t, s.Hash, org.LastHash())

	org = reload(t, c, org)
	assert.Equal(t, uint64(1), org.Height())

	t.Run("description update", func(t *testing.T) {
		mb := c.Next(org)
		testvb.Add(mb, uint8(vb.OrganizationDescriptionSection), &vb.OrganizationDescription{Name: "Renamed"})
		s := c.Finalize(mb, key)
		updated, err := c.Import(s)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), updated.Height())
		assert.Equal(t, org.ID(), updated.ID())
		org = updated
	})

	t.Run("signed by another key", func(t *testing.T) {
		mb := c.Next(org)
		testvb.Add(mb, uint8(vb.OrganizationDescriptionSection), &vb.OrganizationDescription{Name: "Stolen"})
		_, err := c.Import(c.Finalize(mb, testvb.NewKey()))
		assert.ErrorContains(t, err, "invalid signature")
	})

	t.Run("key rotation", func(t *testing.T) {
		rotated := testvb.NewKey()
		mb := c.Next(org)
		testvb.Add(mb, uint8(vb.OrganizationPublicKey), &vb.PublicKey{PublicKey: rotated.Pub})
		updated, err := c.Import(c.Finalize(mb, rotated))
		require.NoError(t, err)
		org = updated

		mb = c.Next(org)
		testvb.Add(mb, uint8(vb.OrganizationDescriptionSection), &vb.OrganizationDescription{Name: "Old key"})
		_, err = c.Import(c.Finalize(mb, key))
		assert.ErrorContains(t, err, "invalid signature")

		mb = c.Next(org)
		testvb.Add(mb, uint8(vb.OrganizationDescriptionSection), &vb.OrganizationDescription{Name: "New key"})
		_, err = c.Import(c.Finalize(mb, rotated))
		assert.NoError(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		mb := c.Genesis(cmts.OrganizationVB)
		testvb.Add(mb, uint8(vb.OrganizationSignatureAlgorithm), &vb.SignatureAlgorithm{AlgorithmID: vb.Secp256k1})
		testvb.Add(mb, uint8(vb.OrganizationPublicKey), &vb.PublicKey{PublicKey: key.Pub})
		testvb.Add(mb, uint8(vb.OrganizationDescriptionSection), &vb.OrganizationDescription{})
		_, err := c.Import(c.Finalize(mb, key))
		assert.ErrorContains(t, err, "empty name")
	})
}

func TestMicroblockHash(t *testing.T) {
	c := newChain(t)
	key := testvb.NewKey()
	org := c.CreateOrganization(key)
	hashes := []cmts.Bytes32{org.LastHash()}
	for i := range 3 {
		mb := c.Next(org)
		testvb.Add(mb, uint8(vb.OrganizationDescriptionSection), &vb.OrganizationDescription{Name: string(rune('a' + i))})
		org = c.MustImport(c.Finalize(mb, key))
		hashes = append(hashes, org.LastHash())
	}

	org = reload(t, c, org)
	for i, want := range hashes {
		got, err := org.MicroblockHash(uint64(i + 1))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := org.MicroblockHash(0)
	assert.Error(t, err)
	_, err = org.MicroblockHash(5)
	assert.Error(t, err)
}

func TestImportMicroblockChaining(t *testing.T) {
	c := newChain(t)
	key := testvb.NewKey()
	org := reload(t, c, c.CreateOrganization(key))

	t.Run("height mismatch", func(t *testing.T) {
		mb, err := microblock.New(cmts.OrganizationVB, 3, org.LastHash(), now)
		require.NoError(t, err)
		assert.ErrorContains(t, org.ImportMicroblock(mb, cmts.Bytes32{1}), "microblock height 3, want 2")
	})
	t.Run("previous hash mismatch", func(t *testing.T) {
		mb, err := microblock.New(cmts.OrganizationVB, 2, cmts.Bytes32{1}, now)
		require.NoError(t, err)
		assert.ErrorContains(t, org.ImportMicroblock(mb, cmts.Bytes32{2}), "doesn't match the last hash")
	})
	t.Run("type mismatch", func(t *testing.T) {
		mb, err := microblock.New(cmts.AccountVB, 2, org.LastHash(), now)
		require.NoError(t, err)
		assert.ErrorContains(t, org.ImportMicroblock(mb, cmts.Bytes32{3}), "imported into a")
	})
	t.Run("load of another type", func(t *testing.T) {
		acc, err := vb.New(c.Provider, cmts.AccountVB)
		require.NoError(t, err)
		assert.Error(t, acc.Load(org.ID()))
	})
	t.Run("load of unknown", func(t *testing.T) {
		acc, err := vb.New(c.Provider, cmts.AccountVB)
		require.NoError(t, err)
		assert.ErrorContains(t, acc.Load(cmts.Bytes32{4}), "unknown virtual blockchain")
	})
}

func TestStructureRejected(t *testing.T) {
	c := newChain(t)
	key := testvb.NewKey()

	mb := c.AccountGenesis(key, 0)
	s, err := mb.Serialize()
	require.NoError(t, err)
	_, err = c.Import(s)
	var se *vb.StructureError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Message, "signature")

	mb = c.AccountGenesis(key, 0)
	testvb.Add(mb, uint8(vb.AccountPublicKey), &vb.PublicKey{PublicKey: key.Pub})
	_, err = c.Import(c.Finalize(mb, key))
	assert.ErrorAs(t, err, &se)
}

func TestSignatureSectionType(t *testing.T) {
	assert.Equal(t, uint8(vb.AccountSignature), vb.SignatureSectionType(cmts.AccountVB))
	assert.Equal(t, uint8(vb.ValidatorNodeSignature), vb.SignatureSectionType(cmts.ValidatorNodeVB))
	assert.Equal(t, uint8(vb.OrganizationSignature), vb.SignatureSectionType(cmts.OrganizationVB))
	assert.Equal(t, uint8(vb.ApplicationSignature), vb.SignatureSectionType(cmts.ApplicationVB))
	assert.Equal(t, uint8(vb.LedgerAuthorSignature), vb.SignatureSectionType(cmts.ApplicationLedgerVB))
}

func TestDecodeSection(t *testing.T) {
	c := newChain(t)
	key := testvb.NewKey()
	s := c.Finalize(c.OrganizationGenesis(key), key)

	mb, err := microblock.Decode(cmts.OrganizationVB, s.HeaderData, s.BodyData)
	require.NoError(t, err)
	desc := mb.Section(2)
	require.NoError(t, vb.DecodeSection(cmts.OrganizationVB, desc))
	assert.Equal(t, "Carmentis", desc.Object.(*vb.OrganizationDescription).Name)
	assert.Equal(t, "description", vb.SectionName(cmts.OrganizationVB, desc.Type))
	assert.Equal(t, "organization section(9)", vb.SectionName(cmts.OrganizationVB, 9))

	assert.Error(t, vb.DecodeSection(cmts.OrganizationVB, &microblock.Section{Type: 9}))
}
