// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/test/testvb"
	"github.com/cmts-dev/carmentis-node/vb"
)

func TestValidatorNode(t *testing.T) {
	c := newChain(t)
	orgKey := testvb.NewKey()
	org := c.CreateOrganization(orgKey)

	_, err := c.Import(c.Finalize(c.ValidatorNodeGenesis(org.ID()), testvb.NewKey()))
	assert.ErrorContains(t, err, "invalid signature")

	_, err = c.Import(c.Finalize(c.ValidatorNodeGenesis(cmts.Bytes32{1}), orgKey))
	assert.ErrorContains(t, err, "organization")

	node, err := c.Import(c.Finalize(c.ValidatorNodeGenesis(org.ID()), orgKey))
	require.NoError(t, err)

	mb := c.Next(node)
	testvb.Add(mb, uint8(vb.ValidatorNodeRPCEndpoint), &vb.RPCEndpoint{Endpoint: "https://node.example.org"})
	testvb.Add(mb, uint8(vb.ValidatorNodeVotingPowerUpdate), &vb.VotingPowerUpdate{VotingPower: 10})
	node, err = c.Import(c.Finalize(mb, orgKey))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), node.Height())

	mb = c.Next(node)
	testvb.Add(mb, uint8(vb.ValidatorNodeDescriptionSection), &vb.ValidatorNodeDescription{CometPublicKeyType: "tendermint/PubKeyEd25519"})
	_, err = c.Import(c.Finalize(mb, orgKey))
	assert.ErrorContains(t, err, "incomplete consensus key")

	mb = c.Next(node)
	_, err = c.Import(c.Finalize(mb, orgKey))
	var se *vb.StructureError
	assert.ErrorAs(t, err, &se)
}

func TestApplication(t *testing.T) {
	c := newChain(t)
	orgKey := testvb.NewKey()
	org := c.CreateOrganization(orgKey)

	_, err := c.Import(c.Finalize(c.ApplicationGenesis(cmts.Bytes32{1}), orgKey))
	assert.ErrorContains(t, err, "organization")

	acc := c.CreateAccount(testvb.NewKey())
	_, err = c.Import(c.Finalize(c.ApplicationGenesis(acc.ID()), orgKey))
	assert.Error(t, err)

	app, err := c.Import(c.Finalize(c.ApplicationGenesis(org.ID()), orgKey))
	require.NoError(t, err)

	mb := c.Next(app)
	testvb.Add(mb, uint8(vb.ApplicationDescriptionSection), &vb.ApplicationDescription{Name: "v2"})
	app, err = c.Import(c.Finalize(mb, orgKey))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), app.Height())

	mb = c.Next(app)
	testvb.Add(mb, uint8(vb.ApplicationDescriptionSection), &vb.ApplicationDescription{})
	_, err = c.Import(c.Finalize(mb, orgKey))
	assert.ErrorContains(t, err, "empty name")
}

func TestApplicationLedger(t *testing.T) {
	c := newChain(t)
	orgKey := testvb.NewKey()
	org := c.CreateOrganization(orgKey)
	app := c.CreateApplication(org.ID(), orgKey)
	author := testvb.NewKey()

	_, err := c.Import(c.Finalize(c.LedgerGenesis(app.ID(), author), testvb.NewKey()))
	assert.ErrorContains(t, err, "invalid signature")

	_, err = c.Import(c.Finalize(c.LedgerGenesis(org.ID(), author), author))
	assert.ErrorContains(t, err, "application")

	ledger, err := c.Import(c.Finalize(c.LedgerGenesis(app.ID(), author), author))
	require.NoError(t, err)

	guest := testvb.NewKey()
	mb := c.Next(ledger)
	testvb.Add(mb, uint8(vb.LedgerActorCreation), &vb.ActorCreation{ID: 1, Name: "guest"})
	testvb.Add(mb, uint8(vb.LedgerActorSubscription), &vb.ActorSubscription{ActorID: 1, AlgorithmID: vb.Secp256k1, PublicKey: guest.Pub})
	testvb.Add(mb, uint8(vb.LedgerChannelCreation), &vb.ChannelCreation{ID: 1, IsPrivate: true, CreatorID: 1, Name: "secret"})
	testvb.Add(mb, uint8(vb.LedgerPrivateChannelData), &vb.PrivateChannelData{ChannelID: 1, MerkleRoot: cmts.Bytes32{9}, EncryptedData: []byte{1, 2, 3}})
	testvb.Add(mb, uint8(vb.LedgerAuthor), &vb.Author{AuthorID: 1})
	ledger, err = c.Import(c.Finalize(mb, guest))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), ledger.Height())

	tests := []struct {
		name     string
		sections []any
		types    []vb.LedgerSection
		authorID uint64
		key      *testvb.Key
		wantErr  string
	}{
		{
			"actor id out of sequence",
			[]any{&vb.ActorCreation{ID: 5, Name: "late"}},
			[]vb.LedgerSection{vb.LedgerActorCreation}, 0, author, "actor id 5, want 2",
		},
		{
			"duplicate actor",
			[]any{&vb.ActorCreation{ID: 2, Name: "guest"}},
			[]vb.LedgerSection{vb.LedgerActorCreation}, 0, author, "already exists",
		},
		{
			"unknown channel creator",
			[]any{&vb.ChannelCreation{ID: 2, CreatorID: 7, Name: "orphan"}},
			[]vb.LedgerSection{vb.LedgerChannelCreation}, 0, author, "channel creator",
		},
		{
			"public data on private channel",
			[]any{&vb.PublicChannelData{ChannelID: 1, Data: []byte("leak")}},
			[]vb.LedgerSection{vb.LedgerPublicChannelData}, 0, author, "public data on private channel",
		},
		{
			"private data on public channel",
			[]any{&vb.PrivateChannelData{ChannelID: 0}},
			[]vb.LedgerSection{vb.LedgerPrivateChannelData}, 0, author, "private data on public channel",
		},
		{
			"unknown channel",
			[]any{&vb.PublicChannelData{ChannelID: 3}},
			[]vb.LedgerSection{vb.LedgerPublicChannelData}, 0, author, "unknown channel 3",
		},
		{
			"already subscribed",
			[]any{&vb.ActorSubscription{ActorID: 1, AlgorithmID: vb.Secp256k1, PublicKey: author.Pub}},
			[]vb.LedgerSection{vb.LedgerActorSubscription}, 0, author, "already subscribed",
		},
		{
			"author not subscribed",
			[]any{&vb.ActorCreation{ID: 2, Name: "mute"}},
			[]vb.LedgerSection{vb.LedgerActorCreation}, 2, author, "is not subscribed",
		},
		{
			"signed by another actor",
			[]any{&vb.PublicChannelData{ChannelID: 0, Data: []byte("x")}},
			[]vb.LedgerSection{vb.LedgerPublicChannelData}, 1, author, "invalid signature",
		},
		{
			"valid",
			[]any{&vb.PublicChannelData{ChannelID: 0, Data: []byte("x")}},
			[]vb.LedgerSection{vb.LedgerPublicChannelData}, 1, guest, "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mb := c.Next(ledger)
			for i, p := range tt.sections {
				testvb.Add(mb, uint8(tt.types[i]), p)
			}
			testvb.Add(mb, uint8(vb.LedgerAuthor), &vb.Author{AuthorID: tt.authorID})
			_, err := c.Import(c.Finalize(mb, tt.key))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
