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

func TestAccountIssuance(t *testing.T) {
	c := newChain(t)
	key := testvb.NewKey()

	_, err := c.Import(c.Finalize(c.AccountGenesis(key, cmts.InitialOffer-1), key))
	assert.ErrorContains(t, err, "issued amount")

	issuer, err := c.Import(c.Finalize(c.AccountGenesis(key, cmts.InitialOffer), key))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), issuer.Height())
}

func TestAccountCreation(t *testing.T) {
	c := newChain(t)
	sellerKey := testvb.NewKey()
	seller := c.CreateAccount(sellerKey)

	key := testvb.NewKey()
	mb := c.AccountGenesis(key, 0)
	testvb.Add(mb, uint8(vb.AccountCreation), &vb.AccountCreationPayload{SellerAccount: seller.ID(), Amount: cmts.Token})

	// the genesis is signed with the key of the new account, not the seller
	_, err := c.Import(c.Finalize(mb, sellerKey))
	assert.ErrorContains(t, err, "invalid signature")

	mb = c.AccountGenesis(key, 0)
	testvb.Add(mb, uint8(vb.AccountCreation), &vb.AccountCreationPayload{SellerAccount: seller.ID(), Amount: cmts.Token})
	_, err = c.Import(c.Finalize(mb, key))
	assert.NoError(t, err)

	mb = c.AccountGenesis(key, 0)
	testvb.Add(mb, uint8(vb.AccountCreation), &vb.AccountCreationPayload{SellerAccount: cmts.Bytes32{1}, Amount: cmts.Token})
	_, err = c.Import(c.Finalize(mb, key))
	assert.ErrorContains(t, err, "seller account")
}

func TestAccountTransfer(t *testing.T) {
	c := newChain(t)
	key := testvb.NewKey()
	payer := c.CreateAccount(key)
	payee := c.CreateAccount(testvb.NewKey())

	tests := []struct {
		name     string
		transfer vb.Transfer
		wantErr  string
	}{
		{"zero amount", vb.Transfer{Account: payee.ID()}, "zero amount"},
		{"to self", vb.Transfer{Account: payer.ID(), Amount: 1}, "transfer to self"},
		{"unknown payee", vb.Transfer{Account: cmts.Bytes32{1}, Amount: 1}, "payee account"},
		{"valid", vb.Transfer{Account: payee.ID(), Amount: 5 * cmts.Token, PublicReference: "invoice 42"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mb := c.Next(payer)
			testvb.Add(mb, uint8(vb.AccountTransfer), &tt.transfer)
			v, err := c.Import(c.Finalize(mb, key))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(2), v.Height())
		})
	}
}

func TestAccountInvalidKey(t *testing.T) {
	c := newChain(t)
	key := testvb.NewKey()

	mb := c.Genesis(cmts.AccountVB)
	testvb.Add(mb, uint8(vb.AccountSignatureAlgorithm), &vb.SignatureAlgorithm{AlgorithmID: 7})
	testvb.Add(mb, uint8(vb.AccountPublicKey), &vb.PublicKey{PublicKey: key.Pub})
	_, err := c.Import(c.Finalize(mb, key))
	assert.ErrorContains(t, err, "unsupported signature algorithm")

	mb = c.Genesis(cmts.AccountVB)
	testvb.Add(mb, uint8(vb.AccountSignatureAlgorithm), &vb.SignatureAlgorithm{AlgorithmID: vb.Secp256k1})
	testvb.Add(mb, uint8(vb.AccountPublicKey), &vb.PublicKey{PublicKey: []byte{2, 1, 2, 3}})
	_, err = c.Import(c.Finalize(mb, key))
	assert.ErrorContains(t, err, "invalid public key")
}
