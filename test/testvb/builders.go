// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testvb

import (
	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/microblock"
	"github.com/cmts-dev/carmentis-node/vb"
)

// OrganizationGenesis returns the unsigned genesis of an organization owning key.
func (c *Chain) OrganizationGenesis(key *Key) *microblock.Microblock {
	mb := c.Genesis(cmts.OrganizationVB)
	Add(mb, uint8(vb.OrganizationSignatureAlgorithm), &vb.SignatureAlgorithm{AlgorithmID: vb.Secp256k1})
	Add(mb, uint8(vb.OrganizationPublicKey), &vb.PublicKey{PublicKey: key.Pub})
	Add(mb, uint8(vb.OrganizationDescriptionSection), &vb.OrganizationDescription{
		Name:        "Carmentis",
		City:        "Paris",
		CountryCode: "FR",
		Website:     "https://carmentis.io",
	})
	return mb
}

// AccountGenesis returns the unsigned genesis of an account owning key.
// A non-zero issuance adds a token issuance section.
func (c *Chain) AccountGenesis(key *Key, issuance uint64) *microblock.Microblock {
	mb := c.Genesis(cmts.AccountVB)
	Add(mb, uint8(vb.AccountSignatureAlgorithm), &vb.SignatureAlgorithm{AlgorithmID: vb.Secp256k1})
	Add(mb, uint8(vb.AccountPublicKey), &vb.PublicKey{PublicKey: key.Pub})
	if issuance > 0 {
		Add(mb, uint8(vb.AccountTokenIssuance), &vb.TokenIssuance{Amount: issuance})
	}
	return mb
}

// ValidatorNodeGenesis returns the unsigned genesis of a validator node of an organization.
func (c *Chain) ValidatorNodeGenesis(orgID cmts.Bytes32) *microblock.Microblock {
	mb := c.Genesis(cmts.ValidatorNodeVB)
	Add(mb, uint8(vb.ValidatorNodeDeclarationSection), &vb.ValidatorNodeDeclaration{OrganizationID: orgID})
	Add(mb, uint8(vb.ValidatorNodeDescriptionSection), &vb.ValidatorNodeDescription{
		CometPublicKeyType: "tendermint/PubKeyEd25519",
		CometPublicKey:     "n6OZw4WdBS1Yd2KN3cXPjK4TtY+uGQr1gBXWO0Vymoo=",
	})
	return mb
}

// ApplicationGenesis returns the unsigned genesis of an application of an organization.
func (c *Chain) ApplicationGenesis(orgID cmts.Bytes32) *microblock.Microblock {
	mb := c.Genesis(cmts.ApplicationVB)
	Add(mb, uint8(vb.ApplicationDeclarationSection), &vb.ApplicationDeclaration{OrganizationID: orgID})
	Add(mb, uint8(vb.ApplicationDescriptionSection), &vb.ApplicationDescription{
		Name:        "Proof of concept",
		HomepageURL: "https://example.org",
	})
	return mb
}

// LedgerGenesis returns the unsigned genesis of an application ledger whose
// first actor is the author, subscribed with key, with one public channel.
func (c *Chain) LedgerGenesis(appID cmts.Bytes32, author *Key) *microblock.Microblock {
	mb := c.Genesis(cmts.ApplicationLedgerVB)
	Add(mb, uint8(vb.LedgerDeclarationSection), &vb.LedgerDeclaration{ApplicationID: appID})
	Add(mb, uint8(vb.LedgerActorCreation), &vb.ActorCreation{ID: 0, Name: "author"})
	Add(mb, uint8(vb.LedgerActorSubscription), &vb.ActorSubscription{ActorID: 0, AlgorithmID: vb.Secp256k1, PublicKey: author.Pub})
	Add(mb, uint8(vb.LedgerChannelCreation), &vb.ChannelCreation{ID: 0, CreatorID: 0, Name: "main"})
	Add(mb, uint8(vb.LedgerPublicChannelData), &vb.PublicChannelData{ChannelID: 0, Data: []byte("hello")})
	Add(mb, uint8(vb.LedgerAuthor), &vb.Author{AuthorID: 0})
	return mb
}

// CreateOrganization imports a new organization owning key.
func (c *Chain) CreateOrganization(key *Key) *vb.VirtualBlockchain {
	return c.MustImport(c.Finalize(c.OrganizationGenesis(key), key))
}

// CreateAccount imports a new account owning key, without issuance.
func (c *Chain) CreateAccount(key *Key) *vb.VirtualBlockchain {
	return c.MustImport(c.Finalize(c.AccountGenesis(key, 0), key))
}

// CreateApplication imports a new application of the organization owned by orgKey.
func (c *Chain) CreateApplication(orgID cmts.Bytes32, orgKey *Key) *vb.VirtualBlockchain {
	return c.MustImport(c.Finalize(c.ApplicationGenesis(orgID), orgKey))
}
