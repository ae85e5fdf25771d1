// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vb

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/microblock"
)

// Signature algorithms.
const (
	Secp256k1 uint8 = 0
)

// SignatureAlgorithm declares the algorithm of the keys of an entity.
type SignatureAlgorithm struct {
	AlgorithmID uint8
}

// PublicKey declares the current public key of an entity.
type PublicKey struct {
	PublicKey []byte
}

// Signature signs all the sections before it.
type Signature struct {
	Signature []byte
}

// NewSignature builds the signature payload, for microblock.Finalize.
func NewSignature(sig []byte) any {
	return &Signature{Signature: sig}
}

// keyState is the key bookkeeping of entities owning a key pair.
type keyState struct {
	SignatureAlgorithmID uint8
	PublicKeyHeight      uint64
}

func checkAlgorithm(id uint8) error {
	if id != Secp256k1 {
		return errors.Errorf("unsupported signature algorithm %d", id)
	}
	return nil
}

// checkPublicKey accepts compressed secp256k1 keys only.
func checkPublicKey(pub []byte) error {
	if len(pub) != secp256k1.PubKeyBytesLenCompressed {
		return errors.Errorf("invalid public key length %d", len(pub))
	}
	if _, err := secp256k1.ParsePubKey(pub); err != nil {
		return errors.Wrap(err, "invalid public key")
	}
	return nil
}

// publicKeyAt re-reads the public key declared by the microblock at height.
func (v *VirtualBlockchain) publicKeyAt(height uint64, keyType uint8) ([]byte, error) {
	if height == 0 {
		return nil, errors.New("no public key declared")
	}
	mb, err := v.microblockAt(height)
	if err != nil {
		return nil, err
	}
	for _, s := range mb.Sections() {
		if s.Type == keyType {
			var pk PublicKey
			if err := s.Decode(&pk); err != nil {
				return nil, err
			}
			return pk.PublicKey, nil
		}
	}
	return nil, errors.Errorf("no public key in microblock at height %d", height)
}

// verifySignature checks the signature section s of the current microblock,
// which covers all the sections before it, gas included.
func (v *VirtualBlockchain) verifySignature(s *microblock.Section, pub []byte) error {
	sig := s.Object.(*Signature)
	if !v.current.VerifySignature(pub, sig.Signature, true, s.Index) {
		return errors.New("invalid signature")
	}
	return nil
}

// organizationKey returns the current public key of an organization.
func (v *VirtualBlockchain) organizationKey(orgID cmts.Bytes32) ([]byte, error) {
	org, err := v.load(orgID, cmts.OrganizationVB)
	if err != nil {
		return nil, err
	}
	return org.publicKeyAt(org.variant.(*organization).st.Key.PublicKeyHeight, uint8(OrganizationPublicKey))
}
