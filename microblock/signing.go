// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package microblock

import (
	"crypto/ecdsa"
	"io"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/cmts-dev/carmentis-node/cmts"
)

// SignatureLength is the length of a [R || S] signature.
const SignatureLength = 64

// SigningHash returns the hash signed by the author: the header up to the body hash,
// followed by the hashes of the first sectionCount sections.
// Gas and gas price are zeroed unless includeGas is set, so that a signature can be
// made before the gas is known.
func (mb *Microblock) SigningHash(includeGas bool, sectionCount int) (cmts.Bytes32, error) {
	if sectionCount < 0 || sectionCount > len(mb.sections) {
		return cmts.Bytes32{}, errors.Errorf("section count %d out of range [0, %d]", sectionCount, len(mb.sections))
	}
	header := mb.header
	if !includeGas {
		header.Gas, header.GasPrice = 0, 0
	}
	data, err := header.Encode()
	if err != nil {
		return cmts.Bytes32{}, err
	}
	return cmts.Sha256Fn(func(w io.Writer) {
		w.Write(data[:signedHeaderSize])
		for _, s := range mb.sections[:sectionCount] {
			w.Write(s.Hash[:])
		}
	}), nil
}

// CreateSignature signs the microblock over all its current sections.
func (mb *Microblock) CreateSignature(priv *ecdsa.PrivateKey, includeGas bool) ([]byte, error) {
	hash, err := mb.SigningHash(includeGas, len(mb.sections))
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(hash[:], priv)
	if err != nil {
		return nil, errors.Wrap(err, "sign microblock")
	}
	// drop the recovery id
	return sig[:SignatureLength], nil
}

// VerifySignature checks sig against the compressed or uncompressed public key pub,
// over the first sectionCount sections.
func (mb *Microblock) VerifySignature(pub, sig []byte, includeGas bool, sectionCount int) bool {
	if len(sig) != SignatureLength {
		return false
	}
	hash, err := mb.SigningHash(includeGas, sectionCount)
	if err != nil {
		return false
	}
	return crypto.VerifySignature(pub, hash[:], sig)
}

// Finalize completes the microblock of an author: gas is computed including the
// signature section to come, the microblock is signed with gas included, then the
// signature section built by newSig is appended and the microblock is serialized.
func (mb *Microblock) Finalize(priv *ecdsa.PrivateKey, gasPrice uint64, sigType uint8, newSig func(sig []byte) any) (*Serialized, error) {
	placeholder, err := rlp.EncodeToBytes(newSig(make([]byte, SignatureLength)))
	if err != nil {
		return nil, errors.Wrap(err, "encode signature section")
	}
	mb.SetGas(mb.ComputeGas(len(placeholder)))
	mb.SetGasPrice(gasPrice)

	sig, err := mb.CreateSignature(priv, true)
	if err != nil {
		return nil, err
	}
	if _, err := mb.AddSection(sigType, newSig(sig)); err != nil {
		return nil, err
	}
	return mb.Serialize()
}

// CompressPubkey returns the 33 bytes compressed form of a public key.
func CompressPubkey(pub *ecdsa.PublicKey) []byte {
	return crypto.CompressPubkey(pub)
}
