// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vb

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/microblock"
)

// AccountSection is the kind of an account section.
type AccountSection uint8

// Account sections.
const (
	AccountSignatureAlgorithm AccountSection = iota
	AccountPublicKey
	AccountTokenIssuance
	AccountCreation
	AccountTransfer
	AccountSignature
)

var accountSectionNames = [...]string{
	AccountSignatureAlgorithm: "signature algorithm",
	AccountPublicKey:          "public key",
	AccountTokenIssuance:      "token issuance",
	AccountCreation:           "account creation",
	AccountTransfer:           "transfer",
	AccountSignature:          "signature",
}

// TokenIssuance issues the initial offer of tokens, once.
type TokenIssuance struct {
	Amount uint64
}

// AccountCreationPayload creates an account funded by a seller account.
type AccountCreationPayload struct {
	SellerAccount cmts.Bytes32
	Amount        uint64
}

// Transfer moves tokens to another account.
type Transfer struct {
	Account          cmts.Bytes32
	Amount           uint64
	PublicReference  string
	PrivateReference string
}

type account struct {
	st keyState
}

func (a *account) rules(first bool) []Item {
	if first {
		return []Item{
			Single(One, uint8(AccountSignatureAlgorithm)),
			Single(One, uint8(AccountPublicKey)),
			Group(AtMostOne,
				Single(AtMostOne, uint8(AccountTokenIssuance)),
				Single(AtMostOne, uint8(AccountCreation)),
			),
			Single(One, uint8(AccountSignature)),
		}
	}
	return []Item{
		Single(Zero, uint8(AccountSignatureAlgorithm)),
		Single(AtMostOne, uint8(AccountPublicKey)),
		Single(Any, uint8(AccountTransfer)),
		Single(One, uint8(AccountSignature)),
	}
}

func (a *account) sectionName(typ uint8) string {
	if int(typ) < len(accountSectionNames) {
		return accountSectionNames[typ]
	}
	return fmt.Sprintf("account section(%d)", typ)
}

func (a *account) newPayload(typ uint8) (any, error) {
	switch AccountSection(typ) {
	case AccountSignatureAlgorithm:
		return &SignatureAlgorithm{}, nil
	case AccountPublicKey:
		return &PublicKey{}, nil
	case AccountTokenIssuance:
		return &TokenIssuance{}, nil
	case AccountCreation:
		return &AccountCreationPayload{}, nil
	case AccountTransfer:
		return &Transfer{}, nil
	case AccountSignature:
		return &Signature{}, nil
	}
	return nil, errors.Errorf("unknown account section type %d", typ)
}

func (a *account) apply(v *VirtualBlockchain, s *microblock.Section) error {
	switch AccountSection(s.Type) {
	case AccountSignatureAlgorithm:
		p := s.Object.(*SignatureAlgorithm)
		if err := checkAlgorithm(p.AlgorithmID); err != nil {
			return err
		}
		a.st.SignatureAlgorithmID = p.AlgorithmID
	case AccountPublicKey:
		if err := checkPublicKey(s.Object.(*PublicKey).PublicKey); err != nil {
			return err
		}
		a.st.PublicKeyHeight = v.current.Height()
	case AccountTokenIssuance:
		if amount := s.Object.(*TokenIssuance).Amount; amount != cmts.InitialOffer {
			return errors.Errorf("issued amount %d, want %d", amount, cmts.InitialOffer)
		}
	case AccountCreation:
		p := s.Object.(*AccountCreationPayload)
		if p.Amount == 0 {
			return errors.New("zero amount")
		}
		if _, err := v.load(p.SellerAccount, cmts.AccountVB); err != nil {
			return errors.Wrap(err, "seller account")
		}
	case AccountTransfer:
		p := s.Object.(*Transfer)
		if p.Amount == 0 {
			return errors.New("zero amount")
		}
		if p.Account == v.id {
			return errors.New("transfer to self")
		}
		if _, err := v.load(p.Account, cmts.AccountVB); err != nil {
			return errors.Wrap(err, "payee account")
		}
	case AccountSignature:
		pub, err := v.publicKeyAt(a.st.PublicKeyHeight, uint8(AccountPublicKey))
		if err != nil {
			return err
		}
		return v.verifySignature(s, pub)
	default:
		return errors.Errorf("unknown account section type %d", s.Type)
	}
	return nil
}

func (a *account) state() any { return &a.st }
func (a *account) reset()     {}
