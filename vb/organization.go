// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vb

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cmts-dev/carmentis-node/microblock"
)

// OrganizationSection is the kind of an organization section.
type OrganizationSection uint8

// Organization sections.
const (
	OrganizationSignatureAlgorithm OrganizationSection = iota
	OrganizationPublicKey
	OrganizationDescriptionSection
	OrganizationSignature
)

var organizationSectionNames = [...]string{
	OrganizationSignatureAlgorithm: "signature algorithm",
	OrganizationPublicKey:          "public key",
	OrganizationDescriptionSection: "description",
	OrganizationSignature:          "signature",
}

// OrganizationDescription describes an organization.
type OrganizationDescription struct {
	Name        string
	City        string
	CountryCode string
	Website     string
}

type organizationState struct {
	Key               keyState
	DescriptionHeight uint64
}

type organization struct {
	st organizationState
}

func (o *organization) rules(first bool) []Item {
	if first {
		return []Item{
			Single(One, uint8(OrganizationSignatureAlgorithm)),
			Single(One, uint8(OrganizationPublicKey)),
			Single(One, uint8(OrganizationDescriptionSection)),
			Single(One, uint8(OrganizationSignature)),
		}
	}
	return []Item{
		Single(Zero, uint8(OrganizationSignatureAlgorithm)),
		Group(AtLeastOne,
			Single(AtMostOne, uint8(OrganizationPublicKey)),
			Single(AtMostOne, uint8(OrganizationDescriptionSection)),
		),
		Single(One, uint8(OrganizationSignature)),
	}
}

func (o *organization) sectionName(typ uint8) string {
	if int(typ) < len(organizationSectionNames) {
		return organizationSectionNames[typ]
	}
	return fmt.Sprintf("organization section(%d)", typ)
}

func (o *organization) newPayload(typ uint8) (any, error) {
	switch OrganizationSection(typ) {
	case OrganizationSignatureAlgorithm:
		return &SignatureAlgorithm{}, nil
	case OrganizationPublicKey:
		return &PublicKey{}, nil
	case OrganizationDescriptionSection:
		return &OrganizationDescription{}, nil
	case OrganizationSignature:
		return &Signature{}, nil
	}
	return nil, errors.Errorf("unknown organization section type %d", typ)
}

func (o *organization) apply(v *VirtualBlockchain, s *microblock.Section) error {
	switch OrganizationSection(s.Type) {
	case OrganizationSignatureAlgorithm:
		p := s.Object.(*SignatureAlgorithm)
		if err := checkAlgorithm(p.AlgorithmID); err != nil {
			return err
		}
		o.st.Key.SignatureAlgorithmID = p.AlgorithmID
	case OrganizationPublicKey:
		if err := checkPublicKey(s.Object.(*PublicKey).PublicKey); err != nil {
			return err
		}
		o.st.Key.PublicKeyHeight = v.current.Height()
	case OrganizationDescriptionSection:
		if s.Object.(*OrganizationDescription).Name == "" {
			return errors.New("empty name")
		}
		o.st.DescriptionHeight = v.current.Height()
	case OrganizationSignature:
		pub, err := v.publicKeyAt(o.st.Key.PublicKeyHeight, uint8(OrganizationPublicKey))
		if err != nil {
			return err
		}
		return v.verifySignature(s, pub)
	default:
		return errors.Errorf("unknown organization section type %d", s.Type)
	}
	return nil
}

func (o *organization) state() any { return &o.st }
func (o *organization) reset()     {}
