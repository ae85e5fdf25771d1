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

// ApplicationSection is the kind of an application section.
type ApplicationSection uint8

// Application sections.
const (
	ApplicationDeclarationSection ApplicationSection = iota
	ApplicationDescriptionSection
	ApplicationSignature
)

var applicationSectionNames = [...]string{
	ApplicationDeclarationSection: "declaration",
	ApplicationDescriptionSection: "description",
	ApplicationSignature:          "signature",
}

// ApplicationDeclaration binds an application to its organization.
type ApplicationDeclaration struct {
	OrganizationID cmts.Bytes32
}

// ApplicationDescription describes an application.
type ApplicationDescription struct {
	Name        string
	LogoURL     string
	HomepageURL string
	Description string
}

type applicationState struct {
	OrganizationID    cmts.Bytes32
	DescriptionHeight uint64
}

type application struct {
	st applicationState
}

func (a *application) rules(first bool) []Item {
	if first {
		return []Item{
			Single(One, uint8(ApplicationDeclarationSection)),
			Single(One, uint8(ApplicationDescriptionSection)),
			Single(One, uint8(ApplicationSignature)),
		}
	}
	return []Item{
		Single(Zero, uint8(ApplicationDeclarationSection)),
		Single(One, uint8(ApplicationDescriptionSection)),
		Single(One, uint8(ApplicationSignature)),
	}
}

func (a *application) sectionName(typ uint8) string {
	if int(typ) < len(applicationSectionNames) {
		return applicationSectionNames[typ]
	}
	return fmt.Sprintf("application section(%d)", typ)
}

func (a *application) newPayload(typ uint8) (any, error) {
	switch ApplicationSection(typ) {
	case ApplicationDeclarationSection:
		return &ApplicationDeclaration{}, nil
	case ApplicationDescriptionSection:
		return &ApplicationDescription{}, nil
	case ApplicationSignature:
		return &Signature{}, nil
	}
	return nil, errors.Errorf("unknown application section type %d", typ)
}

func (a *application) apply(v *VirtualBlockchain, s *microblock.Section) error {
	switch ApplicationSection(s.Type) {
	case ApplicationDeclarationSection:
		orgID := s.Object.(*ApplicationDeclaration).OrganizationID
		if _, err := v.load(orgID, cmts.OrganizationVB); err != nil {
			return errors.Wrap(err, "organization")
		}
		a.st.OrganizationID = orgID
	case ApplicationDescriptionSection:
		if s.Object.(*ApplicationDescription).Name == "" {
			return errors.New("empty name")
		}
		a.st.DescriptionHeight = v.current.Height()
	case ApplicationSignature:
		pub, err := v.organizationKey(a.st.OrganizationID)
		if err != nil {
			return err
		}
		return v.verifySignature(s, pub)
	default:
		return errors.Errorf("unknown application section type %d", s.Type)
	}
	return nil
}

func (a *application) state() any { return &a.st }
func (a *application) reset()     {}
