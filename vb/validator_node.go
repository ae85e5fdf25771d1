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

// ValidatorNodeSection is the kind of a validator node section.
type ValidatorNodeSection uint8

// Validator node sections.
const (
	ValidatorNodeDeclarationSection ValidatorNodeSection = iota
	ValidatorNodeDescriptionSection
	ValidatorNodeRPCEndpoint
	ValidatorNodeVotingPowerUpdate
	ValidatorNodeSignature
)

var validatorNodeSectionNames = [...]string{
	ValidatorNodeDeclarationSection: "declaration",
	ValidatorNodeDescriptionSection: "description",
	ValidatorNodeRPCEndpoint:        "rpc endpoint",
	ValidatorNodeVotingPowerUpdate:  "voting power update",
	ValidatorNodeSignature:          "signature",
}

// ValidatorNodeDeclaration binds a validator node to its organization.
type ValidatorNodeDeclaration struct {
	OrganizationID cmts.Bytes32
}

// ValidatorNodeDescription carries the consensus key of the node.
type ValidatorNodeDescription struct {
	CometPublicKeyType string
	CometPublicKey     string
}

// RPCEndpoint is the public endpoint of the node.
type RPCEndpoint struct {
	Endpoint string
}

// VotingPowerUpdate sets the voting power of the node.
type VotingPowerUpdate struct {
	VotingPower uint64
}

type validatorNodeState struct {
	OrganizationID     cmts.Bytes32
	CometPublicKeyType string
	CometPublicKey     string
	RPCEndpoint        string
	VotingPower        uint64
}

type validatorNode struct {
	st validatorNodeState
}

func (n *validatorNode) rules(first bool) []Item {
	if first {
		return []Item{
			Single(One, uint8(ValidatorNodeDeclarationSection)),
			Single(AtMostOne, uint8(ValidatorNodeDescriptionSection)),
			Single(AtMostOne, uint8(ValidatorNodeRPCEndpoint)),
			Single(One, uint8(ValidatorNodeSignature)),
		}
	}
	return []Item{
		Group(AtLeastOne,
			Single(AtMostOne, uint8(ValidatorNodeDescriptionSection)),
			Single(AtMostOne, uint8(ValidatorNodeRPCEndpoint)),
			Single(AtMostOne, uint8(ValidatorNodeVotingPowerUpdate)),
		),
		Single(One, uint8(ValidatorNodeSignature)),
	}
}

func (n *validatorNode) sectionName(typ uint8) string {
	if int(typ) < len(validatorNodeSectionNames) {
		return validatorNodeSectionNames[typ]
	}
	return fmt.Sprintf("validator node section(%d)", typ)
}

func (n *validatorNode) newPayload(typ uint8) (any, error) {
	switch ValidatorNodeSection(typ) {
	case ValidatorNodeDeclarationSection:
		return &ValidatorNodeDeclaration{}, nil
	case ValidatorNodeDescriptionSection:
		return &ValidatorNodeDescription{}, nil
	case ValidatorNodeRPCEndpoint:
		return &RPCEndpoint{}, nil
	case ValidatorNodeVotingPowerUpdate:
		return &VotingPowerUpdate{}, nil
	case ValidatorNodeSignature:
		return &Signature{}, nil
	}
	return nil, errors.Errorf("unknown validator node section type %d", typ)
}

func (n *validatorNode) apply(v *VirtualBlockchain, s *microblock.Section) error {
	switch ValidatorNodeSection(s.Type) {
	case ValidatorNodeDeclarationSection:
		orgID := s.Object.(*ValidatorNodeDeclaration).OrganizationID
		if _, err := v.load(orgID, cmts.OrganizationVB); err != nil {
			return errors.Wrap(err, "organization")
		}
		n.st.OrganizationID = orgID
	case ValidatorNodeDescriptionSection:
		p := s.Object.(*ValidatorNodeDescription)
		if p.CometPublicKeyType == "" || p.CometPublicKey == "" {
			return errors.New("incomplete consensus key")
		}
		n.st.CometPublicKeyType = p.CometPublicKeyType
		n.st.CometPublicKey = p.CometPublicKey
	case ValidatorNodeRPCEndpoint:
		n.st.RPCEndpoint = s.Object.(*RPCEndpoint).Endpoint
	case ValidatorNodeVotingPowerUpdate:
		n.st.VotingPower = s.Object.(*VotingPowerUpdate).VotingPower
	case ValidatorNodeSignature:
		pub, err := v.organizationKey(n.st.OrganizationID)
		if err != nil {
			return err
		}
		return v.verifySignature(s, pub)
	default:
		return errors.Errorf("unknown validator node section type %d", s.Type)
	}
	return nil
}

func (n *validatorNode) state() any { return &n.st }
func (n *validatorNode) reset()     {}
