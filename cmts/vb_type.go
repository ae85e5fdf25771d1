// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cmts

import "fmt"

// VBType is the kind of entity a virtual blockchain represents.
// It's fixed by the genesis microblock.
type VBType uint8

// Virtual blockchain types.
const (
	AccountVB VBType = iota
	ValidatorNodeVB
	OrganizationVB
	ApplicationVB
	ApplicationLedgerVB

	NumVBTypes = int(ApplicationLedgerVB) + 1
)

var vbTypeNames = [...]string{
	AccountVB:           "account",
	ValidatorNodeVB:     "validator-node",
	OrganizationVB:      "organization",
	ApplicationVB:       "application",
	ApplicationLedgerVB: "application-ledger",
}

// Valid returns whether t is one of the known types.
func (t VBType) Valid() bool {
	return int(t) < NumVBTypes
}

func (t VBType) String() string {
	if t.Valid() {
		return vbTypeNames[t]
	}
	return fmt.Sprintf("vbtype(%d)", uint8(t))
}
