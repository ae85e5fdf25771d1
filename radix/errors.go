// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package radix

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cmts-dev/carmentis-node/cmts"
)

// ErrReservedKey is returned when setting the all-zero key, which anchors the root.
var ErrReservedKey = errors.New("radix: the all-zero key is reserved")

// MissingNodeError is returned by the tree functions (Get, Set, RootHash) in the case where
// a node referenced by the tree is not present in the storage.
// An absent key is not an error.
type MissingNodeError struct {
	NodeHash cmts.Bytes32
	Depth    int
}

func (err *MissingNodeError) Error() string {
	return fmt.Sprintf("radix: missing node %v (depth %d)", err.NodeHash, err.Depth)
}

// corruptedNodeError is returned when a loaded node doesn't match its expected shape.
type corruptedNodeError struct {
	NodeHash cmts.Bytes32
	Depth    int
}

func (err *corruptedNodeError) Error() string {
	return fmt.Sprintf("radix: corrupted node %v (depth %d)", err.NodeHash, err.Depth)
}
