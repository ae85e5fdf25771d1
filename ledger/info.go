// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/qianbin/drlp"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/kv"
)

// Store names of the ledger records and trees.
const (
	ChainInfoStore  = "chaininfo"
	VBRadixStore    = "vbradix"
	TokenRadixStore = "tokenradix"
)

var bestKey = []byte("best")

// ChainInfo summarizes the executed blocks.
type ChainInfo struct {
	Height          uint64
	Timestamp       uint64
	MicroblockCount uint64
	ObjectCounts    [cmts.NumVBTypes]uint64
	AppHash         cmts.Bytes32
}

// BlockSummary is the record kept for each executed block.
type BlockSummary struct {
	Timestamp    uint64
	Microblocks  []cmts.Bytes32
	BlockSize    uint64
	SectionCount uint64
	Fees         []byte // big-endian
	AppHash      cmts.Bytes32
}

func summaryKey(height uint64) []byte {
	return drlp.AppendUint([]byte("h"), height)
}

func loadRecord(store kv.Getter, key []byte, out any) (bool, error) {
	data, err := store.Get(key)
	if err != nil {
		if store.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, errors.Wrapf(err, "decode %q", key)
	}
	return true, nil
}

func saveRecord(store kv.Putter, key []byte, val any) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return err
	}
	return store.Put(key, data)
}

func loadChainInfo(store kv.Getter) (*ChainInfo, error) {
	var info ChainInfo
	if _, err := loadRecord(store, bestKey, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func loadSummary(store kv.Getter, height uint64) (*BlockSummary, error) {
	var s BlockSummary
	found, err := loadRecord(store, summaryKey(height), &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}
