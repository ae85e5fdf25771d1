// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package importer validates a raw microblock against the stored virtual blockchains,
// then stores it.
package importer

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/log"
	"github.com/cmts-dev/carmentis-node/microblock"
	"github.com/cmts-dev/carmentis-node/provider"
	"github.com/cmts-dev/carmentis-node/vb"
)

var logger = log.WithContext("pkg", "importer")

var errNotChecked = errors.New("microblock not checked")

// Importer runs the checks of one raw microblock, then stores it.
// A check failing with a retriable status may be run again.
type Importer struct {
	provider *provider.Provider
	tx       []byte

	state      State
	stored     bool
	headerData []byte
	bodyData   []byte
	header     *microblock.Header
	hash       cmts.Bytes32
	mb         *microblock.Microblock
	vb         *vb.VirtualBlockchain
}

// New creates an importer for the raw transaction tx.
func New(tx []byte, p *provider.Provider) *Importer {
	return &Importer{provider: p, tx: tx}
}

// State returns the last check passed.
func (imp *Importer) State() State { return imp.state }

// Hash returns the microblock hash, known once the header is checked.
func (imp *Importer) Hash() cmts.Bytes32 { return imp.hash }

// Header returns the decoded header, known once the header is checked.
func (imp *Importer) Header() *microblock.Header { return imp.header }

// Microblock returns the decoded microblock, known once the content is checked.
func (imp *Importer) Microblock() *microblock.Microblock { return imp.mb }

// VirtualBlockchain returns the virtual blockchain with the microblock applied,
// known once the content is checked.
func (imp *Importer) VirtualBlockchain() *vb.VirtualBlockchain { return imp.vb }

// Check runs the checks not passed yet: header, timestamp against now (seconds),
// then content. It stops at the first failure.
func (imp *Importer) Check(now uint64) (res Result) {
	defer func() {
		metricCheckCount().AddWithLabel(1, map[string]string{"status": res.Status.String()})
	}()

	if imp.state < HeaderChecked {
		if res = imp.checkHeader(); !res.OK() {
			return
		}
		imp.state = HeaderChecked
	}
	if imp.state < TimestampChecked {
		if res = imp.checkTimestamp(now); !res.OK() {
			return
		}
		imp.state = TimestampChecked
	}
	if imp.state < ContentChecked {
		if res = imp.checkContent(); !res.OK() {
			return
		}
		imp.state = ContentChecked
	}
	return Result{Status: OK}
}

func (imp *Importer) checkHeader() Result {
	headerData, bodyData, err := microblock.SplitTransaction(imp.tx)
	if err != nil {
		return fail(UnrecoverableError, err)
	}
	header, err := microblock.DecodeHeader(headerData)
	if err != nil {
		return fail(UnrecoverableError, err)
	}
	if !bytes.Equal(header.Magic[:], []byte(cmts.MagicString)) {
		return fail(UnrecoverableError, errors.Errorf("invalid magic string %q", header.Magic[:]))
	}
	if header.ProtocolVersion != cmts.ProtocolVersion {
		return fail(UnrecoverableError, errors.Errorf("unsupported protocol version %d", header.ProtocolVersion))
	}
	if header.Height == 0 {
		return fail(UnrecoverableError, errors.New("invalid height 0"))
	}

	imp.headerData, imp.bodyData, imp.header = headerData, bodyData, header
	imp.hash = cmts.Sha256(headerData)
	logger.Debug("header checked", "hash", imp.hash, "height", header.Height)
	return Result{Status: OK}
}

func (imp *Importer) checkTimestamp(now uint64) Result {
	ts := imp.header.Timestamp
	if ts+cmts.MaxTimestampPast < now {
		return fail(TimestampError, errors.Errorf("timestamp %d is too far in the past (now %d)", ts, now))
	}
	if ts > now+cmts.MaxTimestampFuture {
		return fail(TimestampError, errors.Errorf("timestamp %d is too far in the future (now %d)", ts, now))
	}
	return Result{Status: OK}
}

func (imp *Importer) checkContent() Result {
	header := imp.header
	if bodyHash := cmts.Sha256(imp.bodyData); bodyHash != header.BodyHash {
		return fail(UnrecoverableError, errors.Errorf("body hash %v doesn't match the header %v", bodyHash, header.BodyHash))
	}

	existing, err := imp.provider.GetMicroblockInformation(imp.hash)
	if err != nil {
		return fail(UnrecoverableError, err)
	}
	if existing != nil {
		return fail(UnrecoverableError, errors.Errorf("microblock %v already stored", imp.hash))
	}

	var (
		typ  cmts.VBType
		vbID cmts.Bytes32
	)
	if header.Height > 1 {
		info, err := imp.provider.GetMicroblockInformation(header.PreviousHash)
		if err != nil {
			return fail(UnrecoverableError, err)
		}
		if info == nil {
			return fail(PreviousHashError, errors.Errorf("previous microblock %v not found", header.PreviousHash))
		}
		prev, err := info.Header()
		if err != nil {
			return fail(UnrecoverableError, err)
		}
		if prev.Height+1 != header.Height {
			return fail(UnrecoverableError, errors.Errorf("height %d doesn't follow the previous microblock at %d", header.Height, prev.Height))
		}
		typ, vbID = info.VBType, info.VBID
	} else {
		typ = cmts.VBType(header.PreviousHash[0])
		if !typ.Valid() {
			return fail(UnrecoverableError, errors.Errorf("invalid virtual blockchain type %d", header.PreviousHash[0]))
		}
	}

	mb, err := microblock.Decode(typ, imp.headerData, imp.bodyData)
	if err != nil {
		return fail(UnrecoverableError, err)
	}
	v, err := vb.New(imp.provider, typ)
	if err != nil {
		return fail(UnrecoverableError, err)
	}
	if header.Height > 1 {
		if err := v.Load(vbID); err != nil {
			return fail(UnrecoverableError, err)
		}
	}
	if err := v.ImportMicroblock(mb, imp.hash); err != nil {
		return fail(UnrecoverableError, err)
	}
	if gas := mb.ComputeGas(0); gas != header.Gas {
		return fail(UnrecoverableError, errors.Errorf("declared gas %d, computed %d", header.Gas, gas))
	}

	imp.mb, imp.vb = mb, v
	logger.Debug("content checked", "hash", imp.hash, "type", typ, "vb", v.ID())
	return Result{Status: OK}
}

// Store persists the microblock and the new state of its virtual blockchain, and
// returns the hash of the encoded state. It fails unless the checks passed.
func (imp *Importer) Store() (cmts.Bytes32, error) {
	if imp.state != ContentChecked {
		return cmts.Bytes32{}, errNotChecked
	}
	if imp.stored {
		return cmts.Bytes32{}, errors.New("microblock already stored")
	}
	v := imp.vb
	if err := imp.provider.StoreMicroblock(imp.hash, v.ID(), v.Type(), v.Height(), imp.headerData, imp.bodyData); err != nil {
		return cmts.Bytes32{}, errors.Wrap(err, "store microblock")
	}
	custom, err := v.StateData()
	if err != nil {
		return cmts.Bytes32{}, err
	}
	state, err := imp.provider.UpdateVirtualBlockchainState(v.ID(), v.Type(), v.Height(), v.LastHash(), custom)
	if err != nil {
		return cmts.Bytes32{}, errors.Wrap(err, "store state")
	}
	imp.stored = true

	logger.Info("microblock stored", "hash", imp.hash, "type", v.Type(), "vb", v.ID(), "height", v.Height())
	return cmts.Sha256(state), nil
}
