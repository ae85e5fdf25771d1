// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger executes blocks of microblocks: each microblock is checked and
// stored in order, virtual blockchain states are committed into the VB radix tree,
// and the roots of the trees make the application hash.
package ledger

import (
	"context"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/importer"
	"github.com/cmts-dev/carmentis-node/kv"
	"github.com/cmts-dev/carmentis-node/log"
	"github.com/cmts-dev/carmentis-node/muxdb"
	"github.com/cmts-dev/carmentis-node/provider"
	"github.com/cmts-dev/carmentis-node/radix"
	"github.com/cmts-dev/carmentis-node/stage"
)

var logger = log.WithContext("pkg", "ledger")

// Options optional parameters of a ledger.
type Options struct {
	Radix           radix.Options
	ProviderCacheMB int
	// CheckConcurrency bounds the parallel checks of CheckTxs.
	CheckConcurrency int
}

// DefaultOptions default ledger options.
var DefaultOptions = Options{
	Radix:            radix.DefaultOptions,
	ProviderCacheMB:  16,
	CheckConcurrency: 4,
}

// TxResult is the outcome of one microblock of a block.
type TxResult struct {
	importer.Result
	Hash   cmts.Bytes32
	VBID   cmts.Bytes32
	VBType cmts.VBType
	Height uint64
	Fee    uint64

	sectionCount int
}

// BlockResult is the outcome of a block.
type BlockResult struct {
	Height       uint64
	Txs          []*TxResult
	NewObjects   [cmts.NumVBTypes]uint64
	BlockSize    uint64
	SectionCount uint64
	Fees         *uint256.Int
	AppHash      cmts.Bytes32
}

// Ledger owns the staged state of the block being executed.
// It's not safe for concurrent use, except CheckTx and CheckTxs.
type Ledger struct {
	db         *muxdb.MuxDB
	opts       Options
	stage      *stage.Stage
	backend    *provider.KVBackend
	provider   *provider.Provider
	vbRadix    *radix.Tree
	tokenRadix *radix.Tree
	info       *ChainInfo // committed
	pending    *ChainInfo
}

// New creates a ledger over db and loads the last committed chain info.
func New(db *muxdb.MuxDB, opts Options) (*Ledger, error) {
	stg := stage.New(db.Store())
	info, err := loadChainInfo(kv.Bucket(ChainInfoStore).NewGetter(stg))
	if err != nil {
		return nil, errors.Wrap(err, "load chain info")
	}
	backend := provider.NewKVBackend(stg, opts.ProviderCacheMB)
	return &Ledger{
		db:         db,
		opts:       opts,
		stage:      stg,
		backend:    backend,
		provider:   provider.New(backend),
		vbRadix:    radix.New(kv.Bucket(VBRadixStore).NewStore(stg), opts.Radix),
		tokenRadix: radix.New(kv.Bucket(TokenRadixStore).NewStore(stg), opts.Radix),
		info:       info,
	}, nil
}

// Provider returns the provider over the staged state.
func (l *Ledger) Provider() *provider.Provider { return l.provider }

// VBRadix returns the tree of the virtual blockchain state hashes.
func (l *Ledger) VBRadix() *radix.Tree { return l.vbRadix }

// TokenRadix returns the tree maintained by the token accounting.
func (l *Ledger) TokenRadix() *radix.Tree { return l.tokenRadix }

// ChainInfo returns the committed chain info.
func (l *Ledger) ChainInfo() ChainInfo { return *l.info }

// BlockSummary returns the summary of the executed block at height, or nil.
func (l *Ledger) BlockSummary(height uint64) (*BlockSummary, error) {
	return loadSummary(kv.Bucket(ChainInfoStore).NewGetter(l.stage), height)
}

// AppHash returns the hash of the roots of the VB radix and the token radix.
func (l *Ledger) AppHash() (cmts.Bytes32, error) {
	vbRoot, err := l.vbRadix.RootHash()
	if err != nil {
		return cmts.Bytes32{}, err
	}
	tokenRoot, err := l.tokenRadix.RootHash()
	if err != nil {
		return cmts.Bytes32{}, err
	}
	return cmts.Sha256(vbRoot[:], tokenRoot[:]), nil
}

func (l *Ledger) newCheckProvider() *provider.Provider {
	return provider.New(provider.NewKVBackend(stage.New(l.db.Store()), 0))
}

// CheckTx checks a raw microblock against the committed state. Nothing is stored.
func (l *Ledger) CheckTx(tx []byte, now uint64) importer.Result {
	return importer.New(tx, l.newCheckProvider()).Check(now)
}

// CheckTxs checks raw microblocks independently and in parallel against the committed state.
func (l *Ledger) CheckTxs(ctx context.Context, txs [][]byte, now uint64) ([]importer.Result, error) {
	results := make([]importer.Result, len(txs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.opts.CheckConcurrency, 1))
	for i, tx := range txs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = l.CheckTx(tx, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ExecuteBlock checks and stores the microblocks in order. Failing microblocks
// are skipped and reported in the result. The changes stay staged until Commit.
func (l *Ledger) ExecuteBlock(ctx context.Context, height, timestamp uint64, txs [][]byte) (*BlockResult, error) {
	if l.pending != nil {
		return nil, errors.Errorf("block %d is not committed", l.pending.Height)
	}
	if height != l.info.Height+1 {
		return nil, errors.Errorf("block height %d, want %d", height, l.info.Height+1)
	}
	start := time.Now()

	info := *l.info
	info.Height = height
	info.Timestamp = timestamp

	result := &BlockResult{
		Height: height,
		Txs:    make([]*TxResult, 0, len(txs)),
		Fees:   new(uint256.Int),
	}
	summary := &BlockSummary{Timestamp: timestamp}

	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			l.Rollback()
			return nil, err
		}
		r, err := l.executeTx(tx, timestamp)
		if err != nil {
			l.Rollback()
			return nil, err
		}
		result.Txs = append(result.Txs, r)
		if !r.OK() {
			metricTxCount().AddWithLabel(1, map[string]string{"type": "unknown", "status": r.Status.String()})
			logger.Debug("microblock rejected", "hash", r.Hash, "status", r.Status, "err", r.Err)
			continue
		}
		metricTxCount().AddWithLabel(1, map[string]string{"type": r.VBType.String(), "status": r.Status.String()})

		if r.Height == 1 {
			result.NewObjects[r.VBType]++
			info.ObjectCounts[r.VBType]++
		}
		info.MicroblockCount++
		result.BlockSize += uint64(len(tx))
		result.SectionCount += uint64(r.sectionCount)
		result.Fees.Add(result.Fees, uint256.NewInt(r.Fee))
		summary.Microblocks = append(summary.Microblocks, r.Hash)
	}

	appHash, err := l.AppHash()
	if err != nil {
		l.Rollback()
		return nil, err
	}
	result.AppHash = appHash
	info.AppHash = appHash
	summary.BlockSize = result.BlockSize
	summary.SectionCount = result.SectionCount
	summary.Fees = result.Fees.Bytes()
	summary.AppHash = appHash

	store := kv.Bucket(ChainInfoStore).NewPutter(l.stage)
	if err := saveRecord(store, summaryKey(height), summary); err != nil {
		l.Rollback()
		return nil, err
	}
	if err := saveRecord(store, bestKey, &info); err != nil {
		l.Rollback()
		return nil, err
	}
	l.pending = &info

	metricBlockDuration().Observe(time.Since(start).Milliseconds())
	logger.Info("block executed", "height", height, "txs", len(txs), "stored", len(summary.Microblocks),
		"fees", result.Fees, "appHash", appHash)
	return result, nil
}

// executeTx checks and stores one microblock. A returned error is a storage failure.
func (l *Ledger) executeTx(tx []byte, timestamp uint64) (*TxResult, error) {
	cp := l.stage.Checkpoint()
	imp := importer.New(tx, l.provider)
	res := imp.Check(timestamp)
	r := &TxResult{Result: res, Hash: imp.Hash()}
	if !res.OK() {
		return r, nil
	}

	v, mb := imp.VirtualBlockchain(), imp.Microblock()
	r.VBID, r.VBType, r.Height = v.ID(), v.Type(), v.Height()
	r.Fee = mb.Fee()
	r.sectionCount = mb.SectionCount()

	stateHash, err := imp.Store()
	if err != nil {
		l.stage.Revert(cp)
		l.backend.Purge()
		return nil, errors.Wrapf(err, "store microblock %v", r.Hash)
	}
	if err := l.vbRadix.Set(v.ID(), stateHash); err != nil {
		return nil, errors.Wrapf(err, "commit state of %v", v.ID())
	}
	return r, nil
}

// Commit writes the executed block into the database, in one batch.
func (l *Ledger) Commit() error {
	if l.pending == nil {
		return errors.New("nothing to commit")
	}
	if err := l.vbRadix.Flush(); err != nil {
		return errors.Wrap(err, "flush vb radix")
	}
	if err := l.tokenRadix.Flush(); err != nil {
		return errors.Wrap(err, "flush token radix")
	}
	n := l.stage.Len()
	if err := l.stage.Commit(); err != nil {
		return errors.Wrap(err, "commit stage")
	}
	l.info, l.pending = l.pending, nil
	logger.Debug("block committed", "height", l.info.Height, "entries", n)
	return nil
}

// Rollback drops the changes of the block being executed.
func (l *Ledger) Rollback() {
	l.vbRadix.Rollback()
	l.tokenRadix.Rollback()
	l.stage.Discard()
	l.backend.Purge()
	l.pending = nil
}
