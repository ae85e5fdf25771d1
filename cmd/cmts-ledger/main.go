// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Command cmts-ledger executes blocks of raw microblocks into a ledger database,
// and inspects the stored virtual blockchains.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/log"
	"github.com/cmts-dev/carmentis-node/metrics"
	"github.com/cmts-dev/carmentis-node/radix"
	"github.com/cmts-dev/carmentis-node/vb"
)

var (
	version   string
	gitCommit string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "cmts-ledger",
		Usage:   "Ledger of virtual blockchains",
		Flags: []cli.Flag{
			dataDirFlag,
			configFlag,
			verbosityFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Before: func(ctx *cli.Context) error {
			initLogger(ctx)
			return nil
		},
		Commands: []cli.Command{
			{
				Name:      "import",
				Usage:     "execute and commit block files",
				ArgsUsage: "<block.yaml>...",
				Action:    importAction,
			},
			{
				Name:      "check",
				Usage:     "check raw microblocks against the committed state",
				ArgsUsage: "<hex>...",
				Flags:     []cli.Flag{ntpServerFlag},
				Action:    checkAction,
			},
			{
				Name:      "get",
				Usage:     "print the state of a virtual blockchain and verify its radix proof",
				ArgsUsage: "<vb-id>",
				Action:    getAction,
			},
			{
				Name:      "inspect",
				Usage:     "print a stored microblock",
				ArgsUsage: "<microblock-hash>",
				Action:    inspectAction,
			},
			{
				Name:   "info",
				Usage:  "print the chain info",
				Flags:  []cli.Flag{heightFlag},
				Action: infoAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupMetrics(ctx *cli.Context) func() {
	if !ctx.GlobalBool(enableMetricsFlag.Name) {
		return func() {}
	}
	metrics.InitializePrometheusMetrics()
	url, closeFunc, err := startMetricsServer(ctx.GlobalString(metricsAddrFlag.Name))
	if err != nil {
		fatal(err)
	}
	logger.Info("metrics server started", "url", url)
	return closeFunc
}

func importAction(ctx *cli.Context) error {
	files := ctx.Args()
	if len(files) == 0 {
		return errors.New("no block file given")
	}
	defer setupMetrics(ctx)()

	db, l := openLedger(ctx)
	defer func() { logger.Info("closing ledger database..."); db.Close() }()
	exitCtx := handleExitSignal()

	bar := pb.New64(int64(len(files))).
		SetMaxWidth(90).
		Start()
	defer func() { bar.NotPrint = true }()

	for _, path := range files {
		block, txs, err := loadBlock(path)
		if err != nil {
			return err
		}
		height := block.Height
		if height == 0 {
			height = l.ChainInfo().Height + 1
		}
		res, err := l.ExecuteBlock(exitCtx, height, block.Timestamp, txs)
		if err != nil {
			return errors.Wrapf(err, "execute %v", path)
		}
		if err := l.Commit(); err != nil {
			return err
		}
		for i, r := range res.Txs {
			if !r.OK() {
				logger.Warn("microblock rejected", "block", height, "index", i, "result", r.Result)
			}
		}
		bar.Add64(1)
	}
	bar.Finish()

	info := l.ChainInfo()
	fmt.Printf("height: %d\nmicroblocks: %d\napp hash: %v\n", info.Height, info.MicroblockCount, info.AppHash)
	return nil
}

func checkAction(ctx *cli.Context) error {
	if len(ctx.Args()) == 0 {
		return errors.New("no microblock given")
	}
	txs := make([][]byte, 0, len(ctx.Args()))
	for _, arg := range ctx.Args() {
		tx, err := hexutil.Decode(arg)
		if err != nil {
			return err
		}
		txs = append(txs, tx)
	}
	checkClockOffset(ctx.String(ntpServerFlag.Name))

	db, l := openLedger(ctx)
	defer db.Close()

	results, err := l.CheckTxs(handleExitSignal(), txs, uint64(time.Now().Unix()))
	if err != nil {
		return err
	}
	for i, res := range results {
		fmt.Printf("%d\t%v\n", i, res)
	}
	return nil
}

func getAction(ctx *cli.Context) error {
	id, err := cmts.ParseBytes32(ctx.Args().First())
	if err != nil {
		return err
	}
	db, l := openLedger(ctx)
	defer db.Close()

	st, err := l.Provider().GetVirtualBlockchainState(id)
	if err != nil {
		return err
	}
	if st == nil {
		return errors.Errorf("unknown virtual blockchain %v", id)
	}
	value, proof, err := l.VBRadix().Get(id)
	if err != nil {
		return err
	}
	root, err := l.VBRadix().RootHash()
	if err != nil {
		return err
	}
	proven, ok := radix.VerifyProof(id, value, proof)

	fmt.Printf("type: %v\nheight: %d\nlast microblock: %v\n", st.Type, st.Height, st.LastHash)
	fmt.Printf("state hash: %x\nproof: %d nodes, verified: %v\n", value, len(proof), ok && proven == root)
	return nil
}

func inspectAction(ctx *cli.Context) error {
	hash, err := cmts.ParseBytes32(ctx.Args().First())
	if err != nil {
		return err
	}
	db, l := openLedger(ctx)
	defer db.Close()

	info, err := l.Provider().GetMicroblockInformation(hash)
	if err != nil {
		return err
	}
	mb, err := l.Provider().GetMicroblock(hash)
	if err != nil {
		return err
	}
	if mb == nil {
		return errors.Errorf("unknown microblock %v", hash)
	}

	header := mb.Header()
	fmt.Printf("virtual blockchain: %v (%v)\n", info.VBID, mb.Type())
	fmt.Printf("height: %d\nprevious: %v\ntimestamp: %v\ngas: %d at %d, fee %d\nbody hash: %v\n",
		header.Height, header.PreviousHash, time.Unix(int64(header.Timestamp), 0).UTC(),
		header.Gas, header.GasPrice, mb.Fee(), header.BodyHash)

	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
	for _, s := range mb.Sections() {
		fmt.Printf("section #%d %s\n", s.Index, vb.SectionName(mb.Type(), s.Type))
		if err := vb.DecodeSection(mb.Type(), s); err != nil {
			fmt.Printf("  undecodable: %v\n", err)
			continue
		}
		cfg.Fdump(os.Stdout, s.Object)
	}
	return nil
}

func infoAction(ctx *cli.Context) error {
	db, l := openLedger(ctx)
	defer db.Close()

	info := l.ChainInfo()
	height := ctx.Uint64(heightFlag.Name)
	if height == 0 {
		height = info.Height
	}
	fmt.Printf("height: %d\nmicroblocks: %d\napp hash: %v\n", info.Height, info.MicroblockCount, info.AppHash)
	for typ, n := range info.ObjectCounts {
		fmt.Printf("%v: %d\n", cmts.VBType(typ), n)
	}
	if height == 0 {
		return nil
	}

	summary, err := l.BlockSummary(height)
	if err != nil {
		return err
	}
	if summary == nil {
		return errors.Errorf("no block at height %d", height)
	}
	fmt.Printf("block %d at %v: %d microblocks, %d bytes, %d sections, fees %v\n",
		height, time.Unix(int64(summary.Timestamp), 0).UTC(), len(summary.Microblocks),
		summary.BlockSize, summary.SectionCount, new(uint256.Int).SetBytes(summary.Fees))
	return nil
}
