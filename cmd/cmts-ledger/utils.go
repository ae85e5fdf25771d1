// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/beevik/ntp"
	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/cmts-dev/carmentis-node/ledger"
	"github.com/cmts-dev/carmentis-node/log"
	"github.com/cmts-dev/carmentis-node/muxdb"
)

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".cmts-ledger")
	}
	return ""
}

func initLogger(ctx *cli.Context) {
	lvl := log.LevelFromVerbosity(ctx.GlobalInt(verbosityFlag.Name))
	log.Init(os.Stderr, lvl, isatty.IsTerminal(os.Stderr.Fd()))
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// openLedger opens the database in the data dir and the ledger over it.
func openLedger(ctx *cli.Context) (*muxdb.MuxDB, *ledger.Ledger) {
	cfg, err := loadConfig(ctx.GlobalString(configFlag.Name))
	if err != nil {
		fatal(err)
	}
	dataDir := ctx.GlobalString(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatal(fmt.Sprintf("create data dir at '%v': %v", dataDir, err))
	}

	dir := filepath.Join(dataDir, "ledger.db")
	db, err := muxdb.Open(dir, cfg.dbOptions())
	if err != nil {
		fatal(fmt.Sprintf("open ledger database at '%v': %v", dir, err))
	}
	l, err := ledger.New(db, cfg.ledgerOptions())
	if err != nil {
		db.Close()
		fatal(err)
	}
	return db, l
}

// checkClockOffset warns when the local clock drifts enough to fail timestamp checks.
func checkClockOffset(server string) {
	if server == "" {
		return
	}
	resp, err := ntp.Query(server)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset > 30*time.Second || resp.ClockOffset < -30*time.Second {
		logger.Warn("clock offset detected", "offset", resp.ClockOffset)
	}
}
