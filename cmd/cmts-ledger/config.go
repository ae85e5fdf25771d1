// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cmts-dev/carmentis-node/ledger"
	"github.com/cmts-dev/carmentis-node/muxdb"
	"github.com/cmts-dev/carmentis-node/radix"
)

// Config is the YAML configuration of the ledger.
type Config struct {
	Database struct {
		ReadCacheMB            int `yaml:"read-cache-mb"`
		WriteBufferMB          int `yaml:"write-buffer-mb"`
		OpenFilesCacheCapacity int `yaml:"open-files-cache-capacity"`
	} `yaml:"database"`
	Radix struct {
		CacheDepth int `yaml:"cache-depth"`
		CacheSize  int `yaml:"cache-size"`
	} `yaml:"radix"`
	ProviderCacheMB  int `yaml:"provider-cache-mb"`
	CheckConcurrency int `yaml:"check-concurrency"`
}

func defaultConfig() *Config {
	var cfg Config
	cfg.Database.ReadCacheMB = 256
	cfg.Database.WriteBufferMB = 64
	cfg.Database.OpenFilesCacheCapacity = 512
	cfg.Radix.CacheDepth = ledger.DefaultOptions.Radix.CacheDepth
	cfg.Radix.CacheSize = ledger.DefaultOptions.Radix.CacheSize
	cfg.ProviderCacheMB = ledger.DefaultOptions.ProviderCacheMB
	cfg.CheckConcurrency = ledger.DefaultOptions.CheckConcurrency
	return &cfg
}

// loadConfig reads the file at path over the defaults. An empty path gives the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %v", path)
	}
	return cfg, nil
}

func (cfg *Config) dbOptions() *muxdb.Options {
	return &muxdb.Options{
		OpenFilesCacheCapacity: cfg.Database.OpenFilesCacheCapacity,
		ReadCacheMB:            cfg.Database.ReadCacheMB,
		WriteBufferMB:          cfg.Database.WriteBufferMB,
	}
}

func (cfg *Config) ledgerOptions() ledger.Options {
	return ledger.Options{
		Radix: radix.Options{
			CacheDepth: cfg.Radix.CacheDepth,
			CacheSize:  cfg.Radix.CacheSize,
		},
		ProviderCacheMB:  cfg.ProviderCacheMB,
		CheckConcurrency: cfg.CheckConcurrency,
	}
}

// Block is a block file: raw microblocks in hex, executed at height and timestamp.
type Block struct {
	Height    uint64   `yaml:"height"`
	Timestamp uint64   `yaml:"timestamp"`
	Txs       []string `yaml:"txs"`
}

func loadBlock(path string) (*Block, [][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read block")
	}
	var b Block
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, nil, errors.Wrapf(err, "parse block %v", path)
	}
	txs := make([][]byte, 0, len(b.Txs))
	for i, s := range b.Txs {
		tx, err := hexutil.Decode(s)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "tx %d of %v", i, path)
		}
		txs = append(txs, tx)
	}
	return &b, txs, nil
}
