// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package muxdb implements the storage layer of the node.
// It multiplexes named kv-stores (provider tables, radix trees) over one leveldb instance.
package muxdb

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	dberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/kv"
	"github.com/cmts-dev/carmentis-node/log"
	"github.com/cmts-dev/carmentis-node/muxdb/internal/engine"
)

var logger = log.WithContext("pkg", "muxdb")

const (
	propStoreName = "muxdb.props"
	configKey     = "config"
)

// Options optional parameters for MuxDB.
type Options struct {
	// OpenFilesCacheCapacity is the capacity of open files caching for underlying database.
	OpenFilesCacheCapacity int
	// ReadCacheMB is the size of read cache for underlying database.
	ReadCacheMB int
	// WriteBufferMB is the size of write buffer for underlying database.
	WriteBufferMB int
}

// MuxDB is the database to store virtual blockchain data and radix trees.
type MuxDB struct {
	engine engine.Engine
}

// Open opens or creates DB at the given path.
func Open(path string, options *Options) (*MuxDB, error) {
	// prepare leveldb options
	ldbOpts := opt.Options{
		OpenFilesCacheCapacity: options.OpenFilesCacheCapacity,
		BlockCacheCapacity:     options.ReadCacheMB * opt.MiB,
		WriteBuffer:            options.WriteBufferMB * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
		BlockSize:              1024 * 32, // balance performance of point reads and compression ratio.
		CompactionTableSize:    4 * opt.MiB,
	}

	// open leveldb
	ldb, err := leveldb.OpenFile(path, &ldbOpts)
	if _, corrupted := err.(*dberrors.ErrCorrupted); corrupted {
		logger.Warn("database corrupted, trying to recover", "path", path)
		ldb, err = leveldb.RecoverFile(path, &ldbOpts)
	}
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}

	engine := engine.NewLevelEngine(ldb)

	propStore := kv.Bucket(propStoreName).NewStore(engine)
	// persists the protocol version, so that a data dir written by another version is refused.
	cfg := config{ProtocolVersion: cmts.ProtocolVersion}
	if err := cfg.LoadOrSave(propStore); err != nil {
		ldb.Close()
		return nil, err
	}
	if cfg.ProtocolVersion != cmts.ProtocolVersion {
		ldb.Close()
		return nil, errors.Errorf("incompatible database: protocol version %d, want %d", cfg.ProtocolVersion, cmts.ProtocolVersion)
	}
	return &MuxDB{engine: engine}, nil
}

// NewMem creates a memory-backed DB.
func NewMem() *MuxDB {
	ldb, _ := leveldb.Open(storage.NewMemStorage(), nil)
	return &MuxDB{engine: engine.NewLevelEngine(ldb)}
}

// Close closes the DB.
func (db *MuxDB) Close() error {
	return db.engine.Close()
}

// Store returns the whole database as one kv-store.
// Named stores created over it share its key space.
func (db *MuxDB) Store() kv.Store {
	return db.engine
}

// NewStore creates named kv-store.
func (db *MuxDB) NewStore(name string) kv.Store {
	return kv.Bucket(name).NewStore(db.engine)
}

// IsNotFound returns if the error indicates key not found.
func (db *MuxDB) IsNotFound(err error) bool {
	return db.engine.IsNotFound(err)
}

type config struct {
	ProtocolVersion uint16
}

func (c *config) LoadOrSave(store kv.Store) error {
	// try to load
	data, err := store.Get([]byte(configKey))
	if err == nil {
		// and decode
		return json.Unmarshal(data, c)
	}

	if !store.IsNotFound(err) {
		return err
	}
	// not found
	// encode and save
	data, err = json.Marshal(c)
	if err != nil {
		return err
	}
	return store.Put([]byte(configKey), data)
}
