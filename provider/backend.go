// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package provider

import (
	"bytes"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/qianbin/directcache"

	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/kv"
)

// Backend is the raw storage consumed by the provider. Getters return nil data for absent keys.
type Backend interface {
	GetMicroblockInformation(hash cmts.Bytes32) ([]byte, error)
	GetMicroblockBody(hash cmts.Bytes32) ([]byte, error)
	GetVirtualBlockchainState(id cmts.Bytes32) ([]byte, error)
	SetMicroblockInformation(hash cmts.Bytes32, data []byte) error
	SetMicroblockBody(hash cmts.Bytes32, data []byte) error
	SetVirtualBlockchainState(id cmts.Bytes32, data []byte) error
}

// Names of the stores of the kv backend.
const (
	MicroblockInfoStore = "mbinfo"
	MicroblockBodyStore = "mbbody"
	VBStateStore        = "vbstate"
)

// KVBackend implements Backend over a kv store. Bodies are snappy compressed
// and microblock information records are cached.
type KVBackend struct {
	info      kv.Store
	body      kv.Store
	state     kv.Store
	cacheSize int
	infoCache *directcache.Cache
}

var _ Backend = (*KVBackend)(nil)

// NewKVBackend creates the backend over store, with an information cache of cacheSizeMB.
func NewKVBackend(store kv.Store, cacheSizeMB int) *KVBackend {
	b := &KVBackend{
		info:      kv.Bucket(MicroblockInfoStore).NewStore(store),
		body:      kv.Bucket(MicroblockBodyStore).NewStore(store),
		state:     kv.Bucket(VBStateStore).NewStore(store),
		cacheSize: cacheSizeMB * 1024 * 1024,
	}
	b.Purge()
	return b
}

// Purge drops the cache. It must be called once staged writes are dropped.
func (b *KVBackend) Purge() {
	if b.cacheSize > 0 {
		b.infoCache = directcache.New(b.cacheSize)
	}
}

func get(store kv.Getter, key []byte) ([]byte, error) {
	data, err := store.Get(key)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (b *KVBackend) GetMicroblockInformation(hash cmts.Bytes32) ([]byte, error) {
	if b.infoCache != nil {
		var blob []byte
		if b.infoCache.AdvGet(hash[:], func(val []byte) {
			blob = bytes.Clone(val)
		}, false) {
			return blob, nil
		}
	}
	data, err := get(b.info, hash[:])
	if err != nil || data == nil {
		return nil, err
	}
	if b.infoCache != nil {
		_ = b.infoCache.Set(hash[:], data)
	}
	return data, nil
}

func (b *KVBackend) GetMicroblockBody(hash cmts.Bytes32) ([]byte, error) {
	data, err := get(b.body, hash[:])
	if err != nil || data == nil {
		return nil, err
	}
	body, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress body %v", hash)
	}
	return body, nil
}

func (b *KVBackend) GetVirtualBlockchainState(id cmts.Bytes32) ([]byte, error) {
	return get(b.state, id[:])
}

func (b *KVBackend) SetMicroblockInformation(hash cmts.Bytes32, data []byte) error {
	if err := b.info.Put(hash[:], data); err != nil {
		return err
	}
	if b.infoCache != nil {
		_ = b.infoCache.Set(hash[:], data)
	}
	return nil
}

func (b *KVBackend) SetMicroblockBody(hash cmts.Bytes32, data []byte) error {
	return b.body.Put(hash[:], snappy.Encode(nil, data))
}

func (b *KVBackend) SetVirtualBlockchainState(id cmts.Bytes32, data []byte) error {
	return b.state.Put(id[:], data)
}
