// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package radix

import (
	"github.com/cmts-dev/carmentis-node/cache"
	"github.com/cmts-dev/carmentis-node/cmts"
	"github.com/cmts-dev/carmentis-node/kv"
)

// anchorDepth is the depth used for the root anchor record.
const anchorDepth = -1

// storage layers the node cache and the write batch over the store.
type storage struct {
	store      kv.Store
	cache      *cache.LRU[cmts.Bytes32, []byte]
	cacheDepth int
	batch      map[cmts.Bytes32][]byte
}

func newStorage(store kv.Store, opts Options) *storage {
	s := &storage{
		store:      store,
		cacheDepth: opts.CacheDepth,
		batch:      make(map[cmts.Bytes32][]byte),
	}
	if opts.CacheSize > 0 {
		s.cache, _ = cache.NewLRU[cmts.Bytes32, []byte](opts.CacheSize)
	}
	return s
}

func (s *storage) cacheable(depth int) bool {
	return s.cache != nil && depth <= s.cacheDepth
}

// get returns the data stored under hash. found is false if absent from every tier.
func (s *storage) get(depth int, hash cmts.Bytes32) (data []byte, found bool, err error) {
	if s.cacheable(depth) {
		if data, ok := s.cache.Get(hash); ok {
			return data, true, nil
		}
	}

	if data, ok := s.batch[hash]; ok {
		return data, true, nil
	}

	data, err = s.store.Get(hash[:])
	if err != nil {
		if s.store.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if s.cacheable(depth) {
		s.cache.Add(hash, data)
	}
	return data, true, nil
}

func (s *storage) put(depth int, hash cmts.Bytes32, data []byte) {
	if s.cacheable(depth) {
		s.cache.Add(hash, data)
	}
	s.batch[hash] = data
}

// flush writes the batch into the store, then clears it.
func (s *storage) flush() (int, error) {
	if len(s.batch) == 0 {
		return 0, nil
	}
	bulk := s.store.Bulk()
	for hash, data := range s.batch {
		if err := bulk.Put(hash[:], data); err != nil {
			return 0, err
		}
	}
	if err := bulk.Write(); err != nil {
		return 0, err
	}
	n := len(s.batch)
	clear(s.batch)
	return n, nil
}

// rollback drops the batch and evicts the batched keys from the cache.
func (s *storage) rollback() int {
	n := len(s.batch)
	if s.cache != nil {
		for hash := range s.batch {
			s.cache.Remove(hash)
		}
	}
	clear(s.batch)
	return n
}

// reportCacheStats publishes the node cache counters, and logs the hit rate
// when it moved since the last report.
func (s *storage) reportCacheStats() {
	if s.cache == nil {
		return
	}
	hit, miss, changed := s.cache.Stats().Snapshot()
	metricNodeCacheCount().SetWithLabel(hit, map[string]string{"event": "hit"})
	metricNodeCacheCount().SetWithLabel(miss, map[string]string{"event": "miss"})
	if changed {
		logger.Debug("node cache stats", "lookups", hit+miss, "hitrate", cache.HitRate(hit, miss))
	}
}
