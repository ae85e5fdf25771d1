// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import lru "github.com/hashicorp/golang-lru"

// LRU is a typed LRU cache built on golang-lru.
type LRU[K comparable, V any] struct {
	c     *lru.Cache
	stats Stats
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU[K comparable, V any](maxSize int) (*LRU[K, V], error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{c: c}, nil
}

// Get looks up the value of key and records a hit or miss.
func (l *LRU[K, V]) Get(key K) (v V, ok bool) {
	if raw, found := l.c.Get(key); found {
		l.stats.Hit()
		return raw.(V), true
	}
	l.stats.Miss()
	return
}

// Add puts the value into the cache, evicting the oldest entry if full.
func (l *LRU[K, V]) Add(key K, value V) {
	l.c.Add(key, value)
}

// Remove drops the key from the cache.
func (l *LRU[K, V]) Remove(key K) {
	l.c.Remove(key)
}

// Purge drops all entries.
func (l *LRU[K, V]) Purge() {
	l.c.Purge()
}

// Len returns the number of cached entries.
func (l *LRU[K, V]) Len() int {
	return l.c.Len()
}

// Stats returns the hit/miss counters of Get.
func (l *LRU[K, V]) Stats() *Stats {
	return &l.stats
}
