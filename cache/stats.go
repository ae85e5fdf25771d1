// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"fmt"
	"sync/atomic"
)

// Stats counts the hits and misses of a cache.
type Stats struct {
	hit, miss atomic.Int64
	// hit rate per mille at the last snapshot
	rate atomic.Int32
}

func (cs *Stats) Hit() int64  { return cs.hit.Add(1) }
func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

// Snapshot returns the hits and misses so far. changed reports whether the
// hit rate moved by at least 0.1% since the previous snapshot.
func (cs *Stats) Snapshot() (hit, miss int64, changed bool) {
	hit = cs.hit.Load()
	miss = cs.miss.Load()

	var rate int32
	if lookups := hit + miss; lookups > 0 {
		rate = int32(hit * 1000 / lookups)
	}
	return hit, miss, cs.rate.Swap(rate) != rate
}

// HitRate formats the hit rate for logging, "n/a" before any lookup.
func HitRate(hit, miss int64) string {
	if hit+miss == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", float64(hit)/float64(hit+miss))
}
