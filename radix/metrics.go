// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package radix

import "github.com/cmts-dev/carmentis-node/metrics"

var (
	metricNodeCacheCount = metrics.LazyLoadGaugeVec("radix_node_cache_count", []string{"event"})
	metricFlushedNodes   = metrics.LazyLoadCounter("radix_flushed_node_count")
)
