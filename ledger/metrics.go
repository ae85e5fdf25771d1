// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "github.com/cmts-dev/carmentis-node/metrics"

var (
	metricBlockDuration = metrics.LazyLoadHistogram("ledger_block_duration_ms", metrics.Bucket10s)
	metricTxCount       = metrics.LazyLoadCounterVec("ledger_tx_count", []string{"type", "status"})
)
