// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package importer

import "github.com/cmts-dev/carmentis-node/metrics"

var metricCheckCount = metrics.LazyLoadCounterVec("importer_check_count", []string{"status"})
