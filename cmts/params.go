// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cmts

// Constants of the microblock protocol.
const (
	MagicString     = "CMTS"
	ProtocolVersion = uint16(1)

	MaxTimestampPast   uint64 = 300 // (unit: second) how old a microblock timestamp may be.
	MaxTimestampFuture uint64 = 60  // (unit: second) how far ahead a microblock timestamp may be.

	FixedGasFee uint64 = 1000 // gas charged for every microblock.
	GasPerByte  uint64 = 1    // gas charged for each byte of section data.
	GasUnit     uint64 = 1000 // gas price divisor when converting gas into atomic token units.
	MaxGas      uint64 = 1<<24 - 1
	MaxGasPrice uint64 = 1<<32 - 1

	TokenDecimals       = 5
	Token        uint64 = 100_000 // atomic units in one token.
	InitialOffer uint64 = 1_000_000_000 * Token
)

// Ranges of the fixed-width header fields.
const (
	MaxHeight    uint64 = 1<<48 - 1
	MaxTimestamp uint64 = 1<<48 - 1
)
