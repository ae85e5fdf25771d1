// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, slog.LevelDebug, false)
	defer Discard()

	l := WithContext("pkg", "radix")
	l.Debug("node written", "depth", 3)
	l.With("tree", "vb").Info("flushed")
	l.Trace("hidden")

	out := buf.String()
	assert.Contains(t, out, "node written")
	assert.Contains(t, out, "pkg=radix")
	assert.Contains(t, out, "depth=3")
	assert.Contains(t, out, "tree=vb")
	assert.NotContains(t, out, "hidden")
}

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LevelFromVerbosity(3))
	assert.Equal(t, slog.LevelDebug, LevelFromVerbosity(4))
}

func TestInitLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, slog.LevelInfo, false)
	defer Discard()

	l := WithContext("pkg", "ledger")
	l.Debug("block executing")
	l.Info("block executed", "height", 7)

	out := buf.String()
	assert.NotContains(t, out, "block executing")
	assert.Contains(t, out, "block executed")
	assert.Contains(t, out, "height=7")
}
