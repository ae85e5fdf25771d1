// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides key/value loggers for the node packages.
// Records are routed through the root logger of go-ethereum's slog based log package,
// so that the command line can install a single handler for everything.
package log

import (
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Logger writes leveled records with alternating key/value context.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	With(ctx ...any) Logger
}

// WithContext returns a logger carrying the given context.
// The root handler is resolved when a record is written, so package level
// loggers created before Init still honour it.
func WithContext(ctx ...any) Logger {
	return &logger{ctx: ctx}
}

type logger struct {
	ctx []any
}

func (l *logger) merge(ctx []any) []any {
	if len(ctx) == 0 {
		return l.ctx
	}
	return append(append(make([]any, 0, len(l.ctx)+len(ctx)), l.ctx...), ctx...)
}

func (l *logger) Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, l.merge(ctx)...) }
func (l *logger) Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, l.merge(ctx)...) }
func (l *logger) Info(msg string, ctx ...any)  { ethlog.Root().Info(msg, l.merge(ctx)...) }
func (l *logger) Warn(msg string, ctx ...any)  { ethlog.Root().Warn(msg, l.merge(ctx)...) }
func (l *logger) Error(msg string, ctx ...any) { ethlog.Root().Error(msg, l.merge(ctx)...) }

func (l *logger) With(ctx ...any) Logger {
	return &logger{ctx: l.merge(ctx)}
}

// LevelFromVerbosity converts the 0-5 verbosity used on the command line
// (0 crit ... 5 trace) into a slog level.
func LevelFromVerbosity(verbosity int) slog.Level {
	return ethlog.FromLegacyLevel(verbosity)
}

// Init installs a terminal handler writing records at or above lvl to w.
func Init(w io.Writer, lvl slog.Level, useColor bool) {
	ethlog.SetDefault(ethlog.NewLogger(ethlog.NewTerminalHandlerWithLevel(w, lvl, useColor)))
}

// Discard drops every record. Handy in tests and benchmarks.
func Discard() {
	ethlog.SetDefault(ethlog.NewLogger(ethlog.DiscardHandler()))
}
