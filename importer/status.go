// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package importer

import "fmt"

// State is the progress of an importer through its checks.
type State int

// States, in order.
const (
	Unchecked State = iota
	HeaderChecked
	TimestampChecked
	ContentChecked
)

func (s State) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case HeaderChecked:
		return "header-checked"
	case TimestampChecked:
		return "timestamp-checked"
	case ContentChecked:
		return "content-checked"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Status is the outcome kind of a check.
type Status int

// Statuses.
const (
	OK Status = iota
	UnrecoverableError
	TimestampError
	PreviousHashError
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case UnrecoverableError:
		return "unrecoverable"
	case TimestampError:
		return "timestamp"
	case PreviousHashError:
		return "previous-hash"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Retriable reports whether the same microblock may pass a later check: after a clock
// correction, or once the missing predecessor has arrived.
func (s Status) Retriable() bool {
	return s == TimestampError || s == PreviousHashError
}

// Result is the outcome of a check. Err is nil when Status is OK.
type Result struct {
	Status Status
	Err    error
}

// OK reports whether the check passed.
func (r Result) OK() bool {
	return r.Status == OK
}

func (r Result) String() string {
	if r.Err == nil {
		return r.Status.String()
	}
	return r.Status.String() + ": " + r.Err.Error()
}

func fail(status Status, err error) Result {
	return Result{Status: status, Err: err}
}
