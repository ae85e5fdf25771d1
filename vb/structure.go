// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vb

import (
	"fmt"
	"strings"

	"github.com/cmts-dev/carmentis-node/microblock"
)

// Constraint bounds the number of sections of a rule item.
type Constraint uint8

// Constraints.
const (
	Zero Constraint = iota
	One
	AtLeastOne
	AtMostOne
	Any
)

func (c Constraint) allows(n int) bool {
	switch c {
	case Zero:
		return n == 0
	case One:
		return n == 1
	case AtLeastOne:
		return n >= 1
	case AtMostOne:
		return n <= 1
	default:
		return true
	}
}

func (c Constraint) String() string {
	switch c {
	case Zero:
		return "zero"
	case One:
		return "exactly one"
	case AtLeastOne:
		return "at least one"
	case AtMostOne:
		return "at most one"
	case Any:
		return "any number of"
	}
	return fmt.Sprintf("constraint(%d)", uint8(c))
}

// Item is a rule item: a constraint on a single section type, or on a group.
// A group consumes a contiguous run of sections whose types are listed by its members,
// in any order. The group constraint bounds the length of the run, and each member
// constraint bounds the count of its own type inside the run.
type Item struct {
	Constraint Constraint
	Type       uint8
	Members    []Item
}

// Single creates a single type item.
func Single(c Constraint, typ uint8) Item {
	return Item{Constraint: c, Type: typ}
}

// Group creates a group item. Members must be single type items.
func Group(c Constraint, members ...Item) Item {
	return Item{Constraint: c, Members: members}
}

// StructureError is returned when the sequence of section types breaks the rules.
type StructureError struct {
	Message string
}

func (e *StructureError) Error() string {
	return "invalid microblock structure: " + e.Message
}

// StructureChecker checks the ordered section types of a microblock against rules.
type StructureChecker struct {
	rules []Item
	name  func(uint8) string
}

// NewStructureChecker creates a checker. name renders section types in errors.
func NewStructureChecker(rules []Item, name func(uint8) string) *StructureChecker {
	return &StructureChecker{rules: rules, name: name}
}

// Check consumes sections with a single forward cursor, rule after rule.
func (sc *StructureChecker) Check(sections []*microblock.Section) error {
	pos := 0
	for _, item := range sc.rules {
		if item.Members == nil {
			n := 0
			for pos < len(sections) && sections[pos].Type == item.Type {
				pos++
				n++
			}
			if !item.Constraint.allows(n) {
				return &StructureError{fmt.Sprintf("expected %v %s section, got %d", item.Constraint, sc.name(item.Type), n)}
			}
			continue
		}

		counts := make([]int, len(item.Members))
		total := 0
	run:
		for pos < len(sections) {
			for i, m := range item.Members {
				if sections[pos].Type == m.Type {
					counts[i]++
					total++
					pos++
					continue run
				}
			}
			break
		}
		if !item.Constraint.allows(total) {
			return &StructureError{fmt.Sprintf("expected %v section among %s, got %d", item.Constraint, sc.groupNames(item), total)}
		}
		for i, m := range item.Members {
			if !m.Constraint.allows(counts[i]) {
				return &StructureError{fmt.Sprintf("expected %v %s section, got %d", m.Constraint, sc.name(m.Type), counts[i])}
			}
		}
	}
	if pos < len(sections) {
		return &StructureError{fmt.Sprintf("unexpected %s section at index %d", sc.name(sections[pos].Type), pos)}
	}
	return nil
}

func (sc *StructureChecker) groupNames(item Item) string {
	names := make([]string, 0, len(item.Members))
	for _, m := range item.Members {
		names = append(names, sc.name(m.Type))
	}
	return "[" + strings.Join(names, ", ") + "]"
}
