// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stage

// stackedMap maintains maps in a stack.
// Each map inherits key/value of map that is at lower level.
// It acts as a map with save-restore/snapshot-revert manner.
type stackedMap struct {
	mapStack       []*level
	keyRevisionMap map[string]*revisions
}

type level struct {
	kvs map[string]entry
}

// entry is a staged value, or a tombstone when deleted is set.
type entry struct {
	val     []byte
	deleted bool
}

type revisions []int

func (r *revisions) push(rev int) { *r = append(*r, rev) }
func (r *revisions) pop()         { *r = (*r)[:len(*r)-1] }
func (r revisions) top() int      { return r[len(r)-1] }

func newStackedMap() *stackedMap {
	return &stackedMap{
		keyRevisionMap: make(map[string]*revisions),
	}
}

// push pushes a new map on stack.
// It returns stack depth before push.
func (sm *stackedMap) push() int {
	sm.mapStack = append(sm.mapStack, &level{kvs: make(map[string]entry)})
	return len(sm.mapStack) - 1
}

// pop pops the map at top of stack.
// It reverts all put operations since last push.
func (sm *stackedMap) pop() {
	top := sm.mapStack[len(sm.mapStack)-1]
	for key := range top.kvs {
		revs := sm.keyRevisionMap[key]
		revs.pop()
		if len(*revs) == 0 {
			delete(sm.keyRevisionMap, key)
		}
	}
	sm.mapStack = sm.mapStack[:len(sm.mapStack)-1]
}

// popTo pops maps until stack depth reaches depth.
func (sm *stackedMap) popTo(depth int) {
	for len(sm.mapStack) > depth {
		sm.pop()
	}
}

// get returns the staged entry of key.
func (sm *stackedMap) get(key string) (entry, bool) {
	if revs, ok := sm.keyRevisionMap[key]; ok {
		e, ok := sm.mapStack[revs.top()].kvs[key]
		return e, ok
	}
	return entry{}, false
}

// put puts the entry into the map at stack top.
// It will panic if stack is empty.
func (sm *stackedMap) put(key string, e entry) {
	rev := len(sm.mapStack) - 1
	top := sm.mapStack[rev]
	_, existed := top.kvs[key]
	top.kvs[key] = e

	// records key revision for fast access
	if existed {
		return
	}
	if revs, ok := sm.keyRevisionMap[key]; ok {
		revs.push(rev)
	} else {
		sm.keyRevisionMap[key] = &revisions{rev}
	}
}

// each calls fn with the latest entry of every staged key.
func (sm *stackedMap) each(fn func(key string, e entry) error) error {
	for key, revs := range sm.keyRevisionMap {
		if err := fn(key, sm.mapStack[revs.top()].kvs[key]); err != nil {
			return err
		}
	}
	return nil
}

// size returns the number of staged keys.
func (sm *stackedMap) size() int {
	return len(sm.keyRevisionMap)
}
