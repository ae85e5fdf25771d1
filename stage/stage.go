// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stage implements a write overlay over a kv store.
// Writes are kept in memory, can be reverted to a checkpoint and are finally
// committed to the underlying store with one atomic bulk write.
package stage

import (
	"bytes"
	"slices"

	"github.com/pkg/errors"

	"github.com/cmts-dev/carmentis-node/kv"
)

var errNotFound = errors.New("not found in stage")

// Stage is a staged kv.Store. It's not safe for concurrent use.
type Stage struct {
	src kv.Store
	sm  *stackedMap
}

var _ kv.Store = (*Stage)(nil)

// New creates a stage over src.
func New(src kv.Store) *Stage {
	s := &Stage{src: src, sm: newStackedMap()}
	s.sm.push()
	return s
}

// Checkpoint marks the current state. Writes made after it can be dropped by Revert.
func (s *Stage) Checkpoint() int {
	return s.sm.push()
}

// Revert drops all writes made since the checkpoint.
func (s *Stage) Revert(checkpoint int) {
	if checkpoint < 1 {
		checkpoint = 1
	}
	s.sm.popTo(checkpoint)
}

// Len returns the number of keys with pending writes.
func (s *Stage) Len() int {
	return s.sm.size()
}

// Discard drops all pending writes.
func (s *Stage) Discard() {
	s.sm = newStackedMap()
	s.sm.push()
}

// Commit writes all pending writes into the source store atomically, then clears the stage.
func (s *Stage) Commit() error {
	if s.sm.size() == 0 {
		return nil
	}
	bulk := s.src.Bulk()
	if err := s.sm.each(func(key string, e entry) error {
		if e.deleted {
			return bulk.Delete([]byte(key))
		}
		return bulk.Put([]byte(key), e.val)
	}); err != nil {
		return err
	}
	if err := bulk.Write(); err != nil {
		return err
	}
	s.Discard()
	return nil
}

func (s *Stage) Get(key []byte) ([]byte, error) {
	if e, ok := s.sm.get(string(key)); ok {
		if e.deleted {
			return nil, errNotFound
		}
		return e.val, nil
	}
	return s.src.Get(key)
}

func (s *Stage) Has(key []byte) (bool, error) {
	if e, ok := s.sm.get(string(key)); ok {
		return !e.deleted, nil
	}
	return s.src.Has(key)
}

func (s *Stage) IsNotFound(err error) bool {
	return err == errNotFound || s.src.IsNotFound(err)
}

func (s *Stage) Put(key, val []byte) error {
	s.sm.put(string(key), entry{val: bytes.Clone(val)})
	return nil
}

func (s *Stage) Delete(key []byte) error {
	s.sm.put(string(key), entry{deleted: true})
	return nil
}

// Bulk returns a bulk putter which stages its writes on Write.
func (s *Stage) Bulk() kv.Bulk {
	var pending []func()
	return &struct {
		kv.PutFunc
		kv.DeleteFunc
		kv.WriteFunc
	}{
		func(key, val []byte) error {
			k, v := string(key), bytes.Clone(val)
			pending = append(pending, func() { s.sm.put(k, entry{val: v}) })
			return nil
		},
		func(key []byte) error {
			k := string(key)
			pending = append(pending, func() { s.sm.put(k, entry{deleted: true}) })
			return nil
		},
		func() error {
			for _, f := range pending {
				f()
			}
			pending = pending[:0]
			return nil
		},
	}
}

// Iterate iterates over the merged view of the stage and the source store.
func (s *Stage) Iterate(r kv.Range) kv.Iterator {
	merged := make(map[string][]byte)

	iter := s.src.Iterate(r)
	for iter.Next() {
		merged[string(iter.Key())] = bytes.Clone(iter.Value())
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return &sliceIter{err: err}
	}

	inRange := func(k string) bool {
		if bytes.Compare([]byte(k), r.Start) < 0 {
			return false
		}
		return len(r.Limit) == 0 || bytes.Compare([]byte(k), r.Limit) < 0
	}
	_ = s.sm.each(func(key string, e entry) error {
		if !inRange(key) {
			return nil
		}
		if e.deleted {
			delete(merged, key)
		} else {
			merged[key] = e.val
		}
		return nil
	})

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	it := &sliceIter{pos: -1}
	for _, k := range keys {
		it.keys = append(it.keys, []byte(k))
		it.vals = append(it.vals, merged[k])
	}
	return it
}

type sliceIter struct {
	keys [][]byte
	vals [][]byte
	pos  int
	err  error
}

func (it *sliceIter) Next() bool {
	if it.err != nil || it.pos+1 >= len(it.keys) {
		return false
	}
	it.pos++
	return true
}

func (it *sliceIter) Key() []byte   { return it.keys[it.pos] }
func (it *sliceIter) Value() []byte { return it.vals[it.pos] }
func (it *sliceIter) Release()      {}
func (it *sliceIter) Error() error  { return it.err }
