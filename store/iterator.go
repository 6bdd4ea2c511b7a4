package store

import (
	"bytes"

	"github.com/iov-one/custody/errors"
)

// mergeIterator combines cached items with the parent iterator. Cached
// items shadow parent entries with the same key and deleted items hide
// them.
type mergeIterator struct {
	items   []keyer
	pos     int
	parent  Iterator
	reverse bool

	valid bool
	key   []byte
	value []byte
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(items []keyer, parent Iterator, reverse bool) (*mergeIterator, error) {
	it := &mergeIterator{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
	if err := it.advance(); err != nil {
		parent.Close()
		return nil, err
	}
	return it, nil
}

// advance moves to the next visible key of the merged view.
func (m *mergeIterator) advance() error {
	for {
		var item keyer
		if m.pos < len(m.items) {
			item = m.items[m.pos]
		}
		parentOK := m.parent.Valid()

		var cmp int
		switch {
		case item == nil && !parentOK:
			m.valid = false
			return nil
		case item == nil:
			cmp = 1
		case !parentOK:
			cmp = -1
		default:
			cmp = bytes.Compare(item.Key(), m.parent.Key())
			if m.reverse {
				cmp = -cmp
			}
		}

		if cmp > 0 {
			m.valid, m.key, m.value = true, m.parent.Key(), m.parent.Value()
			return m.parent.Next()
		}
		if cmp == 0 {
			if err := m.parent.Next(); err != nil {
				return err
			}
		}
		m.pos++
		if s, ok := item.(setItem); ok {
			m.valid, m.key, m.value = true, s.key, s.value
			return nil
		}
	}
}

func (m *mergeIterator) Valid() bool {
	return m.valid
}

func (m *mergeIterator) Next() error {
	if !m.valid {
		return errors.ErrIteratorDone
	}
	return m.advance()
}

func (m *mergeIterator) Key() []byte {
	if !m.valid {
		panic("key on invalid iterator")
	}
	return m.key
}

func (m *mergeIterator) Value() []byte {
	if !m.valid {
		panic("value on invalid iterator")
	}
	return m.value
}

func (m *mergeIterator) Close() {
	m.parent.Close()
	m.items = nil
}
