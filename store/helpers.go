package store

import (
	"github.com/iov-one/custody/errors"
)

// SliceIterator walks a prepared list of models.
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator creates an iterator over the given models. They must
// already be sorted in the iteration order.
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{data: data}
}

// Valid returns true while there is a current model.
func (s *SliceIterator) Valid() bool {
	return s.idx < len(s.data)
}

// Next moves to the next model.
func (s *SliceIterator) Next() error {
	if !s.Valid() {
		return errors.ErrIteratorDone
	}
	s.idx++
	return nil
}

// Key returns the key of the current model.
func (s *SliceIterator) Key() []byte {
	return s.data[s.idx].Key
}

// Value returns the value of the current model.
func (s *SliceIterator) Value() []byte {
	return s.data[s.idx].Value
}

// Close releases the data.
func (s *SliceIterator) Close() {
	s.data = nil
}

// EmptyKVStore never holds any data. It is the bottom layer of MemStore.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

// Get always returns nil
func (EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }

// Has always returns false
func (EmptyKVStore) Has(key []byte) (bool, error) { return false, nil }

// Set is a noop
func (EmptyKVStore) Set(key, value []byte) error { return nil }

// Delete is a noop
func (EmptyKVStore) Delete(key []byte) error { return nil }

// Iterator is always empty
func (EmptyKVStore) Iterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// ReverseIterator is always empty
func (EmptyKVStore) ReverseIterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// NewBatch returns a batch that drops everything it is given
func (e EmptyKVStore) NewBatch() Batch {
	return NewNonAtomicBatch(e)
}

// Op is a single set or delete operation.
type Op struct {
	del   bool
	key   []byte
	value []byte
}

// SetOp is a helper to create a set operation
func SetOp(key, value []byte) Op {
	return Op{key: key, value: value}
}

// DelOp is a helper to create a delete operation
func DelOp(key []byte) Op {
	return Op{key: key, del: true}
}

// Apply runs the operation against out.
func (o Op) Apply(out SetDeleter) error {
	if o.del {
		return out.Delete(o.key)
	}
	return out.Set(o.key, o.value)
}

// NonAtomicBatch piles up ops and executes them later on the
// underlying store. Only use it in front of in-memory stores, a failing
// Write leaves the ops applied so far in place.
type NonAtomicBatch struct {
	out SetDeleter
	ops []Op
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch creates an empty batch writing to out.
func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

// Set adds a set operation to the batch
func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, SetOp(key, value))
	return nil
}

// Delete adds a delete operation to the batch
func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, DelOp(key))
	return nil
}

// Write applies all the ops in order and resets the batch.
func (b *NonAtomicBatch) Write() error {
	for _, op := range b.ops {
		if err := op.Apply(b.out); err != nil {
			return errors.Wrap(err, "apply batch")
		}
	}
	b.ops = nil
	return nil
}

// Ops returns the pending operations.
func (b *NonAtomicBatch) Ops() []Op {
	return b.ops
}
