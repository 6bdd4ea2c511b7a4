package orm

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// ModelIterator walks the models of one bucket.
type ModelIterator struct {
	it     custody.Iterator
	prefix []byte
}

// Valid returns true while there is a current model.
func (m *ModelIterator) Valid() bool {
	return m.it.Valid()
}

// Next moves to the following model.
func (m *ModelIterator) Next() error {
	return m.it.Next()
}

// Key returns the model key without the bucket prefix.
func (m *ModelIterator) Key() []byte {
	return m.it.Key()[len(m.prefix):]
}

// Value returns the serialized model.
func (m *ModelIterator) Value() []byte {
	return m.it.Value()
}

// Load unmarshals the current model into dest and returns its key.
func (m *ModelIterator) Load(dest Model) ([]byte, error) {
	if !m.it.Valid() {
		return nil, errors.ErrIteratorDone
	}
	if err := dest.Unmarshal(m.it.Value()); err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot unmarshal: %s", err)
	}
	return m.Key(), nil
}

// Close releases the iterator.
func (m *ModelIterator) Close() {
	m.it.Close()
}
