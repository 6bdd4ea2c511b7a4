package orm

import (
	"regexp"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	custody.Persistent
	Validate() error
}

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// ModelBucket stores models of one type under a common prefix.
type ModelBucket struct {
	name   string
	prefix []byte
}

// NewModelBucket returns a bucket using name as the key prefix. It
// panics on an invalid name.
func NewModelBucket(name string) ModelBucket {
	if !isBucketName(name) {
		panic("illegal bucket name: " + name)
	}
	return ModelBucket{
		name:   name,
		prefix: []byte(name + ":"),
	}
}

// Name returns the bucket name.
func (b ModelBucket) Name() string {
	return b.name
}

// DBKey is the full key used in the store for the given model key.
func (b ModelBucket) DBKey(key []byte) []byte {
	res := make([]byte, 0, len(b.prefix)+len(key))
	return append(append(res, b.prefix...), key...)
}

// One loads the model stored under key into dest.
// This method returns ErrNotFound if the entity does not exist.
func (b ModelBucket) One(db custody.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot read from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrModel, "%s: cannot unmarshal: %s", b.name, err)
	}
	return nil
}

// Has returns nil if a model exists under key and ErrNotFound otherwise.
func (b ModelBucket) Has(db custody.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot read from the database")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	return nil
}

// Put validates and saves m under key.
func (b ModelBucket) Put(db custody.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot marshal: %s", err)
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

// Delete removes the model stored under key. It returns ErrNotFound if
// there is none.
func (b ModelBucket) Delete(db custody.KVStore, key []byte) error {
	if err := b.Has(db, key); err != nil {
		return err
	}
	return db.Delete(b.DBKey(key))
}

// PrefixScan iterates over all models whose key starts with prefix.
// A nil prefix walks the whole bucket.
func (b ModelBucket) PrefixScan(db custody.ReadOnlyKVStore, prefix []byte, reverse bool) (*ModelIterator, error) {
	start := b.DBKey(prefix)
	end := prefixRangeEnd(start)
	var (
		it  custody.Iterator
		err error
	)
	if reverse {
		it, err = db.ReverseIterator(start, end)
	} else {
		it, err = db.Iterator(start, end)
	}
	if err != nil {
		return nil, errors.Wrap(err, "cannot create iterator")
	}
	return &ModelIterator{it: it, prefix: b.prefix}, nil
}

// Register exposes the bucket on the query router under "/"+path.
func (b ModelBucket) Register(path string, r custody.QueryRouter) {
	if path == "" {
		path = b.name
	}
	r.Register("/"+path, b)
}

// Query implements custody.QueryHandler. Returned keys are the model
// keys without the bucket prefix.
func (b ModelBucket) Query(db custody.ReadOnlyKVStore, mod string, data []byte) ([]custody.Model, error) {
	switch mod {
	case custody.KeyQueryMod:
		raw, err := db.Get(b.DBKey(data))
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, nil
		}
		return []custody.Model{custody.Pair(data, raw)}, nil
	case custody.PrefixQueryMod:
		it, err := b.PrefixScan(db, data, false)
		if err != nil {
			return nil, err
		}
		defer it.Close()
		var res []custody.Model
		for ; it.Valid(); it.Next() {
			res = append(res, custody.Pair(it.Key(), it.Value()))
		}
		return res, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod %q", mod)
	}
}

// prefixRangeEnd returns the first key after every key starting with
// prefix, or nil if there is none.
func prefixRangeEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
