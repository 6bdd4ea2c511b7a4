package custody

// ReadOnlyKVStore is the read side of every store. Missing keys are
// reported as a nil value, never as an error.
type ReadOnlyKVStore interface {
	// Get returns nil if the key does not exist.
	Get(key []byte) ([]byte, error)

	// Has reports whether the key exists.
	Has(key []byte) (bool, error)

	// Iterator walks [start, end) in ascending order. A nil start or
	// end leaves that side of the domain open.
	// No writes may happen within the domain while an iterator is open.
	Iterator(start, end []byte) (Iterator, error)

	// ReverseIterator walks [start, end) in descending order.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter is the write side of a store.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is a store that can be read and written. All extensions
// receive one for each transaction they process.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter

	// NewBatch returns a batch that can write multiple ops atomically
	NewBatch() Batch
}

// Batch collects writes and applies them together on Write.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator allows us to access a set of items within a range of keys.
//
//	itr, err := db.Iterator(start, end)
//	...
//	defer itr.Close()
//	for ; itr.Valid(); err = itr.Next() {
//		k, v := itr.Key(), itr.Value()
//	}
type Iterator interface {
	// Valid returns whether the current position is valid.
	// Once invalid, an Iterator is forever invalid.
	Valid() bool

	// Next moves the iterator to the next key. Calling it on an invalid
	// iterator returns ErrIteratorDone.
	Next() error

	// Key returns the key of the cursor. Read only.
	Key() []byte

	// Value returns the value of the cursor. Read only.
	Value() []byte

	// Close releases the Iterator.
	Close()
}

// CacheableKVStore is a KVStore that supports cache wrapping.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap maintains a scratch pad of uncommitted data that all
// reads observe. Call Write to flush it into the parent store, or
// Discard to drop it. This is our savepoint.
type KVCacheWrap interface {
	CacheableKVStore

	// Write syncs with the underlying store.
	Write() error

	// Discard invalidates this CacheWrap and releases all data
	Discard()
}

// CommitKVStore is a store that persists versions to disk.
type CommitKVStore interface {
	// Get returns the value at last committed state.
	Get(key []byte) ([]byte, error)

	// CacheWrap returns a scratch pad over the last committed state.
	CacheWrap() KVCacheWrap

	// Commit the next version to disk, and returns info
	Commit() (CommitID, error)

	// LoadLatestVersion loads the latest persisted version.
	LoadLatestVersion() error

	// LatestVersion returns info on the latest version saved to disk
	LatestVersion() (CommitID, error)
}

// CommitID contains the tree version number and its merkle root.
type CommitID struct {
	Version int64
	Hash    []byte
}
