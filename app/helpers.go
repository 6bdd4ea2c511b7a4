package app

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	abci "github.com/tendermint/tendermint/abci/types"
)

// Querier is the part of abci.Application that ABCIStore reads
// through. Both StoreApp and BaseApp implement it.
type Querier interface {
	Query(abci.RequestQuery) abci.ResponseQuery
}

var (
	_ Querier = (*StoreApp)(nil)
	_ Querier = BaseApp{}
)

// ABCIStore exposes one query path of a Querier as a ReadOnlyKVStore.
// Keys are the model keys as returned by the query, without any bucket
// prefix.
type ABCIStore struct {
	app  Querier
	path string
}

var _ custody.ReadOnlyKVStore = (*ABCIStore)(nil)

// NewABCIStore returns a store reading through app at the given query
// path, eg. "/escrows".
func NewABCIStore(app Querier, path string) *ABCIStore {
	return &ABCIStore{app: app, path: path}
}

// Get will query for exactly one value over the abci store.
func (a *ABCIStore) Get(key []byte) ([]byte, error) {
	models, err := a.query("", key)
	if err != nil {
		return nil, err
	}
	switch len(models) {
	case 0:
		return nil, nil
	case 1:
		return models[0].Value, nil
	default:
		return nil, errors.Wrapf(errors.ErrState, "%d results for a single key", len(models))
	}
}

// Has returns true if the given key is in the abci app store
func (a *ABCIStore) Has(key []byte) (bool, error) {
	v, err := a.Get(key)
	return v != nil, err
}

// Iterator lists the entire range. Bounded ranges are not supported
// by the query interface.
func (a *ABCIStore) Iterator(start, end []byte) (custody.Iterator, error) {
	if start != nil || end != nil {
		return nil, errors.Wrap(errors.ErrInput, "only the entire range can be iterated")
	}
	models, err := a.query(custody.PrefixQueryMod, nil)
	if err != nil {
		return nil, err
	}
	return store.NewSliceIterator(models), nil
}

// ReverseIterator lists the entire range backwards.
func (a *ABCIStore) ReverseIterator(start, end []byte) (custody.Iterator, error) {
	if start != nil || end != nil {
		return nil, errors.Wrap(errors.ErrInput, "only the entire range can be iterated")
	}
	models, err := a.query(custody.PrefixQueryMod, nil)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return store.NewSliceIterator(models), nil
}

func (a *ABCIStore) query(mod string, data []byte) ([]custody.Model, error) {
	path := a.path
	if mod != "" {
		path += "?" + mod
	}
	res := a.app.Query(abci.RequestQuery{Path: path, Data: data})
	if res.Code != 0 {
		return nil, errors.Wrapf(errors.ErrDatabase, "query %s: (%d) %s", path, res.Code, res.Log)
	}
	return toModels(res.Key, res.Value)
}

func toModels(keys, values []byte) ([]custody.Model, error) {
	var k, v ResultSet
	if err := k.Unmarshal(keys); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal keys")
	}
	if err := v.Unmarshal(values); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal values")
	}
	return JoinResults(&k, &v)
}
