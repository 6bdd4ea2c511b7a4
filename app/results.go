package app

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// ResultSet is the serialized form of the keys or the values returned
// by an ABCI query. It holds zero or more results.
type ResultSet struct {
	Results [][]byte `json:"results"`
}

// Marshal serializes the set with amino.
func (r *ResultSet) Marshal() ([]byte, error) {
	bz, err := cdc.MarshalBinaryBare(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrType, err.Error())
	}
	return bz, nil
}

// Unmarshal parses an amino serialized set. An empty set is encoded
// as no bytes at all.
func (r *ResultSet) Unmarshal(bz []byte) error {
	if len(bz) == 0 {
		r.Results = nil
		return nil
	}
	if err := cdc.UnmarshalBinaryBare(bz, r); err != nil {
		return errors.Wrap(errors.ErrType, err.Error())
	}
	return nil
}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []custody.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []custody.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]custody.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrap(errors.ErrState, "mismatched result set size")
	}
	mods := make([]custody.Model, len(kref))
	for i := range mods {
		mods[i] = custody.Model{
			Key:   kref[i],
			Value: vref[i],
		}
	}
	return mods, nil
}

// UnmarshalOneResult will parse a resultset, and
// it if is not empty, unmarshal the first result into o
func UnmarshalOneResult(bz []byte, o custody.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return err
	}
	if len(res.Results) == 0 {
		return nil
	}
	return o.Unmarshal(res.Results[0])
}
