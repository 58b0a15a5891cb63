package app

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// ResultSet is the wire format of a query result. Keys and values are
// returned as two separate sets of equal size.
type ResultSet struct {
	Results [][]byte `json:"results"`
}

func (r *ResultSet) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(r)
}

// Unmarshal accepts empty input as an empty set.
func (r *ResultSet) Unmarshal(raw []byte) error {
	if len(raw) == 0 {
		r.Results = nil
		return nil
	}
	return cdc.UnmarshalBinaryBare(raw, r)
}

// ResultsFromKeys collects the keys of models.
func ResultsFromKeys(models []jobchain.Model) *ResultSet {
	return collect(models, func(m jobchain.Model) []byte { return m.Key })
}

// ResultsFromValues collects the values of models, in the same order.
func ResultsFromValues(models []jobchain.Model) *ResultSet {
	return collect(models, func(m jobchain.Model) []byte { return m.Value })
}

func collect(models []jobchain.Model, field func(jobchain.Model) []byte) *ResultSet {
	set := &ResultSet{Results: make([][]byte, len(models))}
	for i, m := range models {
		set.Results[i] = field(m)
	}
	return set
}

// JoinResults pairs a key set with its value set.
func JoinResults(keys, values *ResultSet) ([]jobchain.Model, error) {
	if len(keys.Results) != len(values.Results) {
		return nil, errors.Wrapf(errors.ErrState, "%d keys for %d values", len(keys.Results), len(values.Results))
	}
	models := make([]jobchain.Model, len(keys.Results))
	for i, key := range keys.Results {
		models[i] = jobchain.Pair(key, values.Results[i])
	}
	return models, nil
}

// UnmarshalOneResult decodes the first value of a marshalled ResultSet into
// dest. An empty set leaves dest untouched.
func UnmarshalOneResult(raw []byte, dest jobchain.Persistent) error {
	var set ResultSet
	if err := set.Unmarshal(raw); err != nil {
		return errors.Wrap(err, "result set")
	}
	if len(set.Results) == 0 {
		return nil
	}
	return dest.Unmarshal(set.Results[0])
}
