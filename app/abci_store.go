package app

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/store"
	abci "github.com/tendermint/tendermint/abci/types"
)

// ABCIStore reads raw state through the Query method of an application,
// so client code can load wallets, jobs or nonces with the same buckets the
// handlers use. Only point reads and full listings are supported.
type ABCIStore struct {
	app abci.Application
}

var _ jobchain.ReadOnlyKVStore = (*ABCIStore)(nil)

func NewABCIStore(app abci.Application) *ABCIStore {
	return &ABCIStore{app: app}
}

func (a *ABCIStore) query(path string, data []byte) ([]jobchain.Model, error) {
	res := a.app.Query(abci.RequestQuery{Path: path, Data: data})
	if res.Code != 0 {
		return nil, errors.Wrapf(errors.ErrDatabase, "query %s: code %d: %s", path, res.Code, res.Log)
	}
	var keys, values ResultSet
	if err := keys.Unmarshal(res.Key); err != nil {
		return nil, errors.Wrap(err, "query keys")
	}
	if err := values.Unmarshal(res.Value); err != nil {
		return nil, errors.Wrap(err, "query values")
	}
	return JoinResults(&keys, &values)
}

// Get returns nil when the key is not set.
func (a *ABCIStore) Get(key []byte) ([]byte, error) {
	models, err := a.query("/", key)
	switch {
	case err != nil:
		return nil, err
	case len(models) > 1:
		return nil, errors.Wrapf(errors.ErrState, "%d results for key %X", len(models), key)
	case len(models) == 0:
		return nil, nil
	}
	return models[0].Value, nil
}

func (a *ABCIStore) Has(key []byte) (bool, error) {
	v, err := a.Get(key)
	return v != nil, err
}

// Iterator lists the whole store. Both bounds must be nil.
func (a *ABCIStore) Iterator(start, end []byte) (jobchain.Iterator, error) {
	models, err := a.list(start, end)
	if err != nil {
		return nil, err
	}
	return store.NewSliceIterator(models), nil
}

func (a *ABCIStore) ReverseIterator(start, end []byte) (jobchain.Iterator, error) {
	models, err := a.list(start, end)
	if err != nil {
		return nil, err
	}
	reversed := make([]jobchain.Model, len(models))
	for i, m := range models {
		reversed[len(models)-1-i] = m
	}
	return store.NewSliceIterator(reversed), nil
}

func (a *ABCIStore) list(start, end []byte) ([]jobchain.Model, error) {
	if start != nil || end != nil {
		return nil, errors.Wrap(errors.ErrInput, "only the full range can be listed")
	}
	return a.query("/?"+jobchain.PrefixQueryMod, nil)
}
