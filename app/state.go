package app

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
)

// chainState holds the committed store together with the caches that
// collect the writes of the current block and of the mempool checks.
// Both caches are recreated after every commit.
type chainState struct {
	committed jobchain.CommitKVStore
	deliver   jobchain.KVCacheWrap
	check     jobchain.KVCacheWrap
}

func loadChainState(db jobchain.CommitKVStore) (*chainState, error) {
	if err := db.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	s := &chainState{committed: db}
	s.reset()
	return s, nil
}

func (s *chainState) reset() {
	s.deliver = s.committed.CacheWrap()
	s.check = s.committed.CacheWrap()
}

func (s *chainState) latest() (jobchain.CommitID, error) {
	return s.committed.LatestVersion()
}

// commit persists the delivered block. Pending check writes are dropped,
// the mempool is rechecked against the new state.
func (s *chainState) commit() (jobchain.CommitID, error) {
	if err := s.deliver.Write(); err != nil {
		return jobchain.CommitID{}, errors.Wrap(err, "flush block")
	}
	s.check.Discard()
	id, err := s.committed.Commit()
	if err != nil {
		return id, err
	}
	s.reset()
	return id, nil
}

// snapshot is a throw away view of the last committed state.
func (s *chainState) snapshot() jobchain.KVCacheWrap {
	return s.committed.CacheWrap()
}

// chainIDKey lives in the internal _jc: namespace, no bucket can use it.
const chainIDKey = "_jc:chainID"

func readChainID(db jobchain.ReadOnlyKVStore) (string, error) {
	raw, err := db.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "read chain id")
	}
	return string(raw), nil
}

// writeChainID stores the chain id once. It cannot be changed later.
func writeChainID(db jobchain.KVStore, chainID string) error {
	if !jobchain.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id %q", chainID)
	}
	switch taken, err := db.Has([]byte(chainIDKey)); {
	case err != nil:
		return errors.Wrap(err, "read chain id")
	case taken:
		return errors.Wrap(errors.ErrUnauthorized, "chain id is set at genesis only")
	}
	return errors.Wrap(db.Set([]byte(chainIDKey), []byte(chainID)), "write chain id")
}
