package utils

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
)

// Savepoint runs the rest of the stack on a cache of the store. The cache
// is written only when the call succeeds, so a failed transaction leaves no
// partial state behind. Each phase must be enabled explicitly.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ jobchain.Decorator = Savepoint{}

// NewSavepoint returns a disabled savepoint. Use OnCheck and OnDeliver to
// select the phases it guards.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx, next jobchain.Checker) (*jobchain.CheckResult, error) {
	var res *jobchain.CheckResult
	err := s.guard(s.onCheck, db, func(db jobchain.KVStore) error {
		var err error
		res, err = next.Check(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx, next jobchain.Deliverer) (*jobchain.DeliverResult, error) {
	var res *jobchain.DeliverResult
	err := s.guard(s.onDeliver, db, func(db jobchain.KVStore) error {
		var err error
		res, err = next.Deliver(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// guard calls fn with a cache of db when enabled and db can be cached,
// otherwise with db itself.
func (Savepoint) guard(enabled bool, db jobchain.KVStore, fn func(jobchain.KVStore) error) error {
	cacheable, ok := db.(jobchain.CacheableKVStore)
	if !enabled || !ok {
		return fn(db)
	}
	cache := cacheable.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write savepoint")
	}
	return nil
}
