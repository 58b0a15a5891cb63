package utils

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
)

// Recovery converts a panic below it into an ErrPanic result, so a broken
// handler fails its transaction instead of halting the node.
type Recovery struct{}

var _ jobchain.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx, next jobchain.Checker) (res *jobchain.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx, next jobchain.Deliverer) (res *jobchain.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, db, tx)
}
