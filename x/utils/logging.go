package utils

import (
	"time"

	"github.com/iov-one/jobchain"
	"github.com/tendermint/tendermint/libs/log"
)

// Logging records every transaction with its message path and how long the
// rest of the stack took. Failed checks are logged at info level and failed
// deliveries at error level. Successful checks stay at debug.
type Logging struct{}

var _ jobchain.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx, next jobchain.Checker) (*jobchain.CheckResult, error) {
	ctx = jobchain.WithLogInfo(ctx, "path", jobchain.GetPath(tx))
	started := time.Now()
	res, err := next.Check(ctx, db, tx)

	logger := elapsed(ctx, started)
	switch {
	case err != nil:
		logger.Info("check failed", "err", err)
	default:
		logger.Debug("check", "log", res.Log, "gas", res.GasAllocated)
	}
	return res, err
}

func (Logging) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx, next jobchain.Deliverer) (*jobchain.DeliverResult, error) {
	ctx = jobchain.WithLogInfo(ctx, "path", jobchain.GetPath(tx))
	started := time.Now()
	res, err := next.Deliver(ctx, db, tx)

	logger := elapsed(ctx, started)
	switch {
	case err != nil:
		logger.Error("deliver failed", "err", err)
	default:
		logger.Info("deliver", "log", res.Log)
	}
	return res, err
}

func elapsed(ctx jobchain.Context, started time.Time) log.Logger {
	return jobchain.GetLogger(ctx).With("took", time.Since(started).Round(time.Microsecond).String())
}
