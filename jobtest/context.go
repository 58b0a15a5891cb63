package jobtest

import (
	"context"
	"time"

	"github.com/iov-one/jobchain"
)

// Context returns a context with a chain ID, a block height and a block
// time set, as it is done by the application for every transaction.
func Context(chainID string, height int64, now time.Time) jobchain.Context {
	ctx := context.Background()
	ctx = jobchain.WithChainID(ctx, chainID)
	ctx = jobchain.WithHeight(ctx, height)
	ctx = jobchain.WithBlockTime(ctx, now)
	return ctx
}
