/*
Package sigs verifies transaction signatures and keeps a nonce per public
key, so that a signed transaction is accepted on one chain and only once.
*/
package sigs

import (
	"context"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/x"
)

// Gas charged by CheckTx for every verified signature.
const gasPerSignature = 500

type ctxKey int

const signersKey ctxKey = 0

// Decorator verifies all signatures of a SignedTx and exposes the signers
// to the rest of the stack through Authenticate. Transactions that do not
// implement SignedTx pass through untouched.
type Decorator struct {
	allowUnsigned bool
}

var _ jobchain.Decorator = Decorator{}

// NewDecorator rejects signed transactions without any signature.
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs accepts transactions with no signature at all.
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowUnsigned = true
	return d
}

func (d Decorator) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx, next jobchain.Checker) (*jobchain.CheckResult, error) {
	ctx, n, err := d.authenticate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.GasAllocated += int64(n * gasPerSignature)
	return res, nil
}

func (d Decorator) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx, next jobchain.Deliverer) (*jobchain.DeliverResult, error) {
	ctx, _, err := d.authenticate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, db, tx)
}

func (d Decorator) authenticate(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (jobchain.Context, int, error) {
	signed, ok := tx.(SignedTx)
	if !ok {
		return ctx, 0, nil
	}
	signers, err := VerifyTxSignatures(db, signed, jobchain.GetChainID(ctx))
	if err != nil {
		return nil, 0, errors.Wrap(err, "verify signatures")
	}
	if len(signers) == 0 && !d.allowUnsigned {
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "unsigned transaction")
	}
	return context.WithValue(ctx, signersKey, signers), len(signers), nil
}

// Authenticate reports the signers verified by the Decorator.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the signer conditions in signature order.
func (Authenticate) GetConditions(ctx jobchain.Context) []jobchain.Condition {
	signers, _ := ctx.Value(signersKey).([]jobchain.Condition)
	return signers
}

func (a Authenticate) HasAddress(ctx jobchain.Context, addr jobchain.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

// RegisterQuery exposes accounts under /auth.
func RegisterQuery(qr jobchain.QueryRouter) {
	NewBucket().Register("auth", qr)
}
