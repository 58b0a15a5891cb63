package jobtest

import (
	"context"

	"github.com/iov-one/jobchain"
)

// Auth authenticates a fixed set of conditions, Signer and Signers
// together, no matter what the context holds.
type Auth struct {
	Signer  jobchain.Condition
	Signers []jobchain.Condition
}

func (a *Auth) GetConditions(jobchain.Context) []jobchain.Condition {
	conds := append([]jobchain.Condition(nil), a.Signers...)
	if a.Signer != nil {
		conds = append(conds, a.Signer)
	}
	return conds
}

func (a *Auth) HasAddress(ctx jobchain.Context, addr jobchain.Address) bool {
	return signedBy(a.GetConditions(ctx), addr)
}

// CtxAuth authenticates the conditions stored in the context under Key.
// Tests use it to change signers between two calls of the same handler.
type CtxAuth struct {
	Key string
}

func (a *CtxAuth) SetConditions(ctx jobchain.Context, conds ...jobchain.Condition) jobchain.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx jobchain.Context) []jobchain.Condition {
	conds, _ := ctx.Value(a.Key).([]jobchain.Condition)
	return conds
}

func (a *CtxAuth) HasAddress(ctx jobchain.Context, addr jobchain.Address) bool {
	return signedBy(a.GetConditions(ctx), addr)
}

func signedBy(conds []jobchain.Condition, addr jobchain.Address) bool {
	for _, c := range conds {
		if c.Address().Equals(addr) {
			return true
		}
	}
	return false
}
