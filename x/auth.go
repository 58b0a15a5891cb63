package x

import (
	"github.com/iov-one/jobchain"
)

// Authenticator reports who authorized the transaction being processed.
// Handlers receive one in their constructor instead of reading signatures
// themselves.
type Authenticator interface {
	// GetConditions returns every condition the transaction satisfies.
	GetConditions(jobchain.Context) []jobchain.Condition
	// HasAddress reports whether any of those conditions resolves to addr.
	HasAddress(jobchain.Context, jobchain.Address) bool
}

// MultiAuth merges the conditions of several authenticators.
type MultiAuth []Authenticator

var _ Authenticator = MultiAuth(nil)

func ChainAuth(auths ...Authenticator) MultiAuth {
	return MultiAuth(auths)
}

// GetConditions returns the conditions of all authenticators, without
// duplicates, in the order they were first seen.
func (m MultiAuth) GetConditions(ctx jobchain.Context) []jobchain.Condition {
	var all []jobchain.Condition
	for _, auth := range m {
		for _, c := range auth.GetConditions(ctx) {
			if !contains(all, c) {
				all = append(all, c)
			}
		}
	}
	return all
}

func (m MultiAuth) HasAddress(ctx jobchain.Context, addr jobchain.Address) bool {
	for _, auth := range m {
		if auth.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first condition, or nil when nobody signed.
func MainSigner(ctx jobchain.Context, auth Authenticator) jobchain.Condition {
	if conds := auth.GetConditions(ctx); len(conds) > 0 {
		return conds[0]
	}
	return nil
}

// GetAddresses returns the address of every condition.
func GetAddresses(ctx jobchain.Context, auth Authenticator) []jobchain.Address {
	conds := auth.GetConditions(ctx)
	addrs := make([]jobchain.Address, len(conds))
	for i, c := range conds {
		addrs[i] = c.Address()
	}
	return addrs
}

// FirstMissing returns the index of the first required address that did
// not authorize the transaction, or -1 when all did.
func FirstMissing(ctx jobchain.Context, auth Authenticator, required ...jobchain.Address) int {
	for i, addr := range required {
		if !auth.HasAddress(ctx, addr) {
			return i
		}
	}
	return -1
}

func contains(conds []jobchain.Condition, c jobchain.Condition) bool {
	for _, have := range conds {
		if have.Equals(c) {
			return true
		}
	}
	return false
}
