package jobtest

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/crypto"
)

// NewKey returns a new, random ed25519 private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the condition of a new, random signer.
func NewCondition() jobchain.Condition {
	return NewKey().PublicKey().Condition()
}
