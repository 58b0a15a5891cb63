package sigs

import (
	"github.com/iov-one/jobchain/crypto"
	"github.com/iov-one/jobchain/errors"
)

// SignedTx is implemented by transactions that carry signatures.
type SignedTx interface {
	// GetSignBytes returns the deterministic encoding of the signed
	// content, without the signatures.
	GetSignBytes() ([]byte, error)
	GetSignatures() []*StdSignature
}

// StdSignature signs the sign bytes of a transaction for one chain and
// one nonce of Pubkey.
type StdSignature struct {
	Sequence  int64             `json:"sequence"`
	Pubkey    *crypto.PublicKey `json:"pubkey"`
	Signature *crypto.Signature `json:"signature"`
}

func (s *StdSignature) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

func (s *StdSignature) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, s)
}

func (s *StdSignature) Validate() error {
	switch {
	case s.Sequence < 0:
		return errors.Wrap(ErrInvalidSequence, "negative")
	case s.Pubkey == nil || len(s.Pubkey.Ed25519) == 0:
		return errors.Wrap(errors.ErrUnauthorized, "no public key")
	case s.Signature == nil || len(s.Signature.Ed25519) == 0:
		return errors.Wrap(errors.ErrUnauthorized, "no signature")
	}
	return nil
}
