package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/crypto"
	"github.com/iov-one/jobchain/errors"
)

// signVersion prefixes every signed message.
var signVersion = []byte{0, 0xCA, 0xFE, 0}

// SignBytes returns the digest a signature covers:
//
//	sha512(version | len(chainID) | chainID | seq big endian | payload)
//
// Binding the chain and the nonce prevents a signature from being
// replayed on another chain or a second time on this one.
func SignBytes(payload []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !jobchain.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id %q", chainID)
	}
	msg := make([]byte, 0, len(signVersion)+1+len(chainID)+8+len(payload))
	msg = append(msg, signVersion...)
	msg = append(msg, byte(len(chainID)))
	msg = append(msg, chainID...)
	msg = binary.BigEndian.AppendUint64(msg, uint64(seq))
	msg = append(msg, payload...)
	sum := sha512.Sum512(msg)
	return sum[:], nil
}

// SignTx signs tx with the given nonce of signer.
func SignTx(signer crypto.Signer, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	digest, err := SignBytes(payload, chainID, seq)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(digest)
	if err != nil {
		return nil, err
	}
	return &StdSignature{Pubkey: signer.PublicKey(), Signature: sig, Sequence: seq}, nil
}

// VerifyTxSignatures checks every signature of tx and consumes its nonce.
// It returns the signer conditions in signature order, an empty slice when
// the transaction is unsigned.
func VerifyTxSignatures(db jobchain.KVStore, tx SignedTx, chainID string) ([]jobchain.Condition, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	sigs := tx.GetSignatures()
	signers := make([]jobchain.Condition, len(sigs))
	for i, sig := range sigs {
		if signers[i], err = verify(db, sig, payload, chainID); err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
	}
	return signers, nil
}

func verify(db jobchain.KVStore, sig *StdSignature, payload []byte, chainID string) (jobchain.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	digest, err := SignBytes(payload, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}
	bucket := NewBucket()
	acc, err := bucket.load(db, sig.Pubkey)
	if err != nil {
		return nil, err
	}
	if !acc.Pubkey.Verify(digest, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature does not match")
	}
	if err := acc.use(sig.Sequence); err != nil {
		return nil, err
	}
	if err := bucket.save(db, acc); err != nil {
		return nil, err
	}
	return acc.Pubkey.Condition(), nil
}
