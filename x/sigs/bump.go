package sigs

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/x"
)

const maxBump = 1000

// BumpSequenceMsg advances the nonce of the main signer by Increment, the
// nonce consumed by the transaction itself included. Transactions signed
// ahead of time with the skipped nonces become invalid.
type BumpSequenceMsg struct {
	Metadata  *jobchain.Metadata `json:"metadata"`
	Increment uint32             `json:"increment"`
}

var _ jobchain.Msg = (*BumpSequenceMsg)(nil)

func (*BumpSequenceMsg) Path() string {
	return "sigs/bump_sequence"
}

func (m *BumpSequenceMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *BumpSequenceMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *BumpSequenceMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Increment == 0 || m.Increment > maxBump {
		return errors.Wrapf(errors.ErrMsg, "increment %d not in [1, %d]", m.Increment, maxBump)
	}
	return nil
}

// RegisterRoutes registers the BumpSequenceMsg handler.
func RegisterRoutes(r jobchain.Registry, auth x.Authenticator) {
	r.Handle((*BumpSequenceMsg)(nil).Path(), bumpHandler{auth: auth, bucket: NewBucket()})
}

type bumpHandler struct {
	auth   x.Authenticator
	bucket Bucket
}

func (h bumpHandler) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.CheckResult, error) {
	if _, err := h.bumped(ctx, db, tx); err != nil {
		return nil, err
	}
	return &jobchain.CheckResult{}, nil
}

func (h bumpHandler) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.DeliverResult, error) {
	acc, err := h.bumped(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.save(db, acc); err != nil {
		return nil, errors.Wrap(err, "save account")
	}
	return &jobchain.DeliverResult{}, nil
}

// bumped returns the account of the main signer with the increment
// applied, without saving it.
func (h bumpHandler) bumped(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*Account, error) {
	var msg BumpSequenceMsg
	if err := jobchain.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	acc, err := h.bucket.Account(db, signer.Address())
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "account %s", signer.Address())
	}
	// the signature check already consumed one nonce
	if err := acc.advance(int64(msg.Increment) - 1); err != nil {
		return nil, err
	}
	return acc, nil
}
