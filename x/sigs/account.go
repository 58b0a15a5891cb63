package sigs

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/crypto"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/orm"
	amino "github.com/tendermint/go-amino"
)

const bucketName = "sigs"

// Clients keep the nonce in a float64, so it must stay below 2^53.
const maxSequence = 1<<53 - 1

var cdc = amino.NewCodec()

// Account is the replay protection state of one public key, stored under
// the key address. Sequence is the nonce the next signature must carry.
type Account struct {
	Metadata *jobchain.Metadata `json:"metadata"`
	Pubkey   *crypto.PublicKey  `json:"pubkey"`
	Sequence int64              `json:"sequence"`
}

var _ orm.CloneableData = (*Account)(nil)

func (a *Account) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(a)
}

func (a *Account) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, a)
}

func (a *Account) Validate() error {
	errs := errors.AppendField(nil, "Metadata", a.Metadata.Validate())
	switch {
	case a.Sequence < 0:
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	case a.Sequence > 0 && a.Pubkey == nil:
		errs = errors.Append(errs, errors.Field("Pubkey", errors.ErrEmpty, "required once a nonce was used"))
	}
	return errs
}

func (a *Account) Copy() orm.CloneableData {
	return &Account{
		Metadata: a.Metadata.Copy(),
		Pubkey:   a.Pubkey,
		Sequence: a.Sequence,
	}
}

// use consumes nonce seq. It must equal the stored sequence.
func (a *Account) use(seq int64) error {
	if seq != a.Sequence {
		return errors.Wrapf(ErrInvalidSequence, "got %d, want %d", seq, a.Sequence)
	}
	return a.advance(1)
}

func (a *Account) advance(n int64) error {
	if n == 0 {
		return nil
	}
	next := a.Sequence + n
	if next <= a.Sequence || next > maxSequence {
		return errors.Wrapf(errors.ErrOverflow, "sequence %d + %d", a.Sequence, n)
	}
	a.Sequence = next
	return nil
}

func newAccount(pubkey *crypto.PublicKey) orm.Object {
	var key []byte
	if pubkey != nil {
		key = pubkey.Address()
	}
	return orm.NewSimpleObj(key, &Account{
		Metadata: &jobchain.Metadata{Schema: 1},
		Pubkey:   pubkey,
	})
}

// Bucket stores accounts by address.
type Bucket struct {
	orm.Bucket
}

func NewBucket() Bucket {
	return Bucket{Bucket: orm.NewBucket(bucketName, newAccount(nil))}
}

// Account loads the account of addr. It returns nil when the address never
// signed anything.
func (b Bucket) Account(db jobchain.ReadOnlyKVStore, addr jobchain.Address) (*Account, error) {
	obj, err := b.Get(db, addr)
	if err != nil || obj == nil {
		return nil, err
	}
	acc, ok := obj.Value().(*Account)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return acc, nil
}

// load returns the account of pubkey, or a fresh one at sequence zero.
func (b Bucket) load(db jobchain.ReadOnlyKVStore, pubkey *crypto.PublicKey) (*Account, error) {
	acc, err := b.Account(db, pubkey.Address())
	if err != nil || acc != nil {
		return acc, err
	}
	return newAccount(pubkey).Value().(*Account), nil
}

func (b Bucket) save(db jobchain.KVStore, acc *Account) error {
	return b.Save(db, orm.NewSimpleObj(acc.Pubkey.Address(), acc))
}

// NextNonce returns the sequence the next signature of addr must use.
// Unknown addresses start at zero.
func NextNonce(db jobchain.ReadOnlyKVStore, addr jobchain.Address) (int64, error) {
	acc, err := NewBucket().Account(db, addr)
	if err != nil {
		return 0, errors.Wrap(err, "load account")
	}
	if acc == nil {
		return 0, nil
	}
	return acc.Sequence, nil
}
