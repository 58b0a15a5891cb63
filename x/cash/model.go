package cash

import (
	"math"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Wallet holds the balance of a single address.
type Wallet struct {
	Metadata *jobchain.Metadata `json:"metadata"`
	Balance  uint64             `json:"balance"`
}

var _ orm.Model = (*Wallet)(nil)

// NewWallet returns a wallet holding given amount.
func NewWallet(balance uint64) *Wallet {
	return &Wallet{
		Metadata: &jobchain.Metadata{Schema: 1},
		Balance:  balance,
	}
}

func (w *Wallet) Validate() error {
	return errors.Wrap(w.Metadata.Validate(), "metadata")
}

func (w *Wallet) Copy() orm.CloneableData {
	return &Wallet{
		Metadata: w.Metadata.Copy(),
		Balance:  w.Balance,
	}
}

// add increases the balance, failing instead of wrapping around.
func (w *Wallet) add(amount uint64) error {
	if w.Balance > math.MaxUint64-amount {
		return errors.Wrapf(errors.ErrOverflow, "balance %d + %d", w.Balance, amount)
	}
	w.Balance += amount
	return nil
}

// subtract decreases the balance. The balance never goes below zero.
func (w *Wallet) subtract(amount uint64) error {
	if w.Balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d, need %d", w.Balance, amount)
	}
	w.Balance -= amount
	return nil
}

// NewBucket returns a bucket storing wallets by their owner address.
func NewBucket() orm.ModelBucket {
	b := orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &Wallet{}))
	return orm.NewModelBucket(b)
}
