package cash

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/orm"
)

// Controller is the functionality needed by other extensions to move value.
type Controller interface {
	// Balance returns the amount held by given address. A missing wallet
	// holds nothing.
	Balance(db jobchain.ReadOnlyKVStore, addr jobchain.Address) (uint64, error)

	// MoveCoins transfers exactly amount from src to dest. It fails
	// without any change if src cannot cover it.
	MoveCoins(db jobchain.KVStore, src, dest jobchain.Address, amount uint64) error

	// CoinMint issues new value to dest.
	CoinMint(db jobchain.KVStore, dest jobchain.Address, amount uint64) error
}

// BaseController is the default Controller implementation.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller using given bucket.
func NewController(bucket orm.ModelBucket) BaseController {
	return BaseController{bucket: bucket}
}

func (c BaseController) Balance(db jobchain.ReadOnlyKVStore, addr jobchain.Address) (uint64, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case err == nil:
		return w.Balance, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

func (c BaseController) MoveCoins(db jobchain.KVStore, src, dest jobchain.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}

	// A missing wallet holds nothing.
	sender, err := c.walletOrNew(db, src)
	if err != nil {
		return errors.Wrapf(err, "source wallet %s", src)
	}
	if err := sender.subtract(amount); err != nil {
		return err
	}
	if src.Equals(dest) {
		return nil
	}

	recipient, err := c.walletOrNew(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.add(amount); err != nil {
		return err
	}

	if err := c.bucket.Put(db, src, sender); err != nil {
		return errors.Wrap(err, "save source")
	}
	if err := c.bucket.Put(db, dest, recipient); err != nil {
		return errors.Wrap(err, "save destination")
	}
	return nil
}

func (c BaseController) CoinMint(db jobchain.KVStore, dest jobchain.Address, amount uint64) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	w, err := c.walletOrNew(db, dest)
	if err != nil {
		return err
	}
	if err := w.add(amount); err != nil {
		return err
	}
	return c.bucket.Put(db, dest, w)
}

func (c BaseController) walletOrNew(db jobchain.ReadOnlyKVStore, addr jobchain.Address) (*Wallet, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return NewWallet(0), nil
	default:
		return nil, err
	}
}
