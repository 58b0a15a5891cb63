package escrow

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/orm"
	"github.com/iov-one/jobchain/x/cash"
)

// Controller is the only way to move funds in and out of a custody.
type Controller interface {
	// Open creates an empty custody under given key.
	Open(db jobchain.KVStore, key []byte, boundJob jobchain.Address) (*Custody, error)

	// Lock moves exactly amount from source into the custody wallet.
	Lock(db jobchain.KVStore, key []byte, amount uint64, source jobchain.Address) error

	// Release transfers everything held to destination and closes the
	// custody.
	Release(db jobchain.KVStore, key []byte, destination jobchain.Address) error

	// Refund is Release used when the job is cancelled.
	Refund(db jobchain.KVStore, key []byte, destination jobchain.Address) error

	// Custody returns the custody stored under given key.
	Custody(db jobchain.ReadOnlyKVStore, key []byte) (*Custody, error)
}

// BaseController keeps custody records in a bucket and their funds in cash
// wallets.
type BaseController struct {
	cash   cash.Controller
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

func NewController(cash cash.Controller, bucket orm.ModelBucket) BaseController {
	return BaseController{
		cash:   cash,
		bucket: bucket,
	}
}

func (c BaseController) Open(db jobchain.KVStore, key []byte, boundJob jobchain.Address) (*Custody, error) {
	if len(key) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "custody key")
	}
	custody := &Custody{
		Metadata: &jobchain.Metadata{Schema: 1},
		BoundJob: boundJob,
	}
	if err := c.bucket.Create(db, key, custody); err != nil {
		return nil, errors.Wrap(err, "cannot create custody")
	}
	return custody, nil
}

func (c BaseController) Lock(db jobchain.KVStore, key []byte, amount uint64, source jobchain.Address) error {
	custody, err := c.Custody(db, key)
	if err != nil {
		return err
	}
	switch {
	case custody.Reclaimable:
		return errors.Wrap(errors.ErrState, "custody is closed")
	case custody.HeldAmount != 0:
		return errors.Wrapf(ErrAlreadyFunded, "holding %d", custody.HeldAmount)
	case amount == 0:
		return errors.Wrap(errors.ErrAmount, "nothing to lock")
	}

	if err := c.cash.MoveCoins(db, source, Condition(key).Address(), amount); err != nil {
		return errors.Wrap(err, "cannot lock funds")
	}
	custody.HeldAmount = amount
	if err := c.bucket.Put(db, key, custody); err != nil {
		return errors.Wrap(err, "cannot save custody")
	}
	return nil
}

func (c BaseController) Release(db jobchain.KVStore, key []byte, destination jobchain.Address) error {
	return errors.Wrap(c.drain(db, key, destination), "release")
}

func (c BaseController) Refund(db jobchain.KVStore, key []byte, destination jobchain.Address) error {
	return errors.Wrap(c.drain(db, key, destination), "refund")
}

// drain moves all held funds to destination. The custody is marked
// reclaimable and never holds funds again.
func (c BaseController) drain(db jobchain.KVStore, key []byte, destination jobchain.Address) error {
	custody, err := c.Custody(db, key)
	if err != nil {
		return err
	}
	if custody.HeldAmount == 0 {
		return errors.Wrap(ErrNotFunded, "nothing held")
	}
	if err := c.cash.MoveCoins(db, Condition(key).Address(), destination, custody.HeldAmount); err != nil {
		return errors.Wrap(err, "cannot move held funds")
	}
	custody.HeldAmount = 0
	custody.Reclaimable = true
	if err := c.bucket.Put(db, key, custody); err != nil {
		return errors.Wrap(err, "cannot save custody")
	}
	return nil
}

func (c BaseController) Custody(db jobchain.ReadOnlyKVStore, key []byte) (*Custody, error) {
	var custody Custody
	if err := c.bucket.One(db, key, &custody); err != nil {
		return nil, errors.Wrap(err, "cannot load custody")
	}
	return &custody, nil
}
