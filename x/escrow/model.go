package escrow

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/orm"
)

// BucketName is where custody records are stored.
const BucketName = "custody"

// Custody tracks the funds held on behalf of a single job.
type Custody struct {
	Metadata *jobchain.Metadata `json:"metadata"`
	// HeldAmount is the value sitting in the custody wallet.
	HeldAmount uint64 `json:"held_amount"`
	// BoundJob is the key of the job this custody pays for.
	BoundJob jobchain.Address `json:"bound_job"`
	// Reclaimable is set once the custody was drained. A reclaimable
	// custody never holds funds again.
	Reclaimable bool `json:"reclaimable"`
}

var _ orm.Model = (*Custody)(nil)

func (c *Custody) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "BoundJob", c.BoundJob.Validate())
	if c.Reclaimable && c.HeldAmount != 0 {
		errs = errors.AppendField(errs, "HeldAmount", errors.Wrap(errors.ErrState, "reclaimable custody holds funds"))
	}
	return errs
}

func (c *Custody) Copy() orm.CloneableData {
	return &Custody{
		Metadata:    c.Metadata.Copy(),
		HeldAmount:  c.HeldAmount,
		BoundJob:    append(jobchain.Address(nil), c.BoundJob...),
		Reclaimable: c.Reclaimable,
	}
}

// Condition calculates the condition owning the custody wallet of given
// key.
func Condition(key []byte) jobchain.Condition {
	return jobchain.NewCondition("escrow", "custody", key)
}

// NewBucket returns a bucket storing custody records, indexed by the job
// they are bound to.
func NewBucket() orm.ModelBucket {
	b := orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &Custody{})).
		WithIndex("job", idxJob, true)
	return orm.NewModelBucket(b)
}

func idxJob(obj orm.Object) ([]byte, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	c, ok := obj.Value().(*Custody)
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "can only take index of Custody, got %T", obj.Value())
	}
	return c.BoundJob, nil
}

// RegisterQuery will register this bucket as "/custody"
func RegisterQuery(qr jobchain.QueryRouter) {
	NewBucket().Register("custody", qr)
}
