package jobtest

import "github.com/iov-one/jobchain"

// Decorator counts the calls passing through it. A set CheckErr or
// DeliverErr is returned instead of calling the next handler.
type Decorator struct {
	CheckErr   error
	DeliverErr error

	calls int
}

var _ jobchain.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx, next jobchain.Checker) (*jobchain.CheckResult, error) {
	d.calls++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx, next jobchain.Deliverer) (*jobchain.DeliverResult, error) {
	d.calls++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

// CallCount sums Check and Deliver calls, failed ones included.
func (d *Decorator) CallCount() int {
	return d.calls
}

// Decorate puts d in front of h.
func Decorate(h jobchain.Handler, d jobchain.Decorator) jobchain.Handler {
	return decorated{next: h, dec: d}
}

type decorated struct {
	next jobchain.Handler
	dec  jobchain.Decorator
}

func (d decorated) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.CheckResult, error) {
	return d.dec.Check(ctx, db, tx, d.next)
}

func (d decorated) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.DeliverResult, error) {
	return d.dec.Deliver(ctx, db, tx, d.next)
}
