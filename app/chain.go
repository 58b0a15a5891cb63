package app

import (
	"reflect"

	"github.com/iov-one/jobchain"
)

// Decorators is an ordered middleware stack waiting for its final handler.
// The first decorator sees a transaction first.
//
//	app.ChainDecorators(
//		utils.NewLogging(),
//		utils.NewRecovery(),
//		sigs.NewDecorator(),
//		utils.NewSavepoint().OnDeliver(),
//	).WithHandler(router)
type Decorators struct {
	chain []jobchain.Decorator
}

// ChainDecorators starts a stack. Nil decorators, including typed nil
// pointers, are skipped so optional decorators can be passed as is.
func ChainDecorators(ds ...jobchain.Decorator) Decorators {
	return Decorators{}.Chain(ds...)
}

// Chain returns a new stack with ds appended.
func (d Decorators) Chain(ds ...jobchain.Decorator) Decorators {
	chain := make([]jobchain.Decorator, 0, len(d.chain)+len(ds))
	chain = append(chain, d.chain...)
	for _, dec := range ds {
		if !isNilDecorator(dec) {
			chain = append(chain, dec)
		}
	}
	return Decorators{chain: chain}
}

func isNilDecorator(d jobchain.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler closes the stack with h.
func (d Decorators) WithHandler(h jobchain.Handler) jobchain.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = layer{decorator: d.chain[i], next: h}
	}
	return h
}

// layer binds a decorator to the rest of the stack.
type layer struct {
	decorator jobchain.Decorator
	next      jobchain.Handler
}

var _ jobchain.Handler = layer{}

func (l layer) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.CheckResult, error) {
	return l.decorator.Check(ctx, db, tx, l.next)
}

func (l layer) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.DeliverResult, error) {
	return l.decorator.Deliver(ctx, db, tx, l.next)
}
