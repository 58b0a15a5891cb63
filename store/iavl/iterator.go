package iavl

import (
	"sync"

	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/store"
)

// lazyIterator receives models from a tree traversal running in another
// goroutine. The traversal is paused until the consumer asks for the next
// element, so only one model is held in memory at a time.
type lazyIterator struct {
	read chan store.Model
	stop chan struct{}
	once sync.Once
}

var _ store.Iterator = (*lazyIterator)(nil)

func newLazyIterator() *lazyIterator {
	return &lazyIterator{
		read: make(chan store.Model),
		stop: make(chan struct{}),
	}
}

// add is the tree traversal callback. Returning true stops the traversal.
func (i *lazyIterator) add(key []byte, value []byte) bool {
	m := store.Model{Key: key, Value: value}
	select {
	case i.read <- m:
		return false
	case <-i.stop:
		return true
	}
}

// finish must be called by the producer once the traversal returns.
func (i *lazyIterator) finish() {
	close(i.read)
}

func (i *lazyIterator) Next() (key, value []byte, err error) {
	select {
	case m, ok := <-i.read:
		if !ok {
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "iavl")
		}
		return m.Key, m.Value, nil
	case <-i.stop:
		return nil, nil, errors.Wrap(errors.ErrIteratorDone, "released")
	}
}

// Release stops the producer. It is safe to call more than once.
func (i *lazyIterator) Release() {
	i.once.Do(func() { close(i.stop) })
}
