package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/jobchain/errors"
)

// ascendBtree returns all items of the tree with a key in [start, end) in
// ascending order. Nil start or end means no limit.
func ascendBtree(bt *btree.BTree, start, end []byte) []entry {
	var res []entry
	collect := func(item btree.Item) bool {
		e := item.(entry)
		if end != nil && bytes.Compare(e.key, end) >= 0 {
			return false
		}
		res = append(res, e)
		return true
	}
	if start == nil {
		bt.Ascend(collect)
	} else {
		bt.AscendGreaterOrEqual(entry{key: start}, collect)
	}
	return res
}

// descendBtree returns all items of the tree with a key in [start, end) in
// descending order. Nil start or end means no limit.
func descendBtree(bt *btree.BTree, start, end []byte) []entry {
	var res []entry
	collect := func(item btree.Item) bool {
		e := item.(entry)
		if end != nil && bytes.Compare(e.key, end) >= 0 {
			return true
		}
		if start != nil && bytes.Compare(e.key, start) < 0 {
			return false
		}
		res = append(res, e)
		return true
	}
	if end == nil {
		bt.Descend(collect)
	} else {
		bt.DescendLessOrEqual(entry{key: end}, collect)
	}
	return res
}

// source marks where the current item comes from
type source int32

const (
	us source = iota
	parent
	both
)

// cacheIterator combines the cached items with the results of the parent
// store, taking into consideration overwrites and deletes.
type cacheIterator struct {
	cache   []entry
	parent  Iterator
	reverse bool

	parentKey   []byte
	parentValue []byte
	parentDone  bool
}

var _ Iterator = (*cacheIterator)(nil)

func newCacheIterator(cache []entry, parent Iterator, reverse bool) (*cacheIterator, error) {
	it := &cacheIterator{
		cache:   cache,
		parent:  parent,
		reverse: reverse,
	}
	if err := it.advanceParent(); err != nil {
		parent.Release()
		return nil, err
	}
	return it, nil
}

func (i *cacheIterator) advanceParent() error {
	key, value, err := i.parent.Next()
	if errors.ErrIteratorDone.Is(err) {
		i.parentDone = true
		i.parentKey, i.parentValue = nil, nil
		return nil
	}
	if err != nil {
		return err
	}
	i.parentKey, i.parentValue = key, value
	return nil
}

// Next returns the next element, skipping all entries deleted in the
// cache.
func (i *cacheIterator) Next() (key, value []byte, err error) {
	for {
		if len(i.cache) == 0 && i.parentDone {
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "cache iterator")
		}

		switch i.firstKey() {
		case parent:
			key, value = i.parentKey, i.parentValue
			if err := i.advanceParent(); err != nil {
				return nil, nil, err
			}
			return key, value, nil
		case both:
			// The cached value overwrites the parent one.
			if err := i.advanceParent(); err != nil {
				return nil, nil, err
			}
		}

		e := i.cache[0]
		i.cache = i.cache[1:]
		if !e.deleted {
			return e.key, e.value, nil
		}
	}
}

// firstKey selects the source with the next key in iteration order.
func (i *cacheIterator) firstKey() source {
	if len(i.cache) == 0 {
		return parent
	}
	if i.parentDone {
		return us
	}
	cmp := bytes.Compare(i.cache[0].key, i.parentKey)
	if i.reverse {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return us
	case cmp > 0:
		return parent
	default:
		return both
	}
}

// Release releases the Iterator.
func (i *cacheIterator) Release() {
	i.parent.Release()
	i.cache = nil
}
