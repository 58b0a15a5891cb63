package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/jobchain/errors"
)

// DefaultFreeListSize bounds the number of btree nodes recycled between
// cache layers.
const DefaultFreeListSize = btree.DefaultFreeListSize

// btreeDegree is the branching factor of every cache tree.
const btreeDegree = 2

// BTreeCacheable makes any KVStore cacheable by layering a btree over it.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns a store that lives only in memory. Nothing written to it
// survives the process.
func MemStore() CacheableKVStore {
	var empty emptyStore
	return NewBTreeCacheWrap(empty, empty.NewBatch(), nil)
}

// BTreeCacheWrap buffers writes in a btree on top of a read only parent.
// Every write is also recorded in batch, which is flushed to the parent on
// Write.
type BTreeCacheWrap struct {
	tree   *btree.BTree
	free   *btree.FreeList
	parent ReadOnlyKVStore
	batch  Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap creates a cache over parent. All changes reach the
// parent only through batch. A nil free list allocates a new one, pass the
// parent's list to share recycled nodes between layers.
func NewBTreeCacheWrap(parent ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		tree:   btree.NewWithFreeList(btreeDegree, free),
		free:   free,
		parent: parent,
		batch:  batch,
	}
}

// CacheWrap stacks another cache layer. Writing it only updates this layer.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write flushes all buffered changes to the parent and empties the cache.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all buffered changes. Nodes are returned to the free list.
func (b BTreeCacheWrap) Discard() {
	for b.tree.DeleteMin() != nil {
	}
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.tree.ReplaceOrInsert(entry{key: key, value: value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	b.tree.ReplaceOrInsert(entry{key: key, deleted: true})
	return b.batch.Delete(key)
}

// lookup returns the cached entry for key. The second value is false when
// the key was never touched in this layer.
func (b BTreeCacheWrap) lookup(key []byte) (entry, bool, error) {
	item := b.tree.Get(entry{key: key})
	if item == nil {
		return entry{}, false, nil
	}
	e, ok := item.(entry)
	if !ok {
		return entry{}, false, errors.Wrapf(errors.ErrDatabase, "unexpected btree item %T", item)
	}
	return e, true, nil
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	e, cached, err := b.lookup(key)
	switch {
	case err != nil:
		return nil, err
	case !cached:
		return b.parent.Get(key)
	case e.deleted:
		return nil, nil
	default:
		return e.value, nil
	}
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	e, cached, err := b.lookup(key)
	switch {
	case err != nil:
		return false, err
	case !cached:
		return b.parent.Has(key)
	default:
		return !e.deleted, nil
	}
}

// Iterator merges the cached entries with the parent in ascending order.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	p, err := b.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newCacheIterator(ascendBtree(b.tree, start, end), p, false)
}

// ReverseIterator merges the cached entries with the parent in descending
// order.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	p, err := b.parent.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newCacheIterator(descendBtree(b.tree, start, end), p, true)
}

// entry is a single cached change. A deleted entry hides the parent value.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = entry{}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}
