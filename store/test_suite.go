package store

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/jobtest/assert"
)

// StoreFactory builds a fresh store for a single test run. The returned
// function releases any resources held by the store.
type StoreFactory func() (CacheableKVStore, func())

// RunKVStoreSuite checks that a CacheableKVStore implementation honours the
// cache layering contract. Both the in-memory btree store and the iavl
// adapter run it from their own tests.
func RunKVStoreSuite(t *testing.T, factory StoreFactory) {
	t.Run("cache layering", func(t *testing.T) { checkLayering(t, factory) })
	t.Run("cache shadows parent", func(t *testing.T) { checkShadowing(t, factory) })
	t.Run("merged iteration", func(t *testing.T) { checkMergedIteration(t, factory) })
	t.Run("random iteration", func(t *testing.T) { checkRandomIteration(t, factory) })
}

// AssertGetHas fails the test unless kv holds exactly want under key. A nil
// want means the key must be absent.
func AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, want []byte) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, want, got)
	has, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, want != nil, has)
}

func checkLayering(t *testing.T, factory StoreFactory) {
	base, cleanup := factory()
	defer cleanup()

	job, created := []byte("job:1"), []byte("created")
	AssertGetHas(t, base, job, nil)
	assert.Nil(t, base.Set(job, created))
	AssertGetHas(t, base, job, created)

	// writes to a cache stay there until Write
	custody, held := []byte("custody:1"), []byte("held")
	cache := base.CacheWrap()
	AssertGetHas(t, cache, job, created)
	assert.Nil(t, cache.Set(custody, held))
	AssertGetHas(t, cache, custody, held)
	AssertGetHas(t, base, custody, nil)
	assert.Nil(t, cache.Write())
	AssertGetHas(t, base, custody, held)

	discarded := base.CacheWrap()
	assert.Nil(t, discarded.Set([]byte("job:2"), created))
	discarded.Discard()
	AssertGetHas(t, base, []byte("job:2"), nil)

	cancel := base.CacheWrap()
	assert.Nil(t, cancel.Delete(job))
	assert.Nil(t, cancel.Write())
	AssertGetHas(t, base, job, nil)
	AssertGetHas(t, base, custody, held)
}

func checkShadowing(t *testing.T, factory StoreFactory) {
	cases := map[string]struct {
		parent     []Op
		child      []Op
		parentSees []Model
		childSees  []Model
	}{
		"child overrides, deletes and adds": {
			parent: []Op{
				SetOp([]byte("job:1"), []byte("created")),
				SetOp([]byte("job:2"), []byte("created")),
			},
			child: []Op{
				SetOp([]byte("job:1"), []byte("completed")),
				DelOp([]byte("job:2")),
				SetOp([]byte("job:3"), []byte("created")),
			},
			parentSees: []Model{
				Pair([]byte("job:1"), []byte("created")),
				Pair([]byte("job:2"), []byte("created")),
				Pair([]byte("job:3"), nil),
			},
			childSees: []Model{
				Pair([]byte("job:1"), []byte("completed")),
				Pair([]byte("job:2"), nil),
				Pair([]byte("job:3"), []byte("created")),
			},
		},
		"delete then recreate in child": {
			parent: []Op{SetOp([]byte("wallet:a"), []byte("10"))},
			child: []Op{
				DelOp([]byte("wallet:a")),
				SetOp([]byte("wallet:a"), []byte("7")),
			},
			parentSees: []Model{Pair([]byte("wallet:a"), []byte("10"))},
			childSees:  []Model{Pair([]byte("wallet:a"), []byte("7"))},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			parent, cleanup := factory()
			defer cleanup()
			applyOps(t, parent, tc.parent)

			child := parent.CacheWrap()
			applyOps(t, child, tc.child)

			for _, m := range tc.parentSees {
				AssertGetHas(t, parent, m.Key, m.Value)
			}
			for _, m := range tc.childSees {
				AssertGetHas(t, child, m.Key, m.Value)
			}

			assert.Nil(t, child.Write())
			for _, m := range tc.childSees {
				AssertGetHas(t, parent, m.Key, m.Value)
			}
		})
	}
}

func checkMergedIteration(t *testing.T, factory StoreFactory) {
	a := Pair([]byte("job:a"), []byte("created"))
	b := Pair([]byte("job:b"), []byte("created"))
	c := Pair([]byte("job:c"), []byte("created"))
	d := Pair([]byte("job:d"), []byte("created"))
	aDone := Pair(a.Key, []byte("completed"))
	bDone := Pair(b.Key, []byte("completed"))

	cases := map[string]struct {
		parent []Op
		child  []Op
		ranges []keyRange
	}{
		"only child holds data": {
			child: setOps(a, b, c),
			ranges: []keyRange{
				{want: []Model{a, b, c}},
				{start: b.Key, end: c.Key, want: []Model{b}},
				{reverse: true, want: []Model{c, b, a}},
			},
		},
		"only parent holds data": {
			parent: setOps(a, b, c),
			ranges: []keyRange{
				{want: []Model{a, b, c}},
				{start: b.Key, end: c.Key, want: []Model{b}},
				{reverse: true, want: []Model{c, b, a}},
			},
		},
		"both layers are merged": {
			parent: setOps(a, c),
			child:  setOps(b, d),
			ranges: []keyRange{
				{want: []Model{a, b, c, d}},
				{start: b.Key, want: []Model{b, c, d}},
				{end: c.Key, reverse: true, want: []Model{b, a}},
			},
		},
		"child values win": {
			parent: setOps(a, b, c),
			child:  setOps(aDone, bDone, d),
			ranges: []keyRange{
				{want: []Model{aDone, bDone, c, d}},
				{start: b.Key, end: d.Key, want: []Model{bDone, c}},
				{reverse: true, want: []Model{d, c, bDone, aDone}},
			},
		},
		"child deletes hide parent": {
			parent: setOps(a, c, d),
			child:  delOps(a, b, d),
			ranges: []keyRange{
				{want: []Model{c}},
				{end: c.Key, want: nil},
				{reverse: true, want: []Model{c}},
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			base, cleanup := factory()
			defer cleanup()
			applyOps(t, base, tc.parent)
			child := base.CacheWrap()
			applyOps(t, child, tc.child)
			for _, r := range tc.ranges {
				r.check(t, child)
			}
		})
	}
}

func checkRandomIteration(t *testing.T, factory StoreFactory) {
	const size = 50

	rnd := rand.New(rand.NewSource(42))
	childSet := randomModels(rnd, size)
	parentSet := randomModels(rnd, size)
	// deleting keys that were never written must not leak into iteration
	ops := append(setOps(childSet...), delOps(randomModels(rnd, 20)...)...)
	parentOps := append(setOps(parentSet...), delOps(randomModels(rnd, 20)...)...)

	childOnly := sortedByKey(childSet)
	merged := sortedByKey(append(childSet, parentSet...))

	for name, pre := range map[string][]Op{"empty parent": nil, "filled parent": parentOps} {
		t.Run(name, func(t *testing.T) {
			want := childOnly
			if pre != nil {
				want = merged
			}
			base, cleanup := factory()
			defer cleanup()
			applyOps(t, base, pre)
			child := base.CacheWrap()
			applyOps(t, child, ops)

			ranges := []keyRange{
				{want: want},
				{start: want[10].Key, want: want[10:]},
				{end: want[size-8].Key, want: want[:size-8]},
				{start: want[17].Key, end: want[28].Key, want: want[17:28]},
				{reverse: true, want: reversed(want)},
				{start: want[34].Key, reverse: true, want: reversed(want[34:])},
				{end: want[19].Key, reverse: true, want: reversed(want[:19])},
				{start: want[6].Key, end: want[26].Key, reverse: true, want: reversed(want[6:26])},
			}
			for _, r := range ranges {
				r.check(t, child)
			}
		})
	}
}

// keyRange is a single iteration over [start, end) and its expected result.
type keyRange struct {
	start, end []byte
	reverse    bool
	want       []Model
}

func (r keyRange) check(t testing.TB, kv ReadOnlyKVStore) {
	t.Helper()
	var (
		it  Iterator
		err error
	)
	if r.reverse {
		it, err = kv.ReverseIterator(r.start, r.end)
	} else {
		it, err = kv.Iterator(r.start, r.end)
	}
	assert.Nil(t, err)
	defer it.Release()

	for i, want := range r.want {
		key, value, err := it.Next()
		assert.Nil(t, err)
		if !bytes.Equal(want.Key, key) {
			t.Fatalf("position %d: want key %X, got %X", i, want.Key, key)
		}
		assert.Equal(t, want.Value, value)
	}
	if _, _, err := it.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("want exhausted iterator after %d models, got %+v", len(r.want), err)
	}
}

func applyOps(t testing.TB, kv SetDeleter, ops []Op) {
	t.Helper()
	for _, op := range ops {
		assert.Nil(t, op.Apply(kv))
	}
}

func randomModels(rnd *rand.Rand, count int) []Model {
	res := make([]Model, count)
	for i := range res {
		key := make([]byte, 8)
		rnd.Read(key)
		res[i] = Pair(key, []byte(fmt.Sprintf("value-%d", rnd.Int63())))
	}
	return res
}

func reversed(models []Model) []Model {
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}

func sortedByKey(models []Model) []Model {
	res := append([]Model(nil), models...)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}

func setOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = SetOp(m.Key, m.Value)
	}
	return res
}

func delOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = DelOp(m.Key)
	}
	return res
}
