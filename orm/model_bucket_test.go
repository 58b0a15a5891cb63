package orm

import (
	"testing"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/jobtest/assert"
	"github.com/iov-one/jobchain/store"
)

func counters(unique bool) ModelBucket {
	return NewModelBucket(NewBucket("cnts", NewSimpleObj(nil, new(Counter))).
		WithIndex("count", byCount, unique))
}

func TestModelBucketLifecycle(t *testing.T) {
	db := store.MemStore()
	b := counters(false)

	assert.Nil(t, b.Create(db, []byte("pay"), NewCounter(40)))
	assert.IsErr(t, errors.ErrDuplicate, b.Create(db, []byte("pay"), NewCounter(41)))
	assert.Nil(t, b.Has(db, []byte("pay")))

	var got Counter
	assert.Nil(t, b.One(db, []byte("pay"), &got))
	assert.Equal(t, int64(40), got.Count)

	assert.Nil(t, b.Put(db, []byte("pay"), NewCounter(45)))
	assert.Nil(t, b.One(db, []byte("pay"), &got))
	assert.Equal(t, int64(45), got.Count)

	assert.Nil(t, b.Delete(db, []byte("pay")))
	assert.IsErr(t, errors.ErrNotFound, b.Delete(db, []byte("pay")))
	assert.IsErr(t, errors.ErrNotFound, b.One(db, []byte("pay"), &got))
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, []byte("pay")))

	// invalid models are never written
	assert.IsErr(t, errors.ErrModel, b.Create(db, []byte("fee"), NewCounter(-1)))
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, []byte("fee")))
}

type otherModel struct{ Counter }

func (o *otherModel) Copy() CloneableData { return &otherModel{Counter: o.Counter} }

func TestModelBucketOneWrongType(t *testing.T) {
	db := store.MemStore()
	b := counters(false)
	assert.Nil(t, b.Put(db, []byte("pay"), NewCounter(3)))

	var other otherModel
	assert.IsErr(t, errors.ErrType, b.One(db, []byte("pay"), &other))
}

func TestModelBucketMany(t *testing.T) {
	db := store.MemStore()
	b := counters(false)
	for key, count := range map[string]int64{"j1": 500, "j2": 500, "j3": 120, "j4": 9} {
		assert.Nil(t, b.Put(db, []byte(key), NewCounter(count)))
	}

	t.Run("values", func(t *testing.T) {
		var got []Counter
		assert.Nil(t, b.Many(db, "count", []byte("500"), &got))
		assert.Equal(t, []Counter{{Count: 500}, {Count: 500}}, got)
	})

	t.Run("pointers are appended", func(t *testing.T) {
		got := []*Counter{NewCounter(1)}
		assert.Nil(t, b.Many(db, "count", []byte("120"), &got))
		assert.Equal(t, []*Counter{NewCounter(1), NewCounter(120)}, got)
	})

	t.Run("interfaces", func(t *testing.T) {
		var got []Model
		assert.Nil(t, b.Many(db, "count", []byte("9"), &got))
		assert.Equal(t, []Model{NewCounter(9)}, got)
	})

	t.Run("nothing indexed", func(t *testing.T) {
		var got []Counter
		assert.Nil(t, b.Many(db, "count", []byte("7"), &got))
		assert.Equal(t, 0, len(got))
	})

	t.Run("bad destination", func(t *testing.T) {
		var got []Counter
		assert.IsErr(t, errors.ErrType, b.Many(db, "count", []byte("9"), got))
		var wrong []string
		assert.IsErr(t, errors.ErrType, b.Many(db, "count", []byte("9"), &wrong))
	})

	t.Run("unknown index", func(t *testing.T) {
		var got []Counter
		assert.IsErr(t, ErrInvalidIndex, b.Many(db, "worker", nil, &got))
	})
}

func TestModelBucketUniqueIndex(t *testing.T) {
	db := store.MemStore()
	b := counters(true)

	assert.Nil(t, b.Put(db, []byte("j1"), NewCounter(7)))
	assert.IsErr(t, errors.ErrDuplicate, b.Put(db, []byte("j2"), NewCounter(7)))
	assert.Nil(t, b.Put(db, []byte("j1"), NewCounter(8)))
	assert.Nil(t, b.Put(db, []byte("j2"), NewCounter(7)))

	var got []Counter
	assert.Nil(t, b.Many(db, "count", []byte("8"), &got))
	assert.Equal(t, []Counter{{Count: 8}}, got)

	assert.Nil(t, b.Delete(db, []byte("j1")))
	got = nil
	assert.Nil(t, b.Many(db, "count", []byte("8"), &got))
	assert.Equal(t, 0, len(got))
}

func TestModelBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := counters(false)
	assert.Nil(t, b.Put(db, []byte("a1"), NewCounter(7)))
	assert.Nil(t, b.Put(db, []byte("a2"), NewCounter(7)))
	assert.Nil(t, b.Put(db, []byte("b1"), NewCounter(9)))

	qr := jobchain.NewQueryRouter()
	b.Register("counters", qr)

	cases := map[string]struct {
		path     string
		mod      string
		data     string
		wantKeys []string
	}{
		"by key":         {path: "/counters", mod: jobchain.KeyQueryMod, data: "a1", wantKeys: []string{"cnts:a1"}},
		"by key prefix":  {path: "/counters", mod: jobchain.PrefixQueryMod, data: "a", wantKeys: []string{"cnts:a1", "cnts:a2"}},
		"missing key":    {path: "/counters", mod: jobchain.KeyQueryMod, data: "c1"},
		"by index value": {path: "/counters/count", mod: jobchain.KeyQueryMod, data: "7", wantKeys: []string{"cnts:a1", "cnts:a2"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := qr.Handler(tc.path).Query(db, tc.mod, []byte(tc.data))
			assert.Nil(t, err)
			keys := make([]string, len(res))
			for i, m := range res {
				keys[i] = string(m.Key)
			}
			assert.Equal(t, len(tc.wantKeys), len(keys))
			for i := range tc.wantKeys {
				assert.Equal(t, tc.wantKeys[i], keys[i])
			}
		})
	}
}
