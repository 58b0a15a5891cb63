package orm

import (
	"bytes"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
)

// Index maps a value derived from an object, for example the employer of a
// job, to the primary keys of all objects sharing that value.
type Index interface {
	jobchain.QueryHandler

	Name() string

	// Update moves the references of an object after it changed. A nil prev
	// is an insert and a nil save is a delete.
	Update(db jobchain.KVStore, prev Object, save Object) error

	// Refs returns the primary keys stored under the exact index value.
	Refs(db jobchain.ReadOnlyKVStore, value []byte) ([][]byte, error)
}

// Indexer derives the index value of an object. An empty value means the
// object is not indexed.
type Indexer func(Object) ([]byte, error)

const indexPrefix = "_i."

// index stores one entry per index value. A unique index stores the single
// primary key as is, otherwise the entry is a RefSet.
type index struct {
	name    string
	prefix  []byte
	unique  bool
	indexer Indexer
	dbKey   func([]byte) []byte
}

var _ Index = index{}

// NewIndex creates an index named name. dbKey turns a primary key into the
// full store key of the object and may be nil when they are equal.
func NewIndex(name string, indexer Indexer, unique bool, dbKey func([]byte) []byte) Index {
	if dbKey == nil {
		dbKey = func(key []byte) []byte { return key }
	}
	return index{
		name:    name,
		prefix:  []byte(indexPrefix + name + ":"),
		unique:  unique,
		indexer: indexer,
		dbKey:   dbKey,
	}
}

func (i index) Name() string {
	return i.name
}

// key returns a fresh slice, so callers may keep it.
func (i index) key(value []byte) []byte {
	out := make([]byte, 0, len(i.prefix)+len(value))
	return append(append(out, i.prefix...), value...)
}

func (i index) valueOf(obj Object) ([]byte, error) {
	if obj == nil {
		return nil, nil
	}
	return i.indexer(obj)
}

func (i index) Update(db jobchain.KVStore, prev Object, save Object) error {
	if prev == nil && save == nil {
		return errors.Wrap(errors.ErrHuman, "index update without an object")
	}
	if prev != nil && save != nil && !bytes.Equal(prev.Key(), save.Key()) {
		return errors.Wrap(errors.ErrImmutable, "primary key changed")
	}

	was, err := i.valueOf(prev)
	if err != nil {
		return err
	}
	now, err := i.valueOf(save)
	if err != nil {
		return err
	}
	if prev != nil && save != nil && bytes.Equal(was, now) {
		return nil
	}

	// add first so that a unique conflict leaves the old entry in place
	if save != nil && len(now) != 0 {
		if err := i.add(db, now, save.Key()); err != nil {
			return err
		}
	}
	if prev != nil && len(was) != 0 {
		if err := i.remove(db, was, prev.Key()); err != nil {
			return err
		}
	}
	return nil
}

func (i index) Refs(db jobchain.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	raw, err := db.Get(i.key(value))
	if err != nil || raw == nil {
		return nil, err
	}
	return i.decode(raw)
}

func (i index) decode(raw []byte) ([][]byte, error) {
	if i.unique {
		return [][]byte{raw}, nil
	}
	var refs RefSet
	if err := refs.Unmarshal(raw); err != nil {
		return nil, err
	}
	return refs.Refs, nil
}

// Query answers a lookup by exact index value or by a value prefix. The
// result holds the referenced objects, not the index entries.
func (i index) Query(db jobchain.ReadOnlyKVStore, mod string, data []byte) ([]jobchain.Model, error) {
	var (
		refs [][]byte
		err  error
	)
	switch mod {
	case jobchain.KeyQueryMod:
		refs, err = i.Refs(db, data)
	case jobchain.PrefixQueryMod:
		refs, err = i.prefixRefs(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod %q", mod)
	}
	if err != nil {
		return nil, err
	}

	var res []jobchain.Model
	for _, ref := range refs {
		key := i.dbKey(ref)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		res = append(res, jobchain.Pair(key, value))
	}
	return res, nil
}

func (i index) prefixRefs(db jobchain.ReadOnlyKVStore, prefix []byte) ([][]byte, error) {
	entries, err := queryPrefix(db, i.key(prefix))
	if err != nil {
		return nil, err
	}
	var refs [][]byte
	for _, e := range entries {
		keys, err := i.decode(e.Value)
		if err != nil {
			return nil, err
		}
		refs = append(refs, keys...)
	}
	return refs, nil
}

func (i index) add(db jobchain.KVStore, value, pk []byte) error {
	key := i.key(value)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if i.unique {
		if raw != nil {
			return errors.Wrapf(errors.ErrDuplicate, "index %s", i.name)
		}
		return db.Set(key, pk)
	}

	var refs RefSet
	if raw != nil {
		if err := refs.Unmarshal(raw); err != nil {
			return err
		}
	}
	if err := refs.Add(pk); err != nil {
		return err
	}
	return i.store(db, key, &refs)
}

func (i index) remove(db jobchain.KVStore, value, pk []byte) error {
	key := i.key(value)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "index %s has no entry", i.name)
	}
	if i.unique {
		if !bytes.Equal(raw, pk) {
			return errors.Wrapf(errors.ErrNotFound, "index %s points to another object", i.name)
		}
		return db.Delete(key)
	}

	var refs RefSet
	if err := refs.Unmarshal(raw); err != nil {
		return err
	}
	if err := refs.Remove(pk); err != nil {
		return err
	}
	if refs.Len() == 0 {
		return db.Delete(key)
	}
	return i.store(db, key, &refs)
}

func (i index) store(db jobchain.KVStore, key []byte, refs *RefSet) error {
	raw, err := refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, raw)
}
