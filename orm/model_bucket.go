package orm

import (
	"reflect"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
)

// ModelBucket reads and writes models directly, hiding the objects that
// wrap them. All methods report a missing key as ErrNotFound.
type ModelBucket interface {
	// One loads the model stored under key into dest, which must be a
	// pointer to the stored type.
	One(db jobchain.ReadOnlyKVStore, key []byte, dest Model) error
	Has(db jobchain.ReadOnlyKVStore, key []byte) error
	// Many appends to dest, a pointer to a slice of models or of model
	// values, every model found under key in the named index.
	Many(db jobchain.ReadOnlyKVStore, index string, key []byte, dest interface{}) error
	// Create is Put that fails with ErrDuplicate when key is taken.
	Create(db jobchain.KVStore, key []byte, m Model) error
	Put(db jobchain.KVStore, key []byte, m Model) error
	Delete(db jobchain.KVStore, key []byte) error
	Register(path string, r jobchain.QueryRouter)
}

func NewModelBucket(b Bucket) ModelBucket {
	return modelBucket{Bucket: b}
}

type modelBucket struct {
	Bucket
}

func (mb modelBucket) One(db jobchain.ReadOnlyKVStore, key []byte, dest Model) error {
	obj, err := mb.Get(db, key)
	switch {
	case err != nil:
		return err
	case obj == nil:
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	src := reflect.ValueOf(obj.Value())
	dst := reflect.ValueOf(dest)
	if src.Type() != dst.Type() {
		return errors.Wrapf(errors.ErrType, "%s holds %T, not %T", mb.name, obj.Value(), dest)
	}
	dst.Elem().Set(src.Elem())
	return nil
}

func (mb modelBucket) Has(db jobchain.ReadOnlyKVStore, key []byte) error {
	ok, err := mb.Bucket.Has(db, key)
	if err == nil && !ok {
		err = errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return err
}

func (mb modelBucket) Many(db jobchain.ReadOnlyKVStore, index string, key []byte, dest interface{}) error {
	ptr := reflect.ValueOf(dest)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return errors.Wrapf(errors.ErrType, "want a pointer to a slice, got %T", dest)
	}
	objs, err := mb.GetIndexed(db, index, key)
	if err != nil {
		return err
	}
	list := ptr.Elem()
	elem := list.Type().Elem()
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		v := reflect.ValueOf(obj.Value())
		if !v.Type().AssignableTo(elem) {
			v = v.Elem()
		}
		if !v.Type().AssignableTo(elem) {
			return errors.Wrapf(errors.ErrType, "%T does not fit into %s", obj.Value(), elem)
		}
		list = reflect.Append(list, v)
	}
	ptr.Elem().Set(list)
	return nil
}

func (mb modelBucket) Create(db jobchain.KVStore, key []byte, m Model) error {
	err := mb.Has(db, key)
	if err == nil {
		return errors.Wrapf(errors.ErrDuplicate, "%s %X", mb.name, key)
	}
	if !errors.ErrNotFound.Is(err) {
		return err
	}
	return mb.Put(db, key, m)
}

func (mb modelBucket) Put(db jobchain.KVStore, key []byte, m Model) error {
	if err := mb.Save(db, NewSimpleObj(key, m)); err != nil {
		return errors.Wrapf(err, "save %s %X", mb.name, key)
	}
	return nil
}

func (mb modelBucket) Delete(db jobchain.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.Bucket.Delete(db, key)
}
