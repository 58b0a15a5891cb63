package gconf

import (
	"reflect"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/x"
)

// OwnedConfig is a configuration that names the address allowed to change
// it.
type OwnedConfig interface {
	Configuration
	GetOwner() jobchain.Address
}

// UpdateConfigurationHandler applies configuration patches signed by the
// current owner. The message must have a Patch field holding a pointer to
// the configuration type. Zero value fields of the patch are ignored, so a
// field can never be reset to its zero value.
type UpdateConfigurationHandler struct {
	pkg  string
	typ  reflect.Type
	auth x.Authenticator
}

var _ jobchain.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler handles patches of the pkg configuration.
// proto is only used for its type. The configuration must already exist,
// usually created at genesis.
func NewUpdateConfigurationHandler(pkg string, proto OwnedConfig, auth x.Authenticator) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:  pkg,
		typ:  reflect.TypeOf(proto).Elem(),
		auth: auth,
	}
}

func (h UpdateConfigurationHandler) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.CheckResult, error) {
	if err := h.update(ctx, db, tx); err != nil {
		return nil, err
	}
	return &jobchain.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.DeliverResult, error) {
	if err := h.update(ctx, db, tx); err != nil {
		return nil, err
	}
	return &jobchain.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) update(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) error {
	conf := reflect.New(h.typ).Interface().(OwnedConfig)
	if err := Load(db, h.pkg, conf); err != nil {
		return err
	}
	owner := conf.GetOwner()
	if owner == nil || !h.auth.HasAddress(ctx, owner) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s configuration owner must sign", h.pkg)
	}

	patch, err := h.patchOf(tx)
	if err != nil {
		return err
	}
	dst := reflect.ValueOf(conf).Elem()
	for i := 0; i < dst.NumField(); i++ {
		if f := patch.Field(i); !isZero(f) {
			dst.Field(i).Set(f)
		}
	}
	return Save(db, h.pkg, conf)
}

// patchOf returns the struct value pointed to by the Patch field of the
// message of tx.
func (h UpdateConfigurationHandler) patchOf(tx jobchain.Tx) (reflect.Value, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return reflect.Value{}, err
	}
	if err := msg.Validate(); err != nil {
		return reflect.Value{}, errors.Wrap(err, "invalid message")
	}
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errors.Wrapf(errors.ErrType, "message %T", msg)
	}
	p := v.Elem().FieldByName("Patch")
	switch {
	case !p.IsValid():
		return reflect.Value{}, errors.Wrapf(errors.ErrType, "message %T has no Patch", msg)
	case p.Kind() != reflect.Ptr || p.Type().Elem() != h.typ:
		return reflect.Value{}, errors.Wrapf(errors.ErrType, "patch is %s, want *%s", p.Type(), h.typ)
	case p.IsNil():
		return reflect.Value{}, errors.Wrap(errors.ErrEmpty, "patch")
	}
	return p.Elem(), nil
}

func isZero(v reflect.Value) bool {
	return reflect.DeepEqual(v.Interface(), reflect.Zero(v.Type()).Interface())
}
