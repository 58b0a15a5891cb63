package gconf

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
)

// ReadStore is the part of jobchain.ReadOnlyKVStore Load needs.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is the part of jobchain.KVStore Save needs.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// Configuration is the singleton configuration of one package.
type Configuration interface {
	jobchain.Persistent
	Validate() error
}

// Key returns the store key of the configuration of pkg.
func Key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates conf and writes it as the configuration of pkg.
func Save(db Store, pkg string, conf Configuration) error {
	if err := conf.Validate(); err != nil {
		return errors.Wrapf(err, "%s configuration", pkg)
	}
	raw, err := conf.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "%s configuration: %s", pkg, err)
	}
	return db.Set(Key(pkg), raw)
}

// Load reads the configuration of pkg into dst. It fails with ErrNotFound
// when none was saved.
func Load(db ReadStore, pkg string, dst Configuration) error {
	raw, err := db.Get(Key(pkg))
	switch {
	case err != nil:
		return err
	case raw == nil:
		return errors.Wrapf(errors.ErrNotFound, "%s configuration", pkg)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrModel, "%s configuration: %s", pkg, err)
	}
	return nil
}

// InitConfig saves the genesis section conf.<pkg> as the configuration of
// pkg. It fails with ErrNotFound when the section is absent.
func InitConfig(db Store, opts jobchain.Options, pkg string, conf Configuration) error {
	var sections jobchain.Options
	if err := opts.ReadOptions("conf", &sections); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if _, ok := sections[pkg]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "genesis conf.%s", pkg)
	}
	if err := sections.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(errors.ErrInput, "genesis conf.%s: %s", pkg, err)
	}
	return Save(db, pkg, conf)
}
