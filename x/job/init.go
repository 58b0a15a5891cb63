package job

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/gconf"
)

// Initializer loads the job configuration from the genesis file. Without a
// "conf.job" section the default policy applies and the configuration
// cannot be updated.
type Initializer struct{}

var _ jobchain.Initializer = Initializer{}

func (Initializer) FromGenesis(opts jobchain.Options, db jobchain.KVStore) error {
	var conf Configuration
	err := gconf.InitConfig(db, opts, gconfPkg, &conf)
	if errors.ErrNotFound.Is(err) {
		return nil
	}
	return err
}
