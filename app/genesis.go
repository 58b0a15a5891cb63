package app

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
)

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...jobchain.Initializer) jobchain.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []jobchain.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts jobchain.Options, kv jobchain.KVStore) error {
	for i, init := range c.inits {
		if err := init.FromGenesis(opts, kv); err != nil {
			return errors.Wrapf(err, "initializer %d (%T)", i, init)
		}
	}
	return nil
}
