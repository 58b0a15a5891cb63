package cash

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file
// use jobchain.Address, so address in hex, not base64
type GenesisAccount struct {
	Address jobchain.Address `json:"address"`
	Balance uint64           `json:"balance"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ jobchain.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts jobchain.Options, kv jobchain.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot load cash genesis: %s", err)
	}
	ctrl := NewController(NewBucket())
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := ctrl.CoinMint(kv, acct.Address, acct.Balance); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
