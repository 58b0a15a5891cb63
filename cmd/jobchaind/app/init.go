package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/app"
	"github.com/iov-one/jobchain/crypto"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/x/cash"
	"github.com/iov-one/jobchain/x/job"
	"github.com/iov-one/jobchain/x/utils"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// defaultCancelTimeout lets an employer reclaim the pay of a job nobody
// started working on after a week.
const defaultCancelTimeout = 7 * 24 * 60 * 60

// devBalance is minted to the dev account of a fresh genesis.
const devBalance = 123456789

// GenInitOptions builds a dev app_state: one funded account that also owns
// the job configuration. The account address may be given as the first
// argument in any form Address accepts. Otherwise a key is generated and
// printed.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var addr jobchain.Address
	if len(args) == 0 {
		a, keys, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		fmt.Println(keys)
		addr = a
	} else if err := json.Unmarshal([]byte(strconv.Quote(args[0])), &addr); err != nil {
		return nil, errors.Wrapf(err, "address %q", args[0])
	}

	state := map[string]interface{}{
		"cash": []cash.GenesisAccount{{Address: addr, Balance: devBalance}},
		"conf": map[string]interface{}{
			"job": job.Configuration{
				Metadata:      &jobchain.Metadata{Schema: 1},
				Owner:         addr,
				MinPay:        1,
				CancelTimeout: defaultCancelTimeout,
			},
		},
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// GenerateApp builds the node application stored under home. An empty home
// keeps the state in memory. Metrics may be nil.
func GenerateApp(home string, logger log.Logger, debug bool, metrics *utils.Metrics) (abci.Application, error) {
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "jobchain.db")
	}
	base, err := Application("jobchaind", Stack(metrics), TxDecoder, dbPath, debug)
	if err != nil {
		return nil, err
	}
	base.WithInit(Initializers())
	base.WithLogger(logger)
	return base, nil
}

// Initializers loads the genesis state of every extension.
func Initializers() jobchain.Initializer {
	return app.ChainInitializers(
		&cash.Initializer{},
		&job.Initializer{},
	)
}

type output struct {
	Pubkey *crypto.PublicKey  `json:"pub_key"`
	Secret *crypto.PrivateKey `json:"secret"`
}

// GenerateCoinKey creates a new ed25519 key. It returns the key address and
// the key pair as JSON, ready to be imported by a client.
func GenerateCoinKey() (jobchain.Address, string, error) {
	secret := crypto.GenPrivKeyEd25519()
	pub := secret.PublicKey()
	keys, err := json.MarshalIndent(output{Pubkey: pub, Secret: secret}, "", "  ")
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrInput, err.Error())
	}
	return pub.Address(), string(keys), nil
}

// InlineApp builds the application on top of an existing store. It is used
// to replay blocks against a copy of the chain state.
func InlineApp(kv jobchain.CommitKVStore, logger log.Logger, debug bool) abci.Application {
	state := app.NewStoreApp("jobchaind-inline", kv, QueryRouter(), context.Background())
	base := app.NewBaseApp(state, TxDecoder, Stack(nil), debug)
	base.WithLogger(logger)
	return base
}
