// Package app assembles the jobchaind application: the decorator chain,
// the cash, sigs and job routes and the persistent iavl store.
package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/app"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/orm"
	"github.com/iov-one/jobchain/store/iavl"
	"github.com/iov-one/jobchain/x"
	"github.com/iov-one/jobchain/x/cash"
	"github.com/iov-one/jobchain/x/escrow"
	"github.com/iov-one/jobchain/x/job"
	"github.com/iov-one/jobchain/x/sigs"
	"github.com/iov-one/jobchain/x/utils"
)

// Authenticator accepts ed25519 signatures checked by the sigs decorator.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain is the decorator stack in front of the router. A nil metrics
// decorator is skipped.
func Chain(metrics *utils.Metrics) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		metrics,
		utils.NewActionTagger(),
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// the nonce is bumped even when the message fails
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router dispatches cash/, sigs/ and job/ messages. Jobs move funds only
// through the escrow controller.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	wallets := cash.NewController(cash.NewBucket())
	cash.RegisterRoutes(r, authFn, wallets)
	sigs.RegisterRoutes(r, authFn)
	job.RegisterRoutes(r, authFn, escrow.NewController(wallets, escrow.NewBucket()))
	return r
}

// QueryRouter serves "/", "/wallets", "/auth", "/jobs" and "/custody".
func QueryRouter() jobchain.QueryRouter {
	r := jobchain.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		sigs.RegisterQuery,
		job.RegisterQuery,
		escrow.RegisterQuery,
		orm.RegisterQuery,
	)
	return r
}

// Stack is Chain in front of Router.
func Stack(metrics *utils.Metrics) jobchain.Handler {
	authFn := Authenticator()
	return Chain(metrics).WithHandler(Router(authFn))
}

// Application opens the store at dbPath and serves h on top of it.
func Application(name string, h jobchain.Handler, tx jobchain.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	state := app.NewStoreApp(name, kv, QueryRouter(), context.Background())
	return app.NewBaseApp(state, tx, h, debug), nil
}

// CommitKVStore opens the iavl store named by dbPath, with or without its
// .db extension. An empty path gives a memory store.
func CommitKVStore(dbPath string) (jobchain.CommitKVStore, error) {
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "database %s: %s", dbPath, err)
	}
	path = strings.TrimSuffix(path, filepath.Ext(path))
	return iavl.NewCommitStore(filepath.Dir(path), filepath.Base(path))
}
