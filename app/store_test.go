package app

import (
	"context"
	"io/ioutil"
	"testing"
	"time"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/jobtest"
	"github.com/iov-one/jobchain/jobtest/assert"
	"github.com/iov-one/jobchain/orm"
	"github.com/iov-one/jobchain/store/iavl"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func newTestStoreApp(t testing.TB) *StoreApp {
	t.Helper()
	qr := jobchain.NewQueryRouter()
	orm.RegisterQuery(qr)
	return NewStoreApp("jobtest", iavl.MockCommitStore(), qr, context.Background()).
		WithInit(dummyInit{})
}

func TestStoreAppInitChain(t *testing.T) {
	app := newTestStoreApp(t)
	assert.Equal(t, "", app.GetChainID())

	app.InitChain(abci.RequestInitChain{
		ChainId:       "test-chain",
		AppStateBytes: []byte(`{"dummy": "hello"}`),
	})
	assert.Equal(t, "test-chain", app.GetChainID())

	res := app.Commit()
	if len(res.Data) == 0 {
		t.Fatal("empty app hash")
	}
	info := app.Info(abci.RequestInfo{})
	assert.Equal(t, int64(1), info.LastBlockHeight)
	assert.Equal(t, res.Data, info.LastBlockAppHash)
	assert.Equal(t, "jobtest", info.Data)

	// genesis is applied only once
	assert.Panics(t, func() {
		app.InitChain(abci.RequestInitChain{
			ChainId:       "test-chain",
			AppStateBytes: []byte(`{"dummy": "again"}`),
		})
	})
}

func TestStoreAppInitChainFailures(t *testing.T) {
	cases := map[string]abci.RequestInitChain{
		"missing app state": {ChainId: "test-chain"},
		"malformed app state": {
			ChainId:       "test-chain",
			AppStateBytes: []byte(`{"dummy":`),
		},
		"invalid chain id": {
			ChainId:       "x",
			AppStateBytes: []byte(`{"dummy": "hello"}`),
		},
		"initializer failure": {
			ChainId:       "test-chain",
			AppStateBytes: []byte(`{"dummy": ""}`),
		},
	}
	for testName, req := range cases {
		t.Run(testName, func(t *testing.T) {
			app := newTestStoreApp(t)
			assert.Panics(t, func() { app.InitChain(req) })
		})
	}
}

func TestStoreAppReloadsChainID(t *testing.T) {
	db := iavl.MockCommitStore()
	app := NewStoreApp("jobtest", db, jobchain.NewQueryRouter(), context.Background()).
		WithInit(dummyInit{})
	app.InitChain(abci.RequestInitChain{
		ChainId:       "reload-chain",
		AppStateBytes: []byte(`{"dummy": "hello"}`),
	})
	app.Commit()

	restarted := NewStoreApp("jobtest", db, jobchain.NewQueryRouter(), context.Background())
	assert.Equal(t, "reload-chain", restarted.GetChainID())
	height, ok := jobchain.GetHeight(restarted.BlockContext())
	assert.Equal(t, true, ok)
	assert.Equal(t, int64(1), height)
}

func TestStoreAppQuery(t *testing.T) {
	app := newTestStoreApp(t)
	app.InitChain(abci.RequestInitChain{
		ChainId:       "test-chain",
		AppStateBytes: []byte(`{"dummy": "hello"}`),
	})

	// nothing is visible before the commit
	res := app.Query(abci.RequestQuery{Path: "/", Data: []byte(dummyKey)})
	assert.Equal(t, uint32(0), res.Code)
	var values ResultSet
	assert.Nil(t, values.Unmarshal(res.Value))
	assert.Equal(t, 0, len(values.Results))

	app.Commit()

	res = app.Query(abci.RequestQuery{Path: "/", Data: []byte(dummyKey)})
	assert.Equal(t, uint32(0), res.Code)
	assert.Equal(t, int64(1), res.Height)
	var keys ResultSet
	assert.Nil(t, keys.Unmarshal(res.Key))
	assert.Nil(t, values.Unmarshal(res.Value))
	assert.Equal(t, [][]byte{[]byte(dummyKey)}, keys.Results)
	assert.Equal(t, [][]byte{[]byte("hello")}, values.Results)

	res = app.Query(abci.RequestQuery{Path: "/?prefix", Data: []byte("_jc:")})
	assert.Equal(t, uint32(0), res.Code)
	assert.Nil(t, values.Unmarshal(res.Value))
	assert.Equal(t, [][]byte{[]byte("test-chain")}, values.Results)

	res = app.Query(abci.RequestQuery{Path: "/?range"})
	assert.Equal(t, errors.ErrInput.ABCICode(), res.Code)

	res = app.Query(abci.RequestQuery{Path: "/jobs"})
	assert.Equal(t, errors.ErrNotFound.ABCICode(), res.Code)
}

func TestSplitPath(t *testing.T) {
	cases := map[string]struct {
		path     string
		wantPath string
		wantMod  string
	}{
		"plain":     {path: "/jobs", wantPath: "/jobs"},
		"prefix":    {path: "/jobs/employer?prefix", wantPath: "/jobs/employer", wantMod: "prefix"},
		"empty mod": {path: "/custody?", wantPath: "/custody"},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			path, mod := splitPath(tc.path)
			assert.Equal(t, tc.wantPath, path)
			assert.Equal(t, tc.wantMod, mod)
		})
	}
}

func TestBeginBlockContext(t *testing.T) {
	app := newTestStoreApp(t)
	app.InitChain(abci.RequestInitChain{
		ChainId:       "test-chain",
		AppStateBytes: []byte(`{"dummy": "hello"}`),
	})

	now := time.Unix(1500000000, 0)
	for h := int64(1); h <= 2; h++ {
		app.BeginBlock(abci.RequestBeginBlock{
			Header: abci.Header{Height: h, Time: now},
		})
		ctx := app.BlockContext()
		height, _ := jobchain.GetHeight(ctx)
		assert.Equal(t, h, height)
		blockTime, ok := jobchain.BlockTime(ctx)
		assert.Equal(t, true, ok)
		assert.Equal(t, now.UTC(), blockTime)
		assert.Equal(t, "test-chain", jobchain.GetChainID(ctx))
	}
}

// chainIDHandler fails unless the context carries the expected chain id.
type chainIDHandler struct {
	want string
}

func (h chainIDHandler) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.CheckResult, error) {
	if got := jobchain.GetChainID(ctx); got != h.want {
		return nil, errors.Wrapf(errors.ErrState, "chain id %q", got)
	}
	return &jobchain.CheckResult{}, nil
}

func (h chainIDHandler) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.DeliverResult, error) {
	if _, err := h.Check(ctx, db, tx); err != nil {
		return nil, err
	}
	return &jobchain.DeliverResult{}, nil
}

func TestCheckTxBeforeFirstBlock(t *testing.T) {
	decoder := func(raw []byte) (jobchain.Tx, error) {
		return &jobtest.Tx{Msg: &jobtest.Msg{RoutePath: string(raw)}}, nil
	}
	store := newTestStoreApp(t)
	store.InitChain(abci.RequestInitChain{
		ChainId:       "test-chain",
		AppStateBytes: []byte(`{"dummy": "hello"}`),
	})
	store.Commit()

	ctx := store.BlockContext()
	assert.Equal(t, "test-chain", jobchain.GetChainID(ctx))
	height, ok := jobchain.GetHeight(ctx)
	assert.Equal(t, true, ok)
	assert.Equal(t, int64(0), height)

	app := NewBaseApp(store, decoder, chainIDHandler{want: "test-chain"}, false)
	res := app.CheckTx([]byte("job/create"))
	assert.Equal(t, uint32(0), res.Code)

	// a logger set later reaches the current block context too
	logger := log.NewTMLogger(ioutil.Discard)
	store.WithLogger(logger)
	assert.Equal(t, logger, jobchain.GetLogger(store.BlockContext()))
}

func TestBaseApp(t *testing.T) {
	decoder := func(raw []byte) (jobchain.Tx, error) {
		switch string(raw) {
		case "panic":
			panic("cannot decode")
		case "bad":
			return nil, errors.Wrap(errors.ErrInput, "bad tx")
		case "empty":
			return nil, nil
		}
		return &jobtest.Tx{Msg: &jobtest.Msg{RoutePath: string(raw)}}, nil
	}
	handler := &jobtest.WriteHandler{
		Key:   []byte("job:1"),
		Value: []byte("created"),
	}
	store := newTestStoreApp(t)
	store.InitChain(abci.RequestInitChain{
		ChainId:       "test-chain",
		AppStateBytes: []byte(`{"dummy": "hello"}`),
	})
	app := NewBaseApp(store, decoder, handler, false)
	app.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{Height: 1, Time: time.Now()},
	})

	check := app.CheckTx([]byte("job/create"))
	assert.Equal(t, uint32(0), check.Code)
	deliver := app.DeliverTx([]byte("job/create"))
	assert.Equal(t, uint32(0), deliver.Code)

	for _, raw := range []string{"bad", "empty"} {
		assert.Equal(t, errors.ErrInput.ABCICode(), app.CheckTx([]byte(raw)).Code)
		assert.Equal(t, errors.ErrInput.ABCICode(), app.DeliverTx([]byte(raw)).Code)
	}
	// panics are reported as internal errors outside of debug mode
	assert.Equal(t, uint32(1), app.CheckTx([]byte("panic")).Code)
	assert.Equal(t, uint32(1), app.DeliverTx([]byte("panic")).Code)

	app.Commit()
	got, err := NewABCIStore(app).Get([]byte("job:1"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("created"), got)
}
