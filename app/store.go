package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp implements the state related part of abci.Application: genesis,
// blocks, commits and queries. BaseApp embeds it and adds transactions.
//
// Info, InitChain, BeginBlock, EndBlock and Commit do not process user
// input, so a failure there means the node state is broken and they panic.
type StoreApp struct {
	name   string
	logger log.Logger
	state  *chainState

	initializer jobchain.Initializer
	queries     jobchain.QueryRouter

	// chainID is read from the store on start and written once at genesis.
	chainID string
	// baseContext is shared by all blocks, blockContext is replaced on
	// every BeginBlock.
	baseContext  jobchain.Context
	blockContext jobchain.Context
}

// NewStoreApp loads the latest committed state of db. It panics when the
// state cannot be read.
func NewStoreApp(name string, db jobchain.CommitKVStore, queries jobchain.QueryRouter, ctx jobchain.Context) *StoreApp {
	state, err := loadChainState(db)
	if err != nil {
		panic(err)
	}
	s := &StoreApp{
		name:        name,
		state:       state,
		queries:     queries,
		baseContext: ctx,
	}
	s.WithLogger(log.NewNopLogger())

	if s.chainID, err = readChainID(state.deliver); err != nil {
		panic(err)
	}
	if s.chainID != "" {
		s.baseContext = jobchain.WithChainID(s.baseContext, s.chainID)
	}

	last, err := state.latest()
	if err != nil {
		panic(err)
	}
	s.blockContext = jobchain.WithHeight(s.baseContext, last.Version)
	return s
}

func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit sets the initializer that loads the genesis app_state.
func (s *StoreApp) WithInit(init jobchain.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithLogger sets the logger of the app and of every handler context.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.logger = logger
	s.baseContext = jobchain.WithLogger(s.baseContext, logger)
	if s.blockContext != nil {
		s.blockContext = jobchain.WithLogger(s.blockContext, logger)
	}
	return s
}

func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

func (s *StoreApp) BlockContext() jobchain.Context {
	return s.blockContext
}

// DeliverStore collects the writes of the block being delivered.
func (s *StoreApp) DeliverStore() jobchain.CacheableKVStore {
	return s.state.deliver
}

// CheckStore collects the writes of mempool checks since the last commit.
func (s *StoreApp) CheckStore() jobchain.CacheableKVStore {
	return s.state.check
}

// loadGenesis writes the chain id and hands every app_state section to the
// initializer. It runs once, on the very first InitChain.
func (s *StoreApp) loadGenesis(appState []byte, chainID string) error {
	switch {
	case s.chainID != "":
		return errors.Wrapf(errors.ErrState, "genesis already loaded for chain %s", s.chainID)
	case len(appState) == 0:
		return errors.Wrap(errors.ErrEmpty, "app_state missing from genesis, run init first")
	}

	var opts jobchain.Options
	if err := json.Unmarshal(appState, &opts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := writeChainID(s.state.deliver, chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.baseContext = jobchain.WithChainID(s.baseContext, chainID)
	// Mempool checks may arrive before the first BeginBlock.
	s.blockContext = jobchain.WithHeight(s.baseContext, 0)

	if s.initializer == nil {
		return errors.Wrap(errors.ErrHuman, "no genesis initializer")
	}
	return s.initializer.FromGenesis(opts, s.state.deliver)
}

// Info reports the last committed height and app hash, so that tendermint
// can replay missing blocks.
func (s *StoreApp) Info(abci.RequestInfo) abci.ResponseInfo {
	last, err := s.state.latest()
	if err != nil {
		panic(err)
	}
	s.logger.Info("state loaded", "height", last.Version, "hash", fmt.Sprintf("%X", last.Hash))
	return abci.ResponseInfo{
		Data:             s.name,
		Version:          jobchain.Version(),
		LastBlockHeight:  last.Version,
		LastBlockAppHash: last.Hash,
	}
}

func (s *StoreApp) SetOption(abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "not supported"}
}

// Query reads the last committed state. The path selects the handler,
// for example /jobs or /jobs/employer, and may end with ?prefix to match
// all keys starting with Data. Key and Value of the response are ResultSets
// of the same length.
func (s *StoreApp) Query(req abci.RequestQuery) abci.ResponseQuery {
	path, mod := splitPath(req.Path)
	h := s.queries.Handler(path)
	if h == nil {
		return queryError(errors.Wrapf(errors.ErrNotFound, "query path %q", req.Path))
	}

	last, err := s.state.latest()
	if err != nil {
		return queryError(err)
	}
	db := s.state.snapshot()
	defer db.Discard()

	models, err := h.Query(db, mod, req.Data)
	if err != nil {
		return queryError(err)
	}
	keys, err := ResultsFromKeys(models).Marshal()
	if err != nil {
		return queryError(err)
	}
	values, err := ResultsFromValues(models).Marshal()
	if err != nil {
		return queryError(err)
	}
	return abci.ResponseQuery{Height: last.Version, Key: keys, Value: values}
}

// splitPath separates the query modifier following "?" from the path.
func splitPath(full string) (path, mod string) {
	if i := strings.IndexByte(full, '?'); i >= 0 {
		return full[:i], full[i+1:]
	}
	return full, ""
}

func queryError(err error) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, false)
	return abci.ResponseQuery{Code: code, Log: log}
}

func (s *StoreApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	if err := s.loadGenesis(req.AppStateBytes, req.ChainId); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock builds the context shared by all transactions of the block.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	ctx := jobchain.WithHeader(s.baseContext, req.Header)
	ctx = jobchain.WithHeight(ctx, req.Header.GetHeight())
	s.blockContext = jobchain.WithBlockTime(ctx, req.Header.GetTime())
	return abci.ResponseBeginBlock{}
}

// EndBlock never changes the validator set.
func (s *StoreApp) EndBlock(abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}

func (s *StoreApp) Commit() abci.ResponseCommit {
	id, err := s.state.commit()
	if err != nil {
		panic(err)
	}
	s.logger.Debug("block committed", "height", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return abci.ResponseCommit{Data: id.Hash}
}
