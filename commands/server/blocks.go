package server

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendermint/go-amino"
	"github.com/tendermint/iavl"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/blockchain"
	dbm "github.com/tendermint/tendermint/libs/db"
	"github.com/tendermint/tendermint/libs/log"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	"github.com/tendermint/tendermint/types"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	iavlstore "github.com/iov-one/jobchain/store/iavl"
)

// cdc reads and writes tendermint blocks as json.
var cdc = amino.NewCodec()

func init() {
	ctypes.RegisterAmino(cdc)
}

// InlineAppGenerator builds an application on an already opened store,
// without starting an abci server.
type InlineAppGenerator func(jobchain.CommitKVStore, log.Logger, bool) abci.Application

// GetBlockCmd prints a block stored in a tendermint blockstore.db as json.
// Without -height the latest block is printed.
func GetBlockCmd(args []string) error {
	if len(args) == 0 {
		return errors.Wrap(errors.ErrInput, "usage: getblock <blockstore.db> [-height=N]")
	}
	fs := flag.NewFlagSet("getblock", flag.ContinueOnError)
	height := fs.Int64("height", 0, "block height, zero for the latest")
	if err := fs.Parse(args[1:]); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	db, err := openDb(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	blocks := blockchain.NewBlockStore(db)
	if *height == 0 {
		*height = blocks.Height()
	}
	return writeBlock(os.Stdout, blocks.LoadBlock(*height), *height)
}

func writeBlock(w io.Writer, block *types.Block, height int64) error {
	if block == nil {
		return errors.Wrapf(errors.ErrNotFound, "block %d", height)
	}
	raw, err := cdc.MarshalJSONIndent(block, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

// openDb opens the goleveldb database stored in dir, which must be named
// <something>.db.
func openDb(dir string) (dbm.DB, error) {
	dir = strings.TrimSuffix(dir, "/")
	base := strings.TrimSuffix(dir, ".db")
	if base == dir {
		return nil, errors.Wrapf(errors.ErrInput, "%s is not a .db directory", dir)
	}
	db, err := dbm.NewGoLevelDB(filepath.Base(base), filepath.Dir(base))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %s: %s", dir, err)
	}
	return db, nil
}

type replayArgs struct {
	abciDir   string
	blockFile string
	debug     bool
	// repeat the block until the app hash changes, at most attempts times
	untilDiff bool
	attempts  int
}

func parseReplayArgs(args []string) (*replayArgs, error) {
	if len(args) < 2 {
		return nil, errors.Wrap(errors.ErrInput,
			"usage: replay <abci.db> <block.json> [-debug] [-until-diff] [-attempts=N]")
	}
	r := &replayArgs{abciDir: args[0], blockFile: args[1]}
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.BoolVar(&r.debug, flagDebug, false, "include stack traces in transaction errors")
	fs.BoolVar(&r.untilDiff, "until-diff", false, "replay until the app hash differs")
	fs.IntVar(&r.attempts, "attempts", 10, "maximum replays with -until-diff")
	if err := fs.Parse(args[2:]); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return r, nil
}

// ReplayCmd rolls the application state stored in abci.db back by one
// block and delivers the given block again, logging the original and the
// recomputed app hash. The block must be the last one committed to the
// store, as printed by getblock.
func ReplayCmd(makeApp InlineAppGenerator, logger log.Logger, args []string) error {
	opts, err := parseReplayArgs(args)
	if err != nil {
		return err
	}

	raw, err := ioutil.ReadFile(opts.blockFile)
	if err != nil {
		return errors.Wrap(err, "read block")
	}
	var block *types.Block
	if err := cdc.UnmarshalJSON(raw, &block); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	tree, err := loadTree(opts.abciDir)
	if err != nil {
		return err
	}
	if v := tree.Version(); v != block.Height {
		return errors.Wrapf(errors.ErrState, "block is at height %d, store at %d", block.Height, v)
	}

	want := tree.Hash()
	logger.Info("replaying block", "height", block.Height, "hash", fmt.Sprintf("%X", want))
	for i := 0; ; i++ {
		app := makeApp(iavlstore.NewCommitStoreFromTree(tree), logger, opts.debug)
		got, err := replay(app, tree, block)
		if err != nil {
			return err
		}
		same := bytes.Equal(want, got)
		logger.Info("block replayed", "attempt", i+1, "hash", fmt.Sprintf("%X", got), "same", same)
		if !same || !opts.untilDiff || i+1 >= opts.attempts {
			return nil
		}
	}
}

func loadTree(dir string) (*iavl.MutableTree, error) {
	db, err := openDb(dir)
	if err != nil {
		return nil, err
	}
	tree := iavl.NewMutableTree(db, iavlstore.DefaultCacheSize)
	v, err := tree.Load()
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if v == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "no committed state")
	}
	return tree, nil
}

// replay rewinds tree to the parent of block and runs block through app.
// It returns the new app hash.
func replay(app abci.Application, tree *iavl.MutableTree, block *types.Block) ([]byte, error) {
	if _, err := tree.LoadVersionForOverwriting(block.Height - 1); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	app.BeginBlock(abci.RequestBeginBlock{
		Hash:   block.Hash(),
		Header: abciHeader(block.Header),
	})
	for _, tx := range block.Txs {
		app.DeliverTx(tx)
	}
	app.EndBlock(abci.RequestEndBlock{Height: block.Height})
	return app.Commit().Data, nil
}

func abciHeader(h types.Header) abci.Header {
	parts := h.LastBlockID.PartsHeader
	return abci.Header{
		Version:  abci.Version{Block: uint64(h.Version.Block), App: uint64(h.Version.App)},
		ChainID:  h.ChainID,
		Height:   h.Height,
		Time:     h.Time,
		NumTxs:   h.NumTxs,
		TotalTxs: h.TotalTxs,
		LastBlockId: abci.BlockID{
			Hash:        h.LastBlockID.Hash,
			PartsHeader: abci.PartSetHeader{Total: int32(parts.Total), Hash: parts.Hash},
		},
		LastCommitHash:     h.LastCommitHash,
		DataHash:           h.DataHash,
		ValidatorsHash:     h.ValidatorsHash,
		NextValidatorsHash: h.NextValidatorsHash,
		ConsensusHash:      h.ConsensusHash,
		AppHash:            h.AppHash,
		LastResultsHash:    h.LastResultsHash,
		EvidenceHash:       h.EvidenceHash,
		ProposerAddress:    h.ProposerAddress,
	}
}
