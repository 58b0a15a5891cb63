package app

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp is a complete abci.Application. Raw transactions are decoded
// and passed to a single handler, usually a decorator stack ending in a
// router.
type BaseApp struct {
	*StoreApp
	decoder jobchain.TxDecoder
	handler jobchain.Handler
	// debug exposes internal error details in responses.
	debug bool
}

var _ abci.Application = BaseApp{}

func NewBaseApp(store *StoreApp, decoder jobchain.TxDecoder, handler jobchain.Handler, debug bool) BaseApp {
	return BaseApp{StoreApp: store, decoder: decoder, handler: handler, debug: debug}
}

func (b BaseApp) CheckTx(raw []byte) abci.ResponseCheckTx {
	tx, err := b.decode(raw)
	if err != nil {
		return jobchain.CheckTxError(err, b.debug)
	}
	res, err := b.handler.Check(b.txContext("check_tx", tx), b.CheckStore(), tx)
	return jobchain.CheckOrError(res, err, b.debug)
}

func (b BaseApp) DeliverTx(raw []byte) abci.ResponseDeliverTx {
	tx, err := b.decode(raw)
	if err != nil {
		return jobchain.DeliverTxError(err, b.debug)
	}
	res, err := b.handler.Deliver(b.txContext("deliver_tx", tx), b.DeliverStore(), tx)
	return jobchain.DeliverOrError(res, err, b.debug)
}

func (b BaseApp) txContext(call string, tx jobchain.Tx) jobchain.Context {
	return jobchain.WithLogInfo(b.BlockContext(), "call", call, "path", jobchain.GetPath(tx))
}

// decode turns decoder panics into ErrPanic and rejects a nil transaction.
func (b BaseApp) decode(raw []byte) (tx jobchain.Tx, err error) {
	defer errors.Recover(&err)
	if tx, err = b.decoder(raw); err == nil && tx == nil {
		err = errors.Wrap(errors.ErrInput, "empty transaction")
	}
	return tx, err
}
