package jobchain

import (
	"github.com/iov-one/jobchain/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// CheckResult is what a handler returns for a valid transaction in the
// mempool check. Failures are returned as errors.
type CheckResult struct {
	Data []byte
	Log  string
	// GasAllocated is the upper bound of work the transaction may perform.
	GasAllocated int64
}

func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{Data: c.Data, Log: c.Log, GasWanted: c.GasAllocated}
}

// DeliverResult is what a handler returns after successfully applying a
// transaction.
type DeliverResult struct {
	// Data is machine readable output, for example the id of a new job.
	Data []byte
	Log  string
	// Tags are indexed by tendermint and make the transaction searchable.
	Tags []common.KVPair
}

func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{Data: d.Data, Log: d.Log, Tags: d.Tags}
}

// CheckOrError builds the CheckTx response from a handler call.
func CheckOrError(res *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err == nil {
		return res.ToABCI()
	}
	return CheckTxError(err, debug)
}

// DeliverOrError builds the DeliverTx response from a handler call.
func DeliverOrError(res *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err == nil {
		return res.ToABCI()
	}
	return DeliverTxError(err, debug)
}

// CheckTxError turns err into a failed CheckTx response. Unless debug is
// set, internal error details are redacted.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := abciFailure("check", err, debug)
	return abci.ResponseCheckTx{Code: code, Log: log}
}

// DeliverTxError turns err into a failed DeliverTx response. Unless debug
// is set, internal error details are redacted.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := abciFailure("deliver", err, debug)
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

func abciFailure(phase string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code == errors.SuccessABCICode {
		return code, log
	}
	return code, "cannot " + phase + " tx: " + log
}
